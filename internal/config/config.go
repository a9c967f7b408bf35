package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes"`
}

type StoreConfig struct {
	// Type selects the vector store backend: "qdrant" or "memory".
	Type string `json:"type"`

	// URL is the Qdrant base URL (for "qdrant" stores).
	URL string `json:"url,omitempty"`

	// Collection is the single logical collection this deployment owns.
	// It is fixed per deployment; callers never supply it.
	Collection string `json:"collection"`
}

type EngineConfig struct {
	// Type selects the model engine: "mock" or "oai_http".
	Type string `json:"type"`

	// BaseURL is the upstream OpenAI-compatible base URL (for "oai_http").
	BaseURL string `json:"base_url,omitempty"`

	// APIKey is optional; when set, requests carry `Authorization: Bearer <api_key>`.
	APIKey string `json:"api_key,omitempty"`

	EmbedModel string `json:"embed_model,omitempty"`
	ChatModel  string `json:"chat_model,omitempty"`

	// Timeout applies to embedding and batch generation calls.
	// Streaming requests rely on client cancellation instead.
	Timeout Duration `json:"timeout,omitempty"`
}

type RAGConfig struct {
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
	TopK         int    `json:"top_k"`
	ProbeText    string `json:"probe_text,omitempty"`

	// SettleDelay is the fixed wait after a successful upsert before the
	// collection is considered query-ready. Indexing is not guaranteed
	// synchronous with upsert acknowledgment.
	SettleDelay Duration `json:"settle_delay,omitempty"`
}

type Config struct {
	Env    string       `json:"env"`
	HTTP   HTTPConfig   `json:"http"`
	Store  StoreConfig  `json:"store"`
	Engine EngineConfig `json:"engine"`
	RAG    RAGConfig    `json:"rag"`
}
