package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		if strings.TrimSpace(u) == "" {
			d.Duration = 0
			return nil
		}
		dd, err := time.ParseDuration(u)
		if err != nil {
			return err
		}
		d.Duration = dd
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   32 << 20,
		},
		Store: StoreConfig{
			Type:       "qdrant",
			URL:        "http://localhost:6333",
			Collection: "documents",
		},
		Engine: EngineConfig{
			Type: "mock",
		},
		RAG: RAGConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         5,
			ProbeText:    "dimension probe",
			SettleDelay:  Duration{Duration: time.Second},
		},
	}
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(os.Getenv("RAGD_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.json")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}

	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		var loaded Config
		if err := json.Unmarshal(b, &loaded); err != nil {
			return nil, err
		}
		*cfg = loaded
	}

	if v := strings.TrimSpace(os.Getenv("LOG_MODE")); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv("RAGD_HTTP_ADDR")); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("QDRANT_URL")); v != "" {
		cfg.Store.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("QDRANT_COLLECTION")); v != "" {
		cfg.Store.Collection = v
	}
	if v := strings.TrimSpace(os.Getenv("RAGD_ENGINE_API_KEY")); v != "" {
		cfg.Engine.APIKey = v
	}

	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 32 << 20
	}

	cfg.Store.Type = strings.ToLower(strings.TrimSpace(cfg.Store.Type))
	if cfg.Store.Type == "" {
		cfg.Store.Type = "qdrant"
	}
	switch cfg.Store.Type {
	case "memory":
	case "qdrant":
		cfg.Store.URL = strings.TrimRight(strings.TrimSpace(cfg.Store.URL), "/")
		if cfg.Store.URL == "" {
			return nil, fmt.Errorf("store.url is required for qdrant stores")
		}
		parsed, err := url.Parse(cfg.Store.URL)
		if err != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
			return nil, fmt.Errorf("invalid store.url=%q; expected absolute URL like http://qdrant:6333", cfg.Store.URL)
		}
	default:
		return nil, fmt.Errorf("unsupported store.type=%q", cfg.Store.Type)
	}
	if strings.TrimSpace(cfg.Store.Collection) == "" {
		return nil, fmt.Errorf("store.collection is required")
	}

	cfg.Engine.Type = strings.ToLower(strings.TrimSpace(cfg.Engine.Type))
	switch cfg.Engine.Type {
	case "", "mock":
		cfg.Engine.Type = "mock"
	case "openai_http", "oai_http":
		cfg.Engine.Type = "oai_http"
		cfg.Engine.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Engine.BaseURL), "/")
		if cfg.Engine.BaseURL == "" {
			return nil, fmt.Errorf("engine.base_url is required for oai_http engines")
		}
		if strings.TrimSpace(cfg.Engine.EmbedModel) == "" {
			return nil, fmt.Errorf("engine.embed_model is required for oai_http engines")
		}
		if strings.TrimSpace(cfg.Engine.ChatModel) == "" {
			return nil, fmt.Errorf("engine.chat_model is required for oai_http engines")
		}
		if cfg.Engine.Timeout.Duration <= 0 {
			cfg.Engine.Timeout = Duration{Duration: 60 * time.Second}
		}
	default:
		return nil, fmt.Errorf("unsupported engine.type=%q", cfg.Engine.Type)
	}

	if cfg.RAG.ChunkSize <= 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap < 0 {
		cfg.RAG.ChunkOverlap = 0
	}
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return nil, fmt.Errorf("rag.chunk_overlap=%d must be smaller than rag.chunk_size=%d", cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize)
	}
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = 5
	}
	if strings.TrimSpace(cfg.RAG.ProbeText) == "" {
		cfg.RAG.ProbeText = "dimension probe"
	}
	if cfg.RAG.SettleDelay.Duration < 0 {
		return nil, fmt.Errorf("rag.settle_delay must not be negative")
	}

	return cfg, nil
}
