package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDurationUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{`"5s"`, 5 * time.Second},
		{`"150ms"`, 150 * time.Millisecond},
		{`"2m"`, 2 * time.Minute},
		{`1000000000`, time.Second},
		{`""`, 0},
		{`null`, 0},
	}
	for _, c := range cases {
		var d Duration
		if err := json.Unmarshal([]byte(c.in), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", c.in, err)
		}
		if d.Duration != c.want {
			t.Fatalf("in=%s got=%v want=%v", c.in, d.Duration, c.want)
		}
	}
}

func TestDurationUnmarshalRejectsGarbage(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"not a duration"`), &d); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadDefaults(t *testing.T) {
	// No config file, no env overrides: pure defaults.
	t.Setenv("RAGD_CONFIG_PATH", "")
	t.Setenv("QDRANT_URL", "")
	t.Setenv("QDRANT_COLLECTION", "")
	t.Setenv("RAGD_HTTP_ADDR", "")
	t.Setenv("LOG_MODE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("addr=%q", cfg.HTTP.Addr)
	}
	if cfg.Store.Type != "qdrant" || cfg.Store.URL != "http://localhost:6333" {
		t.Fatalf("store=%q %q", cfg.Store.Type, cfg.Store.URL)
	}
	if cfg.Engine.Type != "mock" {
		t.Fatalf("engine type=%q", cfg.Engine.Type)
	}
	if cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 200 {
		t.Fatalf("chunking=%d/%d", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.TopK != 5 {
		t.Fatalf("top_k=%d", cfg.RAG.TopK)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, `{
		"env": "production",
		"http": {"addr": ":9090", "read_header_timeout": "3s"},
		"store": {"type": "memory", "collection": "docs"},
		"engine": {"type": "oai_http", "base_url": "http://llm:8000/", "embed_model": "e", "chat_model": "c"},
		"rag": {"chunk_size": 500, "chunk_overlap": 100, "top_k": 3, "settle_delay": "250ms"}
	}`)
	t.Setenv("RAGD_CONFIG_PATH", path)
	t.Setenv("LOG_MODE", "")
	t.Setenv("RAGD_HTTP_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "production" {
		t.Fatalf("env=%q", cfg.Env)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("addr=%q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ReadHeaderTimeout.Duration != 3*time.Second {
		t.Fatalf("read_header_timeout=%v", cfg.HTTP.ReadHeaderTimeout.Duration)
	}
	if cfg.Engine.BaseURL != "http://llm:8000" {
		t.Fatalf("base_url=%q; trailing slash should be trimmed", cfg.Engine.BaseURL)
	}
	if cfg.Engine.Timeout.Duration != 60*time.Second {
		t.Fatalf("timeout=%v, want default 60s", cfg.Engine.Timeout.Duration)
	}
	if cfg.RAG.SettleDelay.Duration != 250*time.Millisecond {
		t.Fatalf("settle_delay=%v", cfg.RAG.SettleDelay.Duration)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, `{"store": {"type": "qdrant", "url": "http://file:6333", "collection": "docs"}}`)
	t.Setenv("RAGD_CONFIG_PATH", path)
	t.Setenv("QDRANT_URL", "http://env:6333")
	t.Setenv("QDRANT_COLLECTION", "env_docs")
	t.Setenv("RAGD_HTTP_ADDR", ":7070")
	t.Setenv("LOG_MODE", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.URL != "http://env:6333" {
		t.Fatalf("url=%q", cfg.Store.URL)
	}
	if cfg.Store.Collection != "env_docs" {
		t.Fatalf("collection=%q", cfg.Store.Collection)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("addr=%q", cfg.HTTP.Addr)
	}
	if cfg.Env != "production" {
		t.Fatalf("env=%q", cfg.Env)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad store type", `{"store": {"type": "cassandra", "collection": "x"}}`},
		{"qdrant without url", `{"store": {"type": "qdrant", "url": "", "collection": "x"}}`},
		{"missing collection", `{"store": {"type": "memory", "collection": ""}}`},
		{"oai_http without base_url", `{"store": {"type": "memory", "collection": "x"}, "engine": {"type": "oai_http"}}`},
		{"overlap >= size", `{"store": {"type": "memory", "collection": "x"}, "rag": {"chunk_size": 100, "chunk_overlap": 100}}`},
		{"negative settle delay", `{"store": {"type": "memory", "collection": "x"}, "rag": {"settle_delay": "-1s"}}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			writeConfig(t, path, c.body)
			t.Setenv("RAGD_CONFIG_PATH", path)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s", c.name)
			}
		})
	}
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
