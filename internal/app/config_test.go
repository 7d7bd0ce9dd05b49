package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_REQUEST_BYTES", "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("addr=%q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.MaxRequestBytes != defaultMaxRequestBytes {
		t.Fatalf("max bytes=%d", cfg.HTTP.MaxRequestBytes)
	}
	if cfg.DB.Driver != "postgres" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("db=%+v redis=%+v", cfg.DB, cfg.Redis)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("model=%q", cfg.OpenAI.Model)
	}
}

func TestLoadConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
env: production
http:
  addr: ":7000"
  shutdown_timeout: 3s
openai:
  model: gpt-4.1
  temperature: 0.2
  timeout: 45
db:
  driver: sqlite
  sqlite_path: /tmp/drafts.db
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("OTEL_SERVICE_NAME", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Env != "production" || cfg.HTTP.Addr != ":7000" {
		t.Fatalf("env=%q addr=%q", cfg.Env, cfg.HTTP.Addr)
	}
	if cfg.HTTP.ShutdownTimeout.Duration != 3*time.Second {
		t.Fatalf("shutdown=%v", cfg.HTTP.ShutdownTimeout.Duration)
	}
	if cfg.OpenAI.Model != "gpt-4.1" || cfg.OpenAI.APIKey != "sk-from-env" {
		t.Fatalf("openai=%+v", cfg.OpenAI)
	}
	if cfg.OpenAI.Temperature == nil || *cfg.OpenAI.Temperature != 0.2 {
		t.Fatalf("temperature=%v", cfg.OpenAI.Temperature)
	}
	if cfg.OpenAI.Timeout.Duration != 45*time.Second {
		t.Fatalf("timeout=%v", cfg.OpenAI.Timeout.Duration)
	}
	if cfg.DB.SQLitePath != "/tmp/drafts.db" {
		t.Fatalf("sqlite=%q", cfg.DB.SQLitePath)
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http: [nope"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}
