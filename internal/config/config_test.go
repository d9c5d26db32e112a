package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, FileEnvKey, "API_PORT", "UPLOAD_MAX_BYTES", "PREVIEW_CHARS", "CORS_ALLOWED_ORIGINS", "LLM_BREAKER_ENABLED", "API_RATE_LIMIT_RPS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8000" {
		t.Fatalf("expected default port 8000, got %q", cfg.APIPort)
	}
	if cfg.UploadMaxBytes != 25<<20 {
		t.Fatalf("expected 25MiB upload limit, got %d", cfg.UploadMaxBytes)
	}
	if cfg.PreviewChars != 300 {
		t.Fatalf("expected preview 300, got %d", cfg.PreviewChars)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"http://localhost:5173", "http://127.0.0.1:5173"}) {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.LLMBreakerEnabled || cfg.APIRateLimitRPS != 0 {
		t.Fatalf("unexpected traffic defaults %+v", cfg)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	clearEnv(t, FileEnvKey)
	t.Setenv("API_PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("LLM_BREAKER_ENABLED", "false")
	t.Setenv("LLM_BREAKER_OPEN_TIMEOUT", "5s")
	t.Setenv("PREVIEW_CHARS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9000" || cfg.APIRateLimitRPS != 2.5 || cfg.LLMBreakerEnabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.LLMBreakerOpenTimeout != 5*time.Second {
		t.Fatalf("expected 5s, got %s", cfg.LLMBreakerOpenTimeout)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.PreviewChars != 300 {
		t.Fatalf("invalid values fall back to defaults, got %d", cfg.PreviewChars)
	}
}

func TestLoadReadsYAMLFileBelowEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.yaml")
	content := "API_PORT: 8100\nollama_gen_model: mistral\nMETRICS_ENABLED: false\nCORS_ALLOWED_ORIGINS:\n  - https://lab.example\n  - https://x.example\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(FileEnvKey, path)
	t.Setenv("API_PORT", "")
	t.Setenv("OLLAMA_GEN_MODEL", "")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8100" || cfg.OllamaGenModel != "mistral" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("environment must win over the file")
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"https://lab.example", "https://x.example"}) {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.yaml")
	if err := os.WriteFile(path, []byte("API_PORT: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(FileEnvKey, path)
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}

	t.Setenv(FileEnvKey, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadClient(); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestLoadClientDefaults(t *testing.T) {
	clearEnv(t, FileEnvKey, "LAB_API_BASE_URL", "LAB_CLIENT_LOG_FILE")
	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000" || cfg.LogFile != "./data/labclient.log" {
		t.Fatalf("unexpected client config %+v", cfg)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LAB_API_BASE_URL=http://from-dotenv:8000\nLAB_TEST_ONLY_KEY=dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("LAB_API_BASE_URL", "http://from-env:8000")
	t.Setenv("LAB_TEST_ONLY_KEY", "")
	os.Unsetenv("LAB_TEST_ONLY_KEY")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("LAB_API_BASE_URL"); got != "http://from-env:8000" {
		t.Fatalf("existing env overridden: %q", got)
	}
	if got := os.Getenv("LAB_TEST_ONLY_KEY"); got != "dotenv" {
		t.Fatalf("expected dotenv value, got %q", got)
	}
}
