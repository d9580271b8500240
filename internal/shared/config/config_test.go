package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "ENV", "LLM_MODEL", "LLM_MAX_ATTEMPTS", "LLM_RETRY_BASE_DELAY_MS", "OBJECT_STORE", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}
	t.Setenv("GEMINI_API_KEY", "")

	cfg := Load()

	if cfg.Port != "5000" {
		t.Fatalf("expected default port 5000, got %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected dev env, got %q", cfg.Env)
	}
	if cfg.LLMModel != defaultLLMModel {
		t.Fatalf("unexpected model %q", cfg.LLMModel)
	}
	if cfg.LLMMaxAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", cfg.LLMMaxAttempts)
	}
	if cfg.LLMRetryBaseDelay != 3*time.Second {
		t.Fatalf("expected 3s base delay, got %s", cfg.LLMRetryBaseDelay)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local store, got %q", cfg.ObjectStoreType)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("unexpected max upload bytes %d", cfg.MaxUploadBytes)
	}
	if cfg.GeminiAPIKey != "" {
		t.Fatalf("expected empty api key")
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "GEMINI_API_KEY=from-file\nLLM_MODEL=gemini-file\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")
	t.Setenv("LLM_MODEL", "gemini-env")

	cfg := Load()

	if cfg.LLMModel != "gemini-env" {
		t.Fatalf("expected process env to win, got %q", cfg.LLMModel)
	}
	if cfg.GeminiAPIKey != "from-file" {
		t.Fatalf("expected key from .env, got %q", cfg.GeminiAPIKey)
	}
}

func TestGetEnvIntRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "valid", raw: "5", want: 5},
		{name: "zero", raw: "0", want: 7},
		{name: "negative", raw: "-2", want: 7},
		{name: "garbage", raw: "abc", want: 7},
		{name: "unset", raw: "", want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.raw)
			if got := getEnvInt("TEST_INT", 7); got != tt.want {
				t.Fatalf("getEnvInt(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeEnv(t *testing.T) {
	tests := map[string]string{
		"prod":       "production",
		"Production": "production",
		"staging":    "staging",
		"local":      "local",
		"":           "dev",
		"whatever":   "dev",
	}
	for in, want := range tests {
		if got := normalizeEnv(in); got != want {
			t.Fatalf("normalizeEnv(%q) = %q, want %q", in, got, want)
		}
	}
}
