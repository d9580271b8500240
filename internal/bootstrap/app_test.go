package bootstrap

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/telemetry"
)

func quietLogs(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })
}

func TestBuildWiresRoutes(t *testing.T) {
	quietLogs(t)
	app, err := Build(config.Config{
		Env:            "dev",
		LocalStoreDir:  t.TempDir(),
		MaxUploadBytes: 1 << 20,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if app.Router == nil || app.AnalysesService == nil || app.AssistService == nil {
		t.Fatalf("expected wired app, got %+v", app)
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	var payload map[string]bool
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload["ok"] || payload["llmConfigured"] {
		t.Fatalf("unexpected health payload %v", payload)
	}
}

func TestBuildWithoutKeyReportsConfigurationError(t *testing.T) {
	quietLogs(t)
	app, err := Build(config.Config{Env: "dev", LocalStoreDir: t.TempDir()})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/text",
		strings.NewReader(`{"resume_text":"Go engineer","job_description":"Go developer"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "llm_not_configured") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestBuildLLMAppliesRetryConfig(t *testing.T) {
	client := buildLLM(config.Config{
		GeminiAPIKey:      "key",
		LLMModel:          "gemini-test",
		LLMMaxAttempts:    5,
		LLMRetryBaseDelay: 10 * time.Millisecond,
	})
	if !client.Configured() {
		t.Fatalf("expected configured client")
	}
	if client.Model() != "gemini-test" {
		t.Fatalf("unexpected model %q", client.Model())
	}
	if got := client.RetryPolicy(); got.MaxAttempts != 5 || got.BaseDelay != 10*time.Millisecond {
		t.Fatalf("unexpected retry policy %+v", got)
	}
}

func TestBuildStoreRequiresBucketForS3(t *testing.T) {
	quietLogs(t)
	if _, err := Build(config.Config{ObjectStoreType: "s3"}); err == nil {
		t.Fatalf("expected error for s3 without bucket")
	}
}
