package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestRecoveryReturnsStandardError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "internal" {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
	if _, err := uuid.Parse(resp.Header().Get("X-Request-Id")); err != nil {
		t.Fatalf("expected generated uuid request id, got %q", resp.Header().Get("X-Request-Id"))
	}
	if buf.Len() == 0 {
		t.Fatalf("expected panic to be logged")
	}
}
