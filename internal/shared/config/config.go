package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultLLMModel       = "gemini-2.0-flash"
	defaultMaxUploadBytes = 10 << 20
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	LogLevel        string

	GeminiAPIKey      string
	LLMModel          string
	LLMBaseURL        string
	LLMTimeout        time.Duration
	LLMMaxAttempts    int
	LLMRetryBaseDelay time.Duration

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	MaxUploadBytes  int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		log.Printf("GEMINI_API_KEY is not set; LLM calls will fail")
	}

	return Config{
		Port:              getEnv("PORT", "5000"),
		Env:               env,
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		GeminiAPIKey:      apiKey,
		LLMModel:          getEnv("LLM_MODEL", defaultLLMModel),
		LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		LLMMaxAttempts:    getEnvInt("LLM_MAX_ATTEMPTS", 3),
		LLMRetryBaseDelay: time.Duration(getEnvInt("LLM_RETRY_BASE_DELAY_MS", 3000)) * time.Millisecond,
		ObjectStoreType:   normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./uploads"),
		AWSRegion:         getEnv("AWS_REGION", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", "uploads/"),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt returns def when the variable is unset, malformed or not positive.
func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
