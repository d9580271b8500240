package bootstrap

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/assist"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/llm/gemini"
	"resume-matcher/internal/services/health"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/server"
	"resume-matcher/internal/shared/storage/object"
	localstore "resume-matcher/internal/shared/storage/object/local"
	s3store "resume-matcher/internal/shared/storage/object/s3"
	"resume-matcher/internal/shared/telemetry"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	Store           object.ObjectStore
	LLM             *gemini.Client
	AnalysesService *analyses.Service
	AssistService   *assist.Service
	AnalysisHandler *analyses.Handler
	AssistHandler   *assist.Handler
	Health          *health.Service
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := buildLLM(cfg)
	if !client.Configured() {
		telemetry.Warn("llm.not_configured", map[string]any{"model": client.Model()})
	}

	app := &App{
		Config: cfg,
		Store:  store,
		LLM:    client,
		Health: health.NewService(client),
	}
	app.AnalysesService = &analyses.Service{
		LLM:       client,
		Store:     store,
		Extractor: extract.Extractor{},
	}
	app.AssistService = &assist.Service{LLM: client}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService, cfg.MaxUploadBytes)
	app.AssistHandler = assist.NewHandler(app.AssistService)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		AssistHandler:   app.AssistHandler,
		Health:          app.Health,
	})

	telemetry.Info("app.built", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"llm_model":    client.Model(),
	})
	return app, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(cfg config.Config) *gemini.Client {
	policy := llm.DefaultRetryPolicy()
	if cfg.LLMMaxAttempts > 0 {
		policy.MaxAttempts = cfg.LLMMaxAttempts
	}
	if cfg.LLMRetryBaseDelay > 0 {
		policy.BaseDelay = cfg.LLMRetryBaseDelay
	}
	return gemini.NewClient(gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.LLMModel,
		BaseURL: cfg.LLMBaseURL,
		Timeout: cfg.LLMTimeout,
		Retry:   policy,
	})
}
