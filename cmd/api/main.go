package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-matcher/internal/bootstrap"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/server"
	"resume-matcher/internal/shared/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	telemetry.SetLevel(cfg.LogLevel)

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		telemetry.Info("server.start", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	telemetry.Info("server.shutdown", map[string]any{"addr": srv.Addr})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
