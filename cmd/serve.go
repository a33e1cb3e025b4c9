package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"alumnilink/internal/app/ai"
	"alumnilink/internal/app/chat"
	"alumnilink/internal/app/db"
	"alumnilink/internal/app/directory"
	"alumnilink/internal/app/storage"
	"alumnilink/internal/app/store"
	"alumnilink/internal/handler"
	"alumnilink/internal/pkg/logx"
	"alumnilink/internal/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()

	backend, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	st := store.New(backend, store.WithFailureRecorder(collector))
	defer func() {
		if err := backend.Close(); err != nil {
			logx.Error(err, "Failed to close entity store")
		}
	}()

	dir := directory.NewService(st)
	dir.Seed(ctx)

	hub := chat.NewHub(collector)
	go hub.Run()

	gen, err := ai.New(ctx, cfg)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		logx.Warn("AI provider has no API key; AI assistance is disabled", "provider", cfg.AIProvider)
		gen = nil
	case err != nil:
		return fmt.Errorf("create AI generator: %w", err)
	default:
		logx.Info("AI generator ready", "generator", gen.Name())
	}

	deps := &handler.AppDeps{
		Config:    cfg,
		Store:     st,
		Directory: dir,
		Messaging: chat.NewService(chat.NewIndex(st), dir, hub),
		Hub:       hub,
		AI:        ai.NewService(gen, collector),
		Metrics:   collector,
	}

	if cfg.UploadsEnabled() {
		storageCfg := storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:     cfg.S3PublicBaseURL,
		}
		svc, err := storage.NewStorageService(ctx, storageCfg)
		if err != nil {
			return fmt.Errorf("create storage service: %w", err)
		}
		deps.Avatars = storage.NewAvatars(svc, storageCfg)
	} else {
		logx.Warn("S3 settings incomplete; avatar uploads are disabled")
	}

	limiters := handler.NewLimiters(cfg.AIRatePerSec, cfg.AIBurst)
	defer limiters.Close()

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(deps, limiters),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logx.Info(fmt.Sprintf("AlumniLink server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			hub.Shutdown()
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
		logx.Info("Received shutdown signal. Starting graceful shutdown...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
	return nil
}
