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

	"audioscribe/internal/api"
	"audioscribe/internal/config"
	"audioscribe/internal/observability"
	"audioscribe/internal/storage"
	"audioscribe/internal/stt"
	"audioscribe/internal/transcribe"
	"audioscribe/internal/upload"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration (.env is optional)
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	// Set Gin mode (default to release mode)
	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	logger.Info().
		Str("port", cfg.Port).
		Str("source_language", cfg.SourceLanguage).
		Str("secondary_language", cfg.SecondaryLanguage).
		Int64("max_upload_bytes", cfg.MaxUploadBytes).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("audioscribe starting")

	// Clients are created on first use; missing credentials are reported per request.
	gcs := storage.NewGCS(cfg, logger)
	providers := stt.NewProviders(cfg, logger)

	uploads := upload.NewService(gcs, nil, upload.Options{
		MaxBytes:       cfg.MaxUploadBytes,
		MaxAttempts:    cfg.UploadMaxAttempts,
		InitialBackoff: cfg.UploadInitialBackoff(),
	}, logger)

	transcriber := transcribe.NewService(providers.Queued, providers.Direct, transcribe.Options{
		Languages: transcribe.Languages{
			Source:    cfg.SourceLanguage,
			Secondary: cfg.SecondaryLanguage,
		},
		Channels:       cfg.AudioChannelCount,
		DirectMaxBytes: cfg.MaxDirectUploadBytes,
	}, logger)

	router := api.NewRouter(api.NewHandler(uploads, transcriber), api.RouterOptions{
		MetricsEnabled:     cfg.MetricsEnabled,
		MaxMultipartMemory: 32 << 20,
	})
	if cfg.MetricsEnabled {
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// No write timeout: long recordings can take minutes to transcribe.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := providers.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close speech client")
	}
	if err := gcs.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close storage client")
	}

	logger.Info().Msg("Server exited gracefully")
}
