// Package main is the entry point for the reports backend.
// It reads activity records from the Firebase Realtime Database and serves them
// as spreadsheet exports over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sistemasreportes/reportes-backend/internal/archive"
	"github.com/sistemasreportes/reportes-backend/internal/clients/firebase"
	"github.com/sistemasreportes/reportes-backend/internal/config"
	exporthandlers "github.com/sistemasreportes/reportes-backend/internal/modules/export/handlers"
	"github.com/sistemasreportes/reportes-backend/internal/server"
	"github.com/sistemasreportes/reportes-backend/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting reports backend")

	// Process-wide store handle. The token source refreshes with this context,
	// so it is cancelled only after the server has drained.
	storeCtx, storeCancel := context.WithCancel(context.Background())
	defer storeCancel()

	store, err := firebase.NewClient(storeCtx, firebase.Config{
		DatabaseURL:     cfg.Firebase.DatabaseURL,
		CredentialsFile: cfg.Firebase.CredentialsFile,
		ActivitiesPath:  cfg.Firebase.ActivitiesPath,
		Timeout:         cfg.Firebase.Timeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase client")
	}
	log.Info().
		Str("database", cfg.Firebase.DatabaseURL).
		Str("path", cfg.Firebase.ActivitiesPath).
		Msg("Firebase client initialized")

	// Optional export archive; leave the interface nil when disabled
	var archiver exporthandlers.Archiver
	if cfg.Archive.Enabled() {
		s3Archiver, err := archive.NewS3Archiver(storeCtx, archive.Config{
			Bucket:          cfg.Archive.Bucket,
			Prefix:          cfg.Archive.Prefix,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize export archive")
		}
		archiver = s3Archiver
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("Export archive enabled")
	}

	srv := server.New(server.Config{
		Log:               log,
		Port:              cfg.Port,
		DevMode:           cfg.DevMode,
		ServiceName:       cfg.ServiceName,
		AllowedOrigins:    cfg.AllowedOrigins,
		RequestTimeout:    cfg.RequestTimeout,
		LegacyErrorStatus: cfg.LegacyErrorStatus,
		Store:             store,
		Archiver:          archiver,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// In-flight exports get up to 10 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
