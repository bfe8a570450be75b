package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"boothscan/internal/config"
	"boothscan/internal/extractor"
	"boothscan/internal/handler"
	"boothscan/internal/intake"
	"boothscan/internal/port"
	"boothscan/internal/router"
	"boothscan/internal/service"
	s3storage "boothscan/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage (optional document archive)
	var archive port.ObjectStorage
	if cfg.S3.ArchiveEnabled {
		archive, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		log.Printf("Archiving submitted documents to s3://%s/archive", cfg.S3.Bucket)
	}

	// Initialize services
	client := extractor.NewClient(&cfg.Extractor)
	intakeOpts := intake.Options{
		MaxSizeBytes: cfg.Intake.MaxFileSizeBytes,
		AcceptedType: cfg.Intake.AcceptedType,
		SniffContent: cfg.Intake.SniffContent,
	}
	sessionSvc := service.NewSessionService(client, archive, service.SessionConfig{
		MaxSessions: cfg.Session.MaxSessions,
		MaxAge:      cfg.Session.MaxAge,
		Intake:      intakeOpts,
		Pipeline: service.PipelineConfig{
			Timeout:       cfg.Pipeline.Timeout(),
			ResetAfter:    cfg.Pipeline.ResetAfter(),
			ArchiveBucket: cfg.S3.Bucket,
			ArchivePrefix: "archive",
		},
	})

	// Start background workers
	janitor := service.NewSessionJanitor(sessionSvc, cfg.Session.CleanupInterval)
	go janitor.Start(ctx)

	// Initialize handlers
	sessionH := handler.NewSessionHandler(sessionSvc)
	fileH := handler.NewFileHandler(sessionSvc, intakeOpts.MaxSizeBytes)
	submissionH := handler.NewSubmissionHandler(sessionSvc)
	healthH := handler.NewHealthHandler(cfg.Extractor.Endpoint)

	// Setup router
	r := router.Setup(sessionH, fileH, submissionH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (extractor=%s)", cfg.Server.Port, cfg.Extractor.Endpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Printf("Server stopped")
	return nil
}
