package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ml-prediction-service/internal/adapters/primary/http/handlers"
	"ml-prediction-service/internal/adapters/primary/http/middleware"
	"ml-prediction-service/internal/adapters/secondary/filesystem"
	"ml-prediction-service/internal/adapters/secondary/native"
	"ml-prediction-service/internal/adapters/secondary/onnx"
	"ml-prediction-service/internal/adapters/secondary/s3"
	"ml-prediction-service/internal/config"
	"ml-prediction-service/internal/core/domain"
	output "ml-prediction-service/internal/core/ports/output"
	"ml-prediction-service/internal/core/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// ============================================================================
	// Model Loading (single-shot, fatal on any failure)
	// ============================================================================

	store, err := filesystem.New(cfg.Models.Dir, cfg.Models.Extension)
	if err != nil {
		log.Fatalf("resolve models dir: %v", err)
	}
	log.WithField("models_dir", store.BaseDir()).Info("loading models")

	// Artifact Fetcher (Optional - based on config)
	var fetcher output.ArtifactFetcher
	if cfg.Artifacts.Enabled() {
		f, err := s3.NewFetcher(context.Background(), cfg.Artifacts)
		if err != nil {
			log.Fatalf("create s3 artifact fetcher: %v", err)
		}
		fetcher = f
		log.WithField("bucket", cfg.Artifacts.Bucket).Info("S3 artifact download enabled")
	} else {
		log.Info("S3 artifact download disabled")
	}

	onnxLoader := onnx.NewLoader(cfg.ONNX.LibraryPath)
	defer func() {
		if err := onnxLoader.Close(); err != nil {
			log.WithError(err).Warn("release onnx environment")
		}
	}()

	loaderSvc := services.NewModelLoaderService(store, fetcher, native.NewLoader(), onnxLoader)

	if err := loaderSvc.Fetch(context.Background(), domain.DefaultModels); err != nil {
		log.Fatalf("fetch model artifacts: %v", err)
	}

	models := loaderSvc.Load(domain.DefaultModels)
	if err := models.Err(); err != nil {
		// Each failure was already logged with its path and existence check.
		log.Fatalf("models failed to load, refusing to start: %v", err)
	}
	defer func() {
		if err := models.Close(); err != nil {
			log.WithError(err).Warn("release models")
		}
	}()

	predictionSvc, err := services.NewPredictionService(models)
	if err != nil {
		log.Fatalf("inconsistent models: %v", err)
	}

	// Primary Adapter (HTTP Handlers)
	frontendPath := cfg.Frontend.Path
	if frontendPath != "" {
		if frontendPath, err = filesystem.ResolvePath(frontendPath); err != nil {
			log.Fatalf("resolve frontend path: %v", err)
		}
	}
	h := handlers.New(predictionSvc, frontendPath)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), middleware.Metrics(), middleware.CORS(cfg.CORS), gin.Recovery())
	h.RegisterRoutes(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.WithField("feature_count", predictionSvc.FeatureCount()).Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
		return
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
