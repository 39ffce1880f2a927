package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/server"
)

func main() {
	if err := common.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stdout)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if cfg.Auth.APIKey == "dev-key-12345" {
		logger.Warn("using the development API key; set API_KEY before exposing the service")
	}
	if common.ParseLevel(cfg.Log.Level) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := pipeline.NewComponents(cfg, logger)
	if err != nil {
		logger.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}

	// Probed once; a backend that comes up later needs a restart.
	caps := components.Probe(ctx)
	logger.Info("capabilities",
		"ocr_engine", components.Engine.Name(),
		"ocr_available", caps.OCRAvailable,
		"ollama_available", caps.LLMAvailable,
		"ollama_model", cfg.LLM.Model,
	)

	srv := server.New(server.Options{
		Config:    cfg.Server,
		APIKey:    cfg.Auth.APIKey,
		Model:     cfg.LLM.Model,
		Caps:      caps,
		Processor: components.Processor(caps),
		Logger:    logger,
	})

	logger.Info("invoice-extractor listening", "http_addr", cfg.Server.HTTPAddr, "grpc_addr", cfg.Server.GRPCAddr)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
