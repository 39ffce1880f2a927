package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/setupcheck"
)

func main() {
	if err := common.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()
	// The report goes to stdout; keep diagnostics out of it unless asked for.
	cfg.Log.Format = "text"
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Log.Level = "error"
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	components, err := pipeline.NewComponents(cfg, logger)
	if err != nil {
		logger.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}

	checker := &setupcheck.Checker{
		Out:      os.Stdout,
		OCR:      components.Engine,
		LLM:      components.Ollama,
		Model:    os.Getenv("OLLAMA_MODEL"),
		Runner:   components.Runner,
		Pdftoppm: cfg.OCR.Pdftoppm,
		Timeout:  5 * time.Second,
	}
	os.Exit(checker.Run(ctx).ExitCode())
}
