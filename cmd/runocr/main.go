package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

func main() {
	if err := common.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stderr)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <invoice.pdf|png|jpg>")
		os.Exit(2)
	}
	path := os.Args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read input", "path", path, "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	components, err := pipeline.NewComponents(cfg, logger)
	if err != nil {
		logger.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}

	res, err := components.Extractor.ExtractBytes(ctx, data, filepath.Base(path))
	if err != nil {
		logger.Error("text extraction failed", "kind", common.KindOf(err).String(), "error", err)
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	fmt.Println(res.Text)
}
