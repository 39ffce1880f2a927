package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

// runllm pushes one document through the full pipeline N times, to compare model
// output stability across runs.
func main() {
	if err := common.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stderr)

	if len(os.Args) < 2 {
		logger.Error("usage: runllm <invoice file> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 3
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read input", "path", path, "error", err)
		os.Exit(2)
	}

	components, err := pipeline.NewComponents(cfg, logger)
	if err != nil {
		logger.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}
	caps := components.Probe(context.Background())
	processor := components.Processor(caps)

	base := filepath.Base(path)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	failures := 0
	for i := 1; i <= times; i++ {
		runCtx, cancelRun := context.WithTimeout(context.Background(), 3*time.Minute)
		start := time.Now()
		logger.Info("pipeline.run.start", "iter", i, "basename", base)

		resp, err := processor.Process(runCtx, pipeline.Document{Filename: base, Data: data, Received: start})
		cancelRun()

		if err != nil {
			failures++
			logger.Error("pipeline.run.error", "iter", i, "kind", common.KindOf(err).String(), "err", err)
			continue
		}
		logger.Info("pipeline.run.ok", "iter", i, "confidence", resp.Confidence, "elapsed_ms", time.Since(start).Milliseconds())
		if err := enc.Encode(resp); err != nil {
			logger.Error("encode response", "error", err)
		}
	}

	logger.Info("done", "file", base, "times", times, "failures", failures)
	if failures > 0 {
		os.Exit(1)
	}
}
