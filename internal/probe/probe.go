// Package probe checks once, at startup, whether the OCR engine and the LLM server are usable.
package probe

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// VersionChecker is satisfied by ocr.Engine.
type VersionChecker interface {
	Name() string
	Version(ctx context.Context) (string, error)
}

// ModelLister is satisfied by the Ollama client.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Capabilities records which backends were reachable when the process started.
// It is built once and passed to consumers by pointer; it is never refreshed.
type Capabilities struct {
	OCRAvailable bool
	OCRVersion   string
	LLMAvailable bool
	Models       []string
	CheckedAt    time.Time
}

// Run probes both backends concurrently, each bounded by timeout. Failures only
// flip the corresponding flag and log an install hint.
func Run(ctx context.Context, ocr VersionChecker, llm ModelLister, timeout time.Duration, logger *slog.Logger) *Capabilities {
	if logger == nil {
		logger = slog.Default()
	}
	caps := &Capabilities{CheckedAt: time.Now().UTC()}

	var wg sync.WaitGroup
	if ocr != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			v, err := ocr.Version(pctx)
			if err != nil {
				logger.Warn("probe.ocr.unavailable",
					"engine", ocr.Name(),
					"error", err,
					"hint", "Install Tesseract: https://github.com/UB-Mannheim/tesseract/wiki",
				)
				return
			}
			caps.OCRAvailable = true
			caps.OCRVersion = v
			logger.Info("probe.ocr.ok", "engine", ocr.Name(), "version", v)
		}()
	}
	if llm != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			models, err := llm.ListModels(pctx)
			if err != nil {
				logger.Warn("probe.llm.unavailable",
					"error", err,
					"hint", "Install from https://ollama.ai, run `ollama pull llama3.2` then `ollama serve`",
				)
				return
			}
			caps.LLMAvailable = true
			caps.Models = models
			logger.Info("probe.llm.ok", "models", len(models))
		}()
	}
	wg.Wait()
	return caps
}
