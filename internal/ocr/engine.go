package ocr

import (
	"context"
	"fmt"
	"log/slog"
)

// Engine recognises text in a single raster image on disk.
type Engine interface {
	Name() string
	// Version returns a human readable version line; an error means the engine is unusable.
	Version(ctx context.Context) (string, error)
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// EngineConfig selects and configures an Engine.
type EngineConfig struct {
	Name        string // "tesseract" (default) | "gosseract"
	Binary      string
	Lang        string
	TessdataDir string
}

// NewEngine builds the configured engine. The runner is only used by the CLI engine.
func NewEngine(cfg EngineConfig, runner Runner, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	switch cfg.Name {
	case "", "tesseract":
		return NewTesseractEngine(cfg, runner, logger), nil
	case "gosseract":
		return newGosseractEngine(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Name)
	}
}
