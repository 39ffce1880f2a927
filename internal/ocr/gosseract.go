//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine runs libtesseract in-process through cgo.
type GosseractEngine struct {
	cfg    EngineConfig
	logger *slog.Logger
}

func newGosseractEngine(cfg EngineConfig, logger *slog.Logger) (Engine, error) {
	return &GosseractEngine{cfg: cfg, logger: logger}, nil
}

func (e *GosseractEngine) Name() string { return "gosseract" }

func (e *GosseractEngine) Version(_ context.Context) (string, error) {
	return "tesseract " + gosseract.Version(), nil
}

func (e *GosseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := gosseract.NewClient()
	defer c.Close()

	if e.cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(e.cfg.Lang); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
