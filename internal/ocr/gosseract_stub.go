//go:build !gosseract

package ocr

import (
	"errors"
	"log/slog"
)

func newGosseractEngine(EngineConfig, *slog.Logger) (Engine, error) {
	return nil, errors.New("ocr engine gosseract requires building with -tags gosseract")
}
