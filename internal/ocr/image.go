package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// extractImage decodes the upload, optionally enhances it, re-encodes it as PNG and runs OCR once.
func (e *Extractor) extractImage(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.IMAGE, Method: "image-ocr"}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return res, fmt.Errorf("decode image: %w", err)
	}
	if e.cfg.Enhance {
		img = imaging.Grayscale(img)
		img = imaging.AdjustContrast(img, 20)
		img = imaging.Sharpen(img, 1.0)
	}

	tmpDir, err := os.MkdirTemp(e.cfg.TempDir, "invoice-img-*")
	if err != nil {
		return res, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	normalized := filepath.Join(tmpDir, "image.png")
	if err := imaging.Save(img, normalized); err != nil {
		return res, fmt.Errorf("encode image: %w", err)
	}

	txt, err := e.engine.Recognize(ctx, normalized)
	if err != nil {
		return res, err
	}
	res.Text = txt
	res.Pages = 1
	return res, nil
}
