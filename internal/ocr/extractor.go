package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI for PDFs, default 200
	Enhance  bool   // grayscale + contrast + sharpen images before OCR
	TempDir  string // scratch directory; "" -> os.TempDir()
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE
	Method     string // "pdf-ocr" | "image-ocr"
	Duration   time.Duration
}

// Extractor turns uploaded documents into plain text using an Engine.
type Extractor struct {
	cfg    Config
	engine Engine
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, engine Engine, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &Extractor{cfg: cfg, engine: engine, runner: runner, logger: logger}
}

// Engine exposes the underlying OCR engine for availability probing.
func (e *Extractor) Engine() Engine { return e.engine }

// ExtractBytes writes data to a scoped temporary file named after filename's extension,
// extracts its text and removes the file on every path.
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte, filename string) (ExtractionResult, error) {
	ext := filepath.Ext(filename)
	tmp, err := os.CreateTemp(e.cfg.TempDir, "invoice-*"+strings.ToLower(ext))
	if err != nil {
		return ExtractionResult{}, common.OCRError(fmt.Errorf("create temp file: %w", err))
	}
	path := tmp.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			e.logger.Warn("ocr.tempfile.remove_failed", "path", path, "error", rmErr)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ExtractionResult{}, common.OCRError(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return ExtractionResult{}, common.OCRError(fmt.Errorf("close temp file: %w", err))
	}
	return e.Extract(ctx, path)
}

// Extract picks a strategy based on file extension. Failures are returned as
// OCR errors; a document with no recognisable text yields a no-text error.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting ocr extraction", "path", path, "engine", e.engine.Name(), "ext", ext)

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	default:
		res, err = e.extractImage(ctx, path)
	}
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("ocr.extract.failed", "path", path, "source", res.SourceType, "error", err)
		return res, common.OCRError(err)
	}
	if strings.TrimSpace(res.Text) == "" {
		e.logger.Warn("ocr.extract.no_text", "path", path, "pages", res.Pages)
		return res, common.NoTextError()
	}
	e.logger.Info("ocr.extract.ok",
		"source", res.SourceType,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
