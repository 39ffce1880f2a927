package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/ocr"
	"github.com/joseph-ayodele/invoice-extractor/internal/probe"
)

// TextExtractor is satisfied by *ocr.Extractor.
type TextExtractor interface {
	ExtractBytes(ctx context.Context, data []byte, filename string) (ocr.ExtractionResult, error)
}

// FieldParser is satisfied by *llm.Parser.
type FieldParser interface {
	ParseInvoice(ctx context.Context, ocrText string) (entity.InvoiceData, []byte, error)
}

// Document is one uploaded file.
type Document struct {
	Filename string
	Data     []byte
	Received time.Time // start of the processing clock; zero means "now"
}

// Processor coordinates OCR (text extract) then LLM parse (fields).
type Processor struct {
	Logger *slog.Logger
	OCR    TextExtractor
	Parse  FieldParser
	Caps   *probe.Capabilities
}

func NewProcessor(logger *slog.Logger, ocr TextExtractor, parse FieldParser, caps *probe.Capabilities) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if caps == nil {
		caps = &probe.Capabilities{}
	}
	return &Processor{Logger: logger, OCR: ocr, Parse: parse, Caps: caps}
}

// Process runs OCR then field parsing for one document and assembles the response.
// Every returned error is a *common.AppError.
func (p *Processor) Process(ctx context.Context, doc Document) (entity.ExtractionResponse, error) {
	start := doc.Received
	if start.IsZero() {
		start = time.Now()
	}
	logger := common.LoggerFromContext(ctx, p.Logger)

	// 1) OCR stage
	if !p.Caps.OCRAvailable {
		return entity.ExtractionResponse{}, common.UnavailableError("Tesseract OCR not installed", nil)
	}
	ocrRes, err := p.OCR.ExtractBytes(ctx, doc.Data, doc.Filename)
	if err != nil {
		logger.Error("processor.ocr.failed", "filename", doc.Filename, "err", err)
		return entity.ExtractionResponse{}, asAppError(err)
	}
	logger.Info("processor.ocr.ok",
		"filename", doc.Filename,
		"method", ocrRes.Method,
		"pages", ocrRes.Pages,
		"chars", len(ocrRes.Text),
	)

	// 2) LLM parse stage
	if !p.Caps.LLMAvailable {
		return entity.ExtractionResponse{}, common.UnavailableError("Ollama not running. Start with: ollama serve", nil)
	}
	data, _, err := p.Parse.ParseInvoice(ctx, ocrRes.Text)
	if err != nil {
		logger.Error("processor.parse.failed", "filename", doc.Filename, "err", err)
		return entity.ExtractionResponse{}, asAppError(err)
	}

	confidence := Score(data)
	preview := Preview(ocrRes.Text, constants.PreviewLength)
	elapsed := time.Since(start).Milliseconds()
	logger.Info("processor.parse.ok",
		"filename", doc.Filename,
		"confidence", confidence,
		"elapsed_ms", elapsed,
	)

	return entity.ExtractionResponse{
		Status:           constants.StatusSuccess,
		Confidence:       confidence,
		Data:             data,
		ProcessingTimeMs: elapsed,
		OCRTextPreview:   &preview,
	}, nil
}

func asAppError(err error) error {
	var ae *common.AppError
	if errors.As(err, &ae) {
		return err
	}
	return common.InternalErrorf(err, "Processing error: %v", err)
}
