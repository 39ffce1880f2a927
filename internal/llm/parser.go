package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Generator produces a raw completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Parser turns OCR text into InvoiceData by prompting a Generator.
type Parser struct {
	gen    Generator
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewParser(gen Generator, logger *slog.Logger) (*Parser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := CompileSchema(BuildInvoiceJSONSchema())
	if err != nil {
		return nil, err
	}
	return &Parser{gen: gen, schema: schema, logger: logger}, nil
}

// ParseInvoice prompts the model once and decodes its reply. The reply is validated against
// the invoice schema as-is; only when that fails is it sanitized and validated again. It also
// returns the JSON document that was mapped onto InvoiceData.
func (p *Parser) ParseInvoice(ctx context.Context, ocrText string) (entity.InvoiceData, []byte, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, p.logger)

	reply, err := p.gen.Generate(ctx, BuildExtractionPrompt(ocrText))
	if err != nil {
		return entity.InvoiceData{}, nil, err
	}

	cleaned := StripCodeFence(reply)
	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		logger.Error("llm.extract.decode_error", "error", err, "reply_len", len(reply))
		return entity.InvoiceData{}, []byte(cleaned), common.ParseError(err)
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		err := fmt.Errorf("expected a JSON object, got %T", decoded)
		logger.Error("llm.extract.decode_error", "error", err)
		return entity.InvoiceData{}, []byte(cleaned), common.ParseError(err)
	}

	_, hasCurrency := m["currency"]
	if err := p.schema.Validate(any(m)); err != nil {
		changed := NormalizeInvoiceJSON(m)
		if vErr := p.schema.Validate(any(m)); vErr != nil {
			logger.Error("llm.extract.schema_validation_failed",
				"error", vErr, "content", cleaned,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return entity.InvoiceData{}, []byte(cleaned), common.ParseError(fmt.Errorf("json does not match schema: %w", vErr))
		}
		logger.Warn("llm.extract.lenient_sanitize_applied",
			"changed", changed,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	} else if changed := NormalizeInvoiceJSON(m); len(changed) > 0 {
		logger.Debug("llm.extract.null_strings", "changed", changed)
	}

	normalized, err := json.Marshal(m)
	if err != nil {
		return entity.InvoiceData{}, nil, common.ParseError(err)
	}
	var out entity.InvoiceData
	if err := json.Unmarshal(normalized, &out); err != nil {
		return entity.InvoiceData{}, normalized, common.ParseError(err)
	}
	if !hasCurrency {
		out.Currency = entity.Ptr(constants.DefaultCurrency)
	}
	if out.LineItems == nil {
		out.LineItems = []entity.LineItem{}
	}

	logger.Info("llm.extract.ok",
		"vendor", deref(out.VendorName),
		"invoice_number", deref(out.InvoiceNumber),
		"line_items", len(out.LineItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, normalized, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
