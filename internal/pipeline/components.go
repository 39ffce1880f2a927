package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
	"github.com/joseph-ayodele/invoice-extractor/internal/ocr"
	"github.com/joseph-ayodele/invoice-extractor/internal/probe"
)

// Components is the OCR + LLM stack every binary wires the same way.
type Components struct {
	Engine    ocr.Engine
	Extractor *ocr.Extractor
	Ollama    *llm.OllamaClient
	Parser    *llm.Parser
	Runner    ocr.Runner

	cfg    *common.Config
	logger *slog.Logger
}

func NewComponents(cfg *common.Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	runner := ocr.ExecRunner{Logger: logger}

	engine, err := ocr.NewEngine(ocr.EngineConfig{
		Name:        cfg.OCR.Engine,
		Binary:      cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
	}, runner, logger)
	if err != nil {
		return nil, err
	}
	extractor := ocr.NewExtractor(ocr.Config{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.OCR.DPI,
		Enhance:  cfg.OCR.Enhance,
	}, engine, runner, logger)

	ollama := llm.NewOllamaClient(llm.OllamaConfig{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		NumPredict:  cfg.LLM.NumPredict,
		Timeout:     cfg.LLM.Timeout,
	}, nil, logger)
	parser, err := llm.NewParser(ollama, logger)
	if err != nil {
		return nil, err
	}

	return &Components{
		Engine:    engine,
		Extractor: extractor,
		Ollama:    ollama,
		Parser:    parser,
		Runner:    runner,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Probe checks both backends once.
func (c *Components) Probe(ctx context.Context) *probe.Capabilities {
	return probe.Run(ctx, c.Engine, c.Ollama, c.cfg.Probe.Timeout, c.logger)
}

// Processor returns a pipeline gated by caps.
func (c *Components) Processor(caps *probe.Capabilities) *Processor {
	return NewProcessor(c.logger, c.Extractor, c.Parser, caps)
}
