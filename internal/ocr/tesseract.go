package ocr

import (
	"context"
	"log/slog"
	"strings"
)

// TesseractEngine shells out to the tesseract CLI.
type TesseractEngine struct {
	cfg    EngineConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg EngineConfig, runner Runner, logger *slog.Logger) *TesseractEngine {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractEngine{cfg: cfg, runner: runner, logger: logger}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Version runs `tesseract --version` and returns its first line.
func (e *TesseractEngine) Version(ctx context.Context) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Binary, "--version")
	if err != nil {
		return "", commandError("tesseract --version", err, errb)
	}
	// older builds print the banner on stderr
	text := string(out)
	if strings.TrimSpace(text) == "" {
		text = string(errb)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line), nil
}

func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Binary, args...)
	if err != nil {
		return "", commandError("tesseract", err, errb)
	}
	return string(out), nil
}
