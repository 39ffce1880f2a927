package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const (
	msgOllamaDown    = "Ollama not running. Start with: ollama serve"
	msgOllamaTimeout = "Ollama timeout - try again"
)

// OllamaConfig for the Ollama client.
type OllamaConfig struct {
	BaseURL     string        // default http://localhost:11434
	Model       string        // default llama3.2
	Temperature float32       // sent as-is; config defaults it to 0.1
	NumPredict  int           // default 2000
	Timeout     time.Duration // whole generate call, default 60s
}

// OllamaClient talks to a local Ollama server over its HTTP API.
type OllamaClient struct {
	cfg    OllamaConfig
	http   *http.Client
	logger *slog.Logger
}

func NewOllamaClient(cfg OllamaConfig, httpClient *http.Client, logger *slog.Logger) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if cfg.NumPredict <= 0 {
		cfg.NumPredict = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if httpClient == nil {
		// deadlines come from the request context
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OllamaClient{cfg: cfg, http: httpClient, logger: logger}
}

func (c *OllamaClient) Model() string { return c.cfg.Model }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels calls GET /api/tags. Any non-200 answer is an error.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	raw, _, err := SendJSON(ctx, c.http, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil, c.logger)
	if err != nil {
		return nil, c.classify(err)
	}
	var tags tagsResponse
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, common.LLMError("LLM error: decode tags: "+err.Error(), err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Generate runs one non-streaming completion under the configured timeout and
// returns the raw "response" text. Nothing is retried.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	c.logger.Info("llm.generate.start",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"num_predict", c.cfg.NumPredict,
		"prompt_len", len(prompt),
	)

	body := generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.cfg.Temperature,
			NumPredict:  c.cfg.NumPredict,
		},
	}
	raw, _, err := SendJSON(ctx, c.http, http.MethodPost, c.cfg.BaseURL+"/api/generate", body, c.logger)
	if err != nil {
		cerr := c.classify(err)
		c.logger.Error("llm.generate.http_error",
			"kind", common.KindOf(cerr).String(),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", cerr
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Error("llm.generate.decode_error", "error", err, "raw_bytes", len(raw))
		return "", common.ParseError(err)
	}
	c.logger.Info("llm.generate.ok",
		"model", c.cfg.Model,
		"response_len", len(out.Response),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out.Response, nil
}

// classify maps transport failures onto the application error taxonomy.
func (c *OllamaClient) classify(err error) error {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return common.LLMError("Ollama error: "+se.Body, err)
	case isTimeout(err):
		return common.TimeoutError(msgOllamaTimeout, err)
	case isConnRefused(err):
		return common.UnavailableError(msgOllamaDown, err)
	default:
		return common.LLMError(fmt.Sprintf("LLM error: %v", err), err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe) && oe.Op == "dial"
}
