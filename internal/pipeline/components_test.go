package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

func testConfig(ollamaURL string) *common.Config {
	return &common.Config{
		OCR: common.OCRConfig{Engine: "tesseract", Tesseract: "tesseract-not-installed-here", Lang: "eng", DPI: 200},
		LLM: common.LLMConfig{BaseURL: ollamaURL, Model: "llama3.2", NumPredict: 10, Timeout: time.Second},
		Probe: common.ProbeConfig{Timeout: time.Second},
	}
}

func TestNewComponentsRejectsUnknownEngine(t *testing.T) {
	cfg := testConfig("http://localhost:11434")
	cfg.OCR.Engine = "abbyy"
	if _, err := NewComponents(cfg, nil); err == nil {
		t.Fatal("expected error for unknown OCR engine")
	}
}

func TestComponentsProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
	}))
	defer srv.Close()

	c, err := NewComponents(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("NewComponents: %v", err)
	}
	caps := c.Probe(context.Background())
	if caps.OCRAvailable {
		t.Error("missing tesseract binary should leave OCR unavailable")
	}
	if !caps.LLMAvailable || len(caps.Models) != 1 {
		t.Errorf("expected llm available with one model, got %+v", caps)
	}
	if p := c.Processor(caps); p.Caps != caps || p.OCR == nil || p.Parse == nil {
		t.Errorf("processor not wired: %+v", p)
	}
}
