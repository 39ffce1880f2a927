package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"API_KEY", "OLLAMA_URL", "OLLAMA_MODEL", "OLLAMA_TIMEOUT", "HTTP_ADDR", "PDF_DPI"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()

	if cfg.Auth.APIKey != "dev-key-12345" {
		t.Errorf("APIKey = %q", cfg.Auth.APIKey)
	}
	if cfg.LLM.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Model != "llama3.2" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.NumPredict != 2000 {
		t.Errorf("NumPredict = %d", cfg.LLM.NumPredict)
	}
	if cfg.Probe.Timeout != 2*time.Second {
		t.Errorf("Probe.Timeout = %v", cfg.Probe.Timeout)
	}
	if cfg.Server.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.OCR.DPI != 200 {
		t.Errorf("DPI = %d", cfg.OCR.DPI)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("OLLAMA_URL", "http://ollama:11434/")
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("OLLAMA_TIMEOUT", "5s")
	t.Setenv("OCR_ENHANCE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg := LoadConfig()
	if cfg.Auth.APIKey != "secret" || cfg.LLM.Model != "mistral" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LLM.BaseURL != "http://ollama:11434" {
		t.Errorf("trailing slash not trimmed: %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.LLM.Timeout)
	}
	if !cfg.OCR.Enhance {
		t.Error("expected Enhance")
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := LoadConfig()
	cfg.LLM.BaseURL = "localhost:11434"
	cfg.OCR.Engine = "paddle"
	cfg.LLM.Timeout = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindValidation {
		t.Errorf("kind = %v", KindOf(err))
	}
	for _, field := range []string{"OLLAMA_URL", "OCR_ENGINE", "OLLAMA_TIMEOUT"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("INVOICE_DOTENV_PROBE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INVOICE_DOTENV_PROBE", "")
	os.Unsetenv("INVOICE_DOTENV_PROBE")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("INVOICE_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("got %q", got)
	}
}
