package common

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	OCR    OCRConfig
	LLM    LLMConfig
	Probe  ProbeConfig
	Log    LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string // empty disables the gRPC health endpoint
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// AuthConfig holds the shared API key.
type AuthConfig struct {
	APIKey string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine      string // "tesseract" | "gosseract"
	Tesseract   string
	Pdftoppm    string
	Lang        string
	TessdataDir string
	DPI         int
	Enhance     bool
}

// LLMConfig holds Ollama configuration
type LLMConfig struct {
	BaseURL     string
	Model       string
	Temperature float32
	NumPredict  int
	Timeout     time.Duration
}

// ProbeConfig holds startup availability probe configuration
type ProbeConfig struct {
	Timeout time.Duration
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// LoadDotEnv loads ./.env (or the given files) into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return WrapError(err, "load "+f)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
			GRPCAddr:        getEnv("GRPC_ADDR", ""),
			CORSOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", "dev-key-12345"),
		},
		OCR: OCRConfig{
			Engine:      getEnv("OCR_ENGINE", "tesseract"),
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			Pdftoppm:    getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Lang:        getEnv("TESSERACT_LANG", "eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			DPI:         getEnvAsInt("PDF_DPI", 200),
			Enhance:     getEnvAsBool("OCR_ENHANCE", false),
		},
		LLM: LLMConfig{
			BaseURL:     strings.TrimRight(getEnv("OLLAMA_URL", "http://localhost:11434"), "/"),
			Model:       getEnv("OLLAMA_MODEL", "llama3.2"),
			Temperature: getEnvAsFloat32("OLLAMA_TEMPERATURE", 0.1),
			NumPredict:  getEnvAsInt("OLLAMA_NUM_PREDICT", 2000),
			Timeout:     getEnvAsDuration("OLLAMA_TIMEOUT", 60*time.Second),
		},
		Probe: ProbeConfig{
			Timeout: getEnvAsDuration("PROBE_TIMEOUT", 2*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Field("API_KEY", c.Auth.APIKey, Required).
		Field("OLLAMA_URL", c.LLM.BaseURL, Required, AbsoluteURL).
		Field("OLLAMA_MODEL", c.LLM.Model, Required).
		Field("OLLAMA_TIMEOUT", c.LLM.Timeout, PositiveDuration).
		Field("OLLAMA_NUM_PREDICT", c.LLM.NumPredict, IntRange(1, 1<<20)).
		Field("PROBE_TIMEOUT", c.Probe.Timeout, PositiveDuration).
		Field("OCR_ENGINE", c.OCR.Engine, OneOf("tesseract", "gosseract")).
		Field("PDF_DPI", c.OCR.DPI, IntRange(50, 1200)).
		Field("LOG_FORMAT", c.Log.Format, OneOf("json", "text"))
	if v.HasErrors() {
		return NewAppError(KindValidation, "CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
