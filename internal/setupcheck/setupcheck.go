// Package setupcheck verifies the local toolchain the extractor depends on and
// prints a human-readable report.
package setupcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/ocr"
)

const rule = "============================================================"

type VersionChecker interface {
	Name() string
	Version(ctx context.Context) (string, error)
}

type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Result is the outcome of one named check.
type Result struct {
	Name     string
	OK       bool
	Critical bool
}

type Report struct {
	Results []Result
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return true
}

// ExitCode is 0 when every check passed, 1 otherwise.
func (r Report) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

type Checker struct {
	Out      io.Writer
	OCR      VersionChecker
	LLM      ModelLister
	Model    string // required model; empty accepts any llama model
	Runner   ocr.Runner
	Pdftoppm string
	Timeout  time.Duration
	// GoVersion defaults to runtime.Version().
	GoVersion string
}

func (c *Checker) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.Out, format, args...)
}

// Run executes every check in order, prints a summary and returns the report.
func (c *Checker) Run(ctx context.Context) Report {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	c.printf("%s\n🧪 Invoice Extraction API - Setup Verification\n%s\n", rule, rule)

	report := Report{Results: []Result{
		{Name: "Go", OK: c.checkGo(), Critical: true},
		{Name: "Tesseract", OK: c.checkOCR(ctx), Critical: true},
		{Name: "Ollama", OK: c.checkOllama(ctx), Critical: true},
		{Name: "Poppler", OK: c.checkPoppler(ctx)},
	}}

	c.printf("\n%s\n📊 Summary\n%s\n", rule, rule)
	for _, res := range report.Results {
		c.printf("%s %s\n", icon(res.OK), res.Name)
	}

	c.printf("\n%s\n", rule)
	if report.OK() {
		c.printf("🎉 All checks passed! You're ready to go!\n%s\n", rule)
		c.printf("\n📝 Next steps:\n")
		c.printf("   1. Make sure Ollama is running: ollama serve\n")
		c.printf("   2. Start the API: invoiced\n")
		c.printf("   3. Open: http://localhost:8000\n")
		c.printf("\n💡 Tip: First extraction takes 60-90 seconds (model loading)\n")
	} else {
		c.printf("⚠️  Some components need attention\n%s\n", rule)
		c.printf("\n📝 Fix the issues above and run this again\n")
		c.printf("\n💡 Quick fixes:\n")
		c.printf("   - Tesseract: https://github.com/UB-Mannheim/tesseract/wiki\n")
		c.printf("   - Ollama: https://ollama.ai\n")
	}
	c.printf("\n")
	return report
}

func icon(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func (c *Checker) checkGo() bool {
	c.printf("🔍 Checking Go...\n")
	v := c.GoVersion
	if v == "" {
		v = runtime.Version()
	}
	c.printf("✅ %s %s/%s - OK\n", v, runtime.GOOS, runtime.GOARCH)
	return true
}

func (c *Checker) checkOCR(ctx context.Context) bool {
	c.printf("\n🔍 Checking Tesseract OCR...\n")
	if c.OCR == nil {
		c.printf("❌ No OCR engine configured\n")
		return false
	}
	cctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	v, err := c.OCR.Version(cctx)
	switch {
	case err == nil:
		c.printf("✅ %s - OK\n", v)
		return true
	case ocr.IsNotInstalled(err):
		c.printf("❌ Tesseract not found!\n")
		c.printf("   Install from: https://github.com/UB-Mannheim/tesseract/wiki\n")
	default:
		c.printf("❌ Error checking %s: %v\n", c.OCR.Name(), err)
	}
	return false
}

func (c *Checker) checkOllama(ctx context.Context) bool {
	c.printf("\n🔍 Checking Ollama...\n")
	if c.LLM == nil {
		c.printf("❌ No LLM client configured\n")
		return false
	}
	cctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	models, err := c.LLM.ListModels(cctx)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			c.printf("❌ Ollama not running!\n")
			c.printf("   Start it with: ollama serve\n")
		} else {
			c.printf("❌ Error checking Ollama: %v\n", err)
		}
		return false
	}

	c.printf("✅ Ollama is running\n")
	list := "None"
	if len(models) > 0 {
		list = strings.Join(models, ", ")
	}
	c.printf("   Available models: %s\n", list)

	if name, ok := MatchModel(models, c.Model); ok {
		c.printf("✅ Model found: %s\n", name)
		return true
	}
	want := c.Model
	if want == "" {
		want = "llama3.2"
	}
	c.printf("⚠️  Model %s not found!\n", want)
	c.printf("   Run: ollama pull %s\n", want)
	return false
}

// MatchModel finds the first installed model satisfying want. Ollama reports tags
// ("llama3.2:latest"), so want matches by prefix; an empty want accepts any llama model.
func MatchModel(models []string, want string) (string, bool) {
	for _, m := range models {
		lm := strings.ToLower(m)
		if want == "" {
			if strings.Contains(lm, "llama") {
				return m, true
			}
			continue
		}
		lw := strings.ToLower(want)
		if lm == lw || strings.HasPrefix(lm, lw+":") {
			return m, true
		}
	}
	return "", false
}

// checkPoppler never fails the run; PDFs are the only input that needs it.
func (c *Checker) checkPoppler(ctx context.Context) bool {
	c.printf("\n🔍 Checking Poppler (PDF support)...\n")
	bin := c.Pdftoppm
	if bin == "" {
		bin = "pdftoppm"
	}
	if c.Runner == nil {
		c.Runner = ocr.ExecRunner{}
	}
	cctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	// pdftoppm -v prints its version to stderr.
	stdout, stderr, err := c.Runner.Run(cctx, bin, "-v")
	if err != nil {
		c.printf("⚠️  %s not available (optional, needed for PDFs): %v\n", bin, err)
		c.printf("   - Windows: Download from https://github.com/oschwartz10612/poppler-windows\n")
		c.printf("   - Mac: brew install poppler\n")
		c.printf("   - Linux: sudo apt install poppler-utils\n")
		return true
	}
	v := firstLine(string(stderr))
	if v == "" {
		v = firstLine(string(stdout))
	}
	c.printf("✅ %s - OK\n", v)
	return true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
