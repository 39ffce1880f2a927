package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-pdf/fpdf"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// fakeRunner emulates pdftoppm by touching the files it would have written.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	pages int // pages produced when rendering the whole document
	err   error
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	r.mu.Unlock()
	if r.err != nil {
		return nil, []byte("Syntax Error: broken\n"), r.err
	}
	prefix := args[len(args)-1]
	if containsArg(args, "-singlefile") {
		return nil, nil, os.WriteFile(prefix+".png", []byte("png"), 0o600)
	}
	for i := 1; i <= r.pages; i++ {
		// pdftoppm pads page numbers to the width of the page count
		name := fmt.Sprintf("%s-%0*d.png", prefix, len(fmt.Sprint(r.pages)), i)
		if err := os.WriteFile(name, []byte("png"), 0o600); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

// fakeEngine returns text derived from the image file name.
type fakeEngine struct {
	mu    sync.Mutex
	seen  []string
	text  func(path string) string
	err   error
	exist bool // whether the image existed when recognised
}

func (e *fakeEngine) Name() string                            { return "fake" }
func (e *fakeEngine) Version(context.Context) (string, error) { return "fake 1.0", nil }
func (e *fakeEngine) Recognize(_ context.Context, path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, path)
	if _, err := os.Stat(path); err == nil {
		e.exist = true
	}
	if e.err != nil {
		return "", e.err
	}
	if e.text != nil {
		return e.text(path), nil
	}
	return "text of " + strings.TrimSuffix(filepath.Base(path), ".png"), nil
}

func buildPDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, fmt.Sprintf("Page %d", i+1))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	return buf.Bytes()
}

func buildPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestExtractor(t *testing.T, engine Engine, runner Runner) (*Extractor, string) {
	t.Helper()
	dir := t.TempDir()
	return NewExtractor(Config{TempDir: dir}, engine, runner, nil), dir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestExtractBytesPDFPerPage(t *testing.T) {
	runner := &fakeRunner{}
	engine := &fakeEngine{}
	ex, dir := newTestExtractor(t, engine, runner)

	res, err := ex.ExtractBytes(context.Background(), buildPDF(t, 3), "Invoice.PDF")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	want := "\n--- Page 1 ---\ntext of page-1\n--- Page 2 ---\ntext of page-2\n--- Page 3 ---\ntext of page-3"
	if res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if res.Pages != 3 || res.SourceType != constants.PDF {
		t.Errorf("unexpected result %+v", res)
	}
	if len(runner.calls) != 3 {
		t.Fatalf("expected one pdftoppm call per page, got %d", len(runner.calls))
	}
	if got := strings.Join(runner.calls[1][:8], " "); got != "pdftoppm -f 2 -l 2 -r 200 -png" {
		t.Errorf("unexpected args: %q", got)
	}
	if !engine.exist {
		t.Error("engine should see rendered pages on disk")
	}
	assertEmptyDir(t, dir)
}

func TestExtractPDFFallsBackToWholeDocumentRender(t *testing.T) {
	runner := &fakeRunner{pages: 11}
	engine := &fakeEngine{}
	ex, dir := newTestExtractor(t, engine, runner)

	res, err := ex.ExtractBytes(context.Background(), []byte("not really a pdf"), "scan.pdf")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if res.Pages != 11 || len(runner.calls) != 1 {
		t.Fatalf("pages=%d calls=%d", res.Pages, len(runner.calls))
	}
	if !strings.HasPrefix(res.Text, "\n--- Page 1 ---\ntext of page-01\n--- Page 2 ---\ntext of page-02") {
		t.Errorf("pages out of order: %q", res.Text[:80])
	}
	if !strings.HasSuffix(res.Text, "--- Page 11 ---\ntext of page-11") {
		t.Errorf("unexpected tail: %q", res.Text)
	}
	assertEmptyDir(t, dir)
}

func TestExtractImage(t *testing.T) {
	engine := &fakeEngine{text: func(string) string { return "ACME Corp\nTotal 10.00\n" }}
	ex, dir := newTestExtractor(t, engine, &fakeRunner{})

	res, err := ex.ExtractBytes(context.Background(), buildPNG(t), "receipt.png")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if res.Text != "ACME Corp\nTotal 10.00\n" {
		t.Errorf("image text must not carry page markers: %q", res.Text)
	}
	if len(engine.seen) != 1 || res.Pages != 1 || res.SourceType != constants.IMAGE {
		t.Errorf("expected a single OCR call, got %v", engine.seen)
	}
	assertEmptyDir(t, dir)
}

func TestExtractImageEnhanced(t *testing.T) {
	engine := &fakeEngine{}
	dir := t.TempDir()
	ex := NewExtractor(Config{TempDir: dir, Enhance: true}, engine, &fakeRunner{}, nil)
	if _, err := ex.ExtractBytes(context.Background(), buildPNG(t), "receipt.jpg"); err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		engine   *fakeEngine
		runner   *fakeRunner
		kind     common.Kind
		contains string
	}{
		{
			name: "blank image text", data: buildPNG(t), filename: "a.png",
			engine: &fakeEngine{text: func(string) string { return " \n\t\f" }}, runner: &fakeRunner{},
			kind: common.KindNoText, contains: "No text found in document",
		},
		{
			name: "undecodable image", data: []byte("garbage"), filename: "a.jpg",
			engine: &fakeEngine{}, runner: &fakeRunner{},
			kind: common.KindOCR, contains: "OCR error: decode image",
		},
		{
			name: "engine failure", data: buildPNG(t), filename: "a.png",
			engine: &fakeEngine{err: errors.New("tesseract: exit status 1")}, runner: &fakeRunner{},
			kind: common.KindOCR, contains: "OCR error: tesseract",
		},
		{
			name: "renderer failure", data: buildPDF(t, 1), filename: "a.pdf",
			engine: &fakeEngine{}, runner: &fakeRunner{err: errors.New("exit status 1")},
			kind: common.KindOCR, contains: "pdftoppm: Syntax Error: broken",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, dir := newTestExtractor(t, tt.engine, tt.runner)
			_, err := ex.ExtractBytes(context.Background(), tt.data, tt.filename)
			if err == nil {
				t.Fatal("expected error")
			}
			if common.KindOf(err) != tt.kind {
				t.Errorf("kind = %v, want %v (%v)", common.KindOf(err), tt.kind, err)
			}
			var ae *common.AppError
			if !errors.As(err, &ae) || !strings.Contains(ae.Message, tt.contains) {
				t.Errorf("message %q does not contain %q", err, tt.contains)
			}
			assertEmptyDir(t, dir)
		})
	}
}

func TestTesseractEngineArgs(t *testing.T) {
	runner := &recordingRunner{out: []byte("tesseract 5.3.0\n leptonica-1.82.0\n")}
	e := NewTesseractEngine(EngineConfig{Lang: "deu", TessdataDir: "/td"}, runner, nil)

	v, err := e.Version(context.Background())
	if err != nil || v != "tesseract 5.3.0" {
		t.Fatalf("Version = %q, %v", v, err)
	}
	if _, err := e.Recognize(context.Background(), "/x/p.png"); err != nil {
		t.Fatal(err)
	}
	got := strings.Join(runner.last, " ")
	if got != "tesseract /x/p.png stdout -l deu --tessdata-dir /td" {
		t.Errorf("args = %q", got)
	}
}

func TestNewEngineUnknown(t *testing.T) {
	if _, err := NewEngine(EngineConfig{Name: "paddle"}, nil, nil); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

type recordingRunner struct {
	out  []byte
	last []string
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.last = append([]string{name}, args...)
	return r.out, nil, nil
}
