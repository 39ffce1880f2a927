package invoicegen

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"
)

// SampleLayout is the layout written by gen-sample-invoice; every other catalogue
// entry belongs to the test suite.
const SampleLayout = "sample"

type Generator struct {
	Now    func() time.Time
	Rand   *rand.Rand
	Logger *slog.Logger
}

// NewGenerator uses the wall clock and a randomly seeded source.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		Now:    time.Now,
		Rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Logger: logger,
	}
}

// GenerateFile renders layout to path.
func (g *Generator) GenerateFile(layout Layout, path string) (ManifestEntry, error) {
	doc, entry, err := Build(layout, g.Now(), g.Rand)
	if err != nil {
		return ManifestEntry{}, err
	}
	f, err := os.Create(path)
	if err != nil {
		return ManifestEntry{}, err
	}
	if err := Render(doc, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return ManifestEntry{}, err
	}
	if err := f.Close(); err != nil {
		return ManifestEntry{}, err
	}
	entry.File = filepath.Base(path)
	g.Logger.Info("invoicegen.file.ok", "layout", layout.Name, "path", path, "number", entry.Number, "total", entry.Total)
	return entry, nil
}

// GenerateSample writes the sample invoice to path.
func (g *Generator) GenerateSample(path string) (ManifestEntry, error) {
	layout, err := Lookup(SampleLayout)
	if err != nil {
		return ManifestEntry{}, err
	}
	return g.GenerateFile(layout, path)
}

// GenerateSuite writes every non-sample layout into dir, plus a manifest describing
// the expected extraction of each file.
func (g *Generator) GenerateSuite(dir string) (Manifest, error) {
	layouts, err := Catalogue()
	if err != nil {
		return Manifest{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("create %s: %w", dir, err)
	}

	m := Manifest{GeneratedAt: g.Now().UTC().Format(time.RFC3339)}
	for _, l := range layouts {
		if l.Name == SampleLayout {
			continue
		}
		entry, err := g.GenerateFile(l, filepath.Join(dir, l.File))
		if err != nil {
			return m, fmt.Errorf("%s: %w", l.Name, err)
		}
		m.Invoices = append(m.Invoices, entry)
	}
	if err := WriteManifest(filepath.Join(dir, ManifestFile), m); err != nil {
		return m, err
	}
	return m, nil
}
