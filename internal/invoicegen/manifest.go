package invoicegen

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ManifestFile is written next to the generated test suite.
const ManifestFile = "manifest.yaml"

// ManifestEntry records what a correct extraction of File should return. Money is kept
// as fixed two-decimal strings so the file diffs cleanly.
type ManifestEntry struct {
	File        string `yaml:"file"`
	Layout      string `yaml:"layout"`
	Description string `yaml:"description"`
	Vendor      string `yaml:"vendor"`
	Number      string `yaml:"number"`
	Date        string `yaml:"date"`
	DueDate     string `yaml:"due_date,omitempty"`
	Currency    string `yaml:"currency"`
	Subtotal    string `yaml:"subtotal"`
	Tax         string `yaml:"tax"`
	Total       string `yaml:"total"`
	LineItems   int    `yaml:"line_items"`
}

// TotalValue parses Total.
func (e ManifestEntry) TotalValue() (float64, bool) {
	v, err := strconv.ParseFloat(e.Total, 64)
	return v, err == nil
}

type Manifest struct {
	GeneratedAt string          `yaml:"generated_at"`
	Invoices    []ManifestEntry `yaml:"invoices"`
}

// ByFile indexes the entries by file name.
func (m Manifest) ByFile() map[string]ManifestEntry {
	out := make(map[string]ManifestEntry, len(m.Invoices))
	for _, e := range m.Invoices {
		out[e.File] = e
	}
	return out
}

func WriteManifest(path string, m Manifest) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}
