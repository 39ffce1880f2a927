package llm

import (
	"strings"
	"testing"
)

func TestBuildExtractionPrompt(t *testing.T) {
	text := "ACME Corporation\nTotal: $20,072.50"
	p := BuildExtractionPrompt(text)

	if !strings.HasPrefix(p, "You are an expert at extracting structured data from invoices and receipts.") {
		t.Errorf("unexpected prefix: %q", p[:60])
	}
	if !strings.HasSuffix(p, "Invoice/Receipt Text:\n"+text+"\n\nJSON:") {
		t.Errorf("OCR text must be embedded verbatim before the JSON: cue")
	}
	for _, want := range []string{
		`"vendor_name": "company name or null"`,
		`"currency": "currency code (USD, EUR, etc.) or USD"`,
		`2. Use null for missing fields (not "null" string)`,
		"6. Do not add markdown code blocks or any other text",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
