package llm

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

type stubGenerator struct {
	reply  string
	err    error
	prompt string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func newTestParser(t *testing.T, gen Generator) *Parser {
	t.Helper()
	p, err := NewParser(gen, nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p
}

func TestParseInvoiceFencedReply(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n" + `{"vendor_name": "ACME Corporation", "total": 20072.5}` + "\n```"}
	p := newTestParser(t, gen)

	data, raw, err := p.ParseInvoice(context.Background(), "ocr text here")
	if err != nil {
		t.Fatalf("ParseInvoice: %v", err)
	}
	if !strings.Contains(gen.prompt, "ocr text here") {
		t.Error("prompt should embed OCR text")
	}
	if data.VendorName == nil || *data.VendorName != "ACME Corporation" {
		t.Errorf("vendor = %v", data.VendorName)
	}
	if data.Total == nil || *data.Total != 20072.5 {
		t.Errorf("total = %v", data.Total)
	}
	if len(raw) == 0 {
		t.Error("expected normalized JSON")
	}
}

func TestParseInvoiceRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  entity.InvoiceData
	}{
		{
			name: "every field provided",
			reply: `{
				"vendor_name": "  ACME Corporation ",
				"vendor_address": "123 Business St, Suite 100",
				"vendor_phone": "",
				"invoice_number": "INV-2024-1234",
				"invoice_date": "2024-03-01",
				"due_date": "2024-03-31",
				"subtotal": 18500,
				"tax": 1572.5,
				"total": 20072.5,
				"currency": "USD",
				"line_items": [
					{"description": "Consulting", "quantity": 40, "unit_price": 150, "total": 6000},
					{"description": "License", "quantity": 1, "unit_price": 12500, "total": 12500}
				]
			}`,
			want: entity.InvoiceData{
				VendorName:    strPtr("  ACME Corporation "),
				VendorAddress: strPtr("123 Business St, Suite 100"),
				VendorPhone:   strPtr(""),
				InvoiceNumber: strPtr("INV-2024-1234"),
				InvoiceDate:   strPtr("2024-03-01"),
				DueDate:       strPtr("2024-03-31"),
				Subtotal:      floatPtr(18500),
				Tax:           floatPtr(1572.5),
				Total:         floatPtr(20072.5),
				Currency:      strPtr("USD"),
				LineItems: []entity.LineItem{
					{Description: "Consulting", Quantity: floatPtr(40), UnitPrice: floatPtr(150), Total: floatPtr(6000)},
					{Description: "License", Quantity: floatPtr(1), UnitPrice: floatPtr(12500), Total: floatPtr(12500)},
				},
			},
		},
		{
			name: "omitted fields stay null",
			reply: `{
				"vendor_name": "Corner Store",
				"total": 281.85,
				"currency": "EUR",
				"line_items": [{"description": "Coffee"}]
			}`,
			want: entity.InvoiceData{
				VendorName: strPtr("Corner Store"),
				Total:      floatPtr(281.85),
				Currency:   strPtr("EUR"),
				LineItems:  []entity.LineItem{{Description: "Coffee"}},
			},
		},
		{
			name:  "explicit nulls",
			reply: `{"vendor_name": null, "subtotal": null, "tax": null, "total": 10, "currency": null, "line_items": []}`,
			want:  entity.InvoiceData{Total: floatPtr(10), LineItems: []entity.LineItem{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(t, &stubGenerator{reply: tt.reply})
			got, _, err := p.ParseInvoice(context.Background(), "x")
			if err != nil {
				t.Fatalf("ParseInvoice: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				gb, _ := json.Marshal(got)
				wb, _ := json.Marshal(tt.want)
				t.Errorf("got  %s\nwant %s", gb, wb)
			}
		})
	}
}

func TestParseInvoiceLenientSanitize(t *testing.T) {
	reply := `{"vendor_phone": "null", "invoice_number": 42, "total": "$1,234.50", "tax": "12,5", "notes": "paid"}`
	p := newTestParser(t, &stubGenerator{reply: reply})
	data, raw, err := p.ParseInvoice(context.Background(), "x")
	if err != nil {
		t.Fatalf("ParseInvoice: %v", err)
	}
	if data.VendorPhone != nil {
		t.Errorf("vendor_phone = %q, want nil", *data.VendorPhone)
	}
	if data.InvoiceNumber == nil || *data.InvoiceNumber != "42" {
		t.Errorf("invoice_number = %v", data.InvoiceNumber)
	}
	if data.Total == nil || *data.Total != 1234.5 {
		t.Errorf("total = %v", data.Total)
	}
	if data.Tax == nil || *data.Tax != 12.5 {
		t.Errorf("tax = %v", data.Tax)
	}
	if strings.Contains(string(raw), "notes") {
		t.Errorf("unknown key survived: %s", raw)
	}
}

func TestParseInvoiceRejectsWrongTypes(t *testing.T) {
	replies := []string{
		`{"total": "abc", "vendor_name": true}`,
		`{"total": "abc", "vendor_name": true, "tax": [1], "line_items": [{"description": 5, "quantity": "x"}, 7, null], "foo": 1}`,
		`{"line_items": "nope", "subtotal": {"a": 1}, "currency": false}`,
		`{"vendor_name": "A", "line_items": ["Support"]}`,
	}
	for _, reply := range replies {
		p := newTestParser(t, &stubGenerator{reply: reply})
		_, _, err := p.ParseInvoice(context.Background(), "x")
		if got := common.KindOf(err); got != common.KindParse {
			t.Errorf("reply %s: kind = %v (err %v), want KindParse", reply, got, err)
		}
	}
}

func TestParseInvoiceCurrencyDefaulting(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  *string
	}{
		{"absent defaults to USD", `{"vendor_name": "A"}`, strPtr("USD")},
		{"explicit null stays null", `{"vendor_name": "A", "currency": null}`, nil},
		{"explicit value kept", `{"currency": "EUR"}`, strPtr("EUR")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(t, &stubGenerator{reply: tt.reply})
			data, _, err := p.ParseInvoice(context.Background(), "x")
			if err != nil {
				t.Fatal(err)
			}
			switch {
			case tt.want == nil && data.Currency != nil:
				t.Errorf("currency = %q, want nil", *data.Currency)
			case tt.want != nil && (data.Currency == nil || *data.Currency != *tt.want):
				t.Errorf("currency = %v, want %q", data.Currency, *tt.want)
			}
			if data.LineItems == nil {
				t.Error("line items should default to an empty slice")
			}
		})
	}
}

func TestParseInvoiceErrors(t *testing.T) {
	timeout := common.TimeoutError("Ollama timeout - try again", context.DeadlineExceeded)
	tests := []struct {
		name   string
		gen    *stubGenerator
		kind   common.Kind
		prefix string
	}{
		{"not json", &stubGenerator{reply: "Sure! Here is the data."}, common.KindParse, "Failed to parse LLM response: "},
		{"truncated json", &stubGenerator{reply: `{"vendor_name": "A"`}, common.KindParse, "Failed to parse LLM response: "},
		{"array instead of object", &stubGenerator{reply: `[1,2]`}, common.KindParse, "Failed to parse LLM response: expected a JSON object"},
		{"generator timeout passes through", &stubGenerator{err: timeout}, common.KindTimeout, "Ollama timeout - try again"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(t, tt.gen)
			_, _, err := p.ParseInvoice(context.Background(), "x")
			if err == nil {
				t.Fatal("expected error")
			}
			var ae *common.AppError
			if !errors.As(err, &ae) {
				t.Fatalf("expected AppError, got %T", err)
			}
			if ae.Kind != tt.kind || !strings.HasPrefix(ae.Message, tt.prefix) {
				t.Errorf("got %v %q, want %v %q...", ae.Kind, ae.Message, tt.kind, tt.prefix)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
