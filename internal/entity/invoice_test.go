package entity

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestInvoiceDataEncodesEmptyLineItemsAsArray(t *testing.T) {
	b, err := json.Marshal(InvoiceData{})
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, `"line_items":[]`) {
		t.Errorf("line_items should be an empty array: %s", s)
	}
	if !strings.Contains(s, `"vendor_name":null`) || !strings.Contains(s, `"currency":null`) {
		t.Errorf("absent scalars should encode as null: %s", s)
	}
}

func TestExtractionResponseFieldNames(t *testing.T) {
	resp := ExtractionResponse{
		Status:           "success",
		Confidence:       0.82,
		Data:             InvoiceData{VendorName: Ptr("ACME"), LineItems: []LineItem{{Description: "x", Total: Ptr(1.5)}}},
		ProcessingTimeMs: 1234,
		OCRTextPreview:   Ptr("text"),
	}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"status", "confidence", "data", "processing_time_ms", "ocr_text_preview"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %q in %s", k, b)
		}
	}
	data := m["data"].(map[string]any)
	items := data["line_items"].([]any)
	item := items[0].(map[string]any)
	if item["quantity"] != nil || item["total"] != 1.5 {
		t.Errorf("unexpected line item encoding: %v", item)
	}
}
