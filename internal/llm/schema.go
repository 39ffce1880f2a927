package llm

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) for a normalized
// invoice object. Every scalar is nullable; additional keys are rejected.
func BuildInvoiceJSONSchema() map[string]any {
	props := map[string]any{
		"vendor_name":    nullable("string"),
		"vendor_address": nullable("string"),
		"vendor_phone":   nullable("string"),
		"invoice_number": nullable("string"),
		"invoice_date":   nullable("string"),
		"due_date":       nullable("string"),
		"subtotal":       nullable("number"),
		"tax":            nullable("number"),
		"total":          nullable("number"),
		"currency":       nullable("string"),
		"line_items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"description"},
				"properties": map[string]any{
					"description": map[string]any{"type": "string"},
					"quantity":    nullable("number"),
					"unit_price":  nullable("number"),
					"total":       nullable("number"),
				},
			},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func nullable(t string) map[string]any {
	return map[string]any{"type": []string{t, "null"}}
}
