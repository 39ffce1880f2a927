package llm

import "strings"

const extractionPromptHead = `You are an expert at extracting structured data from invoices and receipts.

Extract the following information from this invoice/receipt text and return ONLY a valid JSON object.

Required JSON format:
{
  "vendor_name": "company name or null",
  "vendor_address": "full address or null",
  "vendor_phone": "phone number or null",
  "invoice_number": "invoice/receipt number or null",
  "invoice_date": "date in YYYY-MM-DD format or null",
  "due_date": "due date in YYYY-MM-DD format or null",
  "subtotal": amount as number or null,
  "tax": tax amount as number or null,
  "total": total amount as number or null,
  "currency": "currency code (USD, EUR, etc.) or USD",
  "line_items": [
    {
      "description": "item description",
      "quantity": quantity as number or null,
      "unit_price": price as number or null,
      "total": line total as number or null
    }
  ]
}

CRITICAL RULES:
1. Return ONLY the JSON object, no other text
2. Use null for missing fields (not "null" string)
3. Convert all dates to YYYY-MM-DD format
4. Extract all numbers as floats (no currency symbols)
5. Include all line items found
6. Do not add markdown code blocks or any other text

Invoice/Receipt Text:
`

// BuildExtractionPrompt embeds the OCR text verbatim into the fixed extraction instructions.
func BuildExtractionPrompt(ocrText string) string {
	var b strings.Builder
	b.Grow(len(extractionPromptHead) + len(ocrText) + 8)
	b.WriteString(extractionPromptHead)
	b.WriteString(ocrText)
	b.WriteString("\n\nJSON:")
	return b.String()
}
