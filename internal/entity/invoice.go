package entity

import "encoding/json"

// LineItem is one row of an invoice's item table.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	Total       *float64 `json:"total"`
}

// InvoiceData is the structured result of parsing a document. Every scalar is optional
// and encodes as null when absent.
type InvoiceData struct {
	VendorName    *string    `json:"vendor_name"`
	VendorAddress *string    `json:"vendor_address"`
	VendorPhone   *string    `json:"vendor_phone"`
	InvoiceNumber *string    `json:"invoice_number"`
	InvoiceDate   *string    `json:"invoice_date"`
	DueDate       *string    `json:"due_date"`
	Subtotal      *float64   `json:"subtotal"`
	Tax           *float64   `json:"tax"`
	Total         *float64   `json:"total"`
	Currency      *string    `json:"currency"`
	LineItems     []LineItem `json:"line_items"`
}

// MarshalJSON keeps line_items an array even when nil.
func (d InvoiceData) MarshalJSON() ([]byte, error) {
	type alias InvoiceData
	a := alias(d)
	if a.LineItems == nil {
		a.LineItems = []LineItem{}
	}
	return json.Marshal(a)
}

// ExtractionResponse is returned by the extraction endpoint on success.
type ExtractionResponse struct {
	Status           string      `json:"status"`
	Confidence       float64     `json:"confidence"`
	Data             InvoiceData `json:"data"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
	OCRTextPreview   *string     `json:"ocr_text_preview"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status             string `json:"status"`
	TesseractAvailable bool   `json:"tesseract_available"`
	OllamaAvailable    bool   `json:"ollama_available"`
	OllamaModel        string `json:"ollama_model"`
	Timestamp          string `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
