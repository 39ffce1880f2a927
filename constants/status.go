package constants

// Response status values.
const (
	StatusSuccess = "success"
	StatusHealthy = "healthy"
)

// DefaultCurrency is applied when the parsed document omits the currency key entirely.
const DefaultCurrency = "USD"

// ConfidenceFields is the number of signals the confidence score is computed over.
const ConfidenceFields = 11

// PreviewLength is the number of characters of OCR text echoed back in a response.
const PreviewLength = 500
