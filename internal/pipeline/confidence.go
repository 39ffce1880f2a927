package pipeline

import (
	"math"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Score is the fraction of the eleven completeness signals present in d, rounded to
// two decimals. A string counts when it is non-blank; a number counts when set, zero included.
func Score(d entity.InvoiceData) float64 {
	signals := []bool{
		hasText(d.VendorName),
		hasText(d.InvoiceNumber),
		hasText(d.InvoiceDate),
		d.Total != nil,
		d.Subtotal != nil,
		d.Tax != nil,
		len(d.LineItems) > 0,
		hasText(d.VendorAddress),
		hasText(d.VendorPhone),
		hasText(d.DueDate),
		hasText(d.Currency),
	}
	filled := 0
	for _, ok := range signals {
		if ok {
			filled++
		}
	}
	return math.Round(float64(filled)/constants.ConfidenceFields*100) / 100
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
