package llm

import (
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	textFields  = []string{"vendor_name", "vendor_address", "vendor_phone", "invoice_number", "invoice_date", "due_date", "currency"}
	moneyFields = []string{"subtotal", "tax", "total"}
	itemNumbers = []string{"quantity", "unit_price", "total"}

	reMoneyNoise = regexp.MustCompile(`[^0-9.,\-]`)
)

// NormalizeInvoiceJSON coerces a decoded model reply towards the invoice schema in place:
//   - unknown keys are removed
//   - the string "null" becomes null
//   - numbers in text fields become strings, money strings ("$1,234.50") become numbers
//   - line_items: null becomes [], a missing item description becomes ""
//
// Values that cannot be coerced are left untouched so that schema validation still rejects
// them. It returns a list of the adjustments made.
func NormalizeInvoiceJSON(m map[string]any) []string {
	var changed []string

	for k := range maps.Clone(m) {
		if !slices.Contains(textFields, k) && !slices.Contains(moneyFields, k) && k != "line_items" {
			delete(m, k)
			changed = append(changed, k+"(unknown)")
		}
	}

	for _, k := range textFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		nv, note := coerceText(v)
		m[k] = nv
		if note != "" {
			changed = append(changed, k+"("+note+")")
		}
	}

	for _, k := range moneyFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		nv, note := coerceNumber(v)
		m[k] = nv
		if note != "" {
			changed = append(changed, k+"("+note+")")
		}
	}

	if v, ok := m["line_items"]; ok {
		items, notes := coerceLineItems(v)
		m["line_items"] = items
		changed = append(changed, notes...)
	}
	return changed
}

func isNullString(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "null")
}

func coerceText(v any) (any, string) {
	switch t := v.(type) {
	case string:
		if isNullString(t) {
			return nil, "null"
		}
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), "number"
	}
	return v, ""
}

func coerceNumber(v any) (any, string) {
	t, ok := v.(string)
	if !ok {
		return v, ""
	}
	if isNullString(t) {
		return nil, "null"
	}
	if f, ok := ParseMoney(t); ok {
		return f, "string"
	}
	return v, ""
}

func coerceLineItems(v any) (any, []string) {
	if v == nil {
		return []any{}, []string{"line_items(null)"}
	}
	arr, ok := v.([]any)
	if !ok {
		return v, nil
	}
	var notes []string
	for i, el := range arr {
		item, ok := el.(map[string]any)
		if !ok {
			continue
		}
		at := "line_items[" + strconv.Itoa(i) + "]"
		for k := range maps.Clone(item) {
			if k != "description" && !slices.Contains(itemNumbers, k) {
				delete(item, k)
				notes = append(notes, at+"."+k+"(unknown)")
			}
		}
		desc, ok := item["description"]
		switch {
		case !ok || desc == nil:
			item["description"] = ""
			notes = append(notes, at+".description(missing)")
		default:
			nv, note := coerceText(desc)
			if nv == nil {
				nv = ""
			}
			item["description"] = nv
			if note != "" {
				notes = append(notes, at+".description("+note+")")
			}
		}
		for _, k := range itemNumbers {
			val, ok := item[k]
			if !ok {
				continue
			}
			nv, note := coerceNumber(val)
			item[k] = nv
			if note != "" {
				notes = append(notes, at+"."+k+"("+note+")")
			}
		}
	}
	return arr, notes
}

// ParseMoney parses amounts such as "$1,234.50", "€4.700,00", "12,5" or "-12". When both
// separators appear, the rightmost one is the decimal point; a lone comma followed by one or
// two digits is read as a decimal comma.
func ParseMoney(s string) (float64, bool) {
	s = reMoneyNoise.ReplaceAllString(s, "")
	if s == "" || s == "-" {
		return 0, false
	}
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if digits := len(s) - lastComma - 1; strings.Count(s, ",") == 1 && (digits == 1 || digits == 2) {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
