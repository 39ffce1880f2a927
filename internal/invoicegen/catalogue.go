package invoicegen

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const pointsPerInch = 72.0

//go:embed catalogue.yaml
var catalogueYAML []byte

// Layout describes one invoice template of the catalogue.
type Layout struct {
	Name        string      `yaml:"name"`
	File        string      `yaml:"file"`
	Description string      `yaml:"description"`
	Vendor      string      `yaml:"vendor"`
	Currency    string      `yaml:"currency"`
	Symbol      string      `yaml:"symbol"`
	Number      NumberSpec  `yaml:"number"`
	DateLayout  string      `yaml:"date_layout"`
	DueDays     int         `yaml:"due_days"`
	TaxRate     string      `yaml:"tax_rate"`
	Items       []ItemSpec  `yaml:"items"`
	Table       TableSpec   `yaml:"table"`
	Blocks      []BlockSpec `yaml:"blocks"`
}

type NumberSpec struct {
	Prefix string `yaml:"prefix"`
	Min    int    `yaml:"min"`
	Max    int    `yaml:"max"`
}

type ItemSpec struct {
	Description string `yaml:"description"`
	Qty         string `yaml:"qty"`
	Unit        string `yaml:"unit"`
	Rate        string `yaml:"rate"`
}

type ColumnSpec struct {
	Title  string  `yaml:"title"`
	Field  string  `yaml:"field"` // index | description | qty | rate | amount
	Width  float64 `yaml:"width"`
	Align  string  `yaml:"align"`
	Places *int32  `yaml:"places"`
}

type TableSpec struct {
	Columns    []ColumnSpec `yaml:"columns"`
	HeaderFill string       `yaml:"header_fill"`
	HeaderText string       `yaml:"header_text"`
	Grid       bool         `yaml:"grid"`
	Zebra      string       `yaml:"zebra"`
	FontSize   float64      `yaml:"font_size"`
}

type BlockSpec struct {
	Text  string  `yaml:"text"`
	Style string  `yaml:"style"`
	Align string  `yaml:"align"`
	Color string  `yaml:"color"`
	Size  float64 `yaml:"size"`
	Space float64 `yaml:"space"`

	Items    bool       `yaml:"items"`
	Pairs    [][]string `yaml:"pairs"`
	Totals   [][]string `yaml:"totals"`
	Widths   []float64  `yaml:"widths"`
	Rule     bool       `yaml:"rule"`
	FontSize float64    `yaml:"font_size"`
}

// Catalogue returns every layout embedded in the binary, in file order.
func Catalogue() ([]Layout, error) {
	var layouts []Layout
	if err := yaml.Unmarshal(catalogueYAML, &layouts); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	return layouts, nil
}

// Lookup returns the layout called name.
func Lookup(name string) (Layout, error) {
	layouts, err := Catalogue()
	if err != nil {
		return Layout{}, err
	}
	for _, l := range layouts {
		if l.Name == name {
			return l, nil
		}
	}
	return Layout{}, fmt.Errorf("unknown layout %q", name)
}

type line struct {
	ItemSpec
	qty    decimal.Decimal
	rate   decimal.Decimal
	amount decimal.Decimal
}

// Build resolves layout into a renderable Document and the values a correct
// extraction should recover from it.
func Build(layout Layout, now time.Time, rng *rand.Rand) (Document, ManifestEntry, error) {
	lines := make([]line, len(layout.Items))
	amounts := make([]decimal.Decimal, len(layout.Items))
	for i, it := range layout.Items {
		qty, err := decimal.NewFromString(it.Qty)
		if err != nil {
			return Document{}, ManifestEntry{}, fmt.Errorf("%s: item %d qty: %w", layout.Name, i+1, err)
		}
		rate, err := decimal.NewFromString(it.Rate)
		if err != nil {
			return Document{}, ManifestEntry{}, fmt.Errorf("%s: item %d rate: %w", layout.Name, i+1, err)
		}
		lines[i] = line{ItemSpec: it, qty: qty, rate: rate, amount: qty.Mul(rate)}
		amounts[i] = lines[i].amount
	}

	taxRate := decimal.Zero
	if layout.TaxRate != "" {
		r, err := decimal.NewFromString(layout.TaxRate)
		if err != nil {
			return Document{}, ManifestEntry{}, fmt.Errorf("%s: tax rate: %w", layout.Name, err)
		}
		taxRate = r
	}
	totals := ComputeTotals(amounts, taxRate)

	number := layout.Number.Prefix + strconv.Itoa(randomIn(rng, layout.Number.Min, layout.Number.Max))
	date := now.Format(layout.DateLayout)
	due := ""
	if layout.DueDays > 0 {
		due = now.AddDate(0, 0, layout.DueDays).Format(layout.DateLayout)
	}

	subst := strings.NewReplacer(
		"{number}", number,
		"{date}", date,
		"{due_date}", due,
		"{subtotal}", FormatMoney(layout.Symbol, totals.Subtotal, 2),
		"{tax}", FormatMoney(layout.Symbol, totals.Tax, 2),
		"{total}", FormatMoney(layout.Symbol, totals.Total, 2),
	)

	doc := Document{Title: layout.Vendor}
	for _, b := range layout.Blocks {
		switch {
		case b.Space > 0:
			doc.Blocks = append(doc.Blocks, Block{Space: b.Space * pointsPerInch})
		case b.Items:
			doc.Blocks = append(doc.Blocks, Block{Table: itemsTable(layout, lines)})
		case len(b.Pairs) > 0:
			doc.Blocks = append(doc.Blocks, Block{Table: &Table{
				Rows:         resolveRows(b.Pairs, subst),
				Widths:       inches(b.Widths),
				Aligns:       []string{"L", "L"},
				FontSize:     10,
				BoldFirstCol: true,
			}})
		case len(b.Totals) > 0:
			size := b.FontSize
			if size == 0 {
				size = 10
			}
			doc.Blocks = append(doc.Blocks, Block{Table: &Table{
				Rows:          resolveRows(b.Totals, subst),
				Widths:        inches(b.Widths),
				Aligns:        []string{"R", "R"},
				FontSize:      size,
				RightAlign:    true,
				BoldLastRow:   true,
				RuleAboveLast: b.Rule,
			}})
		default:
			doc.Blocks = append(doc.Blocks, Block{
				Text:  subst.Replace(b.Text),
				Style: b.Style,
				Align: b.Align,
				Color: b.Color,
				Size:  b.Size,
			})
		}
	}

	entry := ManifestEntry{
		File:        layout.File,
		Layout:      layout.Name,
		Description: layout.Description,
		Vendor:      layout.Vendor,
		Number:      number,
		Date:        date,
		DueDate:     due,
		Currency:    layout.Currency,
		Subtotal:    totals.Subtotal.StringFixed(2),
		Tax:         totals.Tax.StringFixed(2),
		Total:       totals.Total.StringFixed(2),
		LineItems:   len(lines),
	}
	return doc, entry, nil
}

func itemsTable(layout Layout, lines []line) *Table {
	spec := layout.Table
	t := &Table{
		FontSize:   spec.FontSize,
		HeaderFill: spec.HeaderFill,
		HeaderText: spec.HeaderText,
		Grid:       spec.Grid,
		Zebra:      spec.Zebra,
	}
	if t.FontSize == 0 {
		t.FontSize = 10
	}
	for _, c := range spec.Columns {
		t.Header = append(t.Header, c.Title)
		t.Widths = append(t.Widths, c.Width*pointsPerInch)
		t.Aligns = append(t.Aligns, c.Align)
	}
	for i, ln := range lines {
		row := make([]string, len(spec.Columns))
		for j, c := range spec.Columns {
			places := int32(2)
			if c.Places != nil {
				places = *c.Places
			}
			switch c.Field {
			case "index":
				row[j] = strconv.Itoa(i + 1)
			case "description":
				row[j] = ln.Description
			case "qty":
				row[j] = ln.qty.String() + ln.Unit
			case "rate":
				row[j] = FormatMoney(layout.Symbol, ln.rate, places)
			case "amount":
				row[j] = FormatMoney(layout.Symbol, ln.amount, places)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func resolveRows(pairs [][]string, subst *strings.Replacer) [][]string {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		row := make([]string, len(p))
		for j, cell := range p {
			row[j] = subst.Replace(cell)
		}
		rows[i] = row
	}
	return rows
}

func inches(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = v * pointsPerInch
	}
	return out
}

// randomIn returns an int in [lo, hi].
func randomIn(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}
