// Package invoicegen renders synthetic invoices as PDFs for exercising the
// extraction pipeline end to end.
package invoicegen

// Text styles understood by Render.
const (
	StyleTitle    = "title"
	StyleHeading1 = "heading1"
	StyleHeading2 = "heading2"
	StyleHeading3 = "heading3"
	StyleNormal   = "normal"
	StyleBold     = "bold"
)

// Document is a fully resolved page: every placeholder is already substituted.
type Document struct {
	Title  string
	Blocks []Block
}

// Block is one vertical element. Exactly one of Text, Space or Table is meaningful.
type Block struct {
	Text  string
	Style string
	Align string // "L", "C" or "R"
	Color string // hex, e.g. "#2c3e50"
	Size  float64

	Space float64 // vertical gap in points

	Table *Table
}

type Table struct {
	Header     []string
	Rows       [][]string
	Widths     []float64 // points; empty splits the page width evenly
	Aligns     []string
	FontSize   float64
	HeaderFill string
	HeaderText string
	Grid       bool
	Zebra      string // fill for every other body row
	RightAlign bool   // push the whole table against the right margin

	BoldFirstCol  bool
	BoldLastRow   bool
	RuleAboveLast bool
}
