package invoicegen

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 54.0 // 0.75in
	fontFamily = "Helvetica"
)

type textStyle struct {
	size  float64
	style string
	align string
}

var textStyles = map[string]textStyle{
	StyleTitle:    {size: 24, style: "B", align: "C"},
	StyleHeading1: {size: 18, style: "B", align: "L"},
	StyleHeading2: {size: 14, style: "B", align: "L"},
	StyleHeading3: {size: 12, style: "B", align: "L"},
	StyleNormal:   {size: 10, style: "", align: "L"},
	StyleBold:     {size: 10, style: "B", align: "L"},
}

// Render lays doc out on US Letter pages and writes the PDF to w. Text is encoded as
// cp1252, which covers the currency symbols and umlauts the catalogue uses.
func Render(doc Document, w io.Writer) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("invoice-extractor", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	usable := pageW - 2*pageMargin

	for _, b := range doc.Blocks {
		switch {
		case b.Table != nil:
			drawTable(pdf, b.Table, tr, usable)
		case b.Space > 0:
			pdf.Ln(b.Space)
		default:
			drawText(pdf, b, tr)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func drawText(pdf *fpdf.Fpdf, b Block, tr func(string) string) {
	st, ok := textStyles[b.Style]
	if !ok {
		st = textStyles[StyleNormal]
	}
	if b.Size > 0 {
		st.size = b.Size
	}
	if b.Align != "" {
		st.align = b.Align
	}
	pdf.SetFont(fontFamily, st.style, st.size)
	r, g, bl := hexRGB(b.Color)
	pdf.SetTextColor(r, g, bl)
	pdf.MultiCell(0, st.size*1.25, tr(b.Text), "", st.align, false)
	pdf.SetTextColor(0, 0, 0)
}

func drawTable(pdf *fpdf.Fpdf, t *Table, tr func(string) string, usable float64) {
	cols := len(t.Header)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	if cols == 0 {
		return
	}
	widths := t.Widths
	if len(widths) < cols {
		widths = make([]float64, cols)
		for i := range widths {
			widths[i] = usable / float64(cols)
		}
	}
	var total float64
	for _, w := range widths[:cols] {
		total += w
	}
	x := pageMargin
	if t.RightAlign {
		x = pageMargin + usable - total
	}
	size := t.FontSize
	if size <= 0 {
		size = 10
	}
	rowH := size + 8

	border := ""
	if t.Grid {
		border = "1"
		pdf.SetDrawColor(128, 128, 128)
	}
	pdf.SetLineWidth(0.5)

	if len(t.Header) > 0 {
		fill := t.HeaderFill != ""
		if fill {
			r, g, b := hexRGB(t.HeaderFill)
			pdf.SetFillColor(r, g, b)
		}
		r, g, b := hexRGB(t.HeaderText)
		pdf.SetTextColor(r, g, b)
		pdf.SetFont(fontFamily, "B", size)
		pdf.SetX(x)
		for i, h := range t.Header {
			pdf.CellFormat(widths[i], rowH, tr(h), border, 0, "C", fill, 0, "")
		}
		pdf.Ln(rowH)
		if !t.Grid {
			y := pdf.GetY()
			pdf.SetDrawColor(0, 0, 0)
			pdf.Line(x, y, x+total, y)
		}
		pdf.SetTextColor(0, 0, 0)
	}

	for ri, row := range t.Rows {
		last := ri == len(t.Rows)-1
		if last && t.RuleAboveLast {
			y := pdf.GetY()
			pdf.SetDrawColor(0, 0, 0)
			pdf.SetLineWidth(1.5)
			pdf.Line(x, y, x+total, y)
			pdf.SetLineWidth(0.5)
		}
		fill := t.Zebra != "" && ri%2 == 1
		if fill {
			r, g, b := hexRGB(t.Zebra)
			pdf.SetFillColor(r, g, b)
		}
		pdf.SetX(x)
		for i, cell := range row {
			if i >= cols {
				break
			}
			style := ""
			if (last && t.BoldLastRow) || (i == 0 && t.BoldFirstCol) {
				style = "B"
			}
			align := "L"
			if i < len(t.Aligns) && t.Aligns[i] != "" {
				align = t.Aligns[i]
			}
			pdf.SetFont(fontFamily, style, size)
			pdf.CellFormat(widths[i], rowH, tr(cell), border, 0, align, fill, 0, "")
		}
		pdf.Ln(rowH)
	}
}

// hexRGB parses "#rrggbb"; anything else is black.
func hexRGB(s string) (int, int, int) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
