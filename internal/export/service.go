package export

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const (
	ResultsSheet = "Results"
	SummarySheet = "Summary"
)

// Row is one processed file. Response is nil when processing failed.
type Row struct {
	File          string
	Response      *entity.ExtractionResponse
	Err           string
	ExpectedTotal *float64
}

// Matches reports whether the extracted total equals the expected one to the cent.
// It is false when either side is missing.
func (r Row) Matches() bool {
	if r.Response == nil || r.Response.Data.Total == nil || r.ExpectedTotal == nil {
		return false
	}
	return math.Abs(*r.Response.Data.Total-*r.ExpectedTotal) < 0.005
}

// Service renders batch results as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var headers = []string{
	"File",
	"Status",
	"Confidence",
	"Vendor",
	"Invoice Number",
	"Invoice Date",
	"Due Date",
	"Subtotal",
	"Tax",
	"Total",
	"Currency",
	"Line Items",
	"Processing (ms)",
	"Error",
	"Expected Total",
	"Total Match",
}

// ExportResultsXLSX returns a workbook (as bytes) with one row per file and a summary sheet.
func (s *Service) ExportResultsXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// NewFile starts with "Sheet1"; rename it so the results open first.
	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(ResultsSheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ResultsSheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(ResultsSheet, "A1", last, style)
	}

	var ok, failed, matched, compared int
	var confSum float64
	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(ResultsSheet, cell, v)
		}

		write(1, r.File)
		if r.Response == nil {
			failed++
			write(2, "error")
			write(14, truncate(r.Err, 300))
		} else {
			ok++
			d := r.Response.Data
			confSum += r.Response.Confidence
			write(2, r.Response.Status)
			write(3, r.Response.Confidence)
			write(4, str(d.VendorName))
			write(5, str(d.InvoiceNumber))
			write(6, str(d.InvoiceDate))
			write(7, str(d.DueDate))
			write(8, num(d.Subtotal))
			write(9, num(d.Tax))
			write(10, num(d.Total))
			write(11, str(d.Currency))
			write(12, len(d.LineItems))
			write(13, r.Response.ProcessingTimeMs)
		}
		if r.ExpectedTotal != nil {
			compared++
			write(15, *r.ExpectedTotal)
			if r.Matches() {
				matched++
				write(16, "yes")
			} else {
				write(16, "no")
			}
		}
	}

	_ = f.SetColWidth(ResultsSheet, "A", "A", 32) // file
	_ = f.SetColWidth(ResultsSheet, "D", "D", 28) // vendor
	_ = f.SetColWidth(ResultsSheet, "E", "G", 16)
	_ = f.SetColWidth(ResultsSheet, "N", "N", 48) // error
	_ = f.SetPanes(ResultsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	avg := 0.0
	if ok > 0 {
		avg = math.Round(confSum/float64(ok)*100) / 100
	}
	summary := [][]any{
		{"Files", len(rows)},
		{"Succeeded", ok},
		{"Failed", failed},
		{"Average Confidence", avg},
		{"Totals Compared", compared},
		{"Totals Matched", matched},
		{"Generated At", time.Now().UTC().Format(time.RFC3339)},
	}
	for i, kv := range summary {
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+1), &kv); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"failed", failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// num leaves the cell empty for nil.
func num(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
