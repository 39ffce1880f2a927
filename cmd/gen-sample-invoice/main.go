package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/invoice-extractor/internal/invoicegen"
)

func main() {
	out := flag.String("out", "sample_invoice.pdf", "output PDF path")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	gen := invoicegen.NewGenerator(logger)

	entry, err := gen.GenerateSample(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error generating invoice: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Sample invoice generated: %s\n", *out)
	fmt.Printf("   %s %s, total %s %s\n", entry.Vendor, entry.Number, entry.Total, entry.Currency)
	fmt.Printf("\n📄 You can now test the API with this invoice:\n")
	fmt.Printf("   Upload it via the web UI at http://localhost:8000\n")
	fmt.Printf("   Or use: curl -H 'X-API-Key: dev-key-12345' -F 'file=@%s;type=application/pdf' http://localhost:8000/api/v1/extract/invoice\n", *out)
}
