package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/invoicegen"
)

func main() {
	dir := flag.String("dir", "test_invoices", "output directory")
	flag.Parse()

	rule := strings.Repeat("=", 60)
	fmt.Println(rule)
	fmt.Println("🧪 Generating Test Invoice Suite")
	fmt.Println(rule)
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	m, err := invoicegen.NewGenerator(logger).GenerateSuite(*dir)
	for _, e := range m.Invoices {
		fmt.Printf("✅ Generated: %s/%s\n", *dir, e.File)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(rule)
	fmt.Printf("✅ Generated %d test invoices in '%s/' folder\n", len(m.Invoices), *dir)
	fmt.Println(rule)
	fmt.Println()
	fmt.Println("📝 Test these with your API:")
	for i, e := range m.Invoices {
		fmt.Printf("   %d. %s\n", i+1, e.Description)
	}
	fmt.Println()
	fmt.Printf("📋 Expected values: %s/%s\n", *dir, invoicegen.ManifestFile)
	fmt.Println("💡 Upload them at: http://localhost:8000")
	fmt.Printf("   Or run them all: invoice-batch -dir %s\n", *dir)
}
