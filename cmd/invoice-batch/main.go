package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/invoicegen"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory of invoices to process (required)")
		out     = flag.String("out", "", "output XLSX path (defaults to <dir>/report.xlsx)")
		workers = flag.Int("workers", 1, "concurrent documents; Ollama serialises generations anyway")
		timeout = flag.Duration("timeout", 3*time.Minute, "per-document processing timeout")
		watch   = flag.Bool("watch", false, "keep watching -dir for new files until interrupted")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*dir, "report.xlsx")
	}

	if err := common.LoadDotEnv(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stdout)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := pipeline.NewComponents(cfg, logger)
	if err != nil {
		logger.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}
	caps := components.Probe(ctx)
	if !caps.OCRAvailable || !caps.LLMAvailable {
		logger.Warn("backends unavailable, files will fail", "ocr", caps.OCRAvailable, "ollama", caps.LLMAvailable)
	}

	expected := loadManifest(*dir, logger)

	var (
		mu   sync.Mutex
		rows []export.Row
	)
	queue := async.NewProcessorQueue(components.Processor(caps), logger,
		async.WithWorkers(*workers),
		async.WithProcessTimeout(*timeout),
		async.WithResultHandler(func(r async.Result) {
			rel, err := filepath.Rel(*dir, r.Job.Path)
			if err != nil {
				rel = r.Job.Path
			}
			row := export.Row{File: rel}
			if r.Err != nil {
				row.Err = r.Err.Error()
			} else {
				resp := r.Response
				row.Response = &resp
			}
			if e, ok := expected[filepath.Base(r.Job.Path)]; ok {
				if v, ok := e.TotalValue(); ok {
					row.ExpectedTotal = &v
				}
			}
			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()
		}),
	)

	if *watch {
		err = watchDir(ctx, *dir, queue, logger)
	} else {
		err = scanDir(ctx, *dir, queue, logger)
	}
	queue.Shutdown(context.Background())
	if err != nil {
		logger.Error("batch aborted", "error", err)
		os.Exit(1)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].File < rows[j].File })
	xlsx, err := export.NewService(logger).ExportResultsXLSX(rows)
	if err != nil {
		logger.Error("failed to export results", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	failures, matched, compared := 0, 0, 0
	for _, r := range rows {
		if r.Response == nil {
			failures++
		}
		if r.ExpectedTotal != nil {
			compared++
			if r.Matches() {
				matched++
			}
		}
	}
	logger.Info("batch processing complete",
		"files", len(rows),
		"failures", failures,
		"totals_matched", matched,
		"totals_compared", compared,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d\n", len(rows))
	fmt.Printf("- Failures: %d\n", failures)
	if compared > 0 {
		fmt.Printf("- Totals matching %s: %d/%d\n", invoicegen.ManifestFile, matched, compared)
	}
	fmt.Printf("- Output: %s\n", *out)
	if failures > 0 {
		os.Exit(1)
	}
}

func loadManifest(dir string, logger *slog.Logger) map[string]invoicegen.ManifestEntry {
	m, err := invoicegen.ReadManifest(filepath.Join(dir, invoicegen.ManifestFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("ignoring unreadable manifest", "error", err)
		}
		return nil
	}
	logger.Info("loaded manifest", "entries", len(m.Invoices))
	return m.ByFile()
}

func scanDir(ctx context.Context, dir string, queue async.Queue, logger *slog.Logger) error {
	paths, stats, err := ingest.Scan(dir, true)
	if err != nil {
		return err
	}
	logger.Info("scan complete", "dir", dir, "scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped)
	for _, p := range paths {
		if err := queue.Enqueue(ctx, async.NewJob(p)); err != nil {
			return err
		}
	}
	return nil
}

// watchDir processes existing and newly arriving documents until ctx is cancelled.
func watchDir(ctx context.Context, dir string, queue async.Queue, logger *slog.Logger) error {
	events, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
		SkipHidden:  true,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("watching for invoices, interrupt to write the report", "dir", dir)

	seen := map[string]bool{}
	for {
		select {
		case p, ok := <-events:
			if !ok {
				return nil
			}
			if seen[p] {
				continue
			}
			seen[p] = true
			if err := queue.Enqueue(ctx, async.NewJob(p)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
