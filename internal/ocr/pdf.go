package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// PageMarker is written before each page's text.
func PageMarker(page int) string {
	return fmt.Sprintf("\n--- Page %d ---\n", page)
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.PDF, Method: "pdf-ocr"}

	tmpDir, err := os.MkdirTemp(e.cfg.TempDir, "invoice-pp-*")
	if err != nil {
		return res, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	var images []string
	n, countErr := pageCount(path)
	if countErr == nil && n > 0 {
		images, err = e.renderPages(ctx, path, tmpDir, n)
	} else {
		e.logger.Debug("pdf page count unavailable, rendering whole document", "path", path, "error", countErr)
		images, err = e.renderAll(ctx, path, tmpDir)
	}
	if err != nil {
		return res, err
	}

	var b strings.Builder
	for i, img := range images {
		txt, err := e.engine.Recognize(ctx, img)
		if err != nil {
			return res, fmt.Errorf("page %d: %w", i+1, err)
		}
		e.logger.Debug("ocr.page.ok", "page", i+1, "chars", len(txt))
		b.WriteString(PageMarker(i + 1))
		b.WriteString(txt)
	}
	res.Text = b.String()
	res.Pages = len(images)
	return res, nil
}

// renderPages rasterizes pages one at a time so page order never depends on file naming.
func (e *Extractor) renderPages(ctx context.Context, path, dir string, n int) ([]string, error) {
	images := make([]string, 0, n)
	for page := 1; page <= n; page++ {
		prefix := filepath.Join(dir, fmt.Sprintf("page-%d", page))
		p := strconv.Itoa(page)
		// pdftoppm -f N -l N -r DPI -png -singlefile <in.pdf> <tmp/page-N>
		_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
			"-f", p, "-l", p, "-r", strconv.Itoa(e.cfg.DPI), "-png", "-singlefile", path, prefix)
		if err != nil {
			return nil, commandError("pdftoppm", err, errb)
		}
		images = append(images, prefix+".png")
	}
	return images, nil
}

func (e *Extractor) renderAll(ctx context.Context, path, dir string) ([]string, error) {
	prefix := filepath.Join(dir, "page")
	// pdftoppm -r DPI -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, commandError("pdftoppm", err, errb)
	}

	// collect generated pngs (page-1.png, page-2.png, ... possibly zero padded)
	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return nil, errors.New("pdftoppm produced no images")
	}
	sort.Slice(matches, func(i, j int) bool {
		return pageNumber(matches[i]) < pageNumber(matches[j])
	})
	return matches, nil
}

func pageNumber(name string) int {
	base := strings.TrimSuffix(filepath.Base(name), ".png")
	idx := strings.LastIndex(base, "-")
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

// pageCount reads the page tree without rendering anything.
func pageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}
