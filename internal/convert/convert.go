// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF-to-text conversion with pluggable backends.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/price-engine/pkg/types"
)

const (
	rawDir  = "raw"
	textDir = "text"
)

// Converter transforms a bulletin PDF into plain text.
type Converter interface {
	// Convert reads the PDF at pdfPath and returns its text content.
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any conversions failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertOne converts a single PDF into <bulletins>/text/<name>.txt,
// skipping the work when the text file already exists. The returned path
// points at the text file; skipped is true when it was already on disk.
func ConvertOne(ctx context.Context, c Converter, pdfPath string, cfg types.ConvertConfig, w io.Writer) (txtPath string, skipped bool, err error) {
	outDir := filepath.Join(cfg.BulletinsDir, textDir)
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	txtPath = filepath.Join(outDir, base+".txt")

	if _, statErr := os.Stat(txtPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return txtPath, true, nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating text directory: %w", err)
	}

	text, err := c.Convert(ctx, pdfPath)
	if err != nil {
		return "", false, fmt.Errorf("converting %s: %w", base, err)
	}

	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		return "", false, fmt.Errorf("writing %s: %w", txtPath, err)
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return txtPath, false, nil
}

// ConvertAll converts every PDF under <bulletins>/raw/ in name order,
// printing per-file status and returning a summary. Individual failures
// are reported and skipped.
func ConvertAll(ctx context.Context, c Converter, cfg types.ConvertConfig, w io.Writer) (BatchResult, error) {
	pdfs, err := ListPDFs(cfg.BulletinsDir)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, pdf := range pdfs {
		_, wasSkipped, err := ConvertOne(ctx, c, pdf, cfg, w)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed: %s (%v)\n", filepath.Base(pdf), err)
			result.Failed++
		case wasSkipped:
			result.Skipped++
		default:
			result.Converted++
		}
	}

	fmt.Fprintf(w, "\nConvert summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// ListPDFs returns the PDF paths under <bulletins>/raw/ sorted by name.
// Dated bulletins sort chronologically because their names embed the date.
func ListPDFs(bulletinsDir string) ([]string, error) {
	dir := filepath.Join(bulletinsDir, rawDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading raw directory: %w", err)
	}

	var pdfs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		pdfs = append(pdfs, filepath.Join(dir, e.Name()))
	}
	sort.Strings(pdfs)
	return pdfs, nil
}
