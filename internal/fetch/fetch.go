// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads bulletin PDFs listed in the crawl manifest.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/price-engine/internal/httputil"
	"github.com/pdiddy/price-engine/pkg/types"
)

const rawDir = "raw"

const defaultDelay = 500 * time.Millisecond

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Cached     int
	Failed     int
}

// Total returns the number of links processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Cached + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchAll downloads every link into <bulletins>/raw/, printing per-item
// status and returning a summary. Non-empty files already on disk are kept
// as-is so interrupted runs resume where they stopped. Downloads are paced
// by a rate limiter; failures are reported and skipped, never fatal.
func FetchAll(ctx context.Context, client *http.Client, links []types.BulletinLink, cfg types.FetchConfig, w io.Writer) (BatchResult, error) {
	outDir := filepath.Join(cfg.BulletinsDir, rawDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating raw directory: %w", err)
	}

	delay := cfg.DownloadDelay
	if delay <= 0 {
		delay = defaultDelay
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	var result BatchResult
	for i, link := range links {
		name := Filename(link)
		dest := filepath.Join(outDir, name)

		if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
			fmt.Fprintf(w, "cached: %s\n", name)
			result.Cached++
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		fmt.Fprintf(w, "downloading: (%d/%d) %s\n", i+1, len(links), name)
		if err := download(ctx, client, link.URL, dest, cfg, w); err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", name, err)
			result.Failed++
			continue
		}
		result.Downloaded++
	}

	fmt.Fprintf(w, "\nFetch summary: %d downloaded, %d cached, %d failed (total: %d)\n",
		result.Downloaded, result.Cached, result.Failed, result.Total())
	return result, nil
}

// Filename derives the on-disk name for a bulletin link. Daily bulletins
// with a resolved date get a stable daily-YYYY-MM-DD.pdf name so the
// convert and parse stages can key on the date; anything else keeps its
// URL basename with encoded spaces cleaned up.
func Filename(link types.BulletinLink) string {
	if link.Type == "daily" && link.Date != "" {
		return "daily-" + link.Date + ".pdf"
	}
	base := link.URL
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.ReplaceAll(base, "%20", "-")
	return strings.ReplaceAll(base, " ", "-")
}

// download fetches url into destPath through a temporary file, so a
// partial transfer never leaves a truncated PDF that a later run would
// treat as cached.
func download(ctx context.Context, client *http.Client, url, destPath string, cfg types.FetchConfig, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries, w)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
