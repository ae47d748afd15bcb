// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/price-engine/internal/crawl"
	"github.com/pdiddy/price-engine/internal/fetch"
	"github.com/pdiddy/price-engine/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download bulletin PDFs listed in the crawl manifest",
	Long: `Fetch downloads the daily bulletins discovered by crawl into
bulletins/raw/. Files already on disk are kept, so an interrupted run
resumes where it stopped. Downloads are rate limited.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 60*time.Second, "HTTP request timeout")
	fetchCmd.Flags().Duration("delay", 500*time.Millisecond, "minimum interval between downloads")
	fetchCmd.Flags().Int("max-retries", 0, "retry budget for rate-limited responses (0 = default)")
	fetchCmd.Flags().Bool("weekly", false, "also download weekly bulletins")
	fetchCmd.Flags().String("bulletins-dir", defaultBulletinsDir, "base directory for bulletins")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	delay, _ := cmd.Flags().GetDuration("delay")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	weekly, _ := cmd.Flags().GetBool("weekly")
	bulletinsDir, _ := cmd.Flags().GetString("bulletins-dir")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
		MaxRetries:    maxRetries,
		BulletinsDir:  bulletinsDir,
	}

	manifest, err := crawl.ReadManifest(cfg.BulletinsDir)
	if err != nil {
		return fmt.Errorf("no manifest found, run crawl first: %w", err)
	}

	links := manifest.Daily
	if weekly {
		links = append(links, manifest.Weekly...)
	}
	if len(links) == 0 {
		return fmt.Errorf("manifest lists no bulletins to download")
	}

	client := &http.Client{Timeout: cfg.Timeout}

	result, err := fetch.FetchAll(cmd.Context(), client, links, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d bulletin(s) failed to download", result.Failed)
	}
	return nil
}
