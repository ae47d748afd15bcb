// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/price-engine/internal/crawl"
	"github.com/pdiddy/price-engine/pkg/types"
)

const defaultIndexURL = "https://www.da.gov.ph/price-monitoring/"

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Discover bulletin PDF links on the price monitoring page",
	Long: `Crawl fetches the price monitoring index page, extracts every PDF
link, classifies each as a daily or weekly bulletin, and writes the link
manifest that the fetch stage consumes.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().String("index-url", defaultIndexURL, "price monitoring index page")
	crawlCmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout")
	crawlCmd.Flags().String("bulletins-dir", defaultBulletinsDir, "base directory for bulletins")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	indexURL, _ := cmd.Flags().GetString("index-url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	bulletinsDir, _ := cmd.Flags().GetString("bulletins-dir")

	cfg := types.CrawlConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		IndexURL:     indexURL,
		BulletinsDir: bulletinsDir,
	}

	client := &http.Client{Timeout: cfg.Timeout}

	manifest, err := crawl.Crawl(cmd.Context(), client, cfg, os.Stdout)
	if err != nil {
		return err
	}

	path, err := crawl.WriteManifest(manifest, cfg.BulletinsDir)
	if err != nil {
		return err
	}
	fmt.Printf("manifest written: %s (%d links)\n", path, manifest.Total())
	return nil
}
