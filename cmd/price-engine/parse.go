// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/price-engine/internal/extract"
	"github.com/pdiddy/price-engine/internal/store"
	"github.com/pdiddy/price-engine/pkg/types"
)

// filenameDate matches the date stem in bulletin filenames like
// daily-2026-02-08.txt.
var filenameDate = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse converted bulletins into the price store",
	Long: `Parse reads every text bulletin under bulletins/text/, extracts
commodity price records, and stores them. The bulletin date comes from
the filename when present, otherwise from the document text. Re-parsing
a bulletin updates its rows in place.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("bulletins-dir", defaultBulletinsDir, "base directory for bulletins")
	parseCmd.Flags().String("data-dir", defaultDataDir, "directory holding the price database")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	bulletinsDir, _ := cmd.Flags().GetString("bulletins-dir")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	textDirPath := filepath.Join(bulletinsDir, "text")
	entries, err := os.ReadDir(textDirPath)
	if err != nil {
		return fmt.Errorf("reading text directory (run convert first): %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return fmt.Errorf("no text bulletins under %s", textDirPath)
	}

	s, err := store.Open(types.StoreConfig{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer s.Close()

	var parsed, failed, prices int
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(textDirPath, name))
		if err != nil {
			fmt.Printf("failed: %s (%v)\n", name, err)
			failed++
			continue
		}

		doc := types.Document{
			Text:   string(data),
			Date:   filenameDate.FindString(name),
			Source: name,
		}
		result := extract.Parse(doc)

		summary, err := s.StoreResult(cmd.Context(), result, sourceType(name))
		if err != nil {
			fmt.Printf("failed: %s (%v)\n", name, err)
			failed++
			continue
		}

		if result.Method == types.MethodText {
			fmt.Printf("parsed: %s date=%s commodities=%d prices=%d\n",
				name, result.Date, len(result.Commodities), summary.Prices)
			parsed++
			prices += summary.Prices
		} else {
			fmt.Printf("failed: %s (%s)\n", name, result.Method)
			failed++
		}
	}

	fmt.Printf("\nParse summary: %d parsed, %d failed, %d price rows (total: %d)\n",
		parsed, failed, prices, parsed+failed)
	if failed > 0 {
		return fmt.Errorf("%d bulletin(s) failed to parse", failed)
	}
	return nil
}

func sourceType(filename string) string {
	if strings.Contains(strings.ToLower(filename), "weekly") {
		return "weekly"
	}
	return "daily"
}
