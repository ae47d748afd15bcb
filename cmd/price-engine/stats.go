// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/price-engine/internal/store"
	"github.com/pdiddy/price-engine/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print price store totals",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().String("data-dir", defaultDataDir, "directory holding the price database")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	s, err := store.Open(types.StoreConfig{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.ReadStats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("commodities: %d\n", stats.Commodities)
	fmt.Printf("prices:      %d\n", stats.Prices)
	fmt.Printf("dates:       %d\n", stats.Dates)
	fmt.Printf("categories:  %d\n", stats.Categories)
	if stats.FirstDate != nil && stats.LastDate != nil {
		fmt.Printf("range:       %s to %s\n", *stats.FirstDate, *stats.LastDate)
	}
	return nil
}
