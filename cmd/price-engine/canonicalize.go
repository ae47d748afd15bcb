// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/price-engine/internal/canonical"
	"github.com/pdiddy/price-engine/internal/store"
	"github.com/pdiddy/price-engine/pkg/types"
)

var canonicalizeCmd = &cobra.Command{
	Use:   "canonicalize",
	Short: "Collapse noisy commodity identities into canonical ones",
	Long: `Canonicalize rewrites the commodity table against the canonical
rule set: every commodity matching a rule has its price observations
reassigned to one canonical identity, and commodities matching no rule
are removed along with their observations. The rewrite is atomic and
safe to re-run; a second pass finds nothing left to merge.`,
	RunE: runCanonicalize,
}

func init() {
	canonicalizeCmd.Flags().String("data-dir", defaultDataDir, "directory holding the price database")
	canonicalizeCmd.Flags().String("report", "", "write the per-rule merge report to this YAML file")

	rootCmd.AddCommand(canonicalizeCmd)
}

func runCanonicalize(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	reportPath, _ := cmd.Flags().GetString("report")

	rules, err := canonical.LoadRules()
	if err != nil {
		return err
	}

	s, err := store.Open(types.StoreConfig{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer s.Close()

	reports, err := canonical.Merge(cmd.Context(), s, rules, os.Stdout)
	if err != nil {
		return err
	}

	if reportPath != "" {
		data, err := yaml.Marshal(reports)
		if err != nil {
			return fmt.Errorf("marshaling merge report: %w", err)
		}
		if err := os.WriteFile(reportPath, data, 0o644); err != nil {
			return fmt.Errorf("writing merge report: %w", err)
		}
		fmt.Printf("report written: %s\n", reportPath)
	}
	return nil
}
