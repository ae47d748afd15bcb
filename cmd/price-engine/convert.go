// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/price-engine/internal/convert"
	"github.com/pdiddy/price-engine/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert downloaded bulletin PDFs to text",
	Long: `Convert runs pdftotext -layout on every PDF under bulletins/raw/
and writes the text to bulletins/text/. Bulletins already converted are
skipped.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("bulletins-dir", defaultBulletinsDir, "base directory for bulletins")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	bulletinsDir, _ := cmd.Flags().GetString("bulletins-dir")
	cfg := types.ConvertConfig{BulletinsDir: bulletinsDir}

	converter, err := convert.NewPdftotextConverter()
	if err != nil {
		return err
	}

	result, err := convert.ConvertAll(cmd.Context(), converter, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d bulletin(s) failed conversion", result.Failed)
	}
	return nil
}
