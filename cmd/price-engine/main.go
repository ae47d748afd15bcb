// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the price-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultUserAgent    = "price-engine/0.1"
	defaultBulletinsDir = "bulletins"
	defaultDataDir      = "data"
)

// rootCmd is the base command for the price-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "price-engine",
	Short: "Pipeline for agricultural price bulletin data",
	Long: `price-engine turns published price bulletin PDFs into a queryable
commodity price database.

Each pipeline stage is a subcommand: crawl discovers bulletin links,
fetch downloads them, convert extracts their text, parse loads commodity
records into the store, and canonicalize collapses noisy commodity
identities into canonical ones. serve exposes the store over a read-only
HTTP API.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./price-engine.yaml or ~/.config/price-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("price-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "price-engine"))
		}
	}

	viper.SetEnvPrefix("PRICE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
