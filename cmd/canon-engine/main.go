// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the canon-engine CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// logger receives debug tracing; --verbose routes it to stderr.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// rootCmd is the base command for the canon-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "canon-engine",
	Short: "Ingest documents into a canon of sections, equations, and claims",
	Long: `canon-engine turns a collection of documents (PDF, DOCX, HTML, Markdown,
plain text) into a canon: normalized text, sections, extracted equations, and
classified claims, tracked by a content-hash manifest.

Use ingest to build or extend the canon, index to search it, and schema to
manage the claim schema file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("verbose") {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./canon-engine.yaml or ~/.config/canon-engine/canon-engine.yaml)")
	rootCmd.PersistentFlags().String("output-dir", "", "canon base directory (contains sources/, extracted/, canon/, manifests/, index/)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging on stderr")

	mustBind("ingest.output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	mustBind("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("canon-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "canon-engine"))
		}
	}

	viper.SetEnvPrefix("CANON_ENGINE")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
