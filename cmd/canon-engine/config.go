// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/canon-engine/pkg/types"
)

// envKeyReplacer maps nested keys to variables such as CANON_ENGINE_INGEST_OUTPUT_DIR.
var envKeyReplacer = strings.NewReplacer(".", "_")

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func init() {
	viper.SetDefault("ingest.workers", 1)
	viper.SetDefault("ingest.extensions", types.DefaultExtensions)
	viper.SetDefault("decode.pdf_image", "markitdown:latest")
	viper.SetDefault("index.max_results", 20)
}

// ingestConfig reads the ingest settings from flags, environment, and config file.
func ingestConfig() types.IngestConfig {
	return types.IngestConfig{
		Input:        viper.GetString("ingest.input"),
		OutputDir:    viper.GetString("ingest.output_dir"),
		SkipExisting: viper.GetBool("ingest.skip_existing"),
		Extensions:   normalizeExtensions(viper.GetStringSlice("ingest.extensions")),
		Workers:      viper.GetInt("ingest.workers"),
		SchemaPath:   viper.GetString("ingest.schema"),
	}
}

func decodeConfig() types.DecodeConfig {
	return types.DecodeConfig{
		PDFImage:   viper.GetString("decode.pdf_image"),
		DisablePDF: viper.GetBool("decode.disable_pdf"),
	}
}

func indexConfig() types.IndexConfig {
	return types.IndexConfig{
		OutputDir:  viper.GetString("ingest.output_dir"),
		MaxResults: viper.GetInt("index.max_results"),
	}
}

// normalizeExtensions lowercases entries and adds a leading dot, so both
// "PDF" and ".pdf" select PDF files.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
