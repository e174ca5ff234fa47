// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/canon-engine/internal/decode"
	"github.com/pdiddy/canon-engine/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [input]",
	Short: "Ingest a file or directory of documents into the canon",
	Long: `Ingest decodes each document, normalizes and segments its text, extracts
equations and claims per section, and writes the artifacts under the output
directory:

  sources/                     archived originals
  extracted/<doc_id>.json      normalized text and sections
  canon/sections/              per-document section lists
  canon/equations/             equations (JSON) and a LaTeX index
  canon/claims/                classified claims
  manifests/canon_manifest.json

Documents are identified by content hash. With --skip-existing, documents
already in the manifest are skipped. PDFs are converted through a markitdown
container when docker or podman is available.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := ingestConfig()
	if len(args) == 1 {
		cfg.Input = args[0]
	}

	ctx := cmd.Context()
	dec := decode.NewDefault(ctx, decodeConfig(), logger, os.Stderr)

	p := &ingest.Pipeline{
		Config:  cfg,
		Decoder: dec,
		Out:     os.Stdout,
		Logger:  logger,
	}
	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed ingestion", summary.Failed)
	}
	return nil
}

func init() {
	ingestCmd.Flags().String("input", "", "file or directory to ingest")
	ingestCmd.Flags().Bool("skip-existing", false, "skip documents whose hash is already in the manifest")
	ingestCmd.Flags().Int("workers", 1, "number of documents decoded concurrently")
	ingestCmd.Flags().StringSlice("extensions", nil, "file extensions accepted when walking a directory (default .pdf,.docx,.txt,.md,.html,.htm)")
	ingestCmd.Flags().String("schema", "", "claim schema YAML validated before ingestion")
	ingestCmd.Flags().String("pdf-image", "", "container image used to convert PDFs (default markitdown:latest)")
	ingestCmd.Flags().Bool("no-pdf", false, "do not look for a container runtime; PDFs fail as unsupported")

	mustBind("ingest.input", ingestCmd.Flags().Lookup("input"))
	mustBind("ingest.skip_existing", ingestCmd.Flags().Lookup("skip-existing"))
	mustBind("ingest.workers", ingestCmd.Flags().Lookup("workers"))
	mustBind("ingest.extensions", ingestCmd.Flags().Lookup("extensions"))
	mustBind("ingest.schema", ingestCmd.Flags().Lookup("schema"))
	mustBind("decode.disable_pdf", ingestCmd.Flags().Lookup("no-pdf"))
	mustBind("decode.pdf_image", ingestCmd.Flags().Lookup("pdf-image"))

	rootCmd.AddCommand(ingestCmd)
}
