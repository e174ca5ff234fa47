// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/canon-engine/internal/index"
	"github.com/pdiddy/canon-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the claim index (store, retrieve, export, equations, trace)",
	Long: `Index maintains a local SQLite database built from the canon's claim and
equation exports. Use subcommands to index documents, query claims, or export.`,
}

// --- store subcommand ---

var indexStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Load canon claims and equations into the index",
	Long: `Store reads canon/claims/*_claims.json and the matching equation files,
loads them into a SQLite database with FTS5 indexing, and writes
index/export.yaml. Unchanged documents are skipped on subsequent runs.`,
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var indexRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query claims with full-text search and filters",
	Long: `Retrieve searches claim statements using FTS5 full-text search,
structured filters (type, tag, document, section, confidence), or both.
Results carry the source document and section.`,
	RunE: runIndexRetrieve,
}

func runIndexRetrieve(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, --tag, --doc, --section, or --min-confidence")
	}

	store, err := index.NewStore(indexConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []index.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-11s  %-4s  %-50s  %-16s  %-20s  %s\n",
		"Rank", "Type", "Conf", "Statement", "Doc", "Claim", "Section")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 128))

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-11s  %.2f  %-50s  %-16s  %-20s  %s\n",
			i+1, r.Type, r.Confidence, truncate(r.Statement, 50), r.DocID, truncate(r.ID, 20), truncate(r.SourceSection, 20))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indexed claims to YAML or JSON",
	Long: `Export writes all indexed claims (or a filtered subset) to
index/export.yaml or index/export.json under the output directory. Supports
the same filter flags as retrieve for partial exports.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := index.NewStore(indexConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", store.ExportPath("yaml"))
	case "json":
		if err := store.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", store.ExportPath("json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

// --- equations subcommand ---

var indexEquationsCmd = &cobra.Command{
	Use:   "equations [doc_id]",
	Short: "List indexed equations, optionally for one document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := index.NewStore(indexConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		var docID string
		if len(args) == 1 {
			docID = args[0]
		}
		eqs, err := store.Equations(cmd.Context(), docID)
		if err != nil {
			return err
		}
		if len(eqs) == 0 {
			fmt.Println("No equations found.")
			return nil
		}
		for _, eq := range eqs {
			fmt.Printf("%-24s  %-20s  %s\n", eq.ID, truncate(eq.Section, 20), eq.Formula)
		}
		fmt.Printf("\n%d equations\n", len(eqs))
		return nil
	},
}

// --- trace subcommand ---

var indexTraceCmd = &cobra.Command{
	Use:   "trace <claim_id>",
	Short: "Show the source section text for a claim",
	Long: `Trace prints the section a claim was extracted from. Claim ids restart
with every ingest run, so the same id can exist in several documents; pass
--doc to choose one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := index.NewStore(indexConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		docID, _ := cmd.Flags().GetString("doc")
		text, err := store.Trace(cmd.Context(), docID, args[0])
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	claimType, _ := cmd.Flags().GetString("type")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	docID, _ := cmd.Flags().GetString("doc")
	section, _ := cmd.Flags().GetString("section")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:         queryText,
		Type:          types.ClaimType(claimType),
		Tags:          tags,
		DocID:         docID,
		Section:       section,
		MinConfidence: minConfidence,
		MaxResults:    limit,
	}
}

func addFilterFlags(cmd *cobra.Command, limitHelp string) {
	cmd.Flags().String("query", "", "full-text search query")
	cmd.Flags().String("type", "", "filter by claim type: Proven, Derived, Modeled, Conjectural, Narrative")
	cmd.Flags().StringSlice("tag", nil, "filter by tag (repeatable, all must match)")
	cmd.Flags().String("doc", "", "filter by document ID")
	cmd.Flags().String("section", "", "filter by section title")
	cmd.Flags().Float64("min-confidence", 0, "minimum claim confidence")
	cmd.Flags().Int("limit", 0, limitHelp)
}

func init() {
	indexCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")
	mustBind("index.max_results", indexCmd.PersistentFlags().Lookup("max-results"))

	addFilterFlags(indexRetrieveCmd, "maximum results (0 = use default)")
	indexRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(indexExportCmd, "maximum claims to export (0 = all)")
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	indexTraceCmd.Flags().String("doc", "", "document ID the claim belongs to")

	indexCmd.AddCommand(indexStoreCmd)
	indexCmd.AddCommand(indexRetrieveCmd)
	indexCmd.AddCommand(indexExportCmd)
	indexCmd.AddCommand(indexEquationsCmd)
	indexCmd.AddCommand(indexTraceCmd)

	rootCmd.AddCommand(indexCmd)
}
