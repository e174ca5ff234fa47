// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/canon-engine/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Validate or create the claim schema file",
}

var schemaValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a claim schema YAML file",
	Long: `Validate checks that the schema defines claim_types, confidence_levels,
and claim_metadata, that all five claim types are present, and that every
confidence value lies in [0, 1]. The path defaults to ` + schema.FileName + `.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := schema.FileName
		if len(args) == 1 {
			path = args[0]
		}
		s, err := schema.Load(path)
		if err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s: valid (%d claim types, %d confidence levels)\n",
			path, len(s.ClaimTypes), len(s.ConfidenceLevels))
		return nil
	},
}

var schemaInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default claim schema",
	Long: `Init writes a schema matching the built-in classifier: the five claim
types with their base confidences, the confidence levels, and the claim
metadata fields. An existing file is left untouched unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := schema.FileName
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
		if err := schema.Default().Write(path); err != nil {
			return err
		}
		fmt.Println("Wrote", path)
		return nil
	},
}

func init() {
	schemaInitCmd.Flags().Bool("force", false, "overwrite an existing schema file")

	schemaCmd.AddCommand(schemaValidateCmd)
	schemaCmd.AddCommand(schemaInitCmd)
	rootCmd.AddCommand(schemaCmd)
}
