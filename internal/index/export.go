// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/canon-engine/internal/fsutil"
)

// ExportEntry is one claim in an index export.
type ExportEntry struct {
	ID                string   `json:"claim_id" yaml:"claim_id"`
	Type              string   `json:"claim_type" yaml:"claim_type"`
	Statement         string   `json:"statement" yaml:"statement"`
	Confidence        float64  `json:"confidence" yaml:"confidence"`
	DocID             string   `json:"doc_id" yaml:"doc_id"`
	Filename          string   `json:"filename,omitempty" yaml:"filename,omitempty"`
	Section           string   `json:"section" yaml:"section"`
	Tags              []string `json:"tags" yaml:"tags"`
	EquationRefs      []string `json:"equation_refs" yaml:"equation_refs"`
	ScripturalMapping string   `json:"scriptural_mapping,omitempty" yaml:"scriptural_mapping,omitempty"`
}

const exportLimit = 1000000

// ExportYAML writes matching claims to <output>/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return fsutil.WriteFile(s.ExportPath("yaml"), data, 0o644)
}

// ExportJSON writes matching claims to <output>/index/export.json.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return fsutil.WriteFile(s.ExportPath("json"), append(data, '\n'), 0o644)
}

// ExportPath returns the export file path for the given extension.
func (s *Store) ExportPath(ext string) string {
	return filepath.Join(s.outputDir, indexDir, "export."+ext)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:           r.ID,
			Type:         string(r.Type),
			Statement:    r.Statement,
			Confidence:   r.Confidence,
			DocID:        r.DocID,
			Filename:     r.Filename,
			Section:      r.SourceSection,
			Tags:         r.Tags,
			EquationRefs: r.EquationRefs,
		}
		if r.ScripturalMapping != nil {
			entries[i].ScripturalMapping = *r.ScripturalMapping
		}
	}
	return entries, nil
}
