// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema loads and validates the claim schema YAML that describes the
// claim types, confidence levels and claim metadata fields of a canon.
package schema

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/canon-engine/internal/fsutil"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// FileName is the conventional schema file name, looked up next to the
// output directory when no path is given.
const FileName = "claim_schema.yaml"

// Schema is the on-disk claim schema.
type Schema struct {
	ClaimTypes       map[types.ClaimType]ClaimTypeDef `yaml:"claim_types"`
	ConfidenceLevels map[string]ConfidenceLevel       `yaml:"confidence_levels"`
	ClaimMetadata    *ClaimMetadata                   `yaml:"claim_metadata"`
}

// ClaimTypeDef describes one claim category.
type ClaimTypeDef struct {
	Description    string   `yaml:"description"`
	BaseConfidence *float64 `yaml:"base_confidence,omitempty"`
	Examples       []string `yaml:"examples,omitempty"`
}

// ConfidenceLevel is a named confidence band.
type ConfidenceLevel struct {
	Min      float64  `yaml:"min"`
	Max      float64  `yaml:"max"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// ClaimMetadata lists the claim record fields.
type ClaimMetadata struct {
	Required []string `yaml:"required"`
	Optional []string `yaml:"optional,omitempty"`
}

// claimFields are the field names a claim record serializes.
var claimFields = []string{
	"claim_id", "statement", "claim_type", "confidence", "source_document",
	"source_section", "page_number", "line_range", "equation_refs",
	"scriptural_mapping", "tags", "dependencies", "notes",
}

// Load reads and parses the schema at path without validating it.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading claim schema %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes schema YAML.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing claim schema: %w", err)
	}
	return &s, nil
}

// Validate reports every structural problem in the schema as one joined
// error, or nil when the schema is usable.
func (s *Schema) Validate() error {
	var errs []error

	if len(s.ClaimTypes) == 0 {
		errs = append(errs, errors.New("claim_types section is missing"))
	} else {
		for _, ct := range types.ClaimTypes {
			if _, ok := s.ClaimTypes[ct]; !ok {
				errs = append(errs, fmt.Errorf("claim_types is missing %s", ct))
			}
		}
		for ct, def := range s.ClaimTypes {
			if !ct.Valid() {
				errs = append(errs, fmt.Errorf("claim_types has unknown type %q", ct))
			}
			if def.BaseConfidence != nil && (*def.BaseConfidence < 0 || *def.BaseConfidence > 1) {
				errs = append(errs, fmt.Errorf("claim type %s: base_confidence %v outside [0,1]", ct, *def.BaseConfidence))
			}
		}
	}

	if len(s.ConfidenceLevels) == 0 {
		errs = append(errs, errors.New("confidence_levels section is missing"))
	}
	for _, name := range sortedKeys(s.ConfidenceLevels) {
		lvl := s.ConfidenceLevels[name]
		if lvl.Min < 0 || lvl.Max > 1 || lvl.Min > lvl.Max {
			errs = append(errs, fmt.Errorf("confidence level %s: range [%v,%v] invalid", name, lvl.Min, lvl.Max))
		}
	}

	if s.ClaimMetadata == nil {
		errs = append(errs, errors.New("claim_metadata section is missing"))
	} else {
		for _, f := range slices.Concat(s.ClaimMetadata.Required, s.ClaimMetadata.Optional) {
			if !slices.Contains(claimFields, f) {
				errs = append(errs, fmt.Errorf("claim_metadata names unknown field %q", f))
			}
		}
	}

	return errors.Join(errs...)
}

// LevelFor returns the name of the narrowest confidence level containing c.
func (s *Schema) LevelFor(c float64) (string, bool) {
	best, width := "", 2.0
	for _, name := range sortedKeys(s.ConfidenceLevels) {
		lvl := s.ConfidenceLevels[name]
		if c >= lvl.Min && c <= lvl.Max && lvl.Max-lvl.Min < width {
			best, width = name, lvl.Max-lvl.Min
		}
	}
	return best, best != ""
}

// Write marshals the schema to path.
func (s *Schema) Write(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling claim schema: %w", err)
	}
	if err := fsutil.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing claim schema %s: %w", path, err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, strings.Compare)
	return keys
}

func ptr(f float64) *float64 { return &f }

// Default returns a schema matching the built-in classifier.
func Default() *Schema {
	return &Schema{
		ClaimTypes: map[types.ClaimType]ClaimTypeDef{
			types.ClaimProven:      {Description: "Established by proof or experiment", BaseConfidence: ptr(0.95)},
			types.ClaimDerived:     {Description: "Follows from stated premises", BaseConfidence: ptr(0.75)},
			types.ClaimModeled:     {Description: "Result of a model, simulation or bound", BaseConfidence: ptr(0.60)},
			types.ClaimConjectural: {Description: "Hypothesis or speculation", BaseConfidence: ptr(0.40)},
			types.ClaimNarrative:   {Description: "Interpretive or philosophical statement", BaseConfidence: ptr(0.20)},
		},
		ConfidenceLevels: map[string]ConfidenceLevel{
			"certain":   {Min: 0.9, Max: 1.0},
			"very_high": {Min: 0.8, Max: 0.9},
			"high":      {Min: 0.6, Max: 0.8},
			"moderate":  {Min: 0.4, Max: 0.6},
			"low":       {Min: 0.2, Max: 0.4},
			"narrative": {Min: 0.0, Max: 0.2},
		},
		ClaimMetadata: &ClaimMetadata{
			Required: []string{"claim_id", "statement", "claim_type", "confidence", "source_document", "source_section"},
			Optional: []string{"page_number", "line_range", "equation_refs", "scriptural_mapping", "tags", "dependencies", "notes"},
		},
	}
}
