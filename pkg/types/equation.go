// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Equation is a captured mathematical expression with section provenance.
// RelatedClaims is the only field that changes after creation; it holds claim
// IDs, never claim values.
type Equation struct {
	ID            string     `json:"equation_id" yaml:"equation_id"`
	Formula       string     `json:"latex_formula" yaml:"latex_formula"`
	Context       string     `json:"context" yaml:"context"`
	Section       string     `json:"section" yaml:"section"`
	PageNumber    *int       `json:"page_number" yaml:"page_number"`
	LineRange     *LineRange `json:"line_range" yaml:"line_range"`
	RelatedClaims []string   `json:"related_claims" yaml:"related_claims"`
}

// EquationsExport is the document written to canon/equations/<doc_id>_equations.json.
type EquationsExport struct {
	Equations  []Equation `json:"equations" yaml:"equations"`
	TotalCount int        `json:"total_count" yaml:"total_count"`
}
