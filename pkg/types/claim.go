// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ClaimType is the evidentiary-strength category of a claim.
type ClaimType string

const (
	ClaimProven      ClaimType = "Proven"
	ClaimDerived     ClaimType = "Derived"
	ClaimModeled     ClaimType = "Modeled"
	ClaimConjectural ClaimType = "Conjectural"
	ClaimNarrative   ClaimType = "Narrative"
)

// ClaimTypes lists every claim category in classification order.
var ClaimTypes = []ClaimType{ClaimProven, ClaimDerived, ClaimModeled, ClaimConjectural, ClaimNarrative}

// Valid reports whether t is one of the five claim categories.
func (t ClaimType) Valid() bool {
	for _, c := range ClaimTypes {
		if t == c {
			return true
		}
	}
	return false
}

// Claim is an atomic assertion extracted from prose. Claims are immutable
// after creation.
type Claim struct {
	ID                string     `json:"claim_id" yaml:"claim_id"`
	Statement         string     `json:"statement" yaml:"statement"`
	Type              ClaimType  `json:"claim_type" yaml:"claim_type"`
	Confidence        float64    `json:"confidence" yaml:"confidence"`
	SourceDocument    string     `json:"source_document" yaml:"source_document"`
	SourceSection     string     `json:"source_section" yaml:"source_section"`
	PageNumber        *int       `json:"page_number" yaml:"page_number"`
	LineRange         *LineRange `json:"line_range" yaml:"line_range"`
	EquationRefs      []string   `json:"equation_refs" yaml:"equation_refs"`
	ScripturalMapping *string    `json:"scriptural_mapping" yaml:"scriptural_mapping"`
	Tags              []string   `json:"tags" yaml:"tags"`
	Dependencies      []string   `json:"dependencies" yaml:"dependencies"`
	Notes             *string    `json:"notes" yaml:"notes"`
}

// ClaimsExport is the document written to canon/claims/<doc_id>_claims.json.
type ClaimsExport struct {
	Claims     []Claim           `json:"claims" yaml:"claims"`
	TotalCount int               `json:"total_count" yaml:"total_count"`
	ByType     map[ClaimType]int `json:"by_type" yaml:"by_type"`
}
