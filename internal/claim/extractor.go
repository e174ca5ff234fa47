// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package claim splits section text into sentences and keeps those that read
// as claims, each classified into an evidentiary category with a confidence.
package claim

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/canon-engine/internal/equation"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// minSentenceRunes filters fragments too short to carry a claim.
const minSentenceRunes = 20

// sentenceBoundaryRe matches terminal punctuation followed by whitespace.
var sentenceBoundaryRe = regexp.MustCompile(`[.!?]\s+`)

// Extractor accumulates claims across calls. IDs carry a counter that only
// grows for the lifetime of the Extractor. An Extractor is not safe for
// concurrent use.
type Extractor struct {
	counter int
	claims  []types.Claim
}

// New returns an empty Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Sentences splits text at sentence boundaries and drops short fragments.
func Sentences(text string) []string {
	var out []string
	for _, s := range sentenceBoundaryRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) < minSentenceRunes {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Extract classifies every sentence of text from the named section of
// sourceDoc and returns the ones that qualify as claims. They are also
// appended to the Extractor's accumulated list.
func (e *Extractor) Extract(text, section, sourceDoc string, page *int) []types.Claim {
	var found []types.Claim

	for _, sentence := range Sentences(text) {
		claimType, conf := Classify(sentence)
		if conf < MinConfidence {
			continue
		}

		e.counter++
		c := types.Claim{
			ID:                fmt.Sprintf("CLAIM_%s_%04d", equation.Slug(section), e.counter),
			Statement:         sentence,
			Type:              claimType,
			Confidence:        conf,
			SourceDocument:    sourceDoc,
			SourceSection:     section,
			PageNumber:        page,
			LineRange:         locate(text, sentence),
			EquationRefs:      EquationRefs(sentence),
			ScripturalMapping: ScripturalMapping(sentence),
			Tags:              Tags(sentence),
			Dependencies:      []string{},
		}
		found = append(found, c)
	}

	e.claims = append(e.claims, found...)
	return found
}

// locate returns the 1-based line of the sentence's first occurrence in
// text, or nil when the sentence cannot be found verbatim.
func locate(text, sentence string) *types.LineRange {
	i := strings.Index(text, sentence)
	if i < 0 {
		return nil
	}
	line := strings.Count(text[:i], "\n") + 1
	return &types.LineRange{line, line}
}

// Claims returns all accumulated claims in extraction order.
func (e *Extractor) Claims() []types.Claim {
	out := make([]types.Claim, len(e.claims))
	copy(out, e.claims)
	return out
}

// Export returns the accumulated claims with total and per-type counts.
func (e *Extractor) Export() types.ClaimsExport {
	return NewExport(e.claims)
}

// NewExport wraps a list of claims with total and per-type counts.
func NewExport(claims []types.Claim) types.ClaimsExport {
	out := make([]types.Claim, len(claims))
	copy(out, claims)
	byType := make(map[types.ClaimType]int)
	for _, c := range out {
		byType[c.Type]++
	}
	return types.ClaimsExport{Claims: out, TotalCount: len(out), ByType: byType}
}
