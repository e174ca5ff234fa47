// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package equation finds mathematical expressions in section text and keeps
// a running, ordered list of them for one ingestion run.
package equation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/canon-engine/pkg/types"
)

const (
	// minFormulaRunes rejects captures too short to be a formula.
	minFormulaRunes = 3

	// contextRunes is the window captured on each side of a match.
	contextRunes = 50
)

// family is one independent pattern used to locate candidate formulas.
type family struct {
	name string
	re   *regexp.Regexp
}

// families are scanned in this order. They are not mutually exclusive: the
// same text may be captured by several families and every capture becomes a
// candidate. Only exact (formula, section) duplicates are merged.
var families = []family{
	{"inline-dollar", regexp.MustCompile(`(?s)\$([^$]+)\$`)},
	{"inline-paren", regexp.MustCompile(`(?s)\\\(([^)]+)\\\)`)},
	{"display-dollar", regexp.MustCompile(`(?s)\$\$([^$]+)\$\$`)},
	{"display-bracket", regexp.MustCompile(`(?s)\\\[([^\]]+)\\\]`)},
	{"numbered", regexp.MustCompile(`(?s)\\begin\{equation\}(.*?)\\end\{equation\}`)},
	{"assignment", regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*\s*=\s*[^.\n$]+)`)},
	{"fraction", regexp.MustCompile(`\\(frac\{([^}]+)\}\{([^}]+)\})`)},
	{"subscript", regexp.MustCompile(`([A-Za-z]_\{([^}]+)\})`)},
	{"superscript", regexp.MustCompile(`([A-Za-z]\^\{([^}]+)\})`)},
}

// nonAlnumRe matches characters replaced when building IDs from section titles.
var nonAlnumRe = regexp.MustCompile(`[^A-Za-z0-9]`)

// Slug replaces every character outside [A-Za-z0-9] with an underscore.
func Slug(section string) string {
	return nonAlnumRe.ReplaceAllString(section, "_")
}

// Extractor accumulates equations across calls. IDs carry a counter that
// only grows for the lifetime of the Extractor. An Extractor is not safe for
// concurrent use; give each pipeline its own.
type Extractor struct {
	counter   int
	equations []types.Equation
	byID      map[string]int
}

// New returns an empty Extractor.
func New() *Extractor {
	return &Extractor{byID: make(map[string]int)}
}

type candidate struct {
	formula    string
	start, end int
}

// Extract scans text from the named section and returns the equations it
// found, after dropping exact duplicates. The survivors are also appended to
// the Extractor's accumulated list.
func (e *Extractor) Extract(text, section string, page *int) []types.Equation {
	var found []types.Equation

	for _, fam := range families {
		for _, m := range fam.re.FindAllStringSubmatchIndex(text, -1) {
			c, ok := newCandidate(text, m)
			if !ok {
				continue
			}

			e.counter++
			eq := types.Equation{
				ID:            fmt.Sprintf("EQ_%s_%d", Slug(section), e.counter),
				Formula:       c.formula,
				Context:       contextWindow(text, c.start, c.end),
				Section:       section,
				PageNumber:    page,
				LineRange:     lineRange(text, c.start, c.end),
				RelatedClaims: []string{},
			}
			found = append(found, eq)
		}
	}

	type key struct{ formula, section string }
	seen := make(map[key]bool, len(found))
	unique := found[:0]
	for _, eq := range found {
		k := key{eq.Formula, eq.Section}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, eq)
	}

	for _, eq := range unique {
		e.byID[eq.ID] = len(e.equations)
		e.equations = append(e.equations, eq)
	}

	out := make([]types.Equation, len(unique))
	copy(out, unique)
	return out
}

// newCandidate builds a candidate from a submatch index slice, preferring
// the first capture group over the whole match. Captures that are too short
// or have unbalanced braces are rejected.
func newCandidate(text string, m []int) (candidate, bool) {
	start, end := m[0], m[1]
	formula := text[start:end]
	if len(m) >= 4 && m[2] >= 0 {
		formula = text[m[2]:m[3]]
	}
	formula = strings.TrimSpace(formula)

	if utf8.RuneCountInString(formula) < minFormulaRunes {
		return candidate{}, false
	}
	if strings.Count(formula, "{") != strings.Count(formula, "}") {
		return candidate{}, false
	}
	return candidate{formula: formula, start: start, end: end}, true
}

// contextWindow returns up to contextRunes runes on either side of
// text[start:end], trimmed.
func contextWindow(text string, start, end int) string {
	from := start
	for n := 0; n < contextRunes && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for n := 0; n < contextRunes && to < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return strings.TrimSpace(text[from:to])
}

// lineRange converts byte offsets to 1-based line numbers.
func lineRange(text string, start, end int) *types.LineRange {
	first := strings.Count(text[:start], "\n") + 1
	last := first + strings.Count(text[start:end], "\n")
	return &types.LineRange{first, last}
}

// Link records claimID as related to the equation. It is idempotent and
// reports whether the equation exists.
func (e *Extractor) Link(equationID, claimID string) bool {
	i, ok := e.byID[equationID]
	if !ok {
		return false
	}
	eq := &e.equations[i]
	for _, id := range eq.RelatedClaims {
		if id == claimID {
			return true
		}
	}
	eq.RelatedClaims = append(eq.RelatedClaims, claimID)
	return true
}

// Get returns the equation with the given ID.
func (e *Extractor) Get(id string) (types.Equation, bool) {
	i, ok := e.byID[id]
	if !ok {
		return types.Equation{}, false
	}
	return cloneEquation(e.equations[i]), true
}

// InSection returns every accumulated equation from the named section.
func (e *Extractor) InSection(section string) []types.Equation {
	var out []types.Equation
	for _, eq := range e.equations {
		if eq.Section == section {
			out = append(out, cloneEquation(eq))
		}
	}
	return out
}

// Equations returns all accumulated equations in extraction order.
func (e *Extractor) Equations() []types.Equation {
	out := make([]types.Equation, len(e.equations))
	for i, eq := range e.equations {
		out[i] = cloneEquation(eq)
	}
	return out
}

// Export returns the accumulated equations with their count.
func (e *Extractor) Export() types.EquationsExport {
	return NewExport(e.Equations())
}

// NewExport wraps a list of equations for serialization.
func NewExport(eqs []types.Equation) types.EquationsExport {
	if eqs == nil {
		eqs = []types.Equation{}
	}
	return types.EquationsExport{Equations: eqs, TotalCount: len(eqs)}
}

func cloneEquation(eq types.Equation) types.Equation {
	eq.RelatedClaims = append([]string{}, eq.RelatedClaims...)
	return eq
}
