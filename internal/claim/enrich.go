// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package claim

import (
	"regexp"
	"strings"
)

// keywordLabel maps a label to the keywords that select it.
type keywordLabel struct {
	label    string
	keywords []string
}

// tagTable is multi-label: every entry with a matching keyword contributes.
var tagTable = []keywordLabel{
	{"physics", []string{"field", "lagrangian", "hamiltonian", "quantum", "particle"}},
	{"mathematics", []string{"equation", "derivation", "theorem", "proof", "integral"}},
	{"consciousness", []string{"awareness", "consciousness", "mind", "experience"}},
	{"ethics", []string{"ethical", "moral", "value", "constraint"}},
	{"scalar_field", []string{"scalar", "phi", "φ", "field"}},
	{"higgs_portal", []string{"higgs", "portal", "mixing", "coupling"}},
	{"fifth_force", []string{"fifth force", "yukawa", "deviation", "gravity"}},
	{"collider", []string{"collider", "lhc", "cern", "atlas", "cms"}},
}

// mappingTable is first-match-wins.
var mappingTable = []keywordLabel{
	{"dharma", []string{"dharma", "buddha", "teaching", "sutra"}},
	{"ethics", []string{"ethical", "moral", "right", "wrong", "constraint"}},
	{"consciousness", []string{"awareness", "consciousness", "mind", "experience"}},
	{"emptiness", []string{"emptiness", "sunyata", "void", "empty"}},
	{"interdependence", []string{"interdependence", "dependent", "arising", "pratityasamutpada"}},
}

// equationRefPatterns capture the numeric part of an equation citation,
// e.g. "Equation (5.1)", "eq. 3", "EQ_5_1".
var equationRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:equation|eq\.?)\s*\(?\s*(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)EQ[_-](\d+(?:[_-]\d+)?)`),
}

var refSeparators = strings.NewReplacer(".", "_", "-", "_")

// Tags returns every topical tag whose keywords appear in the sentence.
func Tags(sentence string) []string {
	lower := strings.ToLower(sentence)
	tags := []string{}
	for _, t := range tagTable {
		if containsAny(lower, t.keywords) {
			tags = append(tags, t.label)
		}
	}
	return tags
}

// EquationRefs returns the equation citations in the sentence in canonical
// "EQ_<n>[_<m>]" form, first-seen order, without duplicates.
func EquationRefs(sentence string) []string {
	refs := []string{}
	seen := make(map[string]bool)
	for _, re := range equationRefPatterns {
		for _, m := range re.FindAllStringSubmatch(sentence, -1) {
			ref := "EQ_" + refSeparators.Replace(m[1])
			if seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// ScripturalMapping returns the first thematic label whose keywords appear
// in the sentence, or nil.
func ScripturalMapping(sentence string) *string {
	lower := strings.ToLower(sentence)
	for _, m := range mappingTable {
		if containsAny(lower, m.keywords) {
			label := m.label
			return &label
		}
	}
	return nil
}
