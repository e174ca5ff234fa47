// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package claim

import (
	"regexp"
	"strings"

	"github.com/pdiddy/canon-engine/pkg/types"
)

const (
	// DefaultConfidence is assigned when no category wins outright.
	DefaultConfidence = 0.5

	// MinConfidence is the threshold below which a sentence is not a claim.
	MinConfidence = 0.2
)

// DefaultType is assigned on ties and when no category phrase matches.
const DefaultType = types.ClaimDerived

// categoryRule scores one claim category by counting phrase matches.
type categoryRule struct {
	claimType types.ClaimType
	base      float64
	phrases   []*regexp.Regexp
}

// categoryRules are evaluated in this order against the lowercased sentence.
var categoryRules = []categoryRule{
	{types.ClaimProven, 0.95, compileAll(
		`(?:proven|demonstrated|established|verified|confirmed)`,
		`(?:theorem|proof|derivation)`,
		`(?:experimentally\s+verified|empirically\s+confirmed)`,
	)},
	{types.ClaimDerived, 0.75, compileAll(
		`(?:derived|follows|implies|consequence|predicts)`,
		`(?:from\s+equation|from\s+the\s+lagrangian)`,
		`(?:theoretical\s+prediction)`,
	)},
	{types.ClaimModeled, 0.60, compileAll(
		`(?:model|simulation|computation|numerical)`,
		`(?:constraint|bound|limit)`,
		`(?:parameter\s+space|exclusion\s+region)`,
	)},
	{types.ClaimConjectural, 0.40, compileAll(
		`(?:hypothesis|proposal|suggests|may\s+be|possibly)`,
		`(?:speculation|conjecture|theoretical\s+extension)`,
	)},
	{types.ClaimNarrative, 0.20, compileAll(
		`(?:interpretation|meaning|significance|implication)`,
		`(?:ethical|metaphysical|consciousness|awareness)`,
		`(?:scriptural|dharma|emptiness|interdependence)`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// confidenceTier adjusts the base confidence when any keyword is present.
type confidenceTier struct {
	name       string
	adjustment float64
	keywords   []string
}

// confidenceTiers are ordered by severity; only the first tier with a
// matching keyword is applied.
var confidenceTiers = []confidenceTier{
	{"certain", 0.10, []string{"proven", "demonstrated", "established", "verified"}},
	{"very_high", 0.05, []string{"strongly", "clearly", "definitively"}},
	{"high", 0.0, []string{"likely", "probably", "well-supported"}},
	{"moderate", -0.10, []string{"may", "could", "possibly", "suggests"}},
	{"low", -0.20, []string{"speculation", "conjecture", "hypothesis"}},
	{"narrative", -0.10, []string{"interpretation", "meaning", "significance"}},
}

// Classify assigns a claim category and confidence to a sentence. The
// category with the strictly highest phrase count wins; ties for the top
// score and sentences with no matches get DefaultType at DefaultConfidence.
func Classify(sentence string) (types.ClaimType, float64) {
	lower := strings.ToLower(sentence)

	best := -1
	bestScore := 0
	tied := false
	for i, rule := range categoryRules {
		score := 0
		for _, re := range rule.phrases {
			score += len(re.FindAllStringIndex(lower, -1))
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = i, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}

	if best < 0 || tied {
		return DefaultType, DefaultConfidence
	}
	rule := categoryRules[best]
	return rule.claimType, confidence(lower, rule.base)
}

// confidence applies the first matching tier to base and clamps to [0, 1].
func confidence(lower string, base float64) float64 {
	for _, tier := range confidenceTiers {
		if containsAny(lower, tier.keywords) {
			base += tier.adjustment
			break
		}
	}
	return clamp(base)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
