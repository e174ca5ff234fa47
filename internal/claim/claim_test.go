// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package claim

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/canon-engine/pkg/types"
)

const couplingText = `The scalar field Φ_c couples to the Standard Model via Higgs-portal mixing.
This coupling generates a Yukawa-type fifth force that deviates from inverse-square gravity.
Experimental constraints from Eöt-Wash torsion balance tests limit the coupling strength.
The theoretical prediction suggests that the coupling may be observable in future experiments.
This has profound implications for our understanding of consciousness and awareness.`

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		wantType types.ClaimType
		wantConf float64
	}{
		{
			name:     "proven with certain keyword",
			sentence: "This is proven and demonstrated by experiment.",
			wantType: types.ClaimProven,
			wantConf: 1.0,
		},
		{
			name:     "no keywords",
			sentence: "The cat sat quietly on the warm rug today",
			wantType: types.ClaimDerived,
			wantConf: 0.5,
		},
		{
			name:     "tie falls back to default",
			sentence: "The result was verified and it follows directly from symmetry",
			wantType: types.ClaimDerived,
			wantConf: 0.5,
		},
		{
			name:     "modeled without adjustment",
			sentence: "Experimental constraints limit the coupling strength",
			wantType: types.ClaimModeled,
			wantConf: 0.60,
		},
		{
			name:     "conjectural with moderate keyword",
			sentence: "The theoretical prediction suggests that the coupling may be observable",
			wantType: types.ClaimConjectural,
			wantConf: 0.30,
		},
		{
			name:     "derived with very high keyword",
			sentence: "This clearly follows from the Lagrangian",
			wantType: types.ClaimDerived,
			wantConf: 0.80,
		},
		{
			name:     "first tier wins over later tiers",
			sentence: "It is established that the numerical model may hold",
			wantType: types.ClaimModeled,
			wantConf: 0.70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotConf := Classify(tt.sentence)
			assert.Equal(t, tt.wantType, gotType)
			assert.InDelta(t, tt.wantConf, gotConf, 1e-9)
		})
	}
}

func TestClassifyProvenConfidence(t *testing.T) {
	typ, conf := Classify("This is proven and demonstrated by experiment.")
	assert.Equal(t, types.ClaimProven, typ)
	assert.GreaterOrEqual(t, conf, 0.9)
}

func TestExtract(t *testing.T) {
	e := New()
	claims := e.Extract(couplingText, "Scalar Field Coupling", "test_doc.docx", nil)
	require.Len(t, claims, 5)

	wantTypes := []types.ClaimType{
		types.ClaimModeled,
		types.ClaimDerived,
		types.ClaimModeled,
		types.ClaimConjectural,
		types.ClaimNarrative,
	}
	for i, c := range claims {
		assert.Equal(t, wantTypes[i], c.Type, "claim %d: %s", i, c.Statement)
		assert.Equal(t, "CLAIM_Scalar_Field_Coupling_000"+strconv.Itoa(i+1), c.ID)
		assert.Equal(t, "test_doc.docx", c.SourceDocument)
		assert.Equal(t, "Scalar Field Coupling", c.SourceSection)
		require.NotNil(t, c.LineRange)
		assert.Equal(t, types.LineRange{i + 1, i + 1}, *c.LineRange)
		assert.NotNil(t, c.Dependencies)
	}

	assert.Equal(t, []string{"physics", "scalar_field", "higgs_portal"}, claims[0].Tags)
	assert.Nil(t, claims[0].ScripturalMapping)
	require.NotNil(t, claims[2].ScripturalMapping)
	assert.Equal(t, "ethics", *claims[2].ScripturalMapping)
	require.NotNil(t, claims[4].ScripturalMapping)
	assert.Equal(t, "consciousness", *claims[4].ScripturalMapping)
}

func TestExtractDropsLowConfidence(t *testing.T) {
	e := New()
	claims := e.Extract("One interpretation of the meaning here is purely ethical in nature.", "Notes", "doc.txt", nil)
	assert.Empty(t, claims)
	assert.Empty(t, e.Claims())
}

func TestExtractSkipsShortSentences(t *testing.T) {
	e := New()
	claims := e.Extract("Too short. Also tiny! This sentence is long enough to count.", "S", "doc.txt", nil)
	require.Len(t, claims, 1)
	assert.Equal(t, "This sentence is long enough to count.", claims[0].Statement)
}

func TestConfidenceAlwaysInRange(t *testing.T) {
	sentences := []string{
		"This is proven, demonstrated, established and verified by a theorem and its proof.",
		"Speculation and conjecture suggest a hypothesis that may possibly be a proposal.",
		"The interpretation and meaning and significance of this ethical awareness.",
		"The numerical simulation model bounds the parameter space and exclusion region.",
		"Nothing of note happens in this particular sentence at all.",
	}
	for _, s := range sentences {
		_, conf := Classify(s)
		assert.GreaterOrEqual(t, conf, 0.0, s)
		assert.LessOrEqual(t, conf, 1.0, s)
	}

	e := New()
	for _, c := range e.Extract(strings.Join(sentences, " "), "S", "doc", nil) {
		assert.GreaterOrEqual(t, c.Confidence, 0.0)
		assert.LessOrEqual(t, c.Confidence, 1.0)
	}
}

func TestIDsStrictlyIncreasing(t *testing.T) {
	e := New()
	e.Extract(couplingText, "One", "a.txt", nil)
	e.Extract(couplingText, "Two", "b.txt", nil)

	last := 0
	for _, c := range e.Claims() {
		n, err := strconv.Atoi(c.ID[strings.LastIndexByte(c.ID, '_')+1:])
		require.NoError(t, err, c.ID)
		assert.Greater(t, n, last, c.ID)
		last = n
	}
	assert.Equal(t, 10, last)
}

func TestTags(t *testing.T) {
	assert.Equal(t, []string{"physics", "scalar_field", "higgs_portal", "collider"},
		Tags("The Higgs field couples at the LHC"))
	assert.Equal(t, []string{}, Tags("Nothing relevant here"))
}

func TestEquationRefs(t *testing.T) {
	got := EquationRefs("As shown in Equation (5.1) and eq. 3, see also EQ_5_1 and EQ-7-2")
	assert.Equal(t, []string{"EQ_5_1", "EQ_3", "EQ_7_2"}, got)
	assert.Empty(t, EquationRefs("no references"))
}

func TestScripturalMappingFirstMatchWins(t *testing.T) {
	m := ScripturalMapping("The teaching on emptiness is morally right")
	require.NotNil(t, m)
	assert.Equal(t, "dharma", *m)
	assert.Nil(t, ScripturalMapping("A plain statement about torsion balances"))
}

func TestLocate(t *testing.T) {
	text := "first line\nsecond line has the claim\nthird"
	lr := locate(text, "second line has the claim")
	require.NotNil(t, lr)
	assert.Equal(t, types.LineRange{2, 2}, *lr)
	assert.Nil(t, locate(text, "second  line"))
}

func TestExport(t *testing.T) {
	e := New()
	e.Extract(couplingText, "S", "doc", nil)

	exp := e.Export()
	assert.Equal(t, 5, exp.TotalCount)
	assert.Len(t, exp.Claims, 5)
	assert.Equal(t, map[types.ClaimType]int{
		types.ClaimModeled:     2,
		types.ClaimDerived:     1,
		types.ClaimConjectural: 1,
		types.ClaimNarrative:   1,
	}, exp.ByType)

	empty := NewExport(nil)
	assert.Equal(t, 0, empty.TotalCount)
	assert.NotNil(t, empty.Claims)
	assert.NotNil(t, empty.ByType)
}
