package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pgx/internal/guideline"
)

func twoGeneGuideline() *guideline.Guideline {
	return &guideline.Guideline{
		ID:           "PA-two",
		RelatedGenes: []string{"GENEA", "GENEB"},
		Groups: []*guideline.Group{
			{ID: "grp-poor", Name: "Poor", GenePhenotypes: []string{"Normal;Poor"}},
			{ID: "grp-int", Name: "Intermediate", GenePhenotypes: []string{"Intermediate;Normal", "Intermediate;Poor"}},
			{ID: "grp-any", Name: "Any intermediate", GenePhenotypes: []string{"Intermediate;Normal"}},
		},
	}
}

func newMatcher(t *testing.T, idx *GeneReportIndex) *Matcher {
	t.Helper()
	return NewMatcher(idx, NewSignatureBuilder(idx, twoGenePhenotypes()))
}

func TestMatcher_Matched(t *testing.T) {
	g := twoGeneGuideline()
	lib := newLibrary(g)
	idx := newIndex(t, lib, call("GENEA", "*1/*2"), call("GENEB", "*1/*1", "*1/*3"))
	m := newMatcher(t, idx)

	r := NewGuidelineReport(g)
	assert.Equal(t, StateUnevaluated, r.State())
	require.NoError(t, m.Match(r))

	assert.Equal(t, StateMatched, r.State())
	assert.True(t, r.Reportable())
	assert.Empty(t, r.UncalledGenes())
	assert.Equal(t, []string{"Intermediate;Normal"}, r.Signatures())

	require.Len(t, r.MatchedGroups(), 2)
	assert.Equal(t, "grp-int", r.MatchedGroups()[0].ID, "groups are recorded in guideline order")
	assert.Equal(t, "grp-any", r.MatchedGroups()[1].ID)
	assert.Equal(t, []string{"Intermediate;Normal"}, r.MatchedSignatures(r.Guideline.Group("grp-int")))
	assert.Empty(t, r.MatchedSignatures(r.Guideline.Group("grp-poor")))
	assert.True(t, r.HasMatches())
}

func TestMatcher_UncalledGene(t *testing.T) {
	g := twoGeneGuideline()
	lib := newLibrary(g)
	idx := newIndex(t, lib, call("GENEA", "*1/*2"))
	m := newMatcher(t, idx)

	r := NewGuidelineReport(g)
	require.NoError(t, m.Match(r))

	assert.Equal(t, StateNotReportable, r.State())
	assert.False(t, r.Reportable())
	assert.Equal(t, []string{"GENEB"}, r.UncalledGenes())
	assert.Empty(t, r.Signatures())
	assert.Empty(t, r.MatchedGroups())
}

func TestMatcher_AllUncalled(t *testing.T) {
	g := twoGeneGuideline()
	lib := newLibrary(g)
	m := newMatcher(t, newIndex(t, lib))

	r := NewGuidelineReport(g)
	require.NoError(t, m.Match(r))
	assert.Equal(t, []string{"GENEA", "GENEB"}, r.UncalledGenes())
}

func TestMatcher_ZeroMatchDistinctFromNotReportable(t *testing.T) {
	g := twoGeneGuideline()
	lib := newLibrary(g)
	idx := newIndex(t, lib, call("GENEA", "*9/*9"), call("GENEB", "*1/*1"))
	m := newMatcher(t, idx)

	r := NewGuidelineReport(g)
	require.NoError(t, m.Match(r))

	assert.Equal(t, StateMatched, r.State())
	assert.True(t, r.Reportable())
	assert.Equal(t, []string{"*9/*9;Normal"}, r.Signatures())
	assert.Empty(t, r.MatchedGroups())
	assert.False(t, r.HasMatches())
}

func TestMatcher_MultipleSignaturesTriggerGroup(t *testing.T) {
	g := &guideline.Guideline{
		ID:           "single",
		RelatedGenes: []string{"CYP2D6"},
		Groups: []*guideline.Group{
			{ID: "pm", Name: "PM", GenePhenotypes: []string{"*4/*4", "*4/*5"}},
		},
	}
	lib := newLibrary(g)
	idx := newIndex(t, lib, call("CYP2D6", "*4/*5", "*4/*4", "*1/*1"))
	m := NewMatcher(idx, NewSignatureBuilder(idx, nil))

	r := NewGuidelineReport(g)
	require.NoError(t, m.Match(r))
	require.Len(t, r.MatchedGroups(), 1)
	assert.Equal(t, []string{"*4/*4", "*4/*5"}, r.MatchedSignatures(r.Guideline.Group("pm")))
}

func TestMatcher_UnregisteredGeneFailsFast(t *testing.T) {
	g := twoGeneGuideline()
	idx := NewGeneReportIndex(nil)
	require.NoError(t, idx.Register("GENEA"))
	m := NewMatcher(idx, NewSignatureBuilder(idx, nil))

	err := m.Match(NewGuidelineReport(g))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestMatcher_AlreadyEvaluated(t *testing.T) {
	g := twoGeneGuideline()
	lib := newLibrary(g)
	m := newMatcher(t, newIndex(t, lib))

	r := NewGuidelineReport(g)
	require.NoError(t, m.Match(r))
	assert.Error(t, m.Match(r))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unevaluated", StateUnevaluated.String())
	assert.Equal(t, "not_reportable", StateNotReportable.String())
	assert.Equal(t, "reportable", StateReportable.String())
	assert.Equal(t, "matched", StateMatched.String())
}

func TestMatcher_GroupsSharingAnID(t *testing.T) {
	g := twoGeneGuideline()
	g.Groups = []*guideline.Group{
		{ID: "dup", Name: "first", GenePhenotypes: []string{"Intermediate;Normal"}},
		{ID: "dup", Name: "second", GenePhenotypes: []string{"Intermediate;Normal"}},
	}
	lib := newLibrary(g)
	idx := newIndex(t, lib, call("GENEA", "*1/*2"), call("GENEB", "*1/*1"))

	r := NewGuidelineReport(g)
	require.NoError(t, newMatcher(t, idx).Match(r))

	require.Len(t, r.MatchedGroups(), 2)
	assert.Equal(t, "first", r.MatchedGroups()[0].Name)
	assert.Equal(t, "second", r.MatchedGroups()[1].Name)
	for _, grp := range g.Groups {
		assert.Equal(t, []string{"Intermediate;Normal"}, r.MatchedSignatures(grp))
	}
}
