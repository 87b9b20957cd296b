package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pgx/internal/genecall"
	"github.com/inodb/vibe-pgx/internal/guideline"
	"github.com/inodb/vibe-pgx/internal/phenotype"
)

func newLibrary(guidelines ...*guideline.Guideline) *guideline.Library {
	return guideline.NewLibrary(guidelines)
}

func newIndex(t *testing.T, lib *guideline.Library, calls ...*genecall.Call) *GeneReportIndex {
	t.Helper()
	idx, err := NewGeneReportIndexForLibrary(lib, newNormalizer(t, DefaultFixups()...))
	require.NoError(t, err)
	for _, c := range calls {
		idx.Merge(c)
	}
	return idx
}

func newNormalizer(t *testing.T, rules ...FixupRule) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(rules...)
	require.NoError(t, err)
	return n
}

func call(gene string, diplotypes ...string) *genecall.Call {
	return &genecall.Call{Gene: gene, Source: genecall.SourceMatcher, Diplotypes: diplotypes}
}

func overlay(gene string, diplotypes ...string) *genecall.Call {
	return &genecall.Call{Gene: gene, Source: genecall.SourceAstrolabe, Diplotypes: diplotypes}
}

// twoGenePhenotypes maps GENEA:*1/*2 to Intermediate and both called GENEB
// diplotypes to Normal.
func twoGenePhenotypes() phenotype.Map {
	return phenotype.Map{
		"GENEA": phenotype.NewGenePhenotype("GENEA", map[string]string{"*1/*2": "Intermediate"}),
		"GENEB": phenotype.NewGenePhenotype("GENEB", map[string]string{"*1/*1": "Normal", "*1/*3": "Normal"}),
	}
}
