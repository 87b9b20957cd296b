package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/genecall"
	"github.com/inodb/vibe-pgx/internal/guideline"
	"github.com/inodb/vibe-pgx/internal/phenotype"
)

func clopidogrel() *guideline.Guideline {
	return &guideline.Guideline{
		ID:           "PA166104948",
		Name:         "clopidogrel",
		Drugs:        []string{"clopidogrel"},
		RelatedGenes: []string{"CYP2C19"},
		Groups: []*guideline.Group{
			{ID: "cyp2c19-pm", Name: "Poor Metabolizer", GenePhenotypes: []string{"Poor Metabolizer"}},
			{ID: "cyp2c19-im", Name: "Intermediate Metabolizer", GenePhenotypes: []string{"Intermediate Metabolizer"}},
		},
	}
}

func warfarin() *guideline.Guideline {
	return &guideline.Guideline{
		ID:           "PA166104949",
		Name:         "warfarin",
		RelatedGenes: []string{"CYP2C9", "VKORC1"},
		Groups: []*guideline.Group{
			{ID: "warf-1", Name: "reduce dose", GenePhenotypes: []string{"*1/*3;-1639G>A/-1639G>A"}},
		},
	}
}

func tpmt() *guideline.Guideline {
	return &guideline.Guideline{
		ID:           "PA166104945",
		Name:         "thiopurines",
		RelatedGenes: []string{"TPMT", "CYP2C19"},
		Groups: []*guideline.Group{
			{ID: "tpmt-nm", Name: "Normal", GenePhenotypes: []string{"Intermediate Metabolizer;Normal"}},
		},
	}
}

func cyp2c19Phenotypes() phenotype.Map {
	return phenotype.Map{
		"CYP2C19": phenotype.NewGenePhenotype("CYP2C19", map[string]string{
			"*1/*1": "Normal Metabolizer",
			"*1/*4": "Intermediate Metabolizer",
			"*4/*4": "Poor Metabolizer",
		}),
		"TPMT": phenotype.NewGenePhenotype("TPMT", map[string]string{"*1/*1": "Normal"}),
	}
}

func TestNewContext_EndToEnd(t *testing.T) {
	lib := newLibrary(clopidogrel(), warfarin(), tpmt())
	calls := []*genecall.Call{
		{Gene: "CYP2C19", Diplotypes: []string{"*1/*4A"}},
		{Gene: "TPMT", Diplotypes: []string{"*1/*1"}},
		{Gene: "CYP2C9", Diplotypes: []string{"*1/*3"}},
		{Gene: "DPYD", Diplotypes: []string{"*1/*1"}},
	}

	ctx, err := NewContext(lib, calls, nil, cyp2c19Phenotypes(), Options{Logger: zap.NewNop(), Workers: 2})
	require.NoError(t, err)

	results := ctx.GuidelineResults()
	require.Len(t, results, 3)

	clop := results[0]
	assert.Equal(t, StateMatched, clop.State())
	assert.Equal(t, []string{"Intermediate Metabolizer"}, clop.Signatures())
	require.Len(t, clop.MatchedGroups(), 1)
	assert.Equal(t, "cyp2c19-im", clop.MatchedGroups()[0].ID)

	warf := results[1]
	assert.Equal(t, StateNotReportable, warf.State())
	assert.Equal(t, []string{"VKORC1"}, warf.UncalledGenes())

	thio := results[2]
	assert.Equal(t, StateMatched, thio.State())
	assert.Equal(t, []string{"Intermediate Metabolizer;Normal"}, thio.MatchedSignatures(thio.Guideline.Group("tpmt-nm")))

	cyp, err := ctx.GeneReport("CYP2C19")
	require.NoError(t, err)
	assert.Equal(t, []string{"*1/*4"}, cyp.Diplotypes(), "fix-up runs before signatures are built")
	require.Len(t, cyp.RelatedGuidelines(), 2)
	assert.Equal(t, "PA166104948", cyp.RelatedGuidelines()[0].Guideline.ID)
	assert.Equal(t, "PA166104945", cyp.RelatedGuidelines()[1].Guideline.ID)

	cyp2c9, err := ctx.GeneReport("CYP2C9")
	require.NoError(t, err)
	assert.True(t, cyp2c9.Called())
	assert.Empty(t, cyp2c9.RelatedGuidelines(), "not-reportable guidelines are not linked")

	_, err = ctx.GeneReport("DPYD")
	assert.True(t, errors.Is(err, ErrNotFound), "genes outside the library are dropped")

	assert.Len(t, ctx.GeneReports(), 4)
	assert.Equal(t, "Intermediate Metabolizer", ctx.Translate("CYP2C19", "*1/*4"))
}

func TestNewContext_GenePhenotypes(t *testing.T) {
	lib := newLibrary(clopidogrel(), tpmt())
	calls := []*genecall.Call{
		{Gene: "CYP2C19", Diplotypes: []string{"*1/*4"}},
		{Gene: "TPMT", Diplotypes: []string{"*1/*1"}},
	}

	ctx, err := NewContext(lib, calls, nil, cyp2c19Phenotypes(), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Intermediate Metabolizer", "Normal"}, ctx.GenePhenotypes("CYP2C19"))
	assert.Equal(t, []string{"Normal"}, ctx.GenePhenotypes("TPMT"))
	assert.Empty(t, ctx.GenePhenotypes("VKORC1"))
}

func TestNewContext_OverlayCalls(t *testing.T) {
	lib := newLibrary(clopidogrel())
	overlayCalls := []*genecall.Call{{Gene: "CYP2C19", Diplotypes: []string{"*4B/*4A"}}}

	ctx, err := NewContext(lib, nil, overlayCalls, cyp2c19Phenotypes(), Options{})
	require.NoError(t, err)

	r := ctx.GuidelineResults()[0]
	require.True(t, r.Reportable())
	assert.Equal(t, "cyp2c19-pm", r.MatchedGroups()[0].ID)

	cyp, _ := ctx.GeneReport("CYP2C19")
	require.Len(t, cyp.Calls(), 1)
	assert.Equal(t, genecall.SourceAstrolabe, cyp.Calls()[0].Source)
	assert.Empty(t, overlayCalls[0].Source, "input calls are not modified")
}

func TestNewContext_CustomFixups(t *testing.T) {
	rule, err := NewFixupRule("CYP2C19", `\*17\b`, "*1")
	require.NoError(t, err)

	lib := newLibrary(clopidogrel())
	calls := []*genecall.Call{{Gene: "CYP2C19", Diplotypes: []string{"*4A/*17"}}}

	ctx, err := NewContext(lib, calls, nil, cyp2c19Phenotypes(), Options{Fixups: []FixupRule{rule}})
	require.NoError(t, err)

	cyp, _ := ctx.GeneReport("CYP2C19")
	assert.Equal(t, []string{"*4A/*1"}, cyp.Diplotypes(), "custom table replaces the defaults")
}

func TestNewContext_NoCalls(t *testing.T) {
	ctx, err := NewContext(newLibrary(clopidogrel()), nil, nil, nil, Options{})
	require.NoError(t, err)

	r := ctx.GuidelineResults()[0]
	assert.Equal(t, StateNotReportable, r.State())
	assert.Equal(t, []string{"CYP2C19"}, r.UncalledGenes())
	assert.Empty(t, ctx.GenePhenotypes("CYP2C19"))
}
