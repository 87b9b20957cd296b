package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pgx/internal/genecall"
	"github.com/inodb/vibe-pgx/internal/guideline"
)

func TestGeneReportIndex_RegisterDuplicate(t *testing.T) {
	idx := NewGeneReportIndex(nil)
	require.NoError(t, idx.Register("CYP2C19"))

	err := idx.Register("CYP2C19")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateRegistration))
	var dup *DuplicateRegistrationError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "CYP2C19", dup.Gene)
}

func TestGeneReportIndex_ForLibrary(t *testing.T) {
	lib := newLibrary(
		&guideline.Guideline{ID: "g1", RelatedGenes: []string{"CYP2C9", "VKORC1"}},
		&guideline.Guideline{ID: "g2", RelatedGenes: []string{"CYP2C9"}},
	)
	idx := newIndex(t, lib)
	assert.Equal(t, 2, idx.Len())

	reports := idx.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, "CYP2C9", reports[0].Gene)
	assert.Equal(t, "VKORC1", reports[1].Gene)
	assert.False(t, reports[0].Called())
}

func TestGeneReportIndex_LookupNotFound(t *testing.T) {
	idx := newIndex(t, newLibrary(&guideline.Guideline{ID: "g", RelatedGenes: []string{"TPMT"}}))

	_, err := idx.Lookup("DPYD")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGeneReportIndex_MergeUnknownGeneDropped(t *testing.T) {
	idx := newIndex(t, newLibrary(&guideline.Guideline{ID: "g", RelatedGenes: []string{"TPMT"}}))

	assert.False(t, idx.Merge(call("DPYD", "*1/*1")))
	assert.Equal(t, 1, idx.Len())
	_, err := idx.Lookup("DPYD")
	assert.Error(t, err)
}

func TestGeneReportIndex_MergeSameSourceSupersedes(t *testing.T) {
	idx := newIndex(t, newLibrary(&guideline.Guideline{ID: "g", RelatedGenes: []string{"CYP2D6"}}))

	require.True(t, idx.Merge(call("CYP2D6", "*1/*1", "*1/*2")))
	require.True(t, idx.Merge(call("CYP2D6", "*4/*4")))

	r, err := idx.Lookup("CYP2D6")
	require.NoError(t, err)
	assert.Equal(t, []string{"*4/*4"}, r.Diplotypes())
	assert.True(t, r.Called())
}

func TestGeneReportIndex_MergeSourcesUnioned(t *testing.T) {
	idx := newIndex(t, newLibrary(&guideline.Guideline{ID: "g", RelatedGenes: []string{"CYP2D6"}}))

	idx.Merge(call("CYP2D6", "*1/*2"))
	idx.Merge(overlay("CYP2D6", "*1/*4", "*1/*2"))

	r, _ := idx.Lookup("CYP2D6")
	assert.Equal(t, []string{"*1/*2", "*1/*4"}, r.Diplotypes())

	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, genecall.SourceMatcher, calls[0].Source)
	assert.Equal(t, genecall.SourceAstrolabe, calls[1].Source)
}

func TestGeneReportIndex_EmptyCallNotCalled(t *testing.T) {
	idx := newIndex(t, newLibrary(&guideline.Guideline{ID: "g", RelatedGenes: []string{"CYP2D6"}}))

	require.True(t, idx.Merge(call("CYP2D6")))
	r, _ := idx.Lookup("CYP2D6")
	assert.False(t, r.Called())
	assert.Len(t, r.Calls(), 1)

	idx.Merge(overlay("CYP2D6", "*1/*1"))
	assert.True(t, r.Called())
}

func TestGeneReportIndex_FixupAppliedOnMerge(t *testing.T) {
	idx := newIndex(t, newLibrary(&guideline.Guideline{ID: "g", RelatedGenes: []string{"CYP2C19"}}))

	idx.Merge(call("CYP2C19", "*1/*4A"))
	r, _ := idx.Lookup("CYP2C19")
	assert.Equal(t, []string{"*1/*4"}, r.Diplotypes())
}
