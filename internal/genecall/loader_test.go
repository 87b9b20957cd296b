package genecall

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatcherCalls_Object(t *testing.T) {
	input := `{"results": [
		{"gene": "CYP2C19", "diplotypes": ["*1/*2"], "variants": [{"chromosome": "chr10", "position": 94781859, "rsid": "rs4244285"}]},
		{"gene": "CYP2C9", "diplotypes": ["*1/*1", "*1/*3"]}
	]}`

	calls, err := ParseMatcherCalls(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, "CYP2C19", calls[0].Gene)
	assert.Equal(t, SourceMatcher, calls[0].Source)
	assert.Equal(t, Diplotypes{"*1/*2"}, calls[0].Diplotypes)
	require.Len(t, calls[0].Variants, 1)
	assert.Equal(t, int64(94781859), calls[0].Variants[0].Pos)

	assert.Equal(t, Diplotypes{"*1/*1", "*1/*3"}, calls[1].Diplotypes)
}

func TestParseMatcherCalls_Array(t *testing.T) {
	calls, err := ParseMatcherCalls(strings.NewReader(`[{"gene": "TPMT", "diplotypes": []}]`))
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.False(t, calls[0].HasDiplotypes())
}

func TestParseMatcherCalls_DiplotypeObjects(t *testing.T) {
	input := `{"results": [
		{"gene": "CYP2C19", "diplotypes": [{"name": "*1/*2", "score": 4}, {"name": "*1/*4A", "score": 4}]},
		{"gene": "TPMT", "diplotypes": ["*1/*1", {"name": "*1/*3A"}]}
	]}`

	calls, err := ParseMatcherCalls(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, Diplotypes{"*1/*2", "*1/*4A"}, calls[0].Diplotypes)
	assert.Equal(t, Diplotypes{"*1/*1", "*1/*3A"}, calls[1].Diplotypes)
}

func TestParseMatcherCalls_DiplotypeWithoutName(t *testing.T) {
	_, err := ParseMatcherCalls(strings.NewReader(`[{"gene": "TPMT", "diplotypes": [{"score": 1}]}]`))
	assert.ErrorContains(t, err, "missing name")

	_, err = ParseMatcherCalls(strings.NewReader(`[{"gene": "TPMT", "diplotypes": [7]}]`))
	assert.Error(t, err)
}

func TestParseMatcherCalls_MissingGene(t *testing.T) {
	_, err := ParseMatcherCalls(strings.NewReader(`[{"diplotypes": ["*1/*1"]}]`))
	assert.Error(t, err)
}

func TestParseMatcherCalls_Malformed(t *testing.T) {
	_, err := ParseMatcherCalls(strings.NewReader(`{"results": [`))
	assert.Error(t, err)
}

func TestParseAstrolabeCalls(t *testing.T) {
	input := "#ROI_label\tdiplotype labels\n" +
		"CYP2D6\t*1/*4,*1/*10\n" +
		"\n" +
		"CYP2C19\t\n"

	calls, err := ParseAstrolabeCalls(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, "CYP2D6", calls[0].Gene)
	assert.Equal(t, SourceAstrolabe, calls[0].Source)
	assert.Equal(t, Diplotypes{"*1/*4", "*1/*10"}, calls[0].Diplotypes)

	assert.Equal(t, "CYP2C19", calls[1].Gene)
	assert.Empty(t, calls[1].Diplotypes)
}

func TestParseAstrolabeCalls_EmptyGene(t *testing.T) {
	_, err := ParseAstrolabeCalls(strings.NewReader("\t*1/*1\n"))
	assert.Error(t, err)
}

func TestLoadMatcherCalls_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"gene": "SLCO1B1", "diplotypes": ["*1A/*5"]}]`), 0644))

	calls, err := LoadMatcherCalls(path)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "SLCO1B1", calls[0].Gene)
}

func TestLoadMatcherCalls_NotFound(t *testing.T) {
	_, err := LoadMatcherCalls("/nonexistent/calls.json")
	assert.Error(t, err)
}
