package report

import (
	"sort"

	"github.com/inodb/vibe-pgx/internal/genecall"
	"github.com/inodb/vibe-pgx/internal/guideline"
)

// GeneReportIndex owns the single GeneReport for every gene the guideline
// library references. One index serves one sample.
type GeneReportIndex struct {
	reports    map[string]*GeneReport
	normalizer *Normalizer
}

// NewGeneReportIndex creates an empty index using n for fix-ups.
func NewGeneReportIndex(n *Normalizer) *GeneReportIndex {
	return &GeneReportIndex{
		reports:    make(map[string]*GeneReport),
		normalizer: n,
	}
}

// NewGeneReportIndexForLibrary registers one report per distinct related
// gene in lib.
func NewGeneReportIndexForLibrary(lib *guideline.Library, n *Normalizer) (*GeneReportIndex, error) {
	idx := NewGeneReportIndex(n)
	for _, gene := range lib.RelatedGenes() {
		if err := idx.Register(gene); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Register creates the report for gene.
func (idx *GeneReportIndex) Register(gene string) error {
	if _, ok := idx.reports[gene]; ok {
		return &DuplicateRegistrationError{Gene: gene}
	}
	idx.reports[gene] = newGeneReport(gene)
	return nil
}

// Merge ingests one call. Calls for unregistered genes are dropped and
// Merge returns false. A second call from the same source supersedes the
// first; calls from different sources are unioned.
func (idx *GeneReportIndex) Merge(call *genecall.Call) bool {
	r, ok := idx.reports[call.Gene]
	if !ok {
		return false
	}
	r.merge(call, idx.normalizer)
	return true
}

// Lookup returns the report for gene, or a *NotFoundError.
func (idx *GeneReportIndex) Lookup(gene string) (*GeneReport, error) {
	r, ok := idx.reports[gene]
	if !ok {
		return nil, &NotFoundError{Gene: gene}
	}
	return r, nil
}

// Reports returns all gene reports sorted by gene symbol.
func (idx *GeneReportIndex) Reports() []*GeneReport {
	out := make([]*GeneReport, 0, len(idx.reports))
	for _, r := range idx.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Gene < out[j].Gene })
	return out
}

// Len returns the number of registered genes.
func (idx *GeneReportIndex) Len() int {
	return len(idx.reports)
}
