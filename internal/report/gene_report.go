package report

import (
	"sort"

	"github.com/inodb/vibe-pgx/internal/genecall"
)

// GeneReport collects everything known about one gene referenced by the
// guideline library.
type GeneReport struct {
	Gene string

	sources    map[genecall.Source][]string // raw diplotypes per source
	calls      map[genecall.Source]*genecall.Call
	diplotypes []string // normalized union across sources
	related    []*GuidelineReport
}

func newGeneReport(gene string) *GeneReport {
	return &GeneReport{
		Gene:    gene,
		sources: make(map[genecall.Source][]string),
		calls:   make(map[genecall.Source]*genecall.Call),
	}
}

// Called returns true if any source called at least one diplotype.
func (r *GeneReport) Called() bool {
	return len(r.diplotypes) > 0
}

// Diplotypes returns the called diplotypes after fix-ups, sorted.
func (r *GeneReport) Diplotypes() []string {
	return r.diplotypes
}

// Calls returns the merged call records, matcher first.
func (r *GeneReport) Calls() []*genecall.Call {
	sources := make([]string, 0, len(r.calls))
	for s := range r.calls {
		sources = append(sources, string(s))
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i] == string(genecall.SourceMatcher) {
			return true
		}
		if sources[j] == string(genecall.SourceMatcher) {
			return false
		}
		return sources[i] < sources[j]
	})

	calls := make([]*genecall.Call, 0, len(sources))
	for _, s := range sources {
		calls = append(calls, r.calls[genecall.Source(s)])
	}
	return calls
}

// RelatedGuidelines returns the evaluated guidelines that depend on this gene.
func (r *GeneReport) RelatedGuidelines() []*GuidelineReport {
	return r.related
}

func (r *GeneReport) addRelated(g *GuidelineReport) {
	for _, existing := range r.related {
		if existing == g {
			return
		}
	}
	r.related = append(r.related, g)
}

// merge replaces the source's previous diplotypes and recomputes the
// normalized union.
func (r *GeneReport) merge(call *genecall.Call, n *Normalizer) {
	src := call.Source
	if src == "" {
		src = genecall.SourceMatcher
	}
	r.sources[src] = append([]string(nil), call.Diplotypes...)
	r.calls[src] = call

	var all []string
	for _, dips := range r.sources {
		all = append(all, dips...)
	}
	r.diplotypes = n.Normalize(r.Gene, all)
}
