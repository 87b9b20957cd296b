// Package report matches a sample's gene calls against a guideline library
// and assembles per-gene and per-guideline results.
package report

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/genecall"
	"github.com/inodb/vibe-pgx/internal/guideline"
	"github.com/inodb/vibe-pgx/internal/phenotype"
)

// Options configures a matching pass.
type Options struct {
	Fixups  []FixupRule // defaults to DefaultFixups() when nil
	Workers int         // 0 means runtime.NumCPU()
	Logger  *zap.Logger
}

// Context holds the results of one sample's matching pass. It is built in
// one go by NewContext and read-only afterwards.
type Context struct {
	index      *GeneReportIndex
	guidelines []*GuidelineReport
	builder    *SignatureBuilder
	logger     *zap.Logger
}

// NewContext registers a gene report per related gene in lib, merges the
// matcher calls then the overlay calls, matches every guideline and links
// matched guidelines back to their genes. Any error aborts the pass.
func NewContext(lib *guideline.Library, calls, overlayCalls []*genecall.Call, phenotypes phenotype.Lookup, opts Options) (*Context, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fixups := opts.Fixups
	if fixups == nil {
		fixups = DefaultFixups()
	}

	normalizer, err := NewNormalizer(fixups...)
	if err != nil {
		return nil, err
	}
	idx, err := NewGeneReportIndexForLibrary(lib, normalizer)
	if err != nil {
		return nil, fmt.Errorf("register genes: %w", err)
	}

	mergeCalls(idx, calls, genecall.SourceMatcher, logger)
	mergeCalls(idx, overlayCalls, genecall.SourceAstrolabe, logger)

	builder := NewSignatureBuilder(idx, phenotypes)
	matcher := NewMatcher(idx, builder)
	matcher.SetLogger(logger)

	reports := make([]*GuidelineReport, 0, lib.Len())
	for _, g := range lib.Guidelines {
		reports = append(reports, NewGuidelineReport(g))
	}
	if err := matcher.MatchAll(reports, opts.Workers); err != nil {
		return nil, fmt.Errorf("match guidelines: %w", err)
	}

	ctx := &Context{
		index:      idx,
		guidelines: reports,
		builder:    builder,
		logger:     logger,
	}
	if err := ctx.assemble(); err != nil {
		return nil, err
	}

	logger.Info("matched guidelines",
		zap.Int("guidelines", len(reports)),
		zap.Int("reportable", ctx.countReportable()),
		zap.Int("genes", idx.Len()))
	return ctx, nil
}

// mergeCalls merges calls into idx, defaulting their source to src.
func mergeCalls(idx *GeneReportIndex, calls []*genecall.Call, src genecall.Source, logger *zap.Logger) {
	for _, c := range calls {
		if c == nil {
			continue
		}
		if c.Source == "" {
			cc := *c
			cc.Source = src
			c = &cc
		}
		if !idx.Merge(c) {
			logger.Debug("dropping call for gene without guideline",
				zap.String("gene", c.Gene),
				zap.String("source", string(c.Source)))
		}
	}
}

// assemble links every matched guideline to the reports of its genes.
func (c *Context) assemble() error {
	for _, r := range c.guidelines {
		if r.State() != StateMatched {
			continue
		}
		for _, gene := range r.Guideline.RelatedGenes {
			gr, err := c.index.Lookup(gene)
			if err != nil {
				return &ConfigurationError{Guideline: r.Guideline.ID, Gene: gene, Reason: "related gene is not registered"}
			}
			gr.addRelated(r)
		}
	}
	return nil
}

func (c *Context) countReportable() int {
	n := 0
	for _, r := range c.guidelines {
		if r.Reportable() {
			n++
		}
	}
	return n
}

// GuidelineResults returns the guideline reports in library order.
func (c *Context) GuidelineResults() []*GuidelineReport {
	return c.guidelines
}

// GeneReports returns all gene reports sorted by gene symbol.
func (c *Context) GeneReports() []*GeneReport {
	return c.index.Reports()
}

// GeneReport returns the report for gene, or a *NotFoundError if no
// guideline relates to it.
func (c *Context) GeneReport(gene string) (*GeneReport, error) {
	return c.index.Lookup(gene)
}

// Translate returns the phenotype label used for a gene's diplotype.
func (c *Context) Translate(gene, diplotype string) string {
	return c.builder.Translate(gene, diplotype)
}

// GenePhenotypes returns the distinct names of matched groups across all
// guidelines related to gene, sorted.
func (c *Context) GenePhenotypes(gene string) []string {
	var names []string
	for _, r := range c.guidelines {
		if !r.Guideline.RelatesTo(gene) || !r.HasMatches() {
			continue
		}
		for _, grp := range r.MatchedGroups() {
			names = append(names, grp.Name)
		}
	}
	return distinctSorted(names)
}
