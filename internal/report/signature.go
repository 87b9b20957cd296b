package report

import (
	"sort"
	"strings"

	"github.com/inodb/vibe-pgx/internal/guideline"
	"github.com/inodb/vibe-pgx/internal/phenotype"
)

// SignatureSeparator joins per-gene parts of a genotype signature.
const SignatureSeparator = ";"

// SignatureBuilder expands a sample's per-gene diplotype calls into the
// genotype signatures a guideline's groups are keyed on.
type SignatureBuilder struct {
	index      *GeneReportIndex
	phenotypes phenotype.Lookup
}

// NewSignatureBuilder creates a builder. phenotypes may be nil, in which
// case every diplotype is used as-is.
func NewSignatureBuilder(idx *GeneReportIndex, phenotypes phenotype.Lookup) *SignatureBuilder {
	return &SignatureBuilder{index: idx, phenotypes: phenotypes}
}

// Translate returns the phenotype label for a gene's diplotype, or the
// diplotype itself when the gene has no table or no entry for it.
func (b *SignatureBuilder) Translate(gene, diplotype string) string {
	if b.phenotypes == nil {
		return diplotype
	}
	gp, ok := b.phenotypes.Lookup(gene)
	if !ok || gp == nil {
		return diplotype
	}
	if p, ok := gp.Phenotype(diplotype); ok {
		return p
	}
	return diplotype
}

// Expand returns the full cross product of the guideline's related genes'
// translated diplotypes, one entry per combination, without removing
// duplicates. Genes are visited in RelatedGenes order.
func (b *SignatureBuilder) Expand(g *guideline.Guideline) ([]string, error) {
	var results []string
	for i, gene := range g.RelatedGenes {
		r, err := b.index.Lookup(gene)
		if err != nil {
			return nil, &ConfigurationError{Guideline: g.ID, Gene: gene, Reason: "related gene is not registered"}
		}
		if !r.Called() {
			return nil, &ConfigurationError{Guideline: g.ID, Gene: gene, Reason: "related gene has no called diplotypes"}
		}

		parts := make([]string, 0, len(r.Diplotypes()))
		for _, d := range r.Diplotypes() {
			parts = append(parts, b.Translate(gene, d))
		}

		if i == 0 {
			results = parts
			continue
		}
		next := make([]string, 0, len(results)*len(parts))
		for _, partial := range results {
			for _, part := range parts {
				next = append(next, CombineSignature(partial, part))
			}
		}
		results = next
	}
	return results, nil
}

// Build returns the distinct genotype signatures for the guideline, sorted.
func (b *SignatureBuilder) Build(g *guideline.Guideline) ([]string, error) {
	all, err := b.Expand(g)
	if err != nil {
		return nil, err
	}
	return distinctSorted(all), nil
}

// CombineSignature joins two signature strings into one. The result holds
// the sorted union of both sides' parts, so combining in either order
// gives the same string.
func CombineSignature(a, b string) string {
	parts := append(strings.Split(a, SignatureSeparator), strings.Split(b, SignatureSeparator)...)
	return strings.Join(distinctSorted(parts), SignatureSeparator)
}

func distinctSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
