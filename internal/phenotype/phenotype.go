// Package phenotype provides gene phenotype tables that translate called
// diplotypes into clinical phenotype labels.
package phenotype

import "strings"

// Lookup returns the phenotype table for a gene. A gene without a table is
// a normal outcome and is reported with ok == false.
type Lookup interface {
	Lookup(gene string) (gp *GenePhenotype, ok bool)
}

// DiplotypePhenotype pairs one diplotype with its phenotype label.
type DiplotypePhenotype struct {
	Diplotype string `json:"diplotype" validate:"required"`
	Phenotype string `json:"phenotype" validate:"required"`
}

// GenePhenotype is the diplotype-to-phenotype table for one gene.
type GenePhenotype struct {
	Gene       string                `json:"gene" validate:"required"`
	Diplotypes []DiplotypePhenotype `json:"diplotypes" validate:"dive"`

	index map[string]string
}

// NewGenePhenotype builds a table from diplotype/phenotype pairs.
func NewGenePhenotype(gene string, pairs map[string]string) *GenePhenotype {
	gp := &GenePhenotype{Gene: gene}
	for d, p := range pairs {
		gp.Diplotypes = append(gp.Diplotypes, DiplotypePhenotype{Diplotype: d, Phenotype: p})
	}
	gp.buildIndex()
	return gp
}

func (gp *GenePhenotype) buildIndex() {
	gp.index = make(map[string]string, len(gp.Diplotypes))
	for _, dp := range gp.Diplotypes {
		gp.index[dp.Diplotype] = dp.Phenotype
	}
}

// Phenotype returns the label for a diplotype. Either allele order matches,
// so "*2/*1" finds an entry keyed "*1/*2".
func (gp *GenePhenotype) Phenotype(diplotype string) (string, bool) {
	if p, ok := gp.get(diplotype); ok {
		return p, true
	}
	if a, b, ok := strings.Cut(diplotype, "/"); ok {
		return gp.get(b + "/" + a)
	}
	return "", false
}

func (gp *GenePhenotype) get(diplotype string) (string, bool) {
	if gp.index != nil {
		p, ok := gp.index[diplotype]
		return p, ok
	}
	for _, dp := range gp.Diplotypes {
		if dp.Diplotype == diplotype {
			return dp.Phenotype, true
		}
	}
	return "", false
}

// Len returns the number of diplotypes in the table.
func (gp *GenePhenotype) Len() int {
	return len(gp.Diplotypes)
}

// Map is an in-memory Lookup keyed by gene symbol.
type Map map[string]*GenePhenotype

// Lookup implements Lookup.
func (m Map) Lookup(gene string) (*GenePhenotype, bool) {
	gp, ok := m[gene]
	return gp, ok
}

// Genes returns the number of genes with a phenotype table.
func (m Map) Genes() int {
	return len(m)
}
