// Package guideline provides drug dosing guideline definitions and the
// annotation groups that a sample's genotype can trigger.
package guideline

import "sort"

// Guideline is one drug dosing guideline.
type Guideline struct {
	ID           string   // e.g. PA166104948
	Name         string   // human-readable title
	Drugs        []string // related chemicals
	RelatedGenes []string // ordered, non-empty
	Groups       []*Group // annotation groups in library order
}

// Group is an annotation group within a guideline. It fires when one of the
// sample's genotype signatures is in GenePhenotypes.
type Group struct {
	ID             string
	Name           string
	GenePhenotypes []string
	Recommendation string
	Strength       string

	recognized map[string]struct{}
}

// Recognizes returns true if the signature is in the group's trigger set.
func (g *Group) Recognizes(signature string) bool {
	if g.recognized == nil {
		for _, gp := range g.GenePhenotypes {
			if gp == signature {
				return true
			}
		}
		return false
	}
	_, ok := g.recognized[signature]
	return ok
}

// index builds the trigger set lookup. Called by the loaders before a
// library is shared.
func (g *Group) index() {
	g.recognized = make(map[string]struct{}, len(g.GenePhenotypes))
	for _, gp := range g.GenePhenotypes {
		g.recognized[gp] = struct{}{}
	}
}

// RelatesTo returns true if gene is one of the guideline's related genes.
func (g *Guideline) RelatesTo(gene string) bool {
	for _, s := range g.RelatedGenes {
		if s == gene {
			return true
		}
	}
	return false
}

// Group returns the group with the given ID, or nil if not found.
func (g *Guideline) Group(id string) *Group {
	for _, grp := range g.Groups {
		if grp.ID == id {
			return grp
		}
	}
	return nil
}

// Library is an ordered collection of guidelines.
type Library struct {
	Guidelines []*Guideline
}

// NewLibrary creates a library and indexes every group's trigger set.
func NewLibrary(guidelines []*Guideline) *Library {
	for _, g := range guidelines {
		for _, grp := range g.Groups {
			grp.index()
		}
	}
	return &Library{Guidelines: guidelines}
}

// RelatedGenes returns the distinct related gene symbols across all
// guidelines, sorted.
func (l *Library) RelatedGenes() []string {
	seen := make(map[string]bool)
	var genes []string
	for _, g := range l.Guidelines {
		for _, s := range g.RelatedGenes {
			if !seen[s] {
				seen[s] = true
				genes = append(genes, s)
			}
		}
	}
	sort.Strings(genes)
	return genes
}

// Get returns the guideline with the given ID, or nil if not found.
func (l *Library) Get(id string) *Guideline {
	for _, g := range l.Guidelines {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Len returns the number of guidelines in the library.
func (l *Library) Len() int {
	return len(l.Guidelines)
}
