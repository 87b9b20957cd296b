package duckdb

import (
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/phenotype"
)

// phenotypeSource is the sources row name for the phenotype table.
const phenotypeSource = "phenotypes"

// WritePhenotypes replaces the stored phenotype tables with m. The store
// keeps its previous tables if the write fails.
func (s *Store) WritePhenotypes(m phenotype.Map) error {
	genes := make([]string, 0, len(m))
	for g := range m {
		genes = append(genes, g)
	}
	sort.Strings(genes)

	return s.replaceRows("gene_phenotypes", func(a *goduckdb.Appender) error {
		for _, g := range genes {
			if m[g] == nil {
				return fmt.Errorf("append phenotype: gene %s has no table", g)
			}
			for _, dp := range m[g].Diplotypes {
				if err := a.AppendRow(g, dp.Diplotype, dp.Phenotype); err != nil {
					return fmt.Errorf("append phenotype: %w", err)
				}
			}
		}
		return nil
	})
}

// ImportPhenotypes loads a phenotype file (JSON or TSV) into the store.
// It returns false without reloading when the file is unchanged since the
// last import.
func (s *Store) ImportPhenotypes(path string) (bool, error) {
	fp, err := StatFile(path)
	if err != nil {
		return false, fmt.Errorf("stat phenotype file: %w", err)
	}
	if s.SourceCurrent(phenotypeSource, fp) {
		return false, nil
	}

	m, err := phenotype.Load(path)
	if err != nil {
		return false, err
	}
	if err := s.WritePhenotypes(m); err != nil {
		return false, err
	}
	if err := s.RecordSource(phenotypeSource, fp); err != nil {
		return false, err
	}
	return true, nil
}

// LookupGene returns the stored phenotype table for gene, or nil if the
// gene has none.
func (s *Store) LookupGene(gene string) (*phenotype.GenePhenotype, error) {
	rows, err := s.db.Query(`SELECT diplotype, phenotype FROM gene_phenotypes WHERE gene=? ORDER BY diplotype`, gene)
	if err != nil {
		return nil, fmt.Errorf("query phenotypes: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string]string)
	for rows.Next() {
		var dip, pheno string
		if err := rows.Scan(&dip, &pheno); err != nil {
			return nil, fmt.Errorf("scan phenotype: %w", err)
		}
		pairs[dip] = pheno
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phenotypes: %w", err)
	}
	if len(pairs) == 0 {
		return nil, nil
	}
	return phenotype.NewGenePhenotype(gene, pairs), nil
}

// PhenotypeGenes returns the number of genes with a stored phenotype table.
func (s *Store) PhenotypeGenes() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT gene) FROM gene_phenotypes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count phenotype genes: %w", err)
	}
	return n, nil
}

// PhenotypeSource is a phenotype.Lookup backed by a Store. Per-gene tables
// are kept in an LRU cache, including genes that have no table.
type PhenotypeSource struct {
	store  *Store
	cache  *lru.Cache[string, *phenotype.GenePhenotype]
	logger *zap.Logger

	mu  sync.Mutex
	err error
}

// NewPhenotypeSource creates a lookup caching up to size genes.
func NewPhenotypeSource(s *Store, size int) (*PhenotypeSource, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[string, *phenotype.GenePhenotype](size)
	if err != nil {
		return nil, fmt.Errorf("create phenotype cache: %w", err)
	}
	return &PhenotypeSource{store: s, cache: c, logger: zap.NewNop()}, nil
}

// SetLogger sets the logger for query failures.
func (p *PhenotypeSource) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Lookup implements phenotype.Lookup. Query failures are treated as a
// missing table and reported by Err.
func (p *PhenotypeSource) Lookup(gene string) (*phenotype.GenePhenotype, bool) {
	if gp, ok := p.cache.Get(gene); ok {
		return gp, gp != nil
	}

	gp, err := p.store.LookupGene(gene)
	if err != nil {
		p.logger.Warn("phenotype lookup failed", zap.String("gene", gene), zap.Error(err))
		p.mu.Lock()
		if p.err == nil {
			p.err = err
		}
		p.mu.Unlock()
		return nil, false
	}
	p.cache.Add(gene, gp)
	return gp, gp != nil
}

// Err returns the first query error seen by Lookup.
func (p *PhenotypeSource) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
