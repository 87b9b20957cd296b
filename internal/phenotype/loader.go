package phenotype

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New()

// Load reads a phenotype file, choosing the format from the extension:
// ".json" is a gene.phenotypes.json document, anything else is TSV.
func Load(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open phenotype file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(f)
	}
	return ParseTSV(f)
}

// ParseJSON decodes an array of gene phenotype tables.
func ParseJSON(r io.Reader) (Map, error) {
	var genes []*GenePhenotype
	if err := json.NewDecoder(r).Decode(&genes); err != nil {
		return nil, fmt.Errorf("decode phenotypes: %w", err)
	}

	m := make(Map, len(genes))
	for i, gp := range genes {
		if gp == nil {
			continue
		}
		if err := validate.Struct(gp); err != nil {
			return nil, fmt.Errorf("phenotype entry %d: %w", i, err)
		}
		gp.buildIndex()
		m[gp.Gene] = gp
	}
	return m, nil
}

// ParseTSV parses a phenotype TSV. The header must contain the columns
// "Gene", "Diplotype" and "Phenotype" in any order.
func ParseTSV(r io.Reader) (Map, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("phenotype table: empty file")
	}
	header := strings.Split(strings.TrimPrefix(scanner.Text(), "#"), "\t")

	geneIdx, dipIdx, phenoIdx := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Gene":
			geneIdx = i
		case "Diplotype":
			dipIdx = i
		case "Phenotype":
			phenoIdx = i
		}
	}
	if geneIdx < 0 || dipIdx < 0 || phenoIdx < 0 {
		return nil, fmt.Errorf("phenotype table: header must contain Gene, Diplotype and Phenotype columns")
	}

	m := make(Map)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) <= geneIdx || len(fields) <= dipIdx || len(fields) <= phenoIdx {
			continue
		}
		gene := strings.TrimSpace(fields[geneIdx])
		dip := strings.TrimSpace(fields[dipIdx])
		pheno := strings.TrimSpace(fields[phenoIdx])
		if gene == "" || dip == "" || pheno == "" {
			continue
		}
		gp, ok := m[gene]
		if !ok {
			gp = &GenePhenotype{Gene: gene}
			m[gene] = gp
		}
		gp.Diplotypes = append(gp.Diplotypes, DiplotypePhenotype{Diplotype: dip, Phenotype: pheno})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading phenotype table: %w", err)
	}

	for _, gp := range m {
		gp.buildIndex()
	}
	return m, nil
}
