package guideline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New()

// packageFile is the on-disk shape of one guideline package.
type packageFile struct {
	Guideline struct {
		ID           string `json:"id" validate:"required"`
		Name         string `json:"name"`
		RelatedGenes []struct {
			Symbol string `json:"symbol" validate:"required"`
		} `json:"relatedGenes" validate:"required,min=1,dive"`
		RelatedChemicals []struct {
			Name string `json:"name"`
		} `json:"relatedChemicals"`
	} `json:"guideline"`
	Groups []struct {
		ID             string   `json:"id" validate:"required"`
		Name           string   `json:"name"`
		GenePhenotypes []string `json:"genePhenotypes"`
		Recommendation string   `json:"recommendation"`
		Strength       string   `json:"strength"`
	} `json:"groups" validate:"dive"`
}

// ParsePackage decodes a single guideline package document.
func ParsePackage(r io.Reader) (*Guideline, error) {
	var pf packageFile
	if err := json.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("decode guideline package: %w", err)
	}
	if err := validate.Struct(&pf); err != nil {
		return nil, fmt.Errorf("guideline package: %w", err)
	}

	g := &Guideline{
		ID:   pf.Guideline.ID,
		Name: pf.Guideline.Name,
	}
	for _, rg := range pf.Guideline.RelatedGenes {
		if !g.RelatesTo(rg.Symbol) {
			g.RelatedGenes = append(g.RelatedGenes, rg.Symbol)
		}
	}
	for _, c := range pf.Guideline.RelatedChemicals {
		g.Drugs = append(g.Drugs, c.Name)
	}
	for _, grp := range pf.Groups {
		if g.Group(grp.ID) != nil {
			return nil, fmt.Errorf("guideline %s: duplicate group id %q", g.ID, grp.ID)
		}
		g.Groups = append(g.Groups, &Group{
			ID:             grp.ID,
			Name:           grp.Name,
			GenePhenotypes: grp.GenePhenotypes,
			Recommendation: grp.Recommendation,
			Strength:       grp.Strength,
		})
	}
	return g, nil
}

// LoadFile loads one guideline package file.
func LoadFile(path string) (*Guideline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open guideline: %w", err)
	}
	defer f.Close()

	g, err := ParsePackage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return g, nil
}

// LoadDir loads every *.json guideline package in dir, in file name order.
func LoadDir(dir string) (*Library, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no guideline files found in %s", dir)
	}

	guidelines := make([]*Guideline, 0, len(files))
	for _, f := range files {
		g, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		guidelines = append(guidelines, g)
	}
	return NewLibrary(guidelines), nil
}

// Files returns the guideline package paths in dir, sorted.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read guideline directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
