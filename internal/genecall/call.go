// Package genecall provides the per-gene diplotype calls consumed by the reporter.
package genecall

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Source identifies which caller produced a Call.
type Source string

// Known call sources.
const (
	SourceMatcher   Source = "matcher"   // named allele matcher
	SourceAstrolabe Source = "astrolabe" // overlay caller
)

// Call holds the diplotypes called for a single gene by one source.
// Multiple diplotypes mean the caller could not pick between them; all of
// them are carried forward.
type Call struct {
	Gene       string     `json:"gene" validate:"required"`
	Source     Source     `json:"source,omitempty"`
	Diplotypes Diplotypes `json:"diplotypes"`
	Variants   []Variant  `json:"variants,omitempty"` // passed through untouched
}

// Diplotypes is a list of diplotype names. In JSON each entry is either a
// plain string or a matcher diplotype object such as
// {"name": "*1/*2", "score": 4}; only the name is kept.
type Diplotypes []string

// UnmarshalJSON accepts both entry shapes.
func (d *Diplotypes) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("diplotypes: %w", err)
	}

	out := make(Diplotypes, 0, len(raw))
	for i, r := range raw {
		r = bytes.TrimSpace(r)
		if len(r) > 0 && r[0] == '"' {
			var name string
			if err := json.Unmarshal(r, &name); err != nil {
				return fmt.Errorf("diplotype %d: %w", i, err)
			}
			out = append(out, name)
			continue
		}

		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			return fmt.Errorf("diplotype %d: %w", i, err)
		}
		if obj.Name == "" {
			return fmt.Errorf("diplotype %d: missing name", i)
		}
		out = append(out, obj.Name)
	}
	*d = out
	return nil
}

// Variant is a called position reported alongside a gene call.
type Variant struct {
	Chrom    string `json:"chromosome"`
	Pos      int64  `json:"position"`
	RSID     string `json:"rsid,omitempty"`
	Genotype string `json:"vcfCall,omitempty"`
}

// HasDiplotypes returns true if the call carries at least one diplotype.
func (c *Call) HasDiplotypes() bool {
	return len(c.Diplotypes) > 0
}
