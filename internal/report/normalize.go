package report

import (
	"fmt"
	"regexp"
	"sort"
)

// FixupRule rewrites legacy or sub-variant allele names in a gene's
// diplotypes before any matching is done.
type FixupRule struct {
	Gene        string
	Pattern     *regexp.Regexp
	Replacement string
}

// NewFixupRule compiles a fix-up rule. The replacement must not itself match
// the pattern, so that applying the rule twice changes nothing.
func NewFixupRule(gene, pattern, replacement string) (FixupRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return FixupRule{}, fmt.Errorf("fixup rule for %s: %w", gene, err)
	}
	if re.MatchString(replacement) {
		return FixupRule{}, fmt.Errorf("fixup rule for %s: replacement %q matches pattern %q", gene, replacement, pattern)
	}
	return FixupRule{Gene: gene, Pattern: re, Replacement: replacement}, nil
}

// DefaultFixups returns the built-in rule table. CYP2C19 allele definitions
// split *4 into *4A and *4B while guideline annotations only know *4.
func DefaultFixups() []FixupRule {
	return []FixupRule{
		{Gene: "CYP2C19", Pattern: regexp.MustCompile(`\*4[AB]`), Replacement: "*4"},
	}
}

// Normalizer applies fix-up rules keyed by gene symbol.
type Normalizer struct {
	rules map[string][]FixupRule
}

// NewNormalizer creates a normalizer from a rule table. A table whose rules
// keep rewriting each other's replacements is rejected.
func NewNormalizer(rules ...FixupRule) (*Normalizer, error) {
	n := &Normalizer{rules: make(map[string][]FixupRule)}
	for _, r := range rules {
		n.rules[r.Gene] = append(n.rules[r.Gene], r)
	}
	for _, r := range rules {
		if _, ok := applyRules(r.Replacement, n.rules[r.Gene]); !ok {
			return nil, fmt.Errorf("fixup rules for %s do not converge on %q: %w", r.Gene, r.Replacement, ErrConfiguration)
		}
	}
	return n, nil
}

// Normalize returns the gene's diplotypes with every rule for that gene
// applied, deduplicated and sorted. Genes without rules pass through
// (still deduplicated and sorted). A diplotype the rules cannot bring to a
// fixed point is kept as given. The input is not modified.
func (n *Normalizer) Normalize(gene string, diplotypes []string) []string {
	var rules []FixupRule
	if n != nil {
		rules = n.rules[gene]
	}

	seen := make(map[string]bool, len(diplotypes))
	out := make([]string, 0, len(diplotypes))
	for _, d := range diplotypes {
		if fixed, ok := applyRules(d, rules); ok {
			d = fixed
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

// Rules returns the number of rules configured for gene.
func (n *Normalizer) Rules(gene string) int {
	if n == nil {
		return 0
	}
	return len(n.rules[gene])
}

// maxFixupPasses bounds the fixed-point loop in applyRules.
const maxFixupPasses = 8

// applyRules rewrites d until no rule changes it. It returns false if d is
// still changing after maxFixupPasses.
func applyRules(d string, rules []FixupRule) (string, bool) {
	for range maxFixupPasses {
		prev := d
		for _, r := range rules {
			d = r.Pattern.ReplaceAllLiteralString(d, r.Replacement)
		}
		if d == prev {
			return d, true
		}
	}
	return d, false
}
