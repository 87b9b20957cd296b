package report

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/guideline"
)

// State is the evaluation state of a guideline for one sample.
type State int

// Guideline states. Reportable is transient: a reportable guideline always
// ends in Matched, even when no group fired.
const (
	StateUnevaluated State = iota
	StateNotReportable
	StateReportable
	StateMatched
)

func (s State) String() string {
	switch s {
	case StateNotReportable:
		return "not_reportable"
	case StateReportable:
		return "reportable"
	case StateMatched:
		return "matched"
	default:
		return "unevaluated"
	}
}

// GuidelineReport is the outcome of evaluating one guideline.
type GuidelineReport struct {
	Guideline *guideline.Guideline

	state             State
	uncalledGenes     []string
	signatures        []string
	matchedGroups     []*guideline.Group
	matchedSignatures map[*guideline.Group][]string
}

// NewGuidelineReport wraps an unevaluated guideline.
func NewGuidelineReport(g *guideline.Guideline) *GuidelineReport {
	return &GuidelineReport{
		Guideline:         g,
		matchedSignatures: make(map[*guideline.Group][]string),
	}
}

// State returns the evaluation state.
func (r *GuidelineReport) State() State { return r.state }

// Reportable returns true if every related gene was called.
func (r *GuidelineReport) Reportable() bool { return r.state == StateMatched || r.state == StateReportable }

// UncalledGenes returns the related genes without a call, in guideline order.
func (r *GuidelineReport) UncalledGenes() []string { return r.uncalledGenes }

// Signatures returns the genotype signatures built for the guideline.
func (r *GuidelineReport) Signatures() []string { return r.signatures }

// MatchedGroups returns the groups that fired, in guideline order.
func (r *GuidelineReport) MatchedGroups() []*guideline.Group { return r.matchedGroups }

// MatchedSignatures returns the signatures that triggered grp.
func (r *GuidelineReport) MatchedSignatures(grp *guideline.Group) []string {
	return r.matchedSignatures[grp]
}

// HasMatches returns true if at least one group fired.
func (r *GuidelineReport) HasMatches() bool { return len(r.matchedGroups) > 0 }

func (r *GuidelineReport) addMatch(grp *guideline.Group, signature string) {
	if _, ok := r.matchedSignatures[grp]; !ok {
		r.matchedGroups = append(r.matchedGroups, grp)
	}
	r.matchedSignatures[grp] = append(r.matchedSignatures[grp], signature)
}

// Matcher decides reportability for guidelines and matches their groups.
type Matcher struct {
	index   *GeneReportIndex
	builder *SignatureBuilder
	logger  *zap.Logger
}

// NewMatcher creates a matcher over a fully merged index.
func NewMatcher(idx *GeneReportIndex, builder *SignatureBuilder) *Matcher {
	return &Matcher{
		index:   idx,
		builder: builder,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (m *Matcher) SetLogger(l *zap.Logger) {
	m.logger = l
}

// Match evaluates one guideline. A related gene without a registered
// report is a configuration error; an uncalled gene is not.
func (m *Matcher) Match(r *GuidelineReport) error {
	if r.state != StateUnevaluated {
		return fmt.Errorf("guideline %s already evaluated (%s)", r.Guideline.ID, r.state)
	}
	g := r.Guideline

	for _, gene := range g.RelatedGenes {
		gr, err := m.index.Lookup(gene)
		if err != nil {
			return &ConfigurationError{Guideline: g.ID, Gene: gene, Reason: "related gene is not registered"}
		}
		if !gr.Called() {
			r.uncalledGenes = append(r.uncalledGenes, gene)
		}
	}
	if len(r.uncalledGenes) > 0 {
		r.state = StateNotReportable
		m.logger.Debug("guideline not reportable",
			zap.String("guideline", g.ID),
			zap.Strings("uncalled", r.uncalledGenes))
		return nil
	}
	r.state = StateReportable

	signatures, err := m.builder.Build(g)
	if err != nil {
		return err
	}
	r.signatures = signatures

	for _, grp := range g.Groups {
		for _, sig := range signatures {
			if grp.Recognizes(sig) {
				r.addMatch(grp, sig)
			}
		}
	}
	r.state = StateMatched

	m.logger.Debug("guideline matched",
		zap.String("guideline", g.ID),
		zap.Int("signatures", len(signatures)),
		zap.Int("groups", len(r.matchedGroups)))
	return nil
}
