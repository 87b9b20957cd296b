// Package output provides guideline result formatters.
package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/inodb/vibe-pgx/internal/report"
)

// TabWriter writes guideline results in tab-delimited format, one line per
// matched (group, signature) or one line for a guideline without matches.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Guideline",
			"Name",
			"Drugs",
			"State",
			"Related_genes",
			"Uncalled_genes",
			"Group",
			"Group_name",
			"Signature",
			"Strength",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes the lines for a single guideline result.
func (tw *TabWriter) Write(r *report.GuidelineReport) error {
	g := r.Guideline
	base := []string{
		g.ID,
		orDash(g.Name),
		joinOrDash(g.Drugs),
		r.State().String(),
		joinOrDash(g.RelatedGenes),
		joinOrDash(r.UncalledGenes()),
	}

	if !r.HasMatches() {
		return tw.writeRow(append(base, "-", "-", "-", "-"))
	}
	for _, grp := range r.MatchedGroups() {
		for _, sig := range r.MatchedSignatures(grp) {
			row := append(append([]string(nil), base...),
				grp.ID, orDash(grp.Name), sig, orDash(grp.Strength))
			if err := tw.writeRow(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteAll writes every guideline result in ctx.
func (tw *TabWriter) WriteAll(ctx *report.Context) error {
	for _, r := range ctx.GuidelineResults() {
		if err := tw.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func (tw *TabWriter) writeRow(values []string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}
