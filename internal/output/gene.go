package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/inodb/vibe-pgx/internal/report"
)

// GeneTabWriter writes the per-gene summary in tab-delimited format.
type GeneTabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewGeneTabWriter creates a new per-gene summary writer.
func NewGeneTabWriter(w io.Writer) *GeneTabWriter {
	return &GeneTabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Gene",
			"Called",
			"Diplotypes",
			"Phenotypes",
			"Sources",
			"Guidelines",
			"Matched_groups",
		},
	}
}

// WriteHeader writes the header line.
func (gw *GeneTabWriter) WriteHeader() error {
	_, err := gw.w.WriteString(strings.Join(gw.columns, "\t") + "\n")
	return err
}

// Write writes one gene's summary line.
func (gw *GeneTabWriter) Write(ctx *report.Context, gr *report.GeneReport) error {
	called := "NO"
	if gr.Called() {
		called = "YES"
	}

	dips := gr.Diplotypes()
	phenos := make([]string, len(dips))
	for i, d := range dips {
		phenos[i] = ctx.Translate(gr.Gene, d)
	}

	var sources []string
	for _, c := range gr.Calls() {
		sources = append(sources, string(c.Source))
	}

	var guidelines []string
	for _, r := range gr.RelatedGuidelines() {
		guidelines = append(guidelines, r.Guideline.ID)
	}

	values := []string{
		gr.Gene,
		called,
		joinOrDash(dips),
		joinOrDash(phenos),
		joinOrDash(sources),
		joinOrDash(guidelines),
		joinOrDash(ctx.GenePhenotypes(gr.Gene)),
	}
	_, err := gw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes a line for every registered gene in ctx.
func (gw *GeneTabWriter) WriteAll(ctx *report.Context) error {
	for _, gr := range ctx.GeneReports() {
		if err := gw.Write(ctx, gr); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (gw *GeneTabWriter) Flush() error {
	return gw.w.Flush()
}
