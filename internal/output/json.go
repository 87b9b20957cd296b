package output

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/inodb/vibe-pgx/internal/report"
)

// Document is the JSON form of one matching pass.
type Document struct {
	RunID      string          `json:"runId,omitempty"`
	Guidelines []GuidelineJSON `json:"guidelines"`
	Genes      []GeneJSON      `json:"genes"`
}

// GuidelineJSON is one guideline result.
type GuidelineJSON struct {
	ID            string      `json:"id"`
	Name          string      `json:"name,omitempty"`
	Drugs         []string    `json:"drugs,omitempty"`
	State         string      `json:"state"`
	RelatedGenes  []string    `json:"relatedGenes"`
	UncalledGenes []string    `json:"uncalledGenes,omitempty"`
	Signatures    []string    `json:"signatures,omitempty"`
	MatchedGroups []GroupJSON `json:"matchedGroups,omitempty"`
}

// GroupJSON is a matched annotation group and the signatures that fired it.
type GroupJSON struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	Strength       string   `json:"strength,omitempty"`
	Signatures     []string `json:"signatures"`
}

// GeneJSON is one gene's summary.
type GeneJSON struct {
	Gene              string     `json:"gene"`
	Called            bool       `json:"called"`
	Diplotypes        []string   `json:"diplotypes"`
	Phenotypes        []string   `json:"phenotypes"`
	Calls             []CallJSON `json:"calls,omitempty"`
	RelatedGuidelines []string   `json:"relatedGuidelines,omitempty"`
	MatchedGroups     []string   `json:"matchedGroups,omitempty"`
}

// CallJSON is the diplotypes contributed by one call source.
type CallJSON struct {
	Source     string   `json:"source"`
	Diplotypes []string `json:"diplotypes"`
}

// NewDocument converts a matching pass into its JSON form.
func NewDocument(runID string, ctx *report.Context) *Document {
	doc := &Document{
		RunID:      runID,
		Guidelines: []GuidelineJSON{},
		Genes:      []GeneJSON{},
	}

	for _, r := range ctx.GuidelineResults() {
		g := r.Guideline
		gj := GuidelineJSON{
			ID:            g.ID,
			Name:          g.Name,
			Drugs:         g.Drugs,
			State:         r.State().String(),
			RelatedGenes:  g.RelatedGenes,
			UncalledGenes: r.UncalledGenes(),
			Signatures:    r.Signatures(),
		}
		for _, grp := range r.MatchedGroups() {
			gj.MatchedGroups = append(gj.MatchedGroups, GroupJSON{
				ID:             grp.ID,
				Name:           grp.Name,
				Recommendation: grp.Recommendation,
				Strength:       grp.Strength,
				Signatures:     r.MatchedSignatures(grp),
			})
		}
		doc.Guidelines = append(doc.Guidelines, gj)
	}

	for _, gr := range ctx.GeneReports() {
		dips := gr.Diplotypes()
		gj := GeneJSON{
			Gene:          gr.Gene,
			Called:        gr.Called(),
			Diplotypes:    dips,
			Phenotypes:    make([]string, len(dips)),
			MatchedGroups: ctx.GenePhenotypes(gr.Gene),
		}
		for i, d := range dips {
			gj.Phenotypes[i] = ctx.Translate(gr.Gene, d)
		}
		for _, c := range gr.Calls() {
			gj.Calls = append(gj.Calls, CallJSON{Source: string(c.Source), Diplotypes: c.Diplotypes})
		}
		for _, r := range gr.RelatedGuidelines() {
			gj.RelatedGuidelines = append(gj.RelatedGuidelines, r.Guideline.ID)
		}
		doc.Genes = append(doc.Genes, gj)
	}
	return doc
}

// JSONWriter writes a matching pass as an indented JSON document.
type JSONWriter struct {
	w     io.Writer
	runID string
}

// NewJSONWriter creates a JSON writer. runID may be empty.
func NewJSONWriter(w io.Writer, runID string) *JSONWriter {
	return &JSONWriter{w: w, runID: runID}
}

// Write encodes the document for ctx.
func (jw *JSONWriter) Write(ctx *report.Context) error {
	enc := json.NewEncoder(jw.w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(jw.runID, ctx))
}
