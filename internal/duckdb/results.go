package duckdb

import (
	"fmt"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-pgx/internal/report"
)

// ResultRow is one stored guideline outcome. Matched guidelines produce one
// row per (group, signature); other guidelines produce a single row with
// empty group fields.
type ResultRow struct {
	RunID         string
	CreatedAt     time.Time
	GuidelineID   string
	GuidelineName string
	State         string
	RelatedGenes  []string
	UncalledGenes []string
	GroupID       string
	GroupName     string
	Signature     string
}

// Rows flattens guideline reports into result rows.
func Rows(runID string, createdAt time.Time, reports []*report.GuidelineReport) []ResultRow {
	var rows []ResultRow
	for _, r := range reports {
		base := ResultRow{
			RunID:         runID,
			CreatedAt:     createdAt,
			GuidelineID:   r.Guideline.ID,
			GuidelineName: r.Guideline.Name,
			State:         r.State().String(),
			RelatedGenes:  r.Guideline.RelatedGenes,
			UncalledGenes: r.UncalledGenes(),
		}
		if !r.HasMatches() {
			rows = append(rows, base)
			continue
		}
		for _, grp := range r.MatchedGroups() {
			for _, sig := range r.MatchedSignatures(grp) {
				row := base
				row.GroupID = grp.ID
				row.GroupName = grp.Name
				row.Signature = sig
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// WriteResults batch-inserts a run's guideline results using the Appender API.
func (s *Store) WriteResults(runID string, reports []*report.GuidelineReport) error {
	rows := Rows(runID, time.Now().UTC(), reports)
	if len(rows) == 0 {
		return nil
	}

	return s.withAppender("guideline_results", func(a *goduckdb.Appender) error {
		for _, r := range rows {
			if err := a.AppendRow(
				r.RunID, r.CreatedAt, r.GuidelineID, r.GuidelineName, r.State,
				strings.Join(r.RelatedGenes, ","), strings.Join(r.UncalledGenes, ","),
				r.GroupID, r.GroupName, r.Signature,
			); err != nil {
				return fmt.Errorf("append guideline result: %w", err)
			}
		}
		return nil
	})
}

// ClearResults removes all stored guideline results.
func (s *Store) ClearResults() error {
	_, err := s.db.Exec("DELETE FROM guideline_results")
	return err
}

const resultColumns = `run_id, created_at, guideline_id, guideline_name, state,
	related_genes, uncalled_genes, group_id, group_name, signature`

// ResultsByRun returns the rows stored for a run.
func (s *Store) ResultsByRun(runID string) ([]ResultRow, error) {
	rows, err := s.db.Query(`SELECT `+resultColumns+`
		FROM guideline_results
		WHERE run_id=?
		ORDER BY guideline_id, group_id, signature`, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	return scanResultRows(rows)
}

// ResultsByGene returns every stored row whose guideline relates to gene.
func (s *Store) ResultsByGene(gene string) ([]ResultRow, error) {
	rows, err := s.db.Query(`SELECT `+resultColumns+`
		FROM guideline_results
		WHERE list_contains(string_split(related_genes, ','), ?)
		ORDER BY created_at, run_id, guideline_id, group_id, signature`, gene)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanResultRows(rows)
}

// ResultsByGroup returns every stored row where the given group fired.
func (s *Store) ResultsByGroup(groupID string) ([]ResultRow, error) {
	rows, err := s.db.Query(`SELECT `+resultColumns+`
		FROM guideline_results
		WHERE group_id=?
		ORDER BY created_at, run_id, signature`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query by group: %w", err)
	}
	defer rows.Close()

	return scanResultRows(rows)
}

// Runs returns the stored run IDs, oldest first.
func (s *Store) Runs() ([]string, error) {
	rows, err := s.db.Query(`SELECT run_id, MIN(created_at) AS t
		FROM guideline_results
		GROUP BY run_id
		ORDER BY t, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		var t time.Time
		if err := rows.Scan(&id, &t); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanResultRows scans rows into ResultRow slices.
func scanResultRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]ResultRow, error) {
	var results []ResultRow
	for rows.Next() {
		var r ResultRow
		var related, uncalled string
		if err := rows.Scan(
			&r.RunID, &r.CreatedAt, &r.GuidelineID, &r.GuidelineName, &r.State,
			&related, &uncalled, &r.GroupID, &r.GroupName, &r.Signature,
		); err != nil {
			return nil, fmt.Errorf("scan guideline result: %w", err)
		}
		r.RelatedGenes = splitList(related)
		r.UncalledGenes = splitList(uncalled)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guideline results: %w", err)
	}
	return results, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
