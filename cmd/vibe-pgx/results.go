package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-pgx/internal/duckdb"
)

func newResultsCmd() *cobra.Command {
	var dbPath, runID, gene, groupID string

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Query stored match results",
		Long: `Query guideline results stored by "vibe-pgx match --db".
Without a filter, the stored run IDs are listed.`,
		Example: `  vibe-pgx results --db pgx.duckdb
  vibe-pgx results --db pgx.duckdb --run 3f1c2a9e-...
  vibe-pgx results --db pgx.duckdb --gene CYP2C19
  vibe-pgx results --db pgx.duckdb --group PA166104948-im`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("db") {
				dbPath = viper.GetString("db.path")
			}
			if dbPath == "" {
				return usageError{"--db is required (or set db.path)"}
			}

			store, err := duckdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			var rows []duckdb.ResultRow
			switch {
			case runID != "":
				rows, err = store.ResultsByRun(runID)
			case gene != "":
				rows, err = store.ResultsByGene(gene)
			case groupID != "":
				rows, err = store.ResultsByGroup(groupID)
			default:
				runs, err := store.Runs()
				if err != nil {
					return err
				}
				for _, r := range runs {
					fmt.Fprintln(cmd.OutOrStdout(), r)
				}
				return nil
			}
			if err != nil {
				return err
			}
			return writeResultRows(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database (config: db.path)")
	cmd.Flags().StringVar(&runID, "run", "", "Show results for one run")
	cmd.Flags().StringVar(&gene, "gene", "", "Show results for guidelines related to a gene")
	cmd.Flags().StringVar(&groupID, "group", "", "Show results where an annotation group fired")
	cmd.MarkFlagsMutuallyExclusive("run", "gene", "group")

	return cmd
}

// writeResultRows writes stored rows as a tab-delimited table.
func writeResultRows(w io.Writer, rows []duckdb.ResultRow) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("#Run\tCreated\tGuideline\tState\tRelated_genes\tUncalled_genes\tGroup\tSignature\n")
	for _, r := range rows {
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RunID,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.GuidelineID,
			r.State,
			dash(strings.Join(r.RelatedGenes, ",")),
			dash(strings.Join(r.UncalledGenes, ",")),
			dash(r.GroupID),
			dash(r.Signature),
		)
	}
	return bw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
