package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-pgx/internal/duckdb"
)

func newPhenotypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phenotypes",
		Short: "Manage stored phenotype tables",
	}
	cmd.AddCommand(newPhenotypesLoadCmd())
	return cmd
}

func newPhenotypesLoadCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a phenotype table (JSON or TSV) into DuckDB",
		Long: `Load a phenotype table into the DuckDB store, replacing any previous table.
The load is skipped when the file is unchanged since the last load.`,
		Example: `  vibe-pgx phenotypes load --db pgx.duckdb gene.phenotypes.json
  vibe-pgx phenotypes load --db pgx.duckdb gene.phenotypes.tsv`,
		Args: cobra.ExactArgs(1),
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

			loaded, err := store.ImportPhenotypes(args[0])
			if err != nil {
				return err
			}
			n, err := store.PhenotypeGenes()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !loaded {
				fmt.Fprintf(w, "%s unchanged, %d genes in %s\n", args[0], n, dbPath)
				return nil
			}
			fmt.Fprintf(w, "Loaded %d genes from %s into %s\n", n, args[0], dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database (config: db.path)")
	return cmd
}
