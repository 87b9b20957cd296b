package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/duckdb"
	"github.com/inodb/vibe-pgx/internal/genecall"
	"github.com/inodb/vibe-pgx/internal/guideline"
	"github.com/inodb/vibe-pgx/internal/output"
	"github.com/inodb/vibe-pgx/internal/phenotype"
	"github.com/inodb/vibe-pgx/internal/report"
)

// matchOptions holds the resolved settings for one match run.
type matchOptions struct {
	guidelinesDir  string
	cacheDir       string
	phenotypesPath string
	callsPath      string
	astrolabePath  string
	dbPath         string
	format         string
	outputFile     string
	workers        int
	fixups         []report.FixupRule
}

// fixupConfig is one entry of the "fixups" config list.
type fixupConfig struct {
	Gene        string `mapstructure:"gene"`
	Pattern     string `mapstructure:"pattern"`
	Replacement string `mapstructure:"replacement"`
}

func newMatchCmd() *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match gene calls against a guideline library",
		Long: `Match a sample's gene calls against every guideline in a library.

A guideline is reportable only when all of its related genes were called.
Reportable guidelines are matched by building every genotype signature from
the called diplotypes and checking it against each annotation group.`,
		Example: `  vibe-pgx match --guidelines guidelines/ --phenotypes gene.phenotypes.json --calls calls.json
  vibe-pgx match --guidelines guidelines/ --calls calls.json --astrolabe astrolabe.tsv -f json
  vibe-pgx match --guidelines guidelines/ --db pgx.duckdb --calls calls.json -o results.tsv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveMatchOptions(cmd, &opts); err != nil {
				return err
			}
			logger, err := newLogger(cmd)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			out := cmd.OutOrStdout()
			if opts.outputFile != "" {
				f, err := os.Create(opts.outputFile)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return runMatch(opts, out, logger)
		},
	}

	cmd.Flags().StringVar(&opts.guidelinesDir, "guidelines", "", "Guideline package directory (config: guidelines.dir)")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Cache parsed guidelines in this directory (config: guidelines.cache)")
	cmd.Flags().StringVar(&opts.phenotypesPath, "phenotypes", "", "Phenotype table, JSON or TSV (config: phenotypes.path)")
	cmd.Flags().StringVar(&opts.callsPath, "calls", "", "Gene call JSON file from the matcher")
	cmd.Flags().StringVar(&opts.astrolabePath, "astrolabe", "", "Overlay gene calls, TSV")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "DuckDB database for phenotypes and results (config: db.path)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "tab", "Output format: tab, genes, json (config: output.format)")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Matching workers, 0 for one per CPU (config: match.workers)")

	return cmd
}

// resolveMatchOptions fills unset flags from the configuration and builds
// the fix-up rule table.
func resolveMatchOptions(cmd *cobra.Command, opts *matchOptions) error {
	fromConfig := func(flag, key string, dst *string) {
		if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	fromConfig("guidelines", "guidelines.dir", &opts.guidelinesDir)
	fromConfig("cache-dir", "guidelines.cache", &opts.cacheDir)
	fromConfig("phenotypes", "phenotypes.path", &opts.phenotypesPath)
	fromConfig("db", "db.path", &opts.dbPath)
	fromConfig("format", "output.format", &opts.format)
	if !cmd.Flags().Changed("workers") && viper.IsSet("match.workers") {
		opts.workers = viper.GetInt("match.workers")
	}

	if opts.guidelinesDir == "" {
		return usageError{"--guidelines is required (or set guidelines.dir)"}
	}
	switch opts.format {
	case "tab", "genes", "json":
	default:
		return usageError{fmt.Sprintf("unknown output format %q", opts.format)}
	}

	var configured []fixupConfig
	if err := viper.UnmarshalKey("fixups", &configured); err != nil {
		return fmt.Errorf("reading fixups: %w", err)
	}
	rules, err := fixupRules(configured)
	if err != nil {
		return err
	}
	opts.fixups = rules
	return nil
}

// fixupRules returns the built-in rules followed by the configured ones.
func fixupRules(configured []fixupConfig) ([]report.FixupRule, error) {
	rules := report.DefaultFixups()
	for _, fc := range configured {
		r, err := report.NewFixupRule(fc.Gene, fc.Pattern, fc.Replacement)
		if err != nil {
			return nil, fmt.Errorf("fixup for %s: %w", fc.Gene, err)
		}
		rules = append(rules, r)
	}
	if _, err := report.NewNormalizer(rules...); err != nil {
		return nil, err
	}
	return rules, nil
}

// runMatch loads the inputs, matches every guideline and writes the result.
func runMatch(opts matchOptions, out io.Writer, logger *zap.Logger) error {
	var lc *duckdb.LibraryCache
	if opts.cacheDir != "" {
		lc = duckdb.NewLibraryCache(opts.cacheDir)
	}
	lib, err := duckdb.LoadLibrary(opts.guidelinesDir, lc)
	if err != nil {
		return fmt.Errorf("loading guidelines: %w", err)
	}
	logger.Info("loaded guidelines",
		zap.Int("guidelines", lib.Len()),
		zap.Int("genes", len(lib.RelatedGenes())))

	var store *duckdb.Store
	if opts.dbPath != "" {
		store, err = duckdb.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	lookup, src, err := openPhenotypes(opts.phenotypesPath, store, logger)
	if err != nil {
		return err
	}

	calls, overlay, err := loadCalls(opts.callsPath, opts.astrolabePath)
	if err != nil {
		return err
	}
	warnUnrelated(lib, append(append([]*genecall.Call(nil), calls...), overlay...), logger)

	ctx, err := report.NewContext(lib, calls, overlay, lookup, report.Options{
		Fixups:  opts.fixups,
		Workers: opts.workers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	if src != nil {
		if err := src.Err(); err != nil {
			return fmt.Errorf("reading phenotypes: %w", err)
		}
	}

	var runID string
	if store != nil {
		runID = uuid.New().String()
		if err := store.WriteResults(runID, ctx.GuidelineResults()); err != nil {
			return fmt.Errorf("storing results: %w", err)
		}
		logger.Info("stored results", zap.String("run", runID), zap.String("db", opts.dbPath))
	}

	return writeContext(ctx, opts.format, runID, out)
}

// openPhenotypes returns the phenotype lookup: the file when given, else the
// DuckDB store, else none. The returned source is non-nil only for the store.
func openPhenotypes(path string, store *duckdb.Store, logger *zap.Logger) (phenotype.Lookup, *duckdb.PhenotypeSource, error) {
	if path != "" {
		m, err := phenotype.Load(path)
		if err != nil {
			return nil, nil, fmt.Errorf("loading phenotypes: %w", err)
		}
		logger.Info("loaded phenotypes", zap.String("path", path), zap.Int("genes", len(m)))
		return m, nil, nil
	}
	if store != nil {
		src, err := duckdb.NewPhenotypeSource(store, 0)
		if err != nil {
			return nil, nil, err
		}
		src.SetLogger(logger)
		return src, src, nil
	}
	logger.Warn("no phenotype table given, diplotypes are matched as-is")
	return nil, nil, nil
}

func loadCalls(callsPath, astrolabePath string) (calls, overlay []*genecall.Call, err error) {
	if callsPath != "" {
		if calls, err = genecall.LoadMatcherCalls(callsPath); err != nil {
			return nil, nil, fmt.Errorf("loading calls: %w", err)
		}
	}
	if astrolabePath != "" {
		if overlay, err = genecall.LoadAstrolabeCalls(astrolabePath); err != nil {
			return nil, nil, fmt.Errorf("loading astrolabe calls: %w", err)
		}
	}
	return calls, overlay, nil
}

// warnUnrelated logs calls for genes no guideline relates to.
func warnUnrelated(lib *guideline.Library, calls []*genecall.Call, logger *zap.Logger) {
	related := make(map[string]bool)
	for _, g := range lib.RelatedGenes() {
		related[g] = true
	}
	for _, c := range calls {
		if !related[c.Gene] {
			logger.Debug("call for gene without guideline", zap.String("gene", c.Gene))
		}
	}
}

func writeContext(ctx *report.Context, format, runID string, out io.Writer) error {
	switch format {
	case "json":
		return output.NewJSONWriter(out, runID).Write(ctx)
	case "genes":
		w := output.NewGeneTabWriter(out)
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := w.WriteAll(ctx); err != nil {
			return err
		}
		return w.Flush()
	default:
		w := output.NewTabWriter(out)
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := w.WriteAll(ctx); err != nil {
			return err
		}
		return w.Flush()
	}
}
