package main

import (
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKey describes one scalar setting. parse converts and checks a value
// given on the command line; nil means any string.
type configKey struct {
	name  string
	usage string
	parse func(string) (any, error)
}

var configKeys = []configKey{
	{name: "guidelines.dir", usage: "Guideline package directory used by match"},
	{name: "guidelines.cache", usage: "Directory for the parsed guideline library cache"},
	{name: "phenotypes.path", usage: "Phenotype table (JSON or TSV) used by match"},
	{name: "db.path", usage: "DuckDB database for phenotypes and results"},
	{name: "match.workers", usage: "Matching workers, 0 for one per CPU", parse: parseWorkers},
	{name: "output.format", usage: "Default match output: tab, genes, json", parse: parseFormat},
}

func lookupConfigKey(name string) (configKey, bool) {
	for _, k := range configKeys {
		if k.name == name {
			return k, true
		}
	}
	return configKey{}, false
}

func parseWorkers(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("match.workers must be a non-negative integer, got %q", s)
	}
	return n, nil
}

func parseFormat(s string) (any, error) {
	switch s {
	case "tab", "genes", "json":
		return s, nil
	}
	return nil, fmt.Errorf("output.format must be tab, genes or json, got %q", s)
}

// configValue validates a "config set" value for key.
func configValue(key, value string) (any, error) {
	if key == "fixups" {
		return nil, fmt.Errorf("fixups is a list of {gene, pattern, replacement}; edit the config file directly")
	}
	k, ok := lookupConfigKey(key)
	if !ok {
		return nil, fmt.Errorf("unknown key %q (see: vibe-pgx config keys)", key)
	}
	if k.parse == nil {
		return value, nil
	}
	return k.parse(value)
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-pgx configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.vibe-pgx.yaml.
Every key can also be set from the environment, e.g. VIBE_PGX_GUIDELINES_DIR.`,
		Example: `  vibe-pgx config                                     # show all config
  vibe-pgx config keys                                # list known keys
  vibe-pgx config set guidelines.dir ~/pgx/guidelines # default guideline directory
  vibe-pgx config get match.workers                   # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigKeysCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

func newConfigKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List configuration keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, k := range configKeys {
				fmt.Fprintf(tw, "%s\t%s\n", k.name, k.usage)
			}
			fmt.Fprintf(tw, "%s\t%s\n", "fixups", "Extra diplotype fix-up rules (list, config file only)")
			return tw.Flush()
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "# No configuration set. Config file: ~/.vibe-pgx.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))

	var unknown []string
	for _, key := range viper.AllKeys() {
		if _, ok := lookupConfigKey(key); !ok && key != "fixups" {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: unknown config key %q\n", key)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	v, err := configValue(key, value)
	if err != nil {
		return usageError{err.Error()}
	}
	viper.Set(key, v)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		if cfgFile, err = defaultConfigPath(); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v in %s\n", key, v, cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}
