package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/TiredRebel/personal-assistant/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or modify configuration",
	Long: `View or change pa configuration stored in <data dir>/config.toml.

With no arguments, shows all configuration settings.
With one argument, shows the value of that key.
With two arguments, sets the key to the given value ("" resets it).

Settings:
  data_dir           Where contacts, notes and backups are stored
  store_mode         Storage backend: "json" (default) or "sqlite"
  default_format     Default output format: "table" or "json"
  color              Colored output: "auto" (default), "always" or "never"
  fuzzy_threshold    Score a loosely typed command must exceed (default 0.7)
  suggest_threshold  Score a "Did you mean" suggestion must exceed (default 0.4)
  max_suggestions    Suggestions shown for unrecognized input (default 3)
  birthday_days      Days ahead the birthdays command looks (default 7)
  backup_keep        Backups kept per data file (default 10)
  metrics_file       Write parse counters here in Prometheus text format`,
	Example: `  pa config
  pa config store_mode
  pa config store_mode sqlite
  pa config fuzzy_threshold 0.75
  pa config metrics_file /var/lib/node_exporter/pa.prom`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFrom(configPath())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		switch len(args) {
		case 0:
			return showConfig(cfg)
		case 1:
			return getConfig(cfg, args[0])
		default:
			return setConfig(cfg, args[0], args[1])
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func showConfig(cfg *config.Config) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, key := range config.ValidKeys() {
		val, _ := cfg.Get(key)
		if val == "" {
			val = "(not set)"
		}
		fmt.Fprintf(w, "%s\t%s\n", key, val)
	}
	return w.Flush()
}

func getConfig(cfg *config.Config, key string) error {
	val, err := cfg.Get(key)
	if err != nil {
		return err
	}
	if val == "" {
		return nil
	}
	fmt.Println(val)
	return nil
}

func setConfig(cfg *config.Config, key, value string) error {
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.SaveTo(configPath()); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", key, value)
	return nil
}
