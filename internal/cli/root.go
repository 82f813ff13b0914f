// Package cli defines the cobra command tree and the interactive session
// for the pa CLI.
package cli

import (
	"os"

	"github.com/TiredRebel/personal-assistant/internal/command"
	"github.com/TiredRebel/personal-assistant/internal/config"
	"github.com/spf13/cobra"
)

var (
	homeFlag   string
	jsonOutput bool
	noColor    bool
	verbose    bool
	storeMode  string

	// settings is the loaded config file, replaced on every invocation.
	settings = &config.Config{}
)

// home returns the directory holding config.toml: --data-dir, then
// $PA_HOME, then ~/.personal_assistant.
func home() string {
	if homeFlag != "" {
		return homeFlag
	}
	return config.Home()
}

// configPath returns the config file location for this invocation.
func configPath() string {
	return config.Path(home())
}

// dataDir returns where contacts, notes, backups and logs live.
func dataDir() string {
	if homeFlag != "" {
		return homeFlag
	}
	return settings.ResolveDataDir(home())
}

// rootCmd is the top-level pa command.
var rootCmd = &cobra.Command{
	Use:   "pa",
	Short: "Personal assistant - contacts and notes from the command line",
	Long: `pa keeps an address book and a set of tagged notes.

Run pa without arguments for an interactive session. Commands can be typed
loosely: "add contact", "new person" and "add-contact" all mean the same
thing, and typos are matched against the known phrasings.

Data lives in ~/.personal_assistant (override with $PA_HOME or --data-dir).
Listing commands support --json for machine-readable output.`,
	Example: `  # Start the interactive assistant
  pa

  # See how a line would be interpreted
  pa parse "find contact john"

  # Run commands without the prompt
  pa do 'add contact "John Doe" +380501234567; list contacts'

  # Back up and move data
  pa backups contacts.json
  pa export ./pa-export`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFrom(configPath())
		if err != nil {
			return err
		}
		settings = cfg
		if cfg.DefaultFormat == "json" && !cmd.Flags().Changed("json") {
			jsonOutput = true
		}
		if cfg.StoreMode != "" && storeMode == "" {
			storeMode = cfg.StoreMode
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if settings.MetricsFile == "" {
			return nil
		}
		return command.WriteMetrics(settings.MetricsFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.session(os.Stdin, os.Stdout, true)
		return s.Run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeFlag, "data-dir", "", "data directory (default $PA_HOME or ~/.personal_assistant)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "echo storage warnings to stderr")
	rootCmd.PersistentFlags().StringVar(&storeMode, "store", "", "storage backend: json or sqlite")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

