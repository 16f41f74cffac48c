package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/declgen/cmd/declgen/commands"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/logger"
)

var jsonLogs bool

var rootCmd = &cobra.Command{
	Use:   "declgen",
	Short: "declgen - Generate Go source from declarations and resource tables",
	Long: `declgen - Incremental source generation driven by //declgen: directives
and localized resource tables.

Available commands:
  generate - Run once and write changed artifacts
  check    - Verify generated files are up to date (CI)
  watch    - Regenerate on every change
  version  - Show version information

Configuration is read from declgen.toml, found by walking up from the
working directory, and DECLGEN_* environment variables.

Examples:
  declgen generate
  declgen check
  declgen watch -v`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		commands.Verbosity = verbosity
		// version runs without a project
		if cmd.Name() == "version" {
			return logger.Initialize(jsonLogs, verbosity)
		}
		cfg, err := commands.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.Log.Theme != "" {
			logger.SetTheme(cfg.Log.Theme)
		}
		if err := logger.Initialize(jsonLogs || cfg.Log.JSON, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		logger.Debugw("Configuration loaded",
			"file", cfg.File,
			"verbosity", logger.LevelName(verbosity),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().StringVarP(&commands.ConfigPath, "config", "c", "", "Config file (default: declgen.toml found upward)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit structured JSON logs on stderr")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
