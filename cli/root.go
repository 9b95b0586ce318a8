// Package cli implements the gridbot command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/gridbot/config"
	"github.com/pthm-cable/gridbot/report"
)

var (
	// Global flags
	configPath string
	outputDir  string
	logLevel   string
	noColor    bool
	jsonOutput bool
)

// rootCmd is the root command for gridbot.
var rootCmd = &cobra.Command{
	Use:     "gridbot",
	Version: "dev",
	Short:   "Grid robot pick-and-place planner",
	Long: `gridbot plans pick-and-place tasks for a single robot on a 2D grid.

Items are ranked by estimated travel, each is routed with A* to its pickup and
then to its target, and the remaining items are re-ranked from the robot's new
position after every delivery.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// SetVersion sets the string printed by --version.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Directory for CSV output and config snapshot")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(replayCmd)
}

// setup loads configuration, applies flag overrides and installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.Init(configPath); err != nil {
		return err
	}
	cfg := config.Cfg()

	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if noColor {
		cfg.Narration.Color = false
		color.NoColor = true
	}
	if err := cfg.ComputeDerived(); err != nil {
		return err
	}

	slog.SetDefault(cfg.NewLogger())
	slog.Debug("config loaded", "path", configPath, "policy", string(cfg.Derived.Policy))
	return nil
}

// newPrinter builds a report printer from the narration config.
func newPrinter(w io.Writer) *report.Printer {
	n := config.Cfg().Narration
	return report.NewPrinter(w, report.PrinterOptions{
		Color:          n.Color,
		ShowRerank:     n.ShowRerank,
		ShowExpansions: n.ShowExpansions,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func scenarioArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
