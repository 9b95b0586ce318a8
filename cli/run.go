package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/gridbot/config"
	"github.com/pthm-cable/gridbot/report"
	"github.com/pthm-cable/gridbot/scenario"
	"github.com/pthm-cable/gridbot/scheduler"
	"github.com/pthm-cable/gridbot/telemetry"
)

var snapshotDir string

var runCmd = &cobra.Command{
	Use:   "run [scenario.yaml]",
	Short: "Schedule, route and narrate every item of a scenario",
	Long: `Run the scheduler over a scenario and narrate each delivery.

Without a scenario file the built-in 4x4 reference layout is used. With
--output-dir (or output.dir in the config) items, narration steps, timing and a
summary are written as CSV next to a copy of the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "Directory to save a replayable run snapshot")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Cfg()

	sc, err := scenario.LoadOrDefault(scenarioArg(args))
	if err != nil {
		return err
	}
	g, robot, specs, err := sc.Build()
	if err != nil {
		return err
	}

	out, err := telemetry.NewOutputManager(cfg.Output.Dir, cfg.Derived.Zstd)
	if err != nil {
		return err
	}
	defer out.Close()

	initial := g.Clone()
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	rep, runErr := scheduler.Run(g, robot, specs,
		scheduler.WithPolicy(cfg.Derived.Policy),
		scheduler.WithLogger(slog.Default()),
		scheduler.WithPerf(perf),
		scheduler.WithMaxExpansions(cfg.Scheduler.MaxExpansions),
	)
	// An aborted run still reports what it delivered.
	if runErr != nil && !errors.Is(runErr, scheduler.ErrUnreachable) {
		return runErr
	}

	if jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
	} else {
		newPrinter(cmd.OutOrStdout()).PrintReport(rep)
	}

	items := report.ItemRecords(rep)
	summary := telemetry.Summarize(items)
	stats := perf.Stats()
	slog.Info("run summary", "scenario", sc.Name, "summary", summary)
	slog.Debug("perf", "stats", stats)

	if err := writeOutputs(out, cfg, rep, items, summary, stats); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if dir := out.Dir(); dir != "" {
		slog.Info("output written", "dir", dir)
	}

	if snapshotDir != "" {
		snap := report.NewSnapshot(sc.Name, initial, g, robot, specs,
			cfg.Derived.Policy, cfg.Scheduler.MaxExpansions, rep)
		path, err := report.SaveSnapshot(snap, snapshotDir)
		if err != nil {
			return err
		}
		slog.Info("snapshot saved", "path", path)
	}
	return runErr
}

func writeOutputs(out *telemetry.OutputManager, cfg *config.Config, rep scheduler.Report,
	items []telemetry.ItemRecord, summary telemetry.Summary, stats telemetry.PerfStats) error {
	if out == nil {
		return nil
	}
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}
	if err := out.WriteItems(items); err != nil {
		return err
	}
	if err := out.WriteSteps(report.StepRecords(rep)); err != nil {
		return err
	}
	if err := out.WritePerf(stats); err != nil {
		return err
	}
	return out.WriteSummary(summary)
}
