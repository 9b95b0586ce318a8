package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/gridbot/report"
	"github.com/pthm-cable/gridbot/scheduler"
)

var replayCmd = &cobra.Command{
	Use:   "replay <snapshot.json>",
	Short: "Re-run a saved snapshot and check it reproduces the same report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	snap, err := report.LoadSnapshot(args[0])
	if err != nil {
		return err
	}

	rep, err := snap.Replay(scheduler.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), rep)
	}
	newPrinter(cmd.OutOrStdout()).PrintReport(rep)
	slog.Info("replay matches snapshot", "scenario", snap.Scenario, "total_moves", rep.TotalMoves)
	return nil
}
