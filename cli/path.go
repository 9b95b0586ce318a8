package cli

import (
	"github.com/spf13/cobra"

	"github.com/pthm-cable/gridbot/config"
	"github.com/pthm-cable/gridbot/pathfind"
	"github.com/pthm-cable/gridbot/scenario"
)

var (
	pathFrom string
	pathTo   string
)

var pathCmd = &cobra.Command{
	Use:   "path --from x,y --to x,y [scenario.yaml]",
	Short: "Run a single A* search on a scenario's initial grid",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPath,
}

func init() {
	pathCmd.Flags().StringVar(&pathFrom, "from", "", "Start cell as x,y (required)")
	pathCmd.Flags().StringVar(&pathTo, "to", "", "Target cell as x,y (required)")
	_ = pathCmd.MarkFlagRequired("from")
	_ = pathCmd.MarkFlagRequired("to")
}

func runPath(cmd *cobra.Command, args []string) error {
	from, err := scenario.ParseCell(pathFrom)
	if err != nil {
		return err
	}
	to, err := scenario.ParseCell(pathTo)
	if err != nil {
		return err
	}

	sc, err := scenario.LoadOrDefault(scenarioArg(args))
	if err != nil {
		return err
	}
	g, _, _, err := sc.Build()
	if err != nil {
		return err
	}

	res, err := pathfind.Search(g, from, to,
		pathfind.WithMaxExpansions(config.Cfg().Scheduler.MaxExpansions))
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	newPrinter(cmd.OutOrStdout()).PrintPath(from, to, res)
	return nil
}
