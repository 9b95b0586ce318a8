package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/gridbot/grid"
	"github.com/pthm-cable/gridbot/scenario"
	"github.com/pthm-cable/gridbot/scheduler"
)

var gridCmd = &cobra.Command{
	Use:   "grid [scenario.yaml]",
	Short: "Render a scenario's grid, robot and items",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGrid,
}

type gridView struct {
	Name  string               `json:"name,omitempty"`
	Rows  int                  `json:"rows"`
	Cols  int                  `json:"cols"`
	Grid  []string             `json:"grid"`
	Robot grid.Cell            `json:"robot"`
	Items []scheduler.ItemSpec `json:"items"`
}

func runGrid(cmd *cobra.Command, args []string) error {
	sc, err := scenario.LoadOrDefault(scenarioArg(args))
	if err != nil {
		return err
	}
	g, robot, specs, err := sc.Build()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(w, gridView{
			Name:  sc.Name,
			Rows:  g.Rows(),
			Cols:  g.Cols(),
			Grid:  g.Lines(),
			Robot: robot,
			Items: specs,
		})
	}

	newPrinter(w).PrintGrid(g)
	fmt.Fprintf(w, "\nrobot %v\n", robot)
	for _, s := range specs {
		fmt.Fprintf(w, "%-4s %v -> %v  priority %d\n", s.Name, s.Pickup, s.Target,
			scheduler.Priority(robot, s.Pickup, s.Target))
	}
	return nil
}
