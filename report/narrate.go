// Package report turns scheduler results into narration, terminal output and
// flat telemetry records.
package report

import (
	"fmt"

	"github.com/pthm-cable/gridbot/grid"
	"github.com/pthm-cable/gridbot/scheduler"
)

// Kind classifies a narrated step.
type Kind string

const (
	KindStart       Kind = "start"
	KindMove        Kind = "move"
	KindLift        Kind = "lift"
	KindPlace       Kind = "place"
	KindUnreachable Kind = "unreachable"
)

// Step is one line of narration.
type Step struct {
	Kind Kind      `json:"kind"`
	Item string    `json:"item"`
	Cell grid.Cell `json:"cell"`
	Text string    `json:"text"`
}

// Narrate describes one item run in order. The first cell of the pickup path
// is the robot's starting position, each following cell is a move, then the
// item is lifted. The drop path repeats the pickup cell, so its moves start at
// the second cell, and the item is placed at the end.
//
// An unreachable item narrates the start position and the failure; the robot
// does not move.
func Narrate(run scheduler.ItemRun) []Step {
	it := run.Item
	steps := make([]Step, 0, len(run.PickupPath)+len(run.DropPath)+1)
	add := func(kind Kind, c grid.Cell, format string, args ...any) {
		steps = append(steps, Step{Kind: kind, Item: it.Name, Cell: c, Text: fmt.Sprintf(format, args...)})
	}

	add(KindStart, it.Robot, "robot starts at %v", it.Robot)

	if run.Status == scheduler.StatusUnreachable {
		switch run.FailedPhase {
		case scheduler.PhaseDrop:
			add(KindUnreachable, it.Target, "no path from %v to target %v for %s", it.Pickup, it.Target, it.Name)
		default:
			add(KindUnreachable, it.Pickup, "no path to pickup %v for %s", it.Pickup, it.Name)
		}
		return steps
	}

	for _, c := range tail(run.PickupPath) {
		add(KindMove, c, "moving to %v", c)
	}
	add(KindLift, it.Pickup, "reached %v, lifting %s", it.Pickup, it.Name)

	for _, c := range tail(run.DropPath) {
		add(KindMove, c, "moving to %v", c)
	}
	add(KindPlace, it.Target, "placing %s at %v", it.Name, it.Target)
	return steps
}

func tail(path []grid.Cell) []grid.Cell {
	if len(path) < 2 {
		return nil
	}
	return path[1:]
}
