package scheduler

import (
	"log/slog"

	"github.com/pthm-cable/gridbot/grid"
)

// ItemSpec is the caller-supplied description of one item to relocate.
type ItemSpec struct {
	Name   string    `json:"name" yaml:"name"`
	Pickup grid.Cell `json:"pickup" yaml:"pickup"`
	Target grid.Cell `json:"target" yaml:"target"`
}

// Item is a pending item with its priority against a robot position.
// Items are values: a new robot position produces a new Item.
type Item struct {
	Name     string    `json:"name"`
	Robot    grid.Cell `json:"robot"`
	Pickup   grid.Cell `json:"pickup"`
	Target   grid.Cell `json:"target"`
	Priority int       `json:"priority"`
	Seq      int       `json:"seq"` // configuration order, breaks priority ties
}

// Priority estimates the travel for an item: robot to pickup plus pickup to target.
func Priority(robot, pickup, target grid.Cell) int {
	return grid.Manhattan(robot, pickup) + grid.Manhattan(pickup, target)
}

// NewItem builds the item for spec as seen from robot.
func NewItem(spec ItemSpec, robot grid.Cell, seq int) Item {
	return Item{
		Name:     spec.Name,
		Robot:    robot,
		Pickup:   spec.Pickup,
		Target:   spec.Target,
		Priority: Priority(robot, spec.Pickup, spec.Target),
		Seq:      seq,
	}
}

// Reprioritize returns a copy of it ranked from a new robot position.
func (it Item) Reprioritize(robot grid.Cell) Item {
	return NewItem(ItemSpec{Name: it.Name, Pickup: it.Pickup, Target: it.Target}, robot, it.Seq)
}

// LogValue implements slog.LogValuer.
func (it Item) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", it.Name),
		slog.Int("priority", it.Priority),
		slog.String("pickup", it.Pickup.String()),
		slog.String("target", it.Target.String()),
	)
}
