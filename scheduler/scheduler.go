// Package scheduler sequences pick-and-place tasks for a single robot.
//
// Pending items are ranked by estimated travel (robot to pickup plus pickup
// to target). The cheapest item is planned with two path searches, committed
// to the grid, and every remaining item is re-ranked from the robot's new
// position before the next selection.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/gridbot/grid"
	"github.com/pthm-cable/gridbot/pathfind"
	"github.com/pthm-cable/gridbot/telemetry"
)

var (
	// ErrUnreachable is returned under PolicyAbort when an item cannot be delivered.
	ErrUnreachable = errors.New("item unreachable")
	// ErrDuplicateItem is returned when two items share a name.
	ErrDuplicateItem = errors.New("duplicate item name")
	// ErrInvalidItem is returned for items without a name.
	ErrInvalidItem = errors.New("invalid item")
)

// Policy decides what happens when an item has no path.
type Policy string

const (
	PolicySkip  Policy = "skip"  // record the item as unreachable and continue
	PolicyAbort Policy = "abort" // stop and return ErrUnreachable
)

// ParsePolicy maps a config string to a Policy. Empty means PolicySkip.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown unreachable policy %q", s)
	}
}

// Status is the outcome of one item.
type Status string

const (
	StatusDelivered   Status = "delivered"
	StatusUnreachable Status = "unreachable"
)

// Phase names the leg of a task.
type Phase string

const (
	PhasePickup Phase = "pickup"
	PhaseDrop   Phase = "drop"
)

// ItemRun records how one item was processed.
type ItemRun struct {
	Order          int         `json:"order"`
	Item           Item        `json:"item"`
	Status         Status      `json:"status"`
	FailedPhase    Phase       `json:"failed_phase,omitempty"`
	PickupPath     []grid.Cell `json:"pickup_path,omitempty"`
	DropPath       []grid.Cell `json:"drop_path,omitempty"`
	PickupSteps    int         `json:"pickup_steps"`
	DropSteps      int         `json:"drop_steps"`
	Moves          int         `json:"moves"`
	PickupExpanded int         `json:"pickup_expanded"`
	DropExpanded   int         `json:"drop_expanded"`
	Reranked       []Item      `json:"reranked,omitempty"` // remaining queue after this item, in pop order
}

// Report is the full outcome of a run.
type Report struct {
	Start       grid.Cell `json:"start"`
	End         grid.Cell `json:"end"`
	Initial     []Item    `json:"initial"` // ranking before the first selection
	Runs        []ItemRun `json:"runs"`
	Delivered   int       `json:"delivered"`
	Unreachable int       `json:"unreachable"`
	TotalMoves  int       `json:"total_moves"`
}

// Options defines parameters for a Scheduler.
type Options struct {
	Policy        Policy
	Logger        *slog.Logger
	Perf          *telemetry.PerfCollector
	MaxExpansions int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithPolicy sets the unreachable-item policy.
func WithPolicy(p Policy) Option {
	return func(o *Options) { o.Policy = p }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithPerf records per-item phase timing into pc.
func WithPerf(pc *telemetry.PerfCollector) Option {
	return func(o *Options) { o.Perf = pc }
}

// WithMaxExpansions caps every path search (0 = grid size).
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

// Scheduler runs the select, plan, commit and re-rank loop.
type Scheduler struct {
	opts Options
	log  *slog.Logger
}

// New creates a scheduler.
func New(options ...Option) *Scheduler {
	opts := Options{Policy: PolicySkip}
	for _, o := range options {
		o(&opts)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{opts: opts, log: log}
}

// Run is shorthand for New(options...).Run(g, robot, specs).
func Run(g *grid.Grid, robot grid.Cell, specs []ItemSpec, options ...Option) (Report, error) {
	return New(options...).Run(g, robot, specs)
}

// Run processes every item in specs starting from robot. It mutates g: each
// delivered item's target becomes an obstacle. Under PolicyAbort the partial
// report is returned together with an error wrapping ErrUnreachable.
func (s *Scheduler) Run(g *grid.Grid, robot grid.Cell, specs []ItemSpec) (Report, error) {
	if err := validate(g, robot, specs); err != nil {
		return Report{}, err
	}

	q := NewQueue(specs, robot)
	rep := Report{Start: robot, End: robot, Initial: q.Snapshot()}
	s.log.Debug("scheduler initialized", "items", q.Len(), "robot", robot.String())

	search := []pathfind.Option{pathfind.WithMaxExpansions(s.opts.MaxExpansions)}
	perf := s.opts.Perf

	for order := 1; q.Len() > 0; order++ {
		it, _ := q.Pop()
		run := ItemRun{Order: order, Item: it}
		perf.StartItem()

		perf.StartPhase(telemetry.PhasePickupSearch)
		toPickup, err := pathfind.Search(g, robot, it.Pickup, search...)
		if err != nil {
			return rep, fmt.Errorf("item %s pickup: %w", it.Name, err)
		}
		run.PickupExpanded = toPickup.Expanded

		var toTarget pathfind.Result
		if toPickup.Found {
			perf.StartPhase(telemetry.PhaseDropSearch)
			toTarget, err = pathfind.Search(g, it.Pickup, it.Target, search...)
			if err != nil {
				return rep, fmt.Errorf("item %s drop: %w", it.Name, err)
			}
			run.DropExpanded = toTarget.Expanded
		}

		if !toPickup.Found || !toTarget.Found {
			run.Status = StatusUnreachable
			run.FailedPhase = PhasePickup
			if toPickup.Found {
				run.FailedPhase = PhaseDrop
				run.PickupPath = toPickup.Path
			}
			rep.Runs = append(rep.Runs, run)
			rep.Unreachable++
			perf.EndItem()

			s.log.Warn("item unreachable", "item", it, "phase", string(run.FailedPhase))
			if s.opts.Policy == PolicyAbort {
				return rep, fmt.Errorf("item %s (%s phase): %w", it.Name, run.FailedPhase, ErrUnreachable)
			}
			continue
		}

		perf.StartPhase(telemetry.PhaseCommit)
		// The item leaves its pickup cell; clear the label if it is there.
		if m, err := g.At(it.Pickup); err == nil && m.Kind == grid.KindItem && m.Label == it.Name {
			if err := g.Set(it.Pickup, grid.Empty()); err != nil {
				return rep, fmt.Errorf("item %s commit: %w", it.Name, err)
			}
		}
		if err := g.MarkObstacle(it.Target); err != nil {
			return rep, fmt.Errorf("item %s commit: %w", it.Name, err)
		}
		robot = it.Target

		run.Status = StatusDelivered
		run.PickupPath = toPickup.Path
		run.DropPath = toTarget.Path
		run.PickupSteps = toPickup.Steps
		run.DropSteps = toTarget.Steps
		run.Moves = run.PickupSteps + run.DropSteps
		rep.TotalMoves += run.Moves
		rep.Delivered++
		rep.End = robot

		perf.StartPhase(telemetry.PhaseRerank)
		q.Rebuild(robot)
		run.Reranked = q.Snapshot()
		perf.EndItem()

		rep.Runs = append(rep.Runs, run)
		s.log.Info("item delivered",
			"item", it,
			"order", order,
			"pickup_steps", run.PickupSteps,
			"drop_steps", run.DropSteps,
			"moves", run.Moves,
		)
		for _, next := range run.Reranked {
			s.log.Debug("re-ranked", "item", next.Name, "priority", next.Priority)
		}
	}

	s.log.Info("run complete",
		"delivered", rep.Delivered,
		"unreachable", rep.Unreachable,
		"total_moves", rep.TotalMoves,
	)
	return rep, nil
}

func validate(g *grid.Grid, robot grid.Cell, specs []ItemSpec) error {
	if !g.InBounds(robot) {
		return fmt.Errorf("robot %v: %w", robot, grid.ErrOutOfBounds)
	}
	seen := make(map[string]struct{}, len(specs))
	for i, spec := range specs {
		if spec.Name == "" {
			return fmt.Errorf("item %d has no name: %w", i, ErrInvalidItem)
		}
		if _, dup := seen[spec.Name]; dup {
			return fmt.Errorf("%s: %w", spec.Name, ErrDuplicateItem)
		}
		seen[spec.Name] = struct{}{}
		if !g.InBounds(spec.Pickup) {
			return fmt.Errorf("item %s pickup %v: %w", spec.Name, spec.Pickup, grid.ErrOutOfBounds)
		}
		if !g.InBounds(spec.Target) {
			return fmt.Errorf("item %s target %v: %w", spec.Name, spec.Target, grid.ErrOutOfBounds)
		}
	}
	return nil
}
