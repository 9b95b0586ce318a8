package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/gridbot/grid"
	"github.com/pthm-cable/gridbot/scheduler"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrReplayMismatch is returned when replaying a snapshot produces a different report.
var ErrReplayMismatch = errors.New("replay does not match snapshot")

// Snapshot holds a run's inputs and outcome for replay.
type Snapshot struct {
	Version       int                  `json:"version"`
	Scenario      string               `json:"scenario"`
	Grid          []string             `json:"grid"`  // before the run
	Final         []string             `json:"final"` // after the run, placed items as obstacles
	Robot         grid.Cell            `json:"robot"`
	Items         []scheduler.ItemSpec `json:"items"`
	Policy        scheduler.Policy     `json:"policy"`
	MaxExpansions int                  `json:"max_expansions"` // per-search cap of the run, 0 = grid size
	Report        scheduler.Report     `json:"report"`
}

// NewSnapshot records a run. initial must be the grid as it was before
// scheduler.Run mutated final.
func NewSnapshot(name string, initial, final *grid.Grid, robot grid.Cell, items []scheduler.ItemSpec,
	policy scheduler.Policy, maxExpansions int, rep scheduler.Report) *Snapshot {
	return &Snapshot{
		Version:       SnapshotVersion,
		Scenario:      name,
		Grid:          initial.Lines(),
		Final:         final.Lines(),
		Robot:         robot,
		Items:         items,
		Policy:        policy,
		MaxExpansions: maxExpansions,
		Report:        rep,
	}
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := "snapshot"
	if snapshot.Scenario != "" {
		name += "_" + strings.ReplaceAll(snapshot.Scenario, " ", "_")
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}

// Replay runs the scheduler again on the snapshot's initial grid, with the
// recorded policy and expansion cap, and checks that the report and final grid
// are identical to the recorded ones. options may add a logger or perf
// collector; they are applied after the recorded settings.
func (s *Snapshot) Replay(options ...scheduler.Option) (scheduler.Report, error) {
	g, err := grid.Parse(s.Grid)
	if err != nil {
		return scheduler.Report{}, fmt.Errorf("snapshot grid: %w", err)
	}

	options = append([]scheduler.Option{
		scheduler.WithPolicy(s.Policy),
		scheduler.WithMaxExpansions(s.MaxExpansions),
	}, options...)
	rep, err := scheduler.Run(g, s.Robot, s.Items, options...)
	if err != nil && !errors.Is(err, scheduler.ErrUnreachable) {
		return rep, err
	}

	got, err := json.Marshal(rep)
	if err != nil {
		return rep, err
	}
	want, err := json.Marshal(s.Report)
	if err != nil {
		return rep, err
	}
	if !bytes.Equal(got, want) {
		return rep, fmt.Errorf("%w: report differs", ErrReplayMismatch)
	}
	if strings.Join(g.Lines(), "\n") != strings.Join(s.Final, "\n") {
		return rep, fmt.Errorf("%w: final grid differs", ErrReplayMismatch)
	}
	return rep, nil
}
