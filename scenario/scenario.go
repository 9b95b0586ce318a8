// Package scenario loads grid layouts and item lists from YAML files.
//
// A scenario is validated against an embedded JSON Schema before it is
// decoded, so structural mistakes (a cell with three coordinates, a missing
// target) are reported with the offending location instead of surfacing later
// as a zero-valued cell.
package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/gridbot/grid"
	"github.com/pthm-cable/gridbot/scheduler"
)

//go:embed scenario.schema.json
var schemaJSON string

//go:embed reference.yaml
var referenceYAML []byte

// ErrInvalid is returned for scenarios that fail validation.
var ErrInvalid = errors.New("invalid scenario")

// Scenario is the decoded file.
type Scenario struct {
	Name  string       `yaml:"name" json:"name"`
	Grid  []string     `yaml:"grid" json:"grid"`
	Robot []int        `yaml:"robot,omitempty" json:"robot,omitempty"`
	Items []ItemConfig `yaml:"items" json:"items"`
}

// ItemConfig describes one item. A missing Pickup is found by the item's
// label on the grid.
type ItemConfig struct {
	Name   string `yaml:"name" json:"name"`
	Pickup []int  `yaml:"pickup,omitempty" json:"pickup,omitempty"`
	Target []int  `yaml:"target" json:"target"`
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("scenario.schema.json", schemaJSON)
})

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// LoadOrDefault loads path, or the reference scenario when path is empty.
func LoadOrDefault(path string) (*Scenario, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Default returns the built-in 4x4 reference layout.
func Default() (*Scenario, error) {
	return Parse(referenceYAML)
}

// Parse validates YAML data against the schema and decodes it.
func Parse(data []byte) (*Scenario, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks YAML data against the scenario schema.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling scenario schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	// The validator wants JSON values; round-trip so numbers become json.Number.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Build turns the scenario into the inputs of scheduler.Run.
func (s *Scenario) Build() (*grid.Grid, grid.Cell, []scheduler.ItemSpec, error) {
	g, err := grid.Parse(s.Grid)
	if err != nil {
		return nil, grid.Cell{}, nil, fmt.Errorf("%w: grid: %v", ErrInvalid, err)
	}

	var robot grid.Cell
	if len(s.Robot) > 0 {
		if robot, err = toCell(s.Robot); err != nil {
			return nil, grid.Cell{}, nil, fmt.Errorf("robot: %w", err)
		}
	} else {
		var ok bool
		if robot, ok = g.Find(grid.TokenRobot); !ok {
			return nil, grid.Cell{}, nil, fmt.Errorf("%w: no robot position and no %q on the grid", ErrInvalid, grid.TokenRobot)
		}
	}

	specs := make([]scheduler.ItemSpec, 0, len(s.Items))
	for _, it := range s.Items {
		spec := scheduler.ItemSpec{Name: it.Name}
		if spec.Target, err = toCell(it.Target); err != nil {
			return nil, grid.Cell{}, nil, fmt.Errorf("item %s target: %w", it.Name, err)
		}
		if len(it.Pickup) > 0 {
			if spec.Pickup, err = toCell(it.Pickup); err != nil {
				return nil, grid.Cell{}, nil, fmt.Errorf("item %s pickup: %w", it.Name, err)
			}
		} else {
			var ok bool
			if spec.Pickup, ok = g.Find(it.Name); !ok {
				return nil, grid.Cell{}, nil, fmt.Errorf("%w: item %s has no pickup and is not on the grid", ErrInvalid, it.Name)
			}
		}
		specs = append(specs, spec)
	}
	return g, robot, specs, nil
}

// ParseCell parses "x,y" into a cell.
func ParseCell(s string) (grid.Cell, error) {
	var c grid.Cell
	if _, err := fmt.Sscanf(s, "%d,%d", &c.X, &c.Y); err != nil {
		return grid.Cell{}, fmt.Errorf("cell %q: want x,y: %w", s, err)
	}
	return c, nil
}

func toCell(v []int) (grid.Cell, error) {
	if len(v) != 2 {
		return grid.Cell{}, fmt.Errorf("%w: cell needs 2 coordinates, got %d", ErrInvalid, len(v))
	}
	return grid.Cell{X: v[0], Y: v[1]}, nil
}
