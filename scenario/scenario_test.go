package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/gridbot/grid"
)

func TestDefaultScenario(t *testing.T) {
	sc, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	g, robot, specs, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Rows() != 4 || g.Cols() != 4 {
		t.Errorf("grid = %dx%d", g.Rows(), g.Cols())
	}
	if robot != (grid.Cell{X: 2, Y: 2}) {
		t.Errorf("robot = %v", robot)
	}
	want := map[string][2]grid.Cell{
		"M1": {{X: 0, Y: 0}, {X: 3, Y: 3}},
		"M2": {{X: 2, Y: 0}, {X: 3, Y: 2}},
		"M3": {{X: 0, Y: 3}, {X: 3, Y: 1}},
	}
	if len(specs) != len(want) {
		t.Fatalf("items = %d", len(specs))
	}
	for _, s := range specs {
		w, ok := want[s.Name]
		if !ok || s.Pickup != w[0] || s.Target != w[1] {
			t.Errorf("item %+v, want %v", s, w)
		}
	}
}

func TestPickupAndRobotFromGrid(t *testing.T) {
	data := []byte(`
grid:
  - "A - -"
  - "- R B"
items:
  - name: A
    target: [1, 0]
  - name: B
    target: [0, 2]
`)
	sc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, robot, specs, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if robot != (grid.Cell{X: 1, Y: 1}) {
		t.Errorf("robot = %v, want (1, 1)", robot)
	}
	if specs[0].Pickup != (grid.Cell{X: 0, Y: 0}) || specs[1].Pickup != (grid.Cell{X: 1, Y: 2}) {
		t.Errorf("pickups = %v, %v", specs[0].Pickup, specs[1].Pickup)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ``},
		{"missing items", "grid: [\"- -\"]\n"},
		{"three coordinates", "grid: [\"- -\"]\nitems:\n  - name: A\n    target: [0, 1, 2]\n"},
		{"negative coordinate", "grid: [\"- -\"]\nitems:\n  - name: A\n    target: [0, -1]\n"},
		{"missing target", "grid: [\"- -\"]\nitems:\n  - name: A\n    pickup: [0, 0]\n"},
		{"unknown field", "grid: [\"- -\"]\nitems: []\nspeed: 3\n"},
		{"fractional coordinate", "grid: [\"- -\"]\nitems:\n  - name: A\n    target: [0, 0.5]\n"},
		{"robot token as name", "grid: [\"R -\"]\nitems:\n  - name: R\n    pickup: [0, 0]\n    target: [0, 1]\n"},
		{"obstacle token as name", "grid: [\"R -\"]\nitems:\n  - name: \"#\"\n    target: [0, 1]\n"},
		{"empty token as name", "grid: [\"R -\"]\nitems:\n  - name: \"-\"\n    target: [0, 1]\n"},
		{"alt empty token as name", "grid: [\"R -\"]\nitems:\n  - name: \".\"\n    target: [0, 1]\n"},
		{"whitespace in name", "grid: [\"R -\"]\nitems:\n  - name: \"a b\"\n    target: [0, 1]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"ragged grid", "grid: [\"- -\", \"-\"]\nitems: []\n"},
		{"no robot", "grid: [\"- -\"]\nitems: []\n"},
		{"item not on grid", "grid: [\"R -\"]\nitems:\n  - name: Z\n    target: [0, 1]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if _, _, _, err := sc.Build(); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	body := "name: corridor\ngrid: [\"R - - A\"]\nitems:\n  - name: A\n    target: [0, 1]\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sc.Name != "corridor" || len(sc.Items) != 1 {
		t.Errorf("scenario = %+v", sc)
	}

	if _, err := LoadOrDefault(""); err != nil {
		t.Errorf("LoadOrDefault(\"\"): %v", err)
	}
}

func TestParseCell(t *testing.T) {
	c, err := ParseCell("3,1")
	if err != nil || c != (grid.Cell{X: 3, Y: 1}) {
		t.Errorf("ParseCell = %v, %v", c, err)
	}
	if _, err := ParseCell("north"); err == nil {
		t.Error("expected error")
	}
}
