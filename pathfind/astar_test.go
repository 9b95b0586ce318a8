package pathfind

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/pthm-cable/gridbot/grid"
)

func mustParse(t *testing.T, rows ...string) *grid.Grid {
	t.Helper()
	g, err := grid.Parse(rows)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

// checkPath verifies the path is a connected walk over traversable cells.
func checkPath(t *testing.T, g grid.View, p []grid.Cell, start, target grid.Cell) {
	t.Helper()
	if len(p) == 0 {
		t.Fatal("empty path")
	}
	if p[0] != start {
		t.Errorf("path starts at %v, want %v", p[0], start)
	}
	if p[len(p)-1] != target {
		t.Errorf("path ends at %v, want %v", p[len(p)-1], target)
	}
	for i := 1; i < len(p); i++ {
		if grid.Manhattan(p[i-1], p[i]) != 1 {
			t.Errorf("step %d: %v -> %v is not a single move", i, p[i-1], p[i])
		}
		if !g.IsTraversable(p[i]) {
			t.Errorf("step %d: %v is not traversable", i, p[i])
		}
	}
}

// TestSearchOpenGridIsManhattan verifies no detours are taken without obstacles.
func TestSearchOpenGridIsManhattan(t *testing.T) {
	g, err := grid.NewEmpty(6, 7)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < g.Rows(); x++ {
		for y := 0; y < g.Cols(); y++ {
			start := grid.Cell{X: x, Y: y}
			for tx := 0; tx < g.Rows(); tx++ {
				for ty := 0; ty < g.Cols(); ty++ {
					target := grid.Cell{X: tx, Y: ty}
					res, err := Search(g, start, target)
					if err != nil {
						t.Fatalf("Search(%v, %v): %v", start, target, err)
					}
					if !res.Found {
						t.Fatalf("Search(%v, %v) not found on open grid", start, target)
					}
					if want := grid.Manhattan(start, target); res.Steps != want || len(res.Path) != want+1 {
						t.Fatalf("Search(%v, %v) steps=%d len=%d, want %d steps", start, target, res.Steps, len(res.Path), want)
					}
				}
			}
		}
	}
}

func TestSearchAroundObstacle(t *testing.T) {
	g := mustParse(t,
		"- - - - -",
		"- # # # -",
		"- - - # -",
		"# # - # -",
		"- - - - -",
	)
	start := grid.Cell{X: 2, Y: 1}
	target := grid.Cell{X: 2, Y: 4}

	res, err := Search(g, start, target)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found {
		t.Fatal("expected path around the wall")
	}
	checkPath(t, g, res.Path, start, target)
	// Up and over: (2,1)->(2,0)->(1,0)->(0,0)..(0,4)->(1,4)->(2,4) = 9
	// Down and under: (2,1)->(2,2)->(3,2)->(4,2)->(4,3)->(4,4)->(3,4)->(2,4) = 7
	if res.Steps != 7 {
		t.Errorf("steps = %d, want 7; path %v", res.Steps, res.Path)
	}
}

func TestSearchEnclosedTargetNotFound(t *testing.T) {
	g := mustParse(t,
		"- - - - -",
		"- - # - -",
		"- # - # -",
		"- - # - -",
		"- - - - -",
	)
	res, err := Search(g, grid.Cell{X: 0, Y: 0}, grid.Cell{X: 2, Y: 2})
	if err != nil {
		t.Fatalf("NotFound must not be an error: %v", err)
	}
	if res.Found {
		t.Fatalf("expected NotFound, got path %v", res.Path)
	}
	if res.Path != nil {
		t.Errorf("NotFound returned a partial path %v", res.Path)
	}
	// Every reachable cell is expanded once: 25 - 4 walls - 1 enclosed
	if res.Expanded != 20 {
		t.Errorf("expanded = %d, want 20", res.Expanded)
	}
}

func TestSearchObstacleTargetNotFound(t *testing.T) {
	g := mustParse(t,
		"- - -",
		"- # -",
		"- - -",
	)
	res, err := Search(g, grid.Cell{X: 0, Y: 0}, grid.Cell{X: 1, Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Found {
		t.Errorf("obstacle target should be unreachable, got %v", res.Path)
	}
}

func TestSearchStartEqualsTarget(t *testing.T) {
	g, _ := grid.NewEmpty(2, 2)
	c := grid.Cell{X: 1, Y: 1}
	res, err := Search(g, c, c)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Steps != 0 || len(res.Path) != 1 || res.Path[0] != c {
		t.Errorf("got %+v, want single-cell path", res)
	}
}

func TestSearchOutOfBounds(t *testing.T) {
	g, _ := grid.NewEmpty(3, 3)
	tests := []struct {
		name          string
		start, target grid.Cell
	}{
		{"start", grid.Cell{X: -1, Y: 0}, grid.Cell{X: 1, Y: 1}},
		{"target", grid.Cell{X: 0, Y: 0}, grid.Cell{X: 1, Y: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Search(g, tt.start, tt.target)
			if !errors.Is(err, grid.ErrOutOfBounds) {
				t.Errorf("err = %v, want ErrOutOfBounds", err)
			}
		})
	}
}

// TestSearchExpandsEachCellOnce checks the visited-set discipline on random grids.
func TestSearchExpandsEachCellOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		g := randomGrid(t, rng, 12, 12, 0.3)
		start, target := randomOpenCell(rng, g), randomOpenCell(rng, g)

		seen := make(map[grid.Cell]int)
		res, err := Search(g, start, target, WithExpandHook(func(c grid.Cell) { seen[c]++ }))
		if err != nil {
			t.Fatal(err)
		}
		for c, n := range seen {
			if n > 1 {
				t.Fatalf("trial %d: cell %v expanded %d times", trial, c, n)
			}
			if !g.IsTraversable(c) && c != start {
				t.Fatalf("trial %d: expanded blocked cell %v", trial, c)
			}
		}
		if len(seen) != res.Expanded {
			t.Errorf("trial %d: hook saw %d cells, result reports %d", trial, len(seen), res.Expanded)
		}
	}
}

// TestSearchMatchesGonumOracle compares path lengths against gonum's A*.
func TestSearchMatchesGonumOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		g := randomGrid(t, rng, 10, 14, 0.35)
		start, target := randomOpenCell(rng, g), randomOpenCell(rng, g)

		res, err := Search(g, start, target)
		if err != nil {
			t.Fatal(err)
		}
		want, reachable := oracleSteps(g, start, target)
		if res.Found != reachable {
			t.Fatalf("trial %d: found=%v, oracle reachable=%v\n%s", trial, res.Found, reachable, g)
		}
		if !res.Found {
			continue
		}
		checkPath(t, g, res.Path, start, target)
		if res.Steps != want {
			t.Fatalf("trial %d: steps=%d, oracle=%d\n%s", trial, res.Steps, want, g)
		}
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := randomGrid(t, rng, 15, 15, 0.25)
	start, target := randomOpenCell(rng, g), randomOpenCell(rng, g)

	first, err := Search(g, start, target)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Search(g, start, target)
	if err != nil {
		t.Fatal(err)
	}
	if first.Found != second.Found || first.Steps != second.Steps || len(first.Path) != len(second.Path) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
	for i := range first.Path {
		if first.Path[i] != second.Path[i] {
			t.Fatalf("path differs at %d: %v vs %v", i, first.Path[i], second.Path[i])
		}
	}
}

func TestSearchMaxExpansions(t *testing.T) {
	g, _ := grid.NewEmpty(10, 10)
	res, err := Search(g, grid.Cell{X: 0, Y: 0}, grid.Cell{X: 9, Y: 9}, WithMaxExpansions(3))
	if err != nil {
		t.Fatal(err)
	}
	if res.Found {
		t.Error("expected cap to stop the search")
	}
	if res.Expanded != 3 {
		t.Errorf("expanded = %d, want 3", res.Expanded)
	}
}

func TestSearchTieBreakInsertionOrder(t *testing.T) {
	// Up and right both have f = 2 and h = 1; up was pushed first.
	g, _ := grid.NewEmpty(3, 3)
	res, err := Search(g, grid.Cell{X: 1, Y: 0}, grid.Cell{X: 0, Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := []grid.Cell{{X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}}
	if len(res.Path) != len(want) {
		t.Fatalf("path = %v, want %v", res.Path, want)
	}
	for i := range want {
		if res.Path[i] != want[i] {
			t.Fatalf("path = %v, want %v", res.Path, want)
		}
	}
}

func randomGrid(t *testing.T, rng *rand.Rand, rows, cols int, density float64) *grid.Grid {
	t.Helper()
	g, err := grid.NewEmpty(rows, cols)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < rows; x++ {
		for y := 0; y < cols; y++ {
			if rng.Float64() < density {
				_ = g.MarkObstacle(grid.Cell{X: x, Y: y})
			}
		}
	}
	return g
}

func randomOpenCell(rng *rand.Rand, g *grid.Grid) grid.Cell {
	for {
		c := grid.Cell{X: rng.Intn(g.Rows()), Y: rng.Intn(g.Cols())}
		if g.IsTraversable(c) {
			return c
		}
	}
}

// oracleSteps builds a gonum graph of open cells and runs its A*.
func oracleSteps(g *grid.Grid, start, target grid.Cell) (int, bool) {
	id := func(c grid.Cell) int64 { return int64(c.X*g.Cols() + c.Y) }

	gg := simple.NewUndirectedGraph()
	for x := 0; x < g.Rows(); x++ {
		for y := 0; y < g.Cols(); y++ {
			c := grid.Cell{X: x, Y: y}
			if g.IsTraversable(c) {
				gg.AddNode(simple.Node(id(c)))
			}
		}
	}
	for x := 0; x < g.Rows(); x++ {
		for y := 0; y < g.Cols(); y++ {
			c := grid.Cell{X: x, Y: y}
			if !g.IsTraversable(c) {
				continue
			}
			for _, n := range []grid.Cell{{X: x + 1, Y: y}, {X: x, Y: y + 1}} {
				if g.IsTraversable(n) {
					gg.SetEdge(simple.Edge{F: simple.Node(id(c)), T: simple.Node(id(n))})
				}
			}
		}
	}

	shortest, _ := path.AStar(simple.Node(id(start)), simple.Node(id(target)), gg, nil)
	nodes, weight := shortest.To(id(target))
	if math.IsInf(weight, 1) || len(nodes) == 0 {
		return 0, false
	}
	return int(weight), true
}
