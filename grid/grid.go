// Package grid provides the dense occupancy map the robot moves on.
package grid

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOutOfBounds is returned when a cell lies outside the grid.
	ErrOutOfBounds = errors.New("cell out of bounds")
	// ErrRagged is returned when rows have different lengths.
	ErrRagged = errors.New("grid rows have different lengths")
	// ErrEmpty is returned when a grid has no rows or no columns.
	ErrEmpty = errors.New("grid is empty")
)

// Cell identifies a grid position. X is the row, Y the column.
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// String formats the cell as "(x, y)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Add returns c offset by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Manhattan returns |x1-x2| + |y1-y2|.
func Manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// View is the read-only side of a grid. Searches only ever see a View.
type View interface {
	Rows() int
	Cols() int
	InBounds(c Cell) bool
	IsTraversable(c Cell) bool
	At(c Cell) (Marker, error)
}

// Grid stores markers row-major in a single slice.
type Grid struct {
	cells []Marker
	rows  int
	cols  int
}

var _ View = (*Grid)(nil)

// New builds a grid from a rectangular array of markers.
func New(rows [][]Marker) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmpty
	}
	cols := len(rows[0])
	g := &Grid{
		cells: make([]Marker, 0, len(rows)*cols),
		rows:  len(rows),
		cols:  cols,
	}
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), cols, ErrRagged)
		}
		g.cells = append(g.cells, row...)
	}
	return g, nil
}

// NewEmpty creates a rows x cols grid with every cell empty.
func NewEmpty(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrEmpty
	}
	return &Grid{
		cells: make([]Marker, rows*cols),
		rows:  rows,
		cols:  cols,
	}, nil
}

// Parse builds a grid from whitespace-separated token rows such as "M1 # - R".
func Parse(lines []string) (*Grid, error) {
	rows := make([][]Marker, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		row := make([]Marker, len(fields))
		for j, tok := range fields {
			row[j] = ParseMarker(tok)
		}
		rows = append(rows, row)
	}
	return New(rows)
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether c lies inside [0, rows) x [0, cols).
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.rows && c.Y >= 0 && c.Y < g.cols
}

// IsTraversable returns true if c is in bounds and not an obstacle.
func (g *Grid) IsTraversable(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.cells[g.index(c)].Kind != KindObstacle
}

// At returns the marker stored at c.
func (g *Grid) At(c Cell) (Marker, error) {
	if !g.InBounds(c) {
		return Marker{}, g.outOfBounds(c)
	}
	return g.cells[g.index(c)], nil
}

// Set replaces the marker at c.
func (g *Grid) Set(c Cell, m Marker) error {
	if !g.InBounds(c) {
		return g.outOfBounds(c)
	}
	g.cells[g.index(c)] = m
	return nil
}

// MarkObstacle makes c impassable for every later search.
func (g *Grid) MarkObstacle(c Cell) error {
	return g.Set(c, Obstacle())
}

// Find returns the first cell (row-major) holding an item or robot marker with label.
func (g *Grid) Find(label string) (Cell, bool) {
	for i, m := range g.cells {
		if m.Label != "" && m.Label == label {
			return Cell{X: i / g.cols, Y: i % g.cols}, true
		}
	}
	return Cell{}, false
}

// Obstacles lists all obstacle cells in row-major order.
func (g *Grid) Obstacles() []Cell {
	var out []Cell
	for i, m := range g.cells {
		if m.Kind == KindObstacle {
			out = append(out, Cell{X: i / g.cols, Y: i % g.cols})
		}
	}
	return out
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	cells := make([]Marker, len(g.cells))
	copy(cells, g.cells)
	return &Grid{cells: cells, rows: g.rows, cols: g.cols}
}

// Lines renders each row as space-separated tokens, the inverse of Parse.
func (g *Grid) Lines() []string {
	lines := make([]string, g.rows)
	tokens := make([]string, g.cols)
	for x := 0; x < g.rows; x++ {
		for y := 0; y < g.cols; y++ {
			tokens[y] = g.cells[x*g.cols+y].String()
		}
		lines[x] = strings.Join(tokens, " ")
	}
	return lines
}

func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}

func (g *Grid) index(c Cell) int {
	return c.X*g.cols + c.Y
}

func (g *Grid) outOfBounds(c Cell) error {
	return fmt.Errorf("%v not in %dx%d grid: %w", c, g.rows, g.cols, ErrOutOfBounds)
}
