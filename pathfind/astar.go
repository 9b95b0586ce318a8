// Package pathfind finds minimum-step paths on a grid.
//
// Search is a best-first A* with a Manhattan heuristic over 4-directional,
// uniform-cost moves. Nodes live in an arena owned by the call and point at
// their predecessor by index, so the returned path is rebuilt by walking
// parent indices back to the root.
package pathfind

import (
	"container/heap"
	"fmt"

	"github.com/pthm-cable/gridbot/grid"
)

// Directions in expansion order: up, down, left, right.
var Directions = [4]grid.Cell{
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: 0, Y: 1},
}

// Result is the outcome of one search. Found is false when start and target
// are disconnected; that is a normal outcome, not an error.
type Result struct {
	Path     []grid.Cell `json:"path,omitempty"`
	Found    bool        `json:"found"`
	Steps    int         `json:"steps"`
	Expanded int         `json:"expanded"`
}

// Options defines parameters for a search.
type Options struct {
	OnExpand      func(grid.Cell)
	MaxExpansions int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithExpandHook calls fn for every cell the search expands.
func WithExpandHook(fn func(grid.Cell)) Option {
	return func(o *Options) { o.OnExpand = fn }
}

// WithMaxExpansions stops the search after n expansions (0 = rows*cols).
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

// Search finds a minimum-step path from start to target over g.
// An error is returned only when start or target lies outside the grid.
func Search(g grid.View, start, target grid.Cell, options ...Option) (Result, error) {
	var opts Options
	for _, o := range options {
		o(&opts)
	}
	if !g.InBounds(start) {
		return Result{}, fmt.Errorf("search start %v: %w", start, grid.ErrOutOfBounds)
	}
	if !g.InBounds(target) {
		return Result{}, fmt.Errorf("search target %v: %w", target, grid.ErrOutOfBounds)
	}

	cols := g.Cols()
	limit := g.Rows() * cols
	if opts.MaxExpansions > 0 && opts.MaxExpansions < limit {
		limit = opts.MaxExpansions
	}

	arena := make([]node, 0, 64)
	visited := make([]bool, g.Rows()*cols)
	open := &frontier{nodes: &arena}

	h0 := grid.Manhattan(start, target)
	arena = append(arena, node{cell: start, g: 0, h: h0, f: h0, parent: -1})
	heap.Push(open, 0)

	expanded := 0
	for open.Len() > 0 {
		id := heap.Pop(open).(int)
		current := arena[id]

		if current.cell == target {
			path := reconstructPath(arena, id)
			return Result{
				Path:     path,
				Found:    true,
				Steps:    current.g,
				Expanded: expanded,
			}, nil
		}

		// Stale duplicate of a cell already expanded
		ci := current.cell.X*cols + current.cell.Y
		if visited[ci] {
			continue
		}
		if expanded >= limit {
			break
		}
		visited[ci] = true
		expanded++
		if opts.OnExpand != nil {
			opts.OnExpand(current.cell)
		}

		for _, d := range Directions {
			next := current.cell.Add(d)
			if !g.IsTraversable(next) {
				continue
			}
			if visited[next.X*cols+next.Y] {
				continue
			}
			h := grid.Manhattan(next, target)
			arena = append(arena, node{
				cell:   next,
				g:      current.g + 1,
				h:      h,
				f:      current.g + 1 + h,
				parent: id,
			})
			heap.Push(open, len(arena)-1)
		}
	}

	return Result{Expanded: expanded}, nil
}

// reconstructPath walks parent indices from id back to the root and returns
// the cells in start-to-target order.
func reconstructPath(arena []node, id int) []grid.Cell {
	var path []grid.Cell
	for i := id; i >= 0; i = arena[i].parent {
		path = append(path, arena[i].cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
