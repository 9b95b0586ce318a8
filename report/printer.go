package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/pthm-cable/gridbot/grid"
	"github.com/pthm-cable/gridbot/pathfind"
	"github.com/pthm-cable/gridbot/scheduler"
)

// PrinterOptions controls what a Printer writes.
type PrinterOptions struct {
	Color          bool // false forces plain output; true still defers to TTY detection
	ShowRerank     bool
	ShowExpansions bool
}

// Printer renders runs as terminal text.
type Printer struct {
	w    io.Writer
	opts PrinterOptions

	header *color.Color
	start  *color.Color
	move   *color.Color
	done   *color.Color
	warn   *color.Color
	dim    *color.Color
	wall   *color.Color
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, opts PrinterOptions) *Printer {
	p := &Printer{
		w:      w,
		opts:   opts,
		header: color.New(color.FgBlue, color.Bold),
		start:  color.New(color.FgCyan),
		move:   color.New(color.Reset),
		done:   color.New(color.FgGreen, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		dim:    color.New(color.FgHiBlack),
		wall:   color.New(color.FgRed),
	}
	if !opts.Color {
		for _, c := range []*color.Color{p.header, p.start, p.move, p.done, p.warn, p.dim, p.wall} {
			c.DisableColor()
		}
	}
	return p
}

// PrintReport writes the initial ranking, each item's narration and move
// count, the re-ranking after each delivery and the final totals.
func (p *Printer) PrintReport(rep scheduler.Report) {
	if p.opts.ShowRerank && len(rep.Initial) > 0 {
		_, _ = p.header.Fprintf(p.w, "▸ Initial ranking from %v\n", rep.Start)
		p.printRanking(rep.Initial)
		fmt.Fprintln(p.w)
	}

	for _, run := range rep.Runs {
		p.PrintRun(run)
	}

	_, _ = p.header.Fprintf(p.w, "▸ Total moves: %d\n", rep.TotalMoves)
	fmt.Fprintf(p.w, "  delivered %d of %d", rep.Delivered, len(rep.Runs))
	if rep.Unreachable > 0 {
		_, _ = p.warn.Fprintf(p.w, ", %d unreachable", rep.Unreachable)
	}
	fmt.Fprintf(p.w, ", robot ends at %v\n", rep.End)
}

// PrintRun writes the narration of a single item.
func (p *Printer) PrintRun(run scheduler.ItemRun) {
	_, _ = p.header.Fprintf(p.w, "▸ %d. %s", run.Order, run.Item.Name)
	_, _ = p.dim.Fprintf(p.w, " (priority %d)\n", run.Item.Priority)

	for _, s := range Narrate(run) {
		c := p.move
		switch s.Kind {
		case KindStart:
			c = p.start
		case KindLift, KindPlace:
			c = p.done
		case KindUnreachable:
			c = p.warn
		}
		_, _ = c.Fprintf(p.w, "  %s\n", s.Text)
	}

	if run.Status == scheduler.StatusDelivered {
		fmt.Fprintf(p.w, "  moves for %s: %d (pickup %d, drop %d)\n",
			run.Item.Name, run.Moves, run.PickupSteps, run.DropSteps)
	}
	if p.opts.ShowExpansions {
		_, _ = p.dim.Fprintf(p.w, "  expanded: pickup %d, drop %d\n", run.PickupExpanded, run.DropExpanded)
	}
	if p.opts.ShowRerank && run.Status == scheduler.StatusDelivered && len(run.Reranked) > 0 {
		_, _ = p.dim.Fprintf(p.w, "  re-ranking from %v\n", run.Item.Target)
		p.printRanking(run.Reranked)
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) printRanking(items []scheduler.Item) {
	for _, it := range items {
		_, _ = p.dim.Fprintf(p.w, "    %-4s priority %d\n", it.Name, it.Priority)
	}
}

// PrintPath writes a single search result.
func (p *Printer) PrintPath(from, to grid.Cell, res pathfind.Result) {
	if !res.Found {
		_, _ = p.warn.Fprintf(p.w, "no path from %v to %v", from, to)
		_, _ = p.dim.Fprintf(p.w, " (expanded %d)\n", res.Expanded)
		return
	}
	cells := make([]string, len(res.Path))
	for i, c := range res.Path {
		cells[i] = c.String()
	}
	fmt.Fprintln(p.w, strings.Join(cells, " -> "))
	_, _ = p.done.Fprintf(p.w, "%d steps", res.Steps)
	_, _ = p.dim.Fprintf(p.w, " (expanded %d)\n", res.Expanded)
}

// PrintGrid writes the grid as tokens, one row per line.
func (p *Printer) PrintGrid(g *grid.Grid) {
	for _, line := range g.Lines() {
		for i, tok := range strings.Fields(line) {
			if i > 0 {
				fmt.Fprint(p.w, " ")
			}
			switch tok {
			case grid.TokenObstacle:
				_, _ = p.wall.Fprint(p.w, tok)
			case grid.TokenRobot:
				_, _ = p.start.Fprint(p.w, tok)
			case grid.TokenEmpty:
				_, _ = p.dim.Fprint(p.w, tok)
			default:
				_, _ = p.done.Fprint(p.w, tok)
			}
		}
		fmt.Fprintln(p.w)
	}
}
