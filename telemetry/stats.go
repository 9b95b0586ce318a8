package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Item statuses as written to CSV.
const (
	StatusDelivered   = "delivered"
	StatusUnreachable = "unreachable"
)

// ItemRecord is one processed item, flattened for CSV.
type ItemRecord struct {
	Order       int    `csv:"order"`
	Item        string `csv:"item"`
	Status      string `csv:"status"`
	FailedPhase string `csv:"failed_phase"`
	Priority    int    `csv:"priority"`
	PickupX     int    `csv:"pickup_x"`
	PickupY     int    `csv:"pickup_y"`
	TargetX     int    `csv:"target_x"`
	TargetY     int    `csv:"target_y"`
	PickupSteps int    `csv:"pickup_steps"`
	DropSteps   int    `csv:"drop_steps"`
	Moves       int    `csv:"moves"`
	Expanded    int    `csv:"expanded"`
}

// StepRecord is one narrated step, flattened for CSV.
type StepRecord struct {
	Order int    `csv:"order"`
	Item  string `csv:"item"`
	Kind  string `csv:"kind"`
	Index int    `csv:"index"`
	X     int    `csv:"x"`
	Y     int    `csv:"y"`
	Text  string `csv:"text"`
}

// Summary aggregates a whole run.
type Summary struct {
	Items         int     `csv:"items"`
	Delivered     int     `csv:"delivered"`
	Unreachable   int     `csv:"unreachable"`
	TotalMoves    int     `csv:"total_moves"`
	MeanMoves     float64 `csv:"mean_moves"`
	StdMoves      float64 `csv:"std_moves"`
	MedianMoves   float64 `csv:"median_moves"`
	MaxMoves      float64 `csv:"max_moves"`
	TotalExpanded int     `csv:"total_expanded"`
}

// Summarize computes run totals and per-item move statistics over delivered items.
func Summarize(records []ItemRecord) Summary {
	s := Summary{Items: len(records)}
	var moves []float64
	for _, r := range records {
		s.TotalExpanded += r.Expanded
		if r.Status != StatusDelivered {
			s.Unreachable++
			continue
		}
		s.Delivered++
		s.TotalMoves += r.Moves
		moves = append(moves, float64(r.Moves))
	}
	if len(moves) == 0 {
		return s
	}

	s.MeanMoves = stat.Mean(moves, nil)
	if len(moves) > 1 {
		s.StdMoves = stat.StdDev(moves, nil)
	}
	sort.Float64s(moves)
	s.MedianMoves = stat.Quantile(0.5, stat.Empirical, moves, nil)
	s.MaxMoves = floats.Max(moves)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("items", s.Items),
		slog.Int("delivered", s.Delivered),
		slog.Int("unreachable", s.Unreachable),
		slog.Int("total_moves", s.TotalMoves),
		slog.Float64("mean_moves", s.MeanMoves),
		slog.Float64("std_moves", s.StdMoves),
		slog.Float64("median_moves", s.MedianMoves),
		slog.Float64("max_moves", s.MaxMoves),
		slog.Int("total_expanded", s.TotalExpanded),
	)
}
