package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one scheduled item.
const (
	PhasePickupSearch = "pickup_search"
	PhaseDropSearch   = "drop_search"
	PhaseCommit       = "commit"
	PhaseRerank       = "rerank"
)

// Phases lists every phase in execution order.
var Phases = []string{PhasePickupSearch, PhaseDropSearch, PhaseCommit, PhaseRerank}

// PerfSample holds timing data for a single item.
type PerfSample struct {
	ItemDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks per-item timing over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	itemStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of items to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 64
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartItem begins timing a new item. Safe on a nil collector.
func (p *PerfCollector) StartItem() {
	if p == nil {
		return
	}
	p.itemStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, closing the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndItem finishes timing the current item and records the sample.
func (p *PerfCollector) EndItem() {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		ItemDuration: now.Sub(p.itemStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastPhase = ""
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Items           int
	AvgItemDuration time.Duration
	MinItemDuration time.Duration
	MaxItemDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total item time
	PhasePct map[string]float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil || p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minItem, maxItem time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.ItemDuration

		if i == 0 || s.ItemDuration < minItem {
			minItem = s.ItemDuration
		}
		if s.ItemDuration > maxItem {
			maxItem = s.ItemDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	return PerfStats{
		Items:           p.sampleCount,
		AvgItemDuration: avg,
		MinItemDuration: minItem,
		MaxItemDuration: maxItem,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("items", s.Items),
		slog.Int64("avg_item_us", s.AvgItemDuration.Microseconds()),
		slog.Int64("min_item_us", s.MinItemDuration.Microseconds()),
		slog.Int64("max_item_us", s.MaxItemDuration.Microseconds()),
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Items           int     `csv:"items"`
	AvgItemUS       int64   `csv:"avg_item_us"`
	MinItemUS       int64   `csv:"min_item_us"`
	MaxItemUS       int64   `csv:"max_item_us"`
	PickupSearchPct float64 `csv:"pickup_search_pct"`
	DropSearchPct   float64 `csv:"drop_search_pct"`
	CommitPct       float64 `csv:"commit_pct"`
	RerankPct       float64 `csv:"rerank_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV() PerfStatsCSV {
	return PerfStatsCSV{
		Items:           s.Items,
		AvgItemUS:       s.AvgItemDuration.Microseconds(),
		MinItemUS:       s.MinItemDuration.Microseconds(),
		MaxItemUS:       s.MaxItemDuration.Microseconds(),
		PickupSearchPct: s.PhasePct[PhasePickupSearch],
		DropSearchPct:   s.PhasePct[PhaseDropSearch],
		CommitPct:       s.PhasePct[PhaseCommit],
		RerankPct:       s.PhasePct[PhaseRerank],
	}
}
