package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/klauspost/compress/zstd"
)

var errClosed = fmt.Errorf("output manager: %w", os.ErrClosed)

// YAMLWriter is anything that can save itself as YAML, such as *config.Config.
type YAMLWriter interface {
	WriteYAML(path string) error
}

// csvFile is one CSV output, optionally zstd-compressed.
type csvFile struct {
	f             *os.File
	enc           *zstd.Encoder
	w             io.Writer
	headerWritten bool
}

func openCSV(dir, name string, compress bool) (*csvFile, error) {
	if compress {
		name += ".zst"
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	cf := &csvFile{f: f, w: f}
	if compress {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("creating zstd writer for %s: %w", name, err)
		}
		cf.enc = enc
		cf.w = enc
	}
	return cf, nil
}

// write appends records, emitting the header only on the first call.
func (cf *csvFile) write(records any) error {
	if !cf.headerWritten {
		if err := gocsv.Marshal(records, cf.w); err != nil {
			return err
		}
		cf.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, cf.w)
}

func (cf *csvFile) close() error {
	var firstErr error
	if cf.enc != nil {
		firstErr = cf.enc.Close()
	}
	if err := cf.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// OutputManager writes a run's CSV files and a copy of its configuration.
type OutputManager struct {
	dir     string
	items   *csvFile
	steps   *csvFile
	perf    *csvFile
	summary *csvFile
}

// NewOutputManager creates dir and opens items.csv, steps.csv, perf.csv and
// summary.csv inside it. With compress set each file gets a .zst suffix and is
// zstd-encoded. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, compress bool) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		dst  **csvFile
		name string
	}{
		{&om.items, "items.csv"},
		{&om.steps, "steps.csv"},
		{&om.perf, "perf.csv"},
		{&om.summary, "summary.csv"},
	}
	for _, spec := range files {
		cf, err := openCSV(dir, spec.name, compress)
		if err != nil {
			om.Close()
			return nil, err
		}
		*spec.dst = cf
	}
	return om, nil
}

// WriteConfig saves the run configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg YAMLWriter) error {
	if om == nil || cfg == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteItems appends item records to items.csv.
func (om *OutputManager) WriteItems(records []ItemRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if om.items == nil {
		return errClosed
	}
	if err := om.items.write(records); err != nil {
		return fmt.Errorf("writing items: %w", err)
	}
	return nil
}

// WriteSteps appends narration records to steps.csv.
func (om *OutputManager) WriteSteps(records []StepRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if om.steps == nil {
		return errClosed
	}
	if err := om.steps.write(records); err != nil {
		return fmt.Errorf("writing steps: %w", err)
	}
	return nil
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats) error {
	if om == nil {
		return nil
	}
	if om.perf == nil {
		return errClosed
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV()}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteSummary appends a run summary to summary.csv.
func (om *OutputManager) WriteSummary(s Summary) error {
	if om == nil {
		return nil
	}
	if om.summary == nil {
		return errClosed
	}
	if err := om.summary.write([]Summary{s}); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files. Calling it again is a no-op.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, cf := range []**csvFile{&om.items, &om.steps, &om.perf, &om.summary} {
		if *cf == nil {
			continue
		}
		if err := (*cf).close(); err != nil && firstErr == nil {
			firstErr = err
		}
		*cf = nil
	}
	return firstErr
}
