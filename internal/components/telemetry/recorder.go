package telemetry

import (
	"slices"
	"sync"
)

// Report is one call made against a Recorder.
type Report struct {
	Level  string
	ID     string
	Params []any
}

// Recorder is an API that keeps every report in memory, for tests.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) add(level, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Level: level, ID: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any)  { r.add("broken", id, params) }
func (r *Recorder) ReportWarning(id string, params ...any) { r.add("warning", id, params) }
func (r *Recorder) ReportDebug(msg string, params ...any)  { r.add("debug", msg, params) }
func (r *Recorder) ReportCount(id string, count int64)     { r.add("count", id, []any{count}) }

func (r *Recorder) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.reports)
}

// Level returns the ids reported at the given level, in order.
func (r *Recorder) Level(level string) []string {
	out := []string{}
	for _, rep := range r.Reports() {
		if rep.Level == level {
			out = append(out, rep.ID)
		}
	}
	return out
}
