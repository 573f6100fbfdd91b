package stats

import "sync"

// Recorder keeps metrics in memory so they can be inspected.
// It is safe for concurrent use.
type Recorder struct {
	mu           sync.Mutex
	counters     map[string]int64
	gauges       map[string]int64
	observations map[string][]float64
}

// Compile-time check that Recorder implements Collector.
var _ Collector = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		counters:     make(map[string]int64),
		gauges:       make(map[string]int64),
		observations: make(map[string][]float64),
	}
}

func (r *Recorder) IncCounter(name string, delta int64) {
	r.mu.Lock()
	r.counters[name] += delta
	r.mu.Unlock()
}

func (r *Recorder) SetGauge(name string, value int64) {
	r.mu.Lock()
	r.gauges[name] = value
	r.mu.Unlock()
}

func (r *Recorder) ObserveHistogram(name string, value float64) {
	r.mu.Lock()
	r.observations[name] = append(r.observations[name], value)
	r.mu.Unlock()
}

// Counter returns the current value of a counter.
func (r *Recorder) Counter(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[name]
}

// Gauge returns the last value set on a gauge.
func (r *Recorder) Gauge(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gauges[name]
}

// Observations returns a copy of the values recorded for a histogram.
func (r *Recorder) Observations(name string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.observations[name]...)
}
