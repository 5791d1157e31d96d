// Package metering measures the wall-clock time and memory use of a single
// calculation.
package metering

import (
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const bytesPerMB = 1 << 20

var allocBytes = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "fibmeter_calculation_alloc_bytes",
		Help:    "Bytes allocated on the heap during a Fibonacci calculation",
		Buckets: prometheus.ExponentialBuckets(1024, 8, 10),
	},
	[]string{"algorithm"},
)

// Report is the outcome of one metered call.
type Report struct {
	Elapsed time.Duration `json:"elapsed"`
	// HeapInUse is the heap memory in use when the call returned.
	HeapInUse uint64 `json:"heap_in_use"`
	// HeapSys is the heap memory obtained from the OS.
	HeapSys uint64 `json:"heap_sys"`
	// Allocated is the number of heap bytes allocated during the call.
	Allocated uint64 `json:"allocated"`
	// Mallocs is the number of heap objects allocated during the call.
	Mallocs uint64 `json:"mallocs"`
	// PeakRSS is the peak resident set size of the process. It is zero on
	// platforms without getrusage.
	PeakRSS uint64 `json:"peak_rss"`
}

// UsedMB returns HeapInUse in megabytes.
func (r Report) UsedMB() float64 { return float64(r.HeapInUse) / bytesPerMB }

// TotalMB returns HeapSys in megabytes.
func (r Report) TotalMB() float64 { return float64(r.HeapSys) / bytesPerMB }

// String renders the report in the two-line form printed after a
// calculation:
//
//	Time: 12 msec.
//	Memory: 3.42 MB / 7.81 MB.
func (r Report) String() string {
	return fmt.Sprintf("Time: %d msec.\nMemory: %.2f MB / %.2f MB.", r.Elapsed.Milliseconds(), r.UsedMB(), r.TotalMB())
}

// Meter takes a snapshot at Start and turns it into a Report at Stop. A Meter
// is not safe for concurrent use; measure concurrent calls with one Meter
// each and expect their allocation deltas to overlap.
type Meter struct {
	label   string
	start   time.Time
	before  runtime.MemStats
	running bool
}

// New returns a Meter whose reports are recorded under label in the
// fibmeter_calculation_alloc_bytes histogram. An empty label disables the
// metric.
func New(label string) *Meter {
	return &Meter{label: label}
}

// Start records the current time and memory statistics.
func (m *Meter) Start() {
	runtime.ReadMemStats(&m.before)
	m.running = true
	m.start = time.Now()
}

// Stop returns the report for the interval since Start. Calling Stop without
// Start returns a zero Report.
func (m *Meter) Stop() Report {
	elapsed := time.Since(m.start)
	if !m.running {
		return Report{}
	}
	m.running = false

	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	r := Report{
		Elapsed:   elapsed,
		HeapInUse: after.HeapInuse,
		HeapSys:   after.HeapSys,
		Allocated: after.TotalAlloc - m.before.TotalAlloc,
		Mallocs:   after.Mallocs - m.before.Mallocs,
		PeakRSS:   peakRSS(),
	}
	if m.label != "" {
		allocBytes.WithLabelValues(m.label).Observe(float64(r.Allocated))
	}
	return r
}

// Measure runs fn between Start and Stop.
func (m *Meter) Measure(fn func() error) (Report, error) {
	m.Start()
	err := fn()
	return m.Stop(), err
}

// Measure is a shorthand for New(label).Measure(fn).
func Measure(label string, fn func() error) (Report, error) {
	return New(label).Measure(fn)
}
