package lloyd

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting clustering metrics.
// Implementations must be safe for concurrent use: with WithWorkers > 1,
// RecordRestart is called from several goroutines.
type MetricsCollector interface {
	// RecordRestart is called after each restart.
	RecordRestart(iterations int, distortion float64, duration time.Duration, converged bool)

	// RecordRun is called after each run; err is nil if successful.
	RecordRun(restarts int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRestart(int, float64, time.Duration, bool) {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	RestartCount      atomic.Int64
	RestartCapped     atomic.Int64
	IterationCount    atomic.Int64
	RestartTotalNanos atomic.Int64
	RunCount          atomic.Int64
	RunErrors         atomic.Int64
	RunTotalNanos     atomic.Int64

	mu             sync.Mutex
	bestDistortion float64
	hasDistortion  bool
}

// RecordRestart implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRestart(iterations int, distortion float64, duration time.Duration, converged bool) {
	b.RestartCount.Add(1)
	b.IterationCount.Add(int64(iterations))
	b.RestartTotalNanos.Add(duration.Nanoseconds())
	if !converged {
		b.RestartCapped.Add(1)
	}

	b.mu.Lock()
	if !b.hasDistortion || distortion < b.bestDistortion {
		b.bestDistortion = distortion
		b.hasDistortion = true
	}
	b.mu.Unlock()
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// Stats is a snapshot of BasicMetricsCollector.
type Stats struct {
	Restarts            int64
	CappedRestarts      int64
	Iterations          int64
	AvgIterations       float64
	RestartAvgNanos     int64
	Runs                int64
	RunErrors           int64
	BestSeenDistortion  float64
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() Stats {
	s := Stats{
		Restarts:           b.RestartCount.Load(),
		CappedRestarts:     b.RestartCapped.Load(),
		Iterations:         b.IterationCount.Load(),
		Runs:               b.RunCount.Load(),
		RunErrors:          b.RunErrors.Load(),
		BestSeenDistortion: math.NaN(),
	}
	if s.Restarts > 0 {
		s.AvgIterations = float64(s.Iterations) / float64(s.Restarts)
		s.RestartAvgNanos = b.RestartTotalNanos.Load() / s.Restarts
	}

	b.mu.Lock()
	if b.hasDistortion {
		s.BestSeenDistortion = b.bestDistortion
	}
	b.mu.Unlock()

	return s
}
