package lloyd

import (
	"log/slog"
	"math/rand"

	"github.com/hupe1980/lloyd/resource"
)

type options struct {
	seed             int64
	seeded           bool
	rng              *rand.Rand
	tolerance        float64
	maxIterations    int
	workers          int
	controller       *resource.Controller
	logger           *Logger
	metricsCollector MetricsCollector
}

func defaultOptions() options {
	return options{
		workers:          1,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures a clustering run.
type Option func(*options)

// WithSeed seeds the run's random generator so results are reproducible.
// Without WithSeed or WithRand the seed is taken from the wall clock.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithRand injects the random generator used to initialize restarts.
// It takes precedence over WithSeed. The generator is only used from the
// calling goroutine.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithTolerance sets the largest per-coordinate centroid move that still
// counts as converged. The default 0 requires an exact fixed point.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithMaxIterations caps the classify/update passes of each restart.
// The default 0 leaves them unbounded: a restart runs until its centroids stop
// moving or the context is cancelled. A restart that hits the cap is scored
// as it stands and a warning is logged.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxIterations = n
	}
}

// WithWorkers runs up to n restarts concurrently. Each restart keeps its own
// assignment scratch space, so the result is the same as with n = 1.
//
// If n <= 1, restarts run sequentially (default).
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithResourceController bounds concurrent restarts and their scratch memory
// with a shared controller. Without one, WithWorkers alone sets the bound.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := lloyd.NewJSONLogger(slog.LevelInfo)
//	res, _ := lloyd.Cluster(ctx, ds, 8, 10, lloyd.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for restarts and runs.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}
