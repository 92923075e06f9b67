package kmeans

import (
	"context"
	"math/rand"
	"time"

	"github.com/hupe1980/lloyd/resource"
	"golang.org/x/sync/errgroup"
)

// Config controls a multi-restart run.
type Config struct {
	// K is the number of clusters.
	K int

	// Restarts is the number of random restarts; the lowest-distortion one wins.
	Restarts int

	// Tolerance is the largest per-coordinate centroid move still considered
	// converged. 0 means exact equality.
	Tolerance float64

	// MaxIterations caps the classify/update passes per restart.
	// 0 means unbounded.
	MaxIterations int

	// Workers is the number of restarts allowed to run at the same time.
	// Values <= 1 run restarts sequentially.
	Workers int
}

// Candidate is the outcome of a single restart.
type Candidate struct {
	Restart    int
	Centroids  [][]float64
	Distortion float64
	Iterations int
	Converged  bool
	Duration   time.Duration
}

// Tracker keeps the best candidate seen so far.
// A candidate replaces the current best only if its distortion is strictly
// lower, so the earliest of equal candidates is kept.
type Tracker struct {
	best Candidate
	ok   bool
}

// Offer records c and reports whether it became the new best.
func (t *Tracker) Offer(c Candidate) bool {
	if t.ok && c.Distortion >= t.best.Distortion {
		return false
	}
	t.best = c
	t.ok = true
	return true
}

// Best returns the best candidate and false if nothing was offered.
func (t *Tracker) Best() (Candidate, bool) {
	return t.best, t.ok
}

// Lloyd refines centroids in place until they converge, maxIter passes have
// run (0 = unbounded), or ctx is done. The returned assignment reflects the
// final centroid positions.
func Lloyd(ctx context.Context, points, centroids [][]float64, tol float64, maxIter int) (assign []int, iterations int, converged bool, err error) {
	assign = make([]int, len(points))
	for i := range assign {
		assign[i] = Unassigned
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, iterations, false, err
		}

		iterations++
		Classify(points, centroids, assign)
		if Update(points, assign, centroids, tol) {
			return assign, iterations, true, nil
		}

		if maxIter > 0 && iterations >= maxIter {
			// Centroids moved after the last classification.
			Classify(points, centroids, assign)
			return assign, iterations, false, nil
		}
	}
}

// Restart runs one complete restart from a fresh uniform initialization.
func Restart(ctx context.Context, points [][]float64, cfg Config, rng *rand.Rand, lo, hi float64) (Candidate, error) {
	start := time.Now()
	dim := len(points[0])

	centroids := InitUniform(rng, cfg.K, dim, lo, hi)
	assign, iterations, converged, err := Lloyd(ctx, points, centroids, cfg.Tolerance, cfg.MaxIterations)
	if err != nil {
		return Candidate{}, err
	}

	return Candidate{
		Centroids:  centroids,
		Distortion: Score(points, assign, centroids),
		Iterations: iterations,
		Converged:  converged,
		Duration:   time.Since(start),
	}, nil
}

// Run executes cfg.Restarts restarts and returns the lowest-distortion one.
//
// One seed per restart is drawn from rng before any restart starts, so the
// result does not depend on cfg.Workers. ctrl bounds parallel restarts and
// their scratch memory; it may be nil. onDone, if set, is called once per
// finished restart and must be safe for concurrent use when cfg.Workers > 1.
func Run(ctx context.Context, points [][]float64, cfg Config, rng *rand.Rand, ctrl *resource.Controller, onDone func(Candidate)) (Candidate, error) {
	lo, hi := Bounds(points)

	seeds := make([]int64, cfg.Restarts)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	// Assignment slice plus centroid rows.
	scratch := int64(len(points))*8 + int64(cfg.K*len(points[0]))*8

	runOne := func(ctx context.Context, i int) (Candidate, error) {
		if !ctrl.TryAcquireScratch(scratch) {
			if err := ctrl.AcquireScratch(ctx, scratch); err != nil {
				return Candidate{}, err
			}
		}
		defer ctrl.ReleaseScratch(scratch)

		c, err := Restart(ctx, points, cfg, rand.New(rand.NewSource(seeds[i])), lo, hi) // nolint gosec
		if err != nil {
			return Candidate{}, err
		}
		c.Restart = i
		if onDone != nil {
			onDone(c)
		}
		return c, nil
	}

	results := make([]Candidate, cfg.Restarts)

	if cfg.Workers <= 1 {
		for i := range results {
			c, err := runOne(ctx, i)
			if err != nil {
				return Candidate{}, err
			}
			results[i] = c
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Workers)
		for i := range results {
			if !ctrl.TryAcquireWorker() {
				if err := ctrl.AcquireWorker(gctx); err != nil {
					break
				}
			}
			g.Go(func() error {
				defer ctrl.ReleaseWorker()
				c, err := runOne(gctx, i)
				if err != nil {
					return err
				}
				results[i] = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Candidate{}, err
		}
		if err := ctx.Err(); err != nil {
			return Candidate{}, err
		}
	}

	var t Tracker
	for _, c := range results {
		t.Offer(c)
	}
	best, _ := t.Best()
	return best, nil
}
