package lloyd

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
	"github.com/hupe1980/lloyd/internal/kmeans"
	"github.com/hupe1980/lloyd/resource"
)

// Classify tags every point of ds with the index of its nearest centroid.
// Among equally distant centroids the lowest index wins.
func Classify(ds *Dataset, cs Centroids) {
	assign := make([]int, ds.Len())
	kmeans.Classify(ds.rows(), cs, assign)
	ds.setAssignments(assign)
}

// Update moves every centroid to the mean of the points currently tagged with
// it and reports whether the set is unchanged, coordinate for coordinate.
// Centroids without points keep their position.
func Update(ds *Dataset, cs Centroids) bool {
	return kmeans.Update(ds.rows(), ds.Assignments(), cs, 0)
}

// Score returns the total squared distance between every point and the
// centroid it is tagged with.
func Score(ds *Dataset, cs Centroids) float64 {
	return kmeans.Score(ds.rows(), ds.Assignments(), cs)
}

// Result describes the winning restart of a run.
type Result struct {
	// Centroids is the best centroid set.
	Centroids Centroids

	// Distortion is the total squared error of the best set.
	Distortion float64

	// Restart is the zero-based index of the winning restart.
	Restart int

	// Iterations is the number of classify/update passes of the winning restart.
	Iterations int

	// Converged is false if the winning restart hit the iteration cap.
	Converged bool

	members []*roaring.Bitmap
}

// Members returns the indices of the points assigned to cluster c.
// The returned bitmap must not be modified.
func (r *Result) Members(c int) *roaring.Bitmap {
	if c < 0 || c >= len(r.members) {
		return roaring.New()
	}
	return r.members[c]
}

// Size returns the number of points assigned to cluster c.
func (r *Result) Size(c int) int {
	return int(r.Members(c).GetCardinality())
}

// EmptyClusters returns the ids of clusters without points.
func (r *Result) EmptyClusters() []int {
	var empty []int
	for c, m := range r.members {
		if m.IsEmpty() {
			empty = append(empty, c)
		}
	}
	return empty
}

// Run clusters ds into k groups using numRestarts random restarts and returns
// the centroid set with the lowest distortion. As a side effect every point of
// ds is tagged with its cluster in that set.
func Run(ctx context.Context, ds *Dataset, k, numRestarts int, optFns ...Option) (Centroids, error) {
	res, err := Cluster(ctx, ds, k, numRestarts, optFns...)
	if err != nil {
		return nil, err
	}
	return res.Centroids, nil
}

// Cluster is Run with the full description of the winning restart.
func Cluster(ctx context.Context, ds *Dataset, k, numRestarts int, optFns ...Option) (*Result, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	if err := validate(ds, k, numRestarts, o); err != nil {
		return nil, err
	}

	rng := o.rng
	if rng == nil {
		seed := o.seed
		if !o.seeded {
			seed = time.Now().UnixNano()
		}
		o.logger.DebugContext(ctx, "random generator seeded", "seed", seed)
		rng = rand.New(rand.NewSource(seed)) // nolint gosec
	}

	ctrl := o.controller
	if ctrl == nil && o.workers > 1 {
		ctrl = resource.NewController(resource.Config{MaxWorkers: int64(o.workers)})
	}

	logger := o.logger.
		WithRunID(uuid.NewString()).
		WithK(k).
		WithDimension(ds.Dim()).
		WithCount(ds.Len())

	cfg := kmeans.Config{
		K:             k,
		Restarts:      numRestarts,
		Tolerance:     o.tolerance,
		MaxIterations: o.maxIterations,
		Workers:       o.workers,
	}

	start := time.Now()
	best, err := kmeans.Run(ctx, ds.rows(), cfg, rng, ctrl, func(c kmeans.Candidate) {
		logger.LogRestart(ctx, c.Restart, c.Iterations, c.Distortion, c.Converged)
		o.metricsCollector.RecordRestart(c.Iterations, c.Distortion, c.Duration, c.Converged)
	})
	if err != nil {
		logger.LogRun(ctx, numRestarts, 0, 0, err)
		o.metricsCollector.RecordRun(numRestarts, time.Since(start), err)
		return nil, err
	}

	cs := Centroids(best.Centroids)
	Classify(ds, cs)

	res := &Result{
		Centroids:  cs,
		Distortion: best.Distortion,
		Restart:    best.Restart,
		Iterations: best.Iterations,
		Converged:  best.Converged,
		members:    make([]*roaring.Bitmap, k),
	}
	for c := range res.members {
		res.members[c] = roaring.New()
	}
	for i, p := range ds.Points() {
		res.members[p.Cluster].Add(uint32(i))
	}

	if empty := res.EmptyClusters(); len(empty) > 0 {
		logger.DebugContext(ctx, "clusters left empty", "clusters", empty)
	}
	logger.LogRun(ctx, numRestarts, best.Restart, best.Distortion, nil)
	o.metricsCollector.RecordRun(numRestarts, time.Since(start), nil)

	return res, nil
}

func validate(ds *Dataset, k, numRestarts int, o options) error {
	if ds == nil || ds.Len() == 0 {
		return ErrEmptyDataset
	}
	if k < 1 {
		return ErrInvalidClusterCount
	}
	if numRestarts < 1 {
		return ErrInvalidRestartCount
	}
	if o.tolerance < 0 || math.IsNaN(o.tolerance) {
		return ErrInvalidTolerance
	}
	return ds.Validate()
}
