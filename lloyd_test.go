package lloyd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/hupe1980/lloyd/resource"
	"github.com/hupe1980/lloyd/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoGroups(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewDataset(
		[]float64{0, 0},
		[]float64{0, 1},
		[]float64{10, 10},
		[]float64{10, 11},
	)
	require.NoError(t, err)
	return ds
}

func TestClassify(t *testing.T) {
	t.Run("TieBreakLowestIndex", func(t *testing.T) {
		ds, err := NewDataset([]float64{0, 0})
		require.NoError(t, err)

		cs := Centroids{{9, 9}, {8, 8}, {1, 0}, {7, 7}, {6, 6}, {0, 1}}
		Classify(ds, cs)
		assert.Equal(t, 2, ds.Points()[0].Cluster)
	})

	t.Run("Idempotent", func(t *testing.T) {
		ds := twoGroups(t)
		cs := Centroids{{3, 3}, {6, 6}}

		Classify(ds, cs)
		first := ds.Assignments()
		Classify(ds, cs)
		assert.Equal(t, first, ds.Assignments())
		assert.Equal(t, []int{0, 0, 1, 1}, first)
	})
}

func TestUpdate(t *testing.T) {
	ds := twoGroups(t)
	cs := Centroids{{1, 1}, {9, 9}, {100, 100}}

	Classify(ds, cs)
	assert.False(t, Update(ds, cs))
	assert.Equal(t, []float64{0, 0.5}, cs[0])
	assert.Equal(t, []float64{10, 10.5}, cs[1])
	assert.Equal(t, []float64{100, 100}, cs[2], "empty cluster must not move")

	Classify(ds, cs)
	assert.True(t, Update(ds, cs))
}

func TestScore(t *testing.T) {
	ds := twoGroups(t)
	cs := Centroids{{0, 0.5}, {10, 10.5}}

	assert.Equal(t, 0.0, Score(ds, cs), "unassigned points contribute nothing")

	Classify(ds, cs)
	assert.InDelta(t, 1.0, Score(ds, cs), 1e-12)
	assert.Equal(t, []int{0, 0, 1, 1}, ds.Assignments(), "score must not mutate tags")
}

func TestUpdateNeverIncreasesDistortion(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 25; trial++ {
		ds := &Dataset{}
		for i := 0; i < 40; i++ {
			require.NoError(t, ds.Append([]float64{rng.NormFloat64() * 5, rng.NormFloat64() * 5, rng.Float64()}))
		}
		cs := Centroids{{-1, -1, 0}, {1, 1, 0}, {0, 4, 1}, {3, -3, 0.5}}

		Classify(ds, cs)
		before := Score(ds, cs)
		Update(ds, cs)
		after := Score(ds, cs)
		assert.LessOrEqual(t, after, before+1e-9)
	}
}

func TestRun(t *testing.T) {
	t.Run("TwoGroups", func(t *testing.T) {
		ds := twoGroups(t)

		cs, err := Run(context.Background(), ds, 2, 25, WithSeed(42))
		require.NoError(t, err)
		require.Equal(t, 2, cs.K())

		a := ds.Assignments()
		assert.Equal(t, a[0], a[1])
		assert.Equal(t, a[2], a[3])
		assert.NotEqual(t, a[0], a[2])

		assert.InDeltaSlice(t, []float64{0, 0.5}, cs[a[0]], 1e-9)
		assert.InDeltaSlice(t, []float64{10, 10.5}, cs[a[2]], 1e-9)
	})

	t.Run("SingleColorImage", func(t *testing.T) {
		ds, err := NewDataset(
			[]float64{12, 34, 56},
			[]float64{12, 34, 56},
			[]float64{12, 34, 56},
			[]float64{12, 34, 56},
		)
		require.NoError(t, err)

		for _, restarts := range []int{1, 3} {
			cs, err := Run(context.Background(), ds, 1, restarts, WithSeed(int64(restarts)))
			require.NoError(t, err)
			assert.Equal(t, Centroids{{12, 34, 56}}, cs)
			assert.Equal(t, []int{0, 0, 0, 0}, ds.Assignments())
		}
	})

	t.Run("Reproducible", func(t *testing.T) {
		a, err := Run(context.Background(), twoGroups(t), 3, 5, WithSeed(99))
		require.NoError(t, err)
		b, err := Run(context.Background(), twoGroups(t), 3, 5, WithRand(rand.New(rand.NewSource(99))))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestRunRecoversBlobs(t *testing.T) {
	rng := testutil.NewRNG(5)
	centers := [][]float64{{0, 0, 0}, {50, 50, 0}, {0, 50, 50}}
	points, labels := rng.Blobs(centers, 30, 0.5)

	ds, err := NewDataset(points...)
	require.NoError(t, err)

	_, err = Run(context.Background(), ds, 3, 30, WithSeed(rng.Seed()), WithWorkers(3))
	require.NoError(t, err)
	assert.True(t, testutil.SamePartition(labels, ds.Assignments()))
}

func TestClusterHugeCoordinates(t *testing.T) {
	for _, tc := range []struct {
		name   string
		points [][]float64
	}{
		{"squared distance overflows", [][]float64{{-1e200, 0}, {1e200, 0}, {1e200, 1}}},
		{"range overflows", [][]float64{{-1e308, 0}, {1e308, 0}, {1.5e308, 1}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ds, err := NewDataset(tc.points...)
			require.NoError(t, err)

			res, err := Cluster(context.Background(), ds, 2, 3, WithSeed(1), WithMaxIterations(100))
			require.NoError(t, err)

			for i, p := range ds.Points() {
				assert.GreaterOrEqual(t, p.Cluster, 0, "point %d", i)
				assert.Less(t, p.Cluster, 2, "point %d", i)
			}
			for _, c := range res.Centroids {
				for _, v := range c {
					assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "centroid %v", c)
				}
			}
			assert.Equal(t, uint64(3), res.Members(0).GetCardinality()+res.Members(1).GetCardinality())
		})
	}
}

func TestRunValidation(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, &Dataset{}, 2, 1)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = Run(ctx, nil, 2, 1)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = Run(ctx, twoGroups(t), 0, 1)
	assert.ErrorIs(t, err, ErrInvalidClusterCount)

	_, err = Run(ctx, twoGroups(t), 2, 0)
	assert.ErrorIs(t, err, ErrInvalidRestartCount)

	_, err = Run(ctx, twoGroups(t), 2, 1, WithTolerance(-1))
	assert.ErrorIs(t, err, ErrInvalidTolerance)

	_, err = Run(ctx, twoGroups(t), 2, 1, WithTolerance(math.NaN()))
	assert.ErrorIs(t, err, ErrInvalidTolerance)

	ds := twoGroups(t)
	ds.Points()[2].Coords = []float64{1}
	_, err = Run(ctx, ds, 2, 1)

	var dm *ErrDimensionMismatch
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 2, dm.Index)
}

func TestDatasetAppend(t *testing.T) {
	ds := &Dataset{}
	require.NoError(t, ds.Append([]float64{1, 2}))
	assert.Equal(t, 2, ds.Dim())
	assert.Equal(t, Unassigned, ds.Points()[0].Cluster)

	var dm *ErrDimensionMismatch
	require.True(t, errors.As(ds.Append([]float64{1, 2, 3}), &dm))
	assert.Equal(t, 1, dm.Index)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)

	assert.ErrorIs(t, ds.Append(nil), ErrZeroDimension)
	assert.ErrorIs(t, ds.Append([]float64{math.Inf(1), 0}), ErrNonFinite)
	assert.Equal(t, 1, ds.Len())
}

func TestCluster(t *testing.T) {
	t.Run("Members", func(t *testing.T) {
		ds := twoGroups(t)
		res, err := Cluster(context.Background(), ds, 2, 25, WithSeed(3))
		require.NoError(t, err)

		assert.InDelta(t, 1.0, res.Distortion, 1e-9)
		assert.True(t, res.Converged)
		assert.GreaterOrEqual(t, res.Iterations, 1)

		c := ds.Points()[0].Cluster
		assert.Equal(t, 2, res.Size(c))
		assert.ElementsMatch(t, []uint32{0, 1}, res.Members(c).ToArray())
		assert.Equal(t, 0, res.Size(-1))
		assert.Empty(t, res.EmptyClusters())
	})

	t.Run("MoreClustersThanPoints", func(t *testing.T) {
		ds, err := NewDataset([]float64{1, 1}, []float64{1, 1})
		require.NoError(t, err)

		res, err := Cluster(context.Background(), ds, 3, 2, WithSeed(5))
		require.NoError(t, err)
		assert.Len(t, res.EmptyClusters(), 2)
		assert.Equal(t, 0.0, res.Distortion)
	})

	t.Run("ParallelMatchesSequential", func(t *testing.T) {
		seq, err := Cluster(context.Background(), twoGroups(t), 3, 12, WithSeed(11))
		require.NoError(t, err)

		ctrl := resource.NewController(resource.Config{MaxWorkers: 3})
		par, err := Cluster(context.Background(), twoGroups(t), 3, 12,
			WithSeed(11), WithWorkers(4), WithResourceController(ctrl))
		require.NoError(t, err)

		assert.Equal(t, seq.Centroids, par.Centroids)
		assert.Equal(t, seq.Restart, par.Restart)
		assert.Equal(t, seq.Distortion, par.Distortion)
		assert.Equal(t, int64(0), ctrl.ScratchInUse())
	})

	t.Run("MaxIterations", func(t *testing.T) {
		mc := &BasicMetricsCollector{}
		res, err := Cluster(context.Background(), twoGroups(t), 2, 4,
			WithSeed(8), WithMaxIterations(1), WithMetricsCollector(mc))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Iterations)

		stats := mc.GetStats()
		assert.Equal(t, int64(4), stats.Restarts)
		assert.Equal(t, int64(4), stats.Iterations)
		assert.Equal(t, int64(1), stats.Runs)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		mc := &BasicMetricsCollector{}
		_, err := Cluster(ctx, twoGroups(t), 2, 3, WithSeed(1), WithMetricsCollector(mc))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int64(1), mc.GetStats().RunErrors)
	})
}

func TestClusterLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, slog.LevelDebug)

	_, err := Cluster(context.Background(), twoGroups(t), 2, 2, WithSeed(1), WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"clustering completed"`)
	assert.Contains(t, out, `"run_id":`)
	assert.Contains(t, out, `"k":2`)
	assert.Contains(t, out, `"msg":"restart converged"`)
}
