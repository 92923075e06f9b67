// Package lloyd clusters n-dimensional points into k groups with Lloyd's
// algorithm and picks the best of several random restarts.
//
// # Quick Start
//
//	ds, _ := lloyd.NewDataset(
//	    []float64{0, 0}, []float64{0, 1},
//	    []float64{10, 10}, []float64{10, 11},
//	)
//	res, _ := lloyd.Cluster(ctx, ds, 2, 20, lloyd.WithSeed(42))
//	for i, p := range ds.Points() {
//	    fmt.Println(i, p.Cluster, res.Centroids[p.Cluster])
//	}
//
// # Algorithm
//
// Every restart draws k centroids uniformly from the bounding range of the
// data (smallest to largest coordinate over all points and dimensions) and
// then alternates two steps until the centroid set stops changing:
//
//   - Classify: tag every point with its nearest centroid (squared Euclidean
//     distance, lowest index wins ties).
//   - Update: move every centroid to the mean of its points. A centroid with
//     no points keeps its position.
//
// The converged set is scored by total squared distance (distortion) and the
// restart with the strictly lowest score wins; the earliest wins ties. Finally
// the dataset's point tags are rewritten once against the winning set.
//
// # Convergence
//
// By default a restart converges only when an update leaves every coordinate
// exactly unchanged and the number of passes is unbounded. WithTolerance and
// WithMaxIterations relax both; cancelling the context always stops a run.
//
// # Reproducibility
//
// Randomness comes from a single injected generator (WithSeed or WithRand).
// Without one the seed is derived from the wall clock and logged. Results are
// identical for any WithWorkers value given the same seed.
//
// # Projections
//
// The tabular and ppm packages turn a Result back into a textual report or a
// color-quantized PPM image.
package lloyd
