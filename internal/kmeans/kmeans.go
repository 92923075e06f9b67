package kmeans

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Unassigned marks a point that has not been classified yet.
const Unassigned = -1

// SquaredL2 returns the squared Euclidean distance between a and b.
// Assumes equal lengths (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := b[i] - a[i]
		sum += d * d
	}
	return sum
}

// Nearest returns the index of the closest centroid and its squared distance.
// A centroid only replaces the running best when it is strictly closer, so
// the lowest index wins ties. Distances that overflow to +Inf tie as well,
// which keeps every point assigned.
func Nearest(p []float64, centroids [][]float64) (int, float64) {
	if len(centroids) == 0 {
		return Unassigned, math.Inf(1)
	}

	best := 0
	minDist := SquaredL2(centroids[0], p)

	for j := 1; j < len(centroids); j++ {
		if d := SquaredL2(centroids[j], p); d < minDist {
			minDist = d
			best = j
		}
	}

	return best, minDist
}

// Classify assigns every point to its nearest centroid.
func Classify(points, centroids [][]float64, assign []int) {
	for i, p := range points {
		assign[i], _ = Nearest(p, centroids)
	}
}

// Update moves every centroid to the mean of the points assigned to it and
// reports whether the centroid set has converged.
//
// Clusters without points keep their previous position. With tol == 0 the
// set has converged only if no coordinate changed at all; with tol > 0 it has
// converged once the largest per-coordinate change is at most tol.
func Update(points [][]float64, assign []int, centroids [][]float64, tol float64) bool {
	k := len(centroids)
	if k == 0 {
		return true
	}
	dim := len(centroids[0])

	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	counts := make([]int, k)

	for i, p := range points {
		c := assign[i]
		if c < 0 || c >= k {
			continue
		}
		floats.Add(sums[c], p)
		counts[c]++
	}

	maxDelta := 0.0
	for c, centroid := range centroids {
		if counts[c] == 0 {
			continue
		}

		n := float64(counts[c])
		mean := sums[c]
		if math.IsInf(floats.Norm(mean, math.Inf(1)), 0) {
			scaledMean(points, assign, c, n, mean)
		} else {
			for w := range mean {
				mean[w] /= n
			}
		}

		// L-infinity distance: largest single-coordinate move.
		if d := floats.Distance(mean, centroid, math.Inf(1)); d > maxDelta {
			maxDelta = d
		}
		copy(centroid, mean)
	}

	return maxDelta <= tol
}

// scaledMean recomputes the mean of cluster c by summing p/n, for clusters
// whose plain coordinate sum overflowed.
func scaledMean(points [][]float64, assign []int, c int, n float64, mean []float64) {
	for w := range mean {
		mean[w] = 0
	}
	for i, p := range points {
		if assign[i] != c {
			continue
		}
		floats.AddScaled(mean, 1/n, p)
	}
}

// Score returns the total squared distance of every point to its assigned
// centroid. Points without a valid assignment contribute nothing.
func Score(points [][]float64, assign []int, centroids [][]float64) float64 {
	var total float64
	for i, p := range points {
		c := assign[i]
		if c < 0 || c >= len(centroids) {
			continue
		}
		total += SquaredL2(centroids[c], p)
	}
	return total
}

// Bounds returns the smallest and largest coordinate over all points and all
// dimensions.
func Bounds(points [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if len(p) == 0 {
			continue
		}
		lo = math.Min(lo, floats.Min(p))
		hi = math.Max(hi, floats.Max(p))
	}
	return lo, hi
}

// InitUniform draws k centroids of dimension dim with every coordinate
// sampled independently and uniformly from [lo, hi].
func InitUniform(rng *rand.Rand, k, dim int, lo, hi float64) [][]float64 {
	span := hi - lo
	wide := math.IsInf(span, 0)

	centroids := make([][]float64, k)
	for c := range centroids {
		row := make([]float64, dim)
		for w := range row {
			f := rng.Float64()
			if wide {
				// hi - lo overflowed; interpolate without forming the span.
				row[w] = lo*(1-f) + hi*f
			} else {
				row[w] = lo + f*span
			}
		}
		centroids[c] = row
	}
	return centroids
}

// Clone returns a deep copy of a centroid set.
func Clone(centroids [][]float64) [][]float64 {
	out := make([][]float64, len(centroids))
	for i, c := range centroids {
		out[i] = append([]float64(nil), c...)
	}
	return out
}
