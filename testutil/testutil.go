package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// UniformPoints returns n points of dimension dim with coordinates in [lo, hi).
func (r *RNG) UniformPoints(n, dim int, lo, hi float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([][]float64, n)
	for i := range points {
		p := make([]float64, dim)
		for j := range p {
			p[j] = lo + r.rand.Float64()*(hi-lo)
		}
		points[i] = p
	}
	return points
}

// Blobs returns perCenter points drawn from an isotropic Gaussian with
// standard deviation spread around every center, shuffled, together with the
// index of the center each point was drawn from.
func (r *RNG) Blobs(centers [][]float64, perCenter int, spread float64) ([][]float64, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(centers) * perCenter
	points := make([][]float64, 0, n)
	labels := make([]int, 0, n)

	for c, center := range centers {
		for i := 0; i < perCenter; i++ {
			p := make([]float64, len(center))
			for j, v := range center {
				p[j] = v + r.rand.NormFloat64()*spread
			}
			points = append(points, p)
			labels = append(labels, c)
		}
	}

	r.rand.Shuffle(n, func(i, j int) {
		points[i], points[j] = points[j], points[i]
		labels[i], labels[j] = labels[j], labels[i]
	})

	return points, labels
}

// PaletteImage returns a P3 image of width x height pixels, every pixel a
// random entry of palette. Rows are written one per line.
func (r *RNG) PaletteImage(width, height int, palette [][3]int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "P3\n# %dx%d palette image\n%d %d\n255\n", width, height, width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := palette[r.rand.Intn(len(palette))]
			if x > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d %d %d", px[0], px[1], px[2])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// SamePartition reports whether two labelings group the points identically,
// regardless of the label values used.
func SamePartition(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	ab := make(map[int]int)
	ba := make(map[int]int)
	for i := range a {
		if x, ok := ab[a[i]]; ok && x != b[i] {
			return false
		}
		if x, ok := ba[b[i]]; ok && x != a[i] {
			return false
		}
		ab[a[i]] = b[i]
		ba[b[i]] = a[i]
	}
	return true
}
