package lloyd

import (
	"math"

	"github.com/hupe1980/lloyd/internal/kmeans"
)

// Unassigned is the cluster tag of a point that has not been classified.
const Unassigned = kmeans.Unassigned

// Point is a fixed coordinate vector plus the cluster it is currently assigned to.
type Point struct {
	Coords  []float64
	Cluster int
}

// Dataset is an ordered set of points sharing one dimensionality.
//
// The dimensionality is taken from the first point and fixed afterwards.
type Dataset struct {
	dim    int
	points []Point
}

// NewDataset builds a dataset from coordinate vectors. Every point starts Unassigned.
func NewDataset(coords ...[]float64) (*Dataset, error) {
	ds := &Dataset{points: make([]Point, 0, len(coords))}
	for _, c := range coords {
		if err := ds.Append(c); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Append adds a point. The slice is retained, not copied.
func (ds *Dataset) Append(coords []float64) error {
	if len(coords) == 0 {
		return ErrZeroDimension
	}
	for _, v := range coords {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFinite
		}
	}

	if len(ds.points) == 0 {
		ds.dim = len(coords)
	} else if len(coords) != ds.dim {
		return &ErrDimensionMismatch{Index: len(ds.points), Expected: ds.dim, Actual: len(coords)}
	}

	ds.points = append(ds.points, Point{Coords: coords, Cluster: Unassigned})
	return nil
}

// Len returns the number of points.
func (ds *Dataset) Len() int { return len(ds.points) }

// Dim returns the dimensionality, 0 for an empty dataset.
func (ds *Dataset) Dim() int { return ds.dim }

// Points returns the points. The slice is shared with the dataset.
func (ds *Dataset) Points() []Point { return ds.points }

// Assignments returns a copy of every point's cluster tag, in order.
func (ds *Dataset) Assignments() []int {
	out := make([]int, len(ds.points))
	for i, p := range ds.points {
		out[i] = p.Cluster
	}
	return out
}

// Validate re-checks the dimensionality invariant, which callers can break
// by editing Points directly.
func (ds *Dataset) Validate() error {
	for i, p := range ds.points {
		if len(p.Coords) != ds.dim {
			return &ErrDimensionMismatch{Index: i, Expected: ds.dim, Actual: len(p.Coords)}
		}
	}
	return nil
}

func (ds *Dataset) rows() [][]float64 {
	rows := make([][]float64, len(ds.points))
	for i, p := range ds.points {
		rows[i] = p.Coords
	}
	return rows
}

func (ds *Dataset) setAssignments(assign []int) {
	for i := range ds.points {
		ds.points[i].Cluster = assign[i]
	}
}

// Centroids is an ordered centroid set; the index is the cluster id.
type Centroids [][]float64

// K returns the number of centroids.
func (cs Centroids) K() int { return len(cs) }

// Dim returns the centroid dimensionality.
func (cs Centroids) Dim() int {
	if len(cs) == 0 {
		return 0
	}
	return len(cs[0])
}

// Clone returns a deep copy.
func (cs Centroids) Clone() Centroids {
	return Centroids(kmeans.Clone(cs))
}
