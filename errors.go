package lloyd

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when clustering a dataset without points.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrInvalidClusterCount is returned when k is not positive.
	ErrInvalidClusterCount = errors.New("cluster count must be positive")

	// ErrInvalidRestartCount is returned when the number of restarts is not positive.
	ErrInvalidRestartCount = errors.New("restart count must be positive")

	// ErrInvalidTolerance is returned for a negative or NaN convergence tolerance.
	ErrInvalidTolerance = errors.New("tolerance must be a non-negative number")

	// ErrZeroDimension is returned when a point has no coordinates.
	ErrZeroDimension = errors.New("points must have at least one coordinate")

	// ErrDimension is matched by every *ErrDimensionMismatch.
	ErrDimension = errors.New("dimension mismatch")

	// ErrNonFinite is returned when a coordinate is NaN or infinite.
	ErrNonFinite = errors.New("coordinates must be finite")
)

// ErrDimensionMismatch indicates a point whose dimensionality differs from the
// dataset's.
type ErrDimensionMismatch struct {
	Index    int
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("%s at point %d: expected %d, got %d", ErrDimension, e.Index, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error {
	return ErrDimension
}
