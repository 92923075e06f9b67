// Package kmeans implements the Lloyd iteration kernels and the multi-restart
// driver behind the public lloyd API.
//
// All kernels work on row slices ([][]float64) and a separate assignment
// slice so that every restart can own its scratch assignment state while the
// points themselves are shared read-only.
package kmeans
