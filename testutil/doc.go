// Package testutil provides testing utilities for lloyd.
//
// This package is intended for use in tests and benchmarks only.
// It generates reproducible clustered point sets and P3 images.
//
// # Clustered Points
//
//	rng := testutil.NewRNG(seed)
//	points, labels := rng.Blobs(centers, 50, 0.5)
//
// # Images
//
//	img := rng.PaletteImage(8, 4, palette) // P3 text, 8x4 pixels
package testutil
