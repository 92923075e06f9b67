// Package blobstore provides the storage abstraction for clustering inputs and
// quantized outputs.
//
// BlobStore reads and writes named blobs (point files, PPM images and their
// compressed variants). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, inputs are memory-mapped
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Reading
//
// Parsers consume an io.Reader; NewReader adapts any Blob:
//
//	b, err := store.Open(ctx, "photo.ppm")
//	if err != nil { ... }
//	defer b.Close()
//
//	img, err := ppm.Decode(blobstore.NewReader(ctx, b))
package blobstore
