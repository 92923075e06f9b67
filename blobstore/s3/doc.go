// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("images/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	b, err := store.Open(ctx, "photo.ppm.zst")
//
// # Features
//
//   - Range reads for streaming inputs
//   - Multipart uploads for large quantized images
//   - Automatic pagination for listing
//   - Configurable prefix and endpoint
package s3
