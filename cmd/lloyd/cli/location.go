package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hupe1980/lloyd/blobstore"
	"github.com/hupe1980/lloyd/blobstore/minio"
	"github.com/hupe1980/lloyd/blobstore/s3"
	"github.com/hupe1980/lloyd/internal/config"
)

// location is a blob name inside a store.
type location struct {
	store blobstore.BlobStore
	name  string
}

// resolve maps a path or URI to its store. Local paths are served by a
// LocalStore rooted at the parent directory.
func resolve(ctx context.Context, uri string, cfg *config.Config) (location, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		dir, name := filepath.Split(uri)
		if dir == "" {
			dir = "."
		}
		return location{store: blobstore.NewLocalStore(dir), name: name}, nil
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return location{}, fmt.Errorf("invalid location %q: expected %s://bucket/key", uri, scheme)
	}

	switch scheme {
	case "s3":
		sc := cfg.Storage.S3
		opts := []func(*s3.Options){
			s3.WithUploadConfig(s3.UploadConfig{
				PartSize:       sc.PartSize,
				Concurrency:    sc.Concurrency,
				EnableChecksum: sc.Checksum,
			}),
		}
		if sc.Region != "" {
			opts = append(opts, s3.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(sc.Endpoint))
		}

		store, err := s3.New(ctx, bucket, opts...)
		if err != nil {
			return location{}, err
		}
		return location{store: store, name: key}, nil
	case "minio":
		mc := cfg.Storage.MinIO
		store, err := minio.New(mc.Endpoint, bucket, minio.Credentials{
			AccessKey: mc.AccessKey,
			SecretKey: mc.SecretKey,
			Secure:    mc.Secure,
			Region:    mc.Region,
		})
		if err != nil {
			return location{}, err
		}
		return location{store: store, name: key}, nil
	default:
		return location{}, fmt.Errorf("unsupported location scheme %q", scheme)
	}
}

// sibling returns a location in the same store under another name.
func (l location) sibling(name string) location {
	return location{store: l.store, name: name}
}
