// Package compress picks a stream compression codec from a file name suffix.
package compress

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm defines the compression algorithm of a stream.
type Algorithm uint8

const (
	// None indicates an uncompressed stream.
	None Algorithm = iota
	// LZ4 indicates an LZ4 frame stream (fast).
	LZ4
	// Zstd indicates a Zstandard stream (better ratio).
	Zstd
)

var suffixes = map[Algorithm]string{
	LZ4:  ".lz4",
	Zstd: ".zst",
}

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
}

// Suffix returns the file name suffix of the algorithm, "" for None.
func (a Algorithm) Suffix() string {
	return suffixes[a]
}

// Detect returns the algorithm implied by the suffix of name.
func Detect(name string) Algorithm {
	_, a := Trim(name)
	return a
}

// Trim strips a known compression suffix from name.
func Trim(name string) (string, Algorithm) {
	for a, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return strings.TrimSuffix(name, s), a
		}
	}
	return name, None
}

// NewReader wraps r so reads return decompressed bytes.
func NewReader(r io.Reader, a Algorithm) (io.ReadCloser, error) {
	switch a {
	case None:
		return io.NopCloser(r), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("compress: zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("compress: unsupported algorithm %s", a)
	}
}

// NewWriter wraps w so writes are compressed. Close flushes the stream but
// does not close w.
func NewWriter(w io.Writer, a Algorithm) (io.WriteCloser, error) {
	switch a {
	case None:
		return nopWriteCloser{w}, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("compress: zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("compress: unsupported algorithm %s", a)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
