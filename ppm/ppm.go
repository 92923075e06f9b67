// Package ppm decodes plain (P3) PPM images into pixel datasets and encodes
// quantized images back.
//
// The first line must be the magic "P3". The next three lines are kept as the
// image header and echoed unchanged on output. Everything after them is a
// whitespace-separated stream of integer samples read as consecutive RGB
// triplets, which may span lines.
package ppm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/hupe1980/lloyd"
	"github.com/hupe1980/lloyd/internal/compress"
)

// Magic is the first line of a plain PPM file.
const Magic = "P3"

// HeaderLines is the number of lines echoed verbatim, magic included.
const HeaderLines = 4

// DefaultPixelsPerLine is the number of pixels Encode writes per body line.
const DefaultPixelsPerLine = 5

var (
	// ErrNotPPM is returned when the input does not start with the P3 magic.
	ErrNotPPM = errors.New("ppm: not a P3 image")

	// ErrHeaderTruncated is returned when the input ends inside the header.
	ErrHeaderTruncated = errors.New("ppm: header truncated")

	// ErrIncompletePixel is returned when the sample count is not a multiple of 3.
	ErrIncompletePixel = errors.New("ppm: trailing incomplete pixel")

	// ErrUnclassified is returned when encoding a pixel without a valid cluster.
	ErrUnclassified = errors.New("ppm: pixel has no cluster")
)

// Image is a decoded P3 image.
type Image struct {
	// Header holds the magic line and the three following lines, without
	// their trailing newline but otherwise byte for byte.
	Header []string

	// Pixels holds one 3-dimensional point per pixel, in file order.
	Pixels *lloyd.Dataset
}

// IsPPM reports whether data starts with the P3 magic line.
func IsPPM(data []byte) bool {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	return string(bytes.TrimSuffix(first, []byte("\r"))) == Magic
}

// Decode reads a P3 image from r.
func Decode(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)

	img := &Image{Header: make([]string, 0, HeaderLines)}
	for len(img.Header) < HeaderLines {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ppm: read header: %w", err)
		}
		if err != nil && line == "" {
			if len(img.Header) == 0 {
				return nil, ErrNotPPM
			}
			return nil, ErrHeaderTruncated
		}

		line = strings.TrimSuffix(line, "\n")
		if len(img.Header) == 0 && strings.TrimSuffix(line, "\r") != Magic {
			return nil, ErrNotPPM
		}
		img.Header = append(img.Header, line)

		if err != nil && len(img.Header) < HeaderLines {
			return nil, ErrHeaderTruncated
		}
	}

	sc := bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)

	img.Pixels = &lloyd.Dataset{}
	var (
		pixel  []float64
		sample int
	)
	for sc.Scan() {
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("ppm: sample %d: %w", sample, err)
		}
		sample++

		pixel = append(pixel, float64(v))
		if len(pixel) == 3 {
			if err := img.Pixels.Append(pixel); err != nil {
				return nil, err
			}
			pixel = make([]float64, 0, 3)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ppm: read body: %w", err)
	}
	if len(pixel) != 0 {
		return nil, fmt.Errorf("%w: %d samples", ErrIncompletePixel, sample)
	}

	return img, nil
}

// Encode writes img with every pixel replaced by its cluster's centroid.
// Centroid coordinates are truncated toward zero. The body holds
// pixelsPerLine pixels per line; values <= 0 select DefaultPixelsPerLine.
func Encode(w io.Writer, img *Image, cs lloyd.Centroids, pixelsPerLine int) error {
	if pixelsPerLine <= 0 {
		pixelsPerLine = DefaultPixelsPerLine
	}

	bw := bufio.NewWriter(w)
	for _, line := range img.Header {
		bw.WriteString(line)
		bw.WriteByte('\n')
	}

	points := img.Pixels.Points()
	buf := make([]byte, 0, 16)
	for i, p := range points {
		if p.Cluster < 0 || p.Cluster >= len(cs) {
			return fmt.Errorf("%w: pixel %d", ErrUnclassified, i)
		}

		for j, v := range cs[p.Cluster] {
			if j > 0 {
				bw.WriteByte(' ')
			}
			buf = strconv.AppendInt(buf[:0], int64(v), 10)
			bw.Write(buf)
		}

		if (i+1)%pixelsPerLine == 0 || i == len(points)-1 {
			bw.WriteByte('\n')
		} else {
			bw.WriteByte(' ')
		}
	}

	return bw.Flush()
}

// OutputName derives the quantized image name from the input name:
// "dir/img.ppm" becomes "dir/img-compressed.ppm". A compression suffix is
// kept, so "img.ppm.zst" becomes "img-compressed.ppm.zst".
func OutputName(name string) string {
	base, alg := compress.Trim(name)
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext) + "-compressed" + ext + alg.Suffix()
}
