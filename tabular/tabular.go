// Package tabular reads whitespace-delimited point files and writes the
// per-point clustering report.
//
// Input holds one point per line, coordinates separated by blanks or tabs.
// Blank lines are skipped; every other line must carry the same number of
// fields.
package tabular

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/lloyd"
)

const maxLineSize = 16 * 1024 * 1024

// Parse reads a dataset from r.
func Parse(r io.Reader) (*lloyd.Dataset, error) {
	ds := &lloyd.Dataset{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		coords := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("tabular: line %d: %w", line, err)
			}
			coords[i] = v
		}

		if err := ds.Append(coords); err != nil {
			return nil, fmt.Errorf("tabular: line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tabular: %w", err)
	}

	return ds, nil
}

// WriteReport writes the clustering report: one line per centroid with its
// coordinates and size, then one line per point with its cluster and its
// coordinates rounded to two decimals.
func WriteReport(w io.Writer, ds *lloyd.Dataset, res *lloyd.Result) error {
	bw := bufio.NewWriter(w)

	for c, centroid := range res.Centroids {
		fmt.Fprintf(bw, "Cluster coordinate %d: %s (%d points)\n", c, join(centroid, 'g', -1), res.Size(c))
	}
	for i, p := range ds.Points() {
		fmt.Fprintf(bw, "Data %d in cluster %d, coordinates: %s\n", i, p.Cluster, join(p.Coords, 'f', 2))
	}

	return bw.Flush()
}

func join(v []float64, format byte, prec int) string {
	var sb strings.Builder
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatFloat(x, format, prec, 64))
	}
	return sb.String()
}
