// Package cli implements the lloyd command.
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

const usageLine = "Incorrect command line arguments"

type flags struct {
	configPath    string
	seed          int64
	tolerance     float64
	maxIterations int
	workers       int
	pixelsPerLine int
	logLevel      string
	logFormat     string
	output        string
}

// NewRootCommand returns the lloyd command.
func NewRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "lloyd <k> <filename> <numRestarts>",
		Short: "Multi-restart k-means clustering and PPM color quantization",
		Long: `Cluster the points of <filename> into <k> groups with Lloyd's algorithm,
keeping the best of <numRestarts> random restarts.

If the file is a plain PPM image (first line "P3") every pixel is replaced by
its cluster's color and the result is written next to the input as
<name>-compressed.<ext>. Otherwise the file holds one whitespace-separated
point per line and a per-point report is printed.

<filename> may be a local path, s3://bucket/key or minio://bucket/key.
Names ending in .zst or .lz4 are decompressed on read and compressed on write.

Examples:
  lloyd 3 points.txt 20
  lloyd 16 photo.ppm 10 --seed 7 --workers 4
  lloyd 8 s3://images/photo.ppm.zst 10 --output s3://images/out.ppm.zst`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				fmt.Fprintln(cmd.OutOrStdout(), usageLine)
				return cmd.Usage()
			}

			k, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid k %q: %w", args[0], err)
			}
			restarts, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid numRestarts %q: %w", args[2], err)
			}

			return run(cmd, f, k, args[1], restarts)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	fl.Int64Var(&f.seed, "seed", 0, "random seed (default: wall clock)")
	fl.Float64Var(&f.tolerance, "tolerance", 0, "max per-coordinate centroid move counted as converged")
	fl.IntVar(&f.maxIterations, "max-iterations", 0, "cap on passes per restart (0 = unbounded)")
	fl.IntVar(&f.workers, "workers", 1, "restarts run concurrently")
	fl.IntVar(&f.pixelsPerLine, "pixels-per-line", 5, "pixels per body line of the quantized image")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "text", "log format: text or json")
	fl.StringVarP(&f.output, "output", "o", "", "output location (default: stdout for reports, <name>-compressed.<ext> for images)")

	return cmd
}
