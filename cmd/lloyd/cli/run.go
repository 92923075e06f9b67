package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/lloyd"
	"github.com/hupe1980/lloyd/blobstore"
	"github.com/hupe1980/lloyd/internal/compress"
	"github.com/hupe1980/lloyd/internal/config"
	"github.com/hupe1980/lloyd/ppm"
	"github.com/hupe1980/lloyd/resource"
	"github.com/hupe1980/lloyd/tabular"
	"github.com/spf13/cobra"
)

func run(cmd *cobra.Command, f *flags, k int, input string, restarts int) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	ctrl := resource.NewController(resource.Config{
		MaxWorkers:         int64(cfg.Workers),
		ScratchLimitBytes:  cfg.ScratchLimitBytes,
		IOLimitBytesPerSec: cfg.Storage.IOLimitBytesPerSec,
	})

	src, err := resolve(ctx, input, cfg)
	if err != nil {
		return err
	}

	blob, err := src.store.Open(ctx, src.name)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer blob.Close()

	alg := compress.Detect(src.name)
	rc, err := compress.NewReader(resource.NewRateLimitedReader(ctx, blobstore.NewReader(ctx, blob), ctrl), alg)
	if err != nil {
		return err
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	// "P3\r\n" is the longest magic line.
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read %s: %w", input, err)
	}

	metrics := &lloyd.BasicMetricsCollector{}
	opts := []lloyd.Option{
		lloyd.WithTolerance(cfg.Tolerance),
		lloyd.WithMaxIterations(cfg.MaxIterations),
		lloyd.WithWorkers(cfg.Workers),
		lloyd.WithResourceController(ctrl),
		lloyd.WithLogger(logger),
		lloyd.WithMetricsCollector(metrics),
	}
	if cfg.Seed != nil {
		opts = append(opts, lloyd.WithSeed(*cfg.Seed))
	}

	if ppm.IsPPM(head) {
		err = quantize(ctx, cmd, f, cfg, ctrl, src, br, k, restarts, opts)
	} else {
		err = report(ctx, cmd, f, cfg, ctrl, br, k, restarts, opts)
	}
	if err != nil {
		return err
	}

	stats := metrics.GetStats()
	logger.DebugContext(ctx, "run statistics",
		"restarts", stats.Restarts,
		"capped_restarts", stats.CappedRestarts,
		"avg_iterations", stats.AvgIterations,
		"restart_avg_ns", stats.RestartAvgNanos,
	)
	return nil
}

func quantize(ctx context.Context, cmd *cobra.Command, f *flags, cfg *config.Config, ctrl *resource.Controller,
	src location, r io.Reader, k, restarts int, opts []lloyd.Option) error {
	img, err := ppm.Decode(r)
	if err != nil {
		return err
	}

	cs, err := lloyd.Run(ctx, img.Pixels, k, restarts, opts...)
	if err != nil {
		return err
	}

	dst := src.sibling(ppm.OutputName(src.name))
	if f.output != "" {
		if dst, err = resolve(ctx, f.output, cfg); err != nil {
			return err
		}
	}

	if err := writeBlob(ctx, dst, ctrl, func(w io.Writer) error {
		return ppm.Encode(w, img, cs, cfg.PixelsPerLine)
	}); err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "wrote", dst.name)
	return nil
}

func report(ctx context.Context, cmd *cobra.Command, f *flags, cfg *config.Config, ctrl *resource.Controller,
	r io.Reader, k, restarts int, opts []lloyd.Option) error {
	ds, err := tabular.Parse(r)
	if err != nil {
		return err
	}

	res, err := lloyd.Cluster(ctx, ds, k, restarts, opts...)
	if err != nil {
		return err
	}

	if f.output == "" {
		return tabular.WriteReport(cmd.OutOrStdout(), ds, res)
	}

	dst, err := resolve(ctx, f.output, cfg)
	if err != nil {
		return err
	}
	return writeBlob(ctx, dst, ctrl, func(w io.Writer) error {
		return tabular.WriteReport(w, ds, res)
	})
}

// writeBlob streams fn's output into dst, compressed by the name suffix.
func writeBlob(ctx context.Context, dst location, ctrl *resource.Controller, fn func(io.Writer) error) error {
	blob, err := dst.store.Create(ctx, dst.name)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst.name, err)
	}

	cw, err := compress.NewWriter(resource.NewRateLimitedWriter(ctx, blob, ctrl), compress.Detect(dst.name))
	if err != nil {
		_ = blob.Close()
		return err
	}

	if err := fn(cw); err != nil {
		_ = cw.Close()
		_ = blob.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		_ = blob.Close()
		return err
	}
	return blob.Close()
}

func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("seed") {
		cfg.Seed = &f.seed
	}
	if fl.Changed("tolerance") {
		cfg.Tolerance = f.tolerance
	}
	if fl.Changed("max-iterations") {
		cfg.MaxIterations = f.maxIterations
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("pixels-per-line") {
		cfg.PixelsPerLine = f.pixelsPerLine
	}
	if fl.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fl.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*lloyd.Logger, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	if cfg.Log.JSON() {
		return lloyd.NewJSONLoggerTo(cmd.ErrOrStderr(), level), nil
	}
	return lloyd.NewTextLoggerTo(cmd.ErrOrStderr(), level), nil
}
