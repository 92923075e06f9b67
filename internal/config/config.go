// Package config loads the lloyd command configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config holds the complete command configuration.
type Config struct {
	// Seed makes runs reproducible. Nil seeds from the wall clock.
	Seed *int64 `yaml:"seed,omitempty"`

	// Tolerance is the largest per-coordinate centroid move still counted as
	// converged. 0 requires an exact fixed point.
	Tolerance float64 `yaml:"tolerance"`

	// MaxIterations caps the passes per restart. 0 means unbounded.
	MaxIterations int `yaml:"max_iterations"`

	// Workers is the number of restarts run concurrently.
	Workers int `yaml:"workers"`

	// ScratchLimitBytes bounds the assignment scratch memory of running
	// restarts. 0 means unlimited.
	ScratchLimitBytes int64 `yaml:"scratch_limit_bytes,omitempty"`

	// PixelsPerLine is the number of pixels per body line of quantized images.
	PixelsPerLine int `yaml:"pixels_per_line"`

	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// StorageConfig configures input and output blob stores.
type StorageConfig struct {
	// IOLimitBytesPerSec throttles blob reads and writes. 0 means unlimited.
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec,omitempty"`

	S3    S3Config    `yaml:"s3"`
	MinIO MinIOConfig `yaml:"minio"`
}

// S3Config configures s3:// locations. Credentials come from the default
// AWS chain.
type S3Config struct {
	Region      string `yaml:"region,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	PartSize    int64  `yaml:"part_size"`
	Concurrency int    `yaml:"concurrency"`
	Checksum    bool   `yaml:"checksum"`
}

// MinIOConfig configures minio:// locations.
type MinIOConfig struct {
	Endpoint string `yaml:"endpoint"`
	Secure   bool   `yaml:"secure"`
	Region   string `yaml:"region,omitempty"`

	// AccessKey and SecretKey are read from MINIO_ACCESS_KEY and
	// MINIO_SECRET_KEY, never from the file.
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Workers:       1,
		PixelsPerLine: 5,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			S3: S3Config{
				PartSize:    8 * 1024 * 1024,
				Concurrency: 5,
				Checksum:    true,
			},
			MinIO: MinIOConfig{
				Endpoint: "localhost:9000",
			},
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// credentials and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.Storage.MinIO.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	cfg.Storage.MinIO.SecretKey = os.Getenv("MINIO_SECRET_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) {
		return fmt.Errorf("%w: tolerance must be non-negative", ErrInvalid)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max_iterations must be non-negative", ErrInvalid)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalid)
	}
	if c.ScratchLimitBytes < 0 {
		return fmt.Errorf("%w: scratch_limit_bytes must be non-negative", ErrInvalid)
	}
	if c.PixelsPerLine < 1 {
		return fmt.Errorf("%w: pixels_per_line must be at least 1", ErrInvalid)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	if c.Storage.IOLimitBytesPerSec < 0 {
		return fmt.Errorf("%w: io_limit_bytes_per_sec must be non-negative", ErrInvalid)
	}
	if c.Storage.S3.PartSize < 0 || c.Storage.S3.Concurrency < 0 {
		return fmt.Errorf("%w: s3 upload settings must be non-negative", ErrInvalid)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, l.Level)
	}
	return level, nil
}

// JSON reports whether logs are written as JSON.
func (l LogConfig) JSON() bool {
	return strings.EqualFold(l.Format, "json")
}
