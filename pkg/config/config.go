// Package config provides configuration loading and validation for flowdeck.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

// Sentinel validation errors.
var (
	ErrInvalidPort        = errors.New("invalid server port")
	ErrInvalidTheme       = errors.New("invalid deck theme")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
	ErrInvalidLocation    = errors.New("invalid dataset location")
	ErrInvalidAxis        = errors.New("invalid axis")
)

const maxPort = 65535

// Log formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config holds all configuration for flowdeck.
type Config struct {
	Deck          DeckConfig          `mapstructure:"deck"`
	Dataset       DatasetConfig       `mapstructure:"dataset"`
	Axis          AxisConfig          `mapstructure:"axis"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Server        ServerConfig        `mapstructure:"server"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// DeckConfig holds presentation settings.
type DeckConfig struct {
	Title     string `mapstructure:"title"`
	Subtitle  string `mapstructure:"subtitle"`
	Theme     string `mapstructure:"theme"`
	Output    string `mapstructure:"output"`
	Seed      uint64 `mapstructure:"seed"`
	MultiPage bool   `mapstructure:"multi_page"`
}

// DatasetConfig points at the recorded orders.
type DatasetConfig struct {
	Path string `mapstructure:"path"`
	// Location is the IANA zone timestamps are bucketed in.
	Location string `mapstructure:"location"`
}

// AxisConfig bounds the CFD. Empty start and end span the dataset.
type AxisConfig struct {
	Start     string        `mapstructure:"start"`
	End       string        `mapstructure:"end"`
	SkipStart string        `mapstructure:"skip_start"`
	SkipEnd   string        `mapstructure:"skip_end"`
	Step      time.Duration `mapstructure:"step"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
}

// ObservabilityConfig holds telemetry export settings.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	TraceVerbose bool    `mapstructure:"trace_verbose"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

// LoadLocation resolves the dataset zone. Empty means UTC.
func (d DatasetConfig) LoadLocation() (*time.Location, error) {
	if d.Location == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(d.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}

	return loc, nil
}

// Resolve parses the configured bounds in loc. Start and End stay zero when
// unset so callers can fall back to the dataset span.
func (a AxisConfig) Resolve(loc *time.Location) (cfd.AxisConfig, error) {
	norm := cfd.NewNormalizer(loc)
	out := cfd.AxisConfig{Step: a.Step}

	var err error

	if out.Start, err = parseBound(norm, "start", a.Start); err != nil {
		return cfd.AxisConfig{}, err
	}

	if out.End, err = parseBound(norm, "end", a.End); err != nil {
		return cfd.AxisConfig{}, err
	}

	if (a.SkipStart == "") != (a.SkipEnd == "") {
		return cfd.AxisConfig{}, fmt.Errorf("%w: skip_start and skip_end go together", ErrInvalidAxis)
	}

	if a.SkipStart != "" {
		var skip cfd.Window

		if skip.Start, err = parseBound(norm, "skip_start", a.SkipStart); err != nil {
			return cfd.AxisConfig{}, err
		}

		if skip.End, err = parseBound(norm, "skip_end", a.SkipEnd); err != nil {
			return cfd.AxisConfig{}, err
		}

		out.Skip = &skip
	}

	if !out.Start.IsZero() && !out.End.IsZero() {
		if validateErr := out.Validate(); validateErr != nil {
			return cfd.AxisConfig{}, fmt.Errorf("%w: %w", ErrInvalidAxis, validateErr)
		}
	}

	return out, nil
}

func parseBound(norm cfd.Normalizer, name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	t, err := norm.Normalize(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrInvalidAxis, name, err)
	}

	return t, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}

	switch strings.ToLower(c.Deck.Theme) {
	case "light", "dark":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.Deck.Theme)
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	if c.Logging.Format != FormatJSON && c.Logging.Format != FormatText {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Observability.SampleRatio)
	}

	loc, err := c.Dataset.LoadLocation()
	if err != nil {
		return err
	}

	if c.Axis.Step < 0 {
		return fmt.Errorf("%w: negative step %s", ErrInvalidAxis, c.Axis.Step)
	}

	_, err = c.Axis.Resolve(loc)

	return err
}
