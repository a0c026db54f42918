package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/flowdeck/pkg/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func validConfig() config.Config {
	return config.Config{
		Deck:    config.DeckConfig{Theme: "dark"},
		Logging: config.LoggingConfig{Level: "debug", Format: config.FormatJSON},
		Server:  config.ServerConfig{Host: "localhost", Port: 9000},
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeFile(t, "flowdeck.yaml", ""), writeFile(t, ".env", ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDeckTitle, cfg.Deck.Title)
	assert.Equal(t, config.DefaultDeckTheme, cfg.Deck.Theme)
	assert.Equal(t, uint64(config.DefaultDeckSeed), cfg.Deck.Seed)
	assert.Equal(t, config.DefaultAxisStep, cfg.Axis.Step)
	assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultServerIdleTimeout, cfg.Server.IdleTimeout)
	assert.Empty(t, cfg.Observability.OTLPEndpoint)
}

func TestLoadConfig_FileAndEnvFile(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, "flowdeck.yaml", `deck:
  title: Friday night
  theme: dark
  seed: 7
dataset:
  path: orders.json.lz4
  location: Europe/Rome
axis:
  start: "2025-05-16T19:00"
  end: "2025-05-16T23:00"
  step: 5m
server:
  port: 9090
  read_timeout: 3s
`)
	envPath := writeFile(t, ".env", "FLOWDECK_SERVER_HOST=0.0.0.0\nFLOWDECK_LOGGING_MAX_AGE_DAYS=2\nUNRELATED=1\n")

	cfg, err := config.LoadConfig(cfgPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "Friday night", cfg.Deck.Title)
	assert.Equal(t, uint64(7), cfg.Deck.Seed)
	assert.Equal(t, "orders.json.lz4", cfg.Dataset.Path)
	assert.Equal(t, 5*time.Minute, cfg.Axis.Step)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 2, cfg.Logging.MaxAgeDays)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())

	loc, err := cfg.Dataset.LoadLocation()
	require.NoError(t, err)

	axis, err := cfg.Axis.Resolve(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 16, 19, 0, 0, 0, loc), axis.Start)
	assert.Equal(t, 4*time.Hour, axis.End.Sub(axis.Start))
	assert.Nil(t, axis.Skip)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.Error(t, err)

	_, err = config.LoadConfig(writeFile(t, "flowdeck.yaml", "server:\n  port: 0\n"), writeFile(t, ".env", ""))
	require.ErrorIs(t, err, config.ErrInvalidPort)

	_, err = config.LoadConfig(writeFile(t, "flowdeck.yaml", ""), filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "port", mutate: func(c *config.Config) { c.Server.Port = 70000 }, want: config.ErrInvalidPort},
		{name: "theme", mutate: func(c *config.Config) { c.Deck.Theme = "neon" }, want: config.ErrInvalidTheme},
		{name: "level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }, want: config.ErrInvalidLogLevel},
		{name: "format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, want: config.ErrInvalidLogFormat},
		{name: "ratio", mutate: func(c *config.Config) { c.Observability.SampleRatio = 1.5 }, want: config.ErrInvalidSampleRatio},
		{name: "location", mutate: func(c *config.Config) { c.Dataset.Location = "Mars/Olympus" }, want: config.ErrInvalidLocation},
		{name: "step", mutate: func(c *config.Config) { c.Axis.Step = -time.Minute }, want: config.ErrInvalidAxis},
		{name: "bound", mutate: func(c *config.Config) { c.Axis.Start = "tonight" }, want: config.ErrInvalidAxis},
		{name: "half skip", mutate: func(c *config.Config) { c.Axis.SkipStart = "2025-05-16T20:00" }, want: config.ErrInvalidAxis},
		{
			name: "reversed",
			mutate: func(c *config.Config) {
				c.Axis.Start, c.Axis.End = "2025-05-16T23:00", "2025-05-16T19:00"
			},
			want: config.ErrInvalidAxis,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.want == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAxisConfig_ResolveSkip(t *testing.T) {
	t.Parallel()

	axis, err := config.AxisConfig{
		Start:     "2025-05-16T19:00:00Z",
		End:       "2025-05-17T01:00:00Z",
		SkipStart: "2025-05-17T00:00:00Z",
		SkipEnd:   "2025-05-17T00:30:00Z",
		Step:      10 * time.Minute,
	}.Resolve(time.UTC)
	require.NoError(t, err)

	require.NotNil(t, axis.Skip)
	assert.Equal(t, 30*time.Minute, axis.Skip.End.Sub(axis.Skip.Start))
	assert.Equal(t, 10*time.Minute, axis.Step)
}

func TestLoggingConfig_SlogLevel(t *testing.T) {
	t.Parallel()

	level, err := config.LoggingConfig{Level: "WARN"}.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, "WARN", level.String())
}
