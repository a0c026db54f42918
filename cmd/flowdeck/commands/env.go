// Package commands implements the flowdeck CLI subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Sumatoshi-tech/flowdeck/internal/deck"
	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
	"github.com/Sumatoshi-tech/flowdeck/pkg/config"
	"github.com/Sumatoshi-tech/flowdeck/pkg/dataset"
	"github.com/Sumatoshi-tech/flowdeck/pkg/version"
)

// ErrNoDataset is returned when a command needs a dataset and none is configured.
var ErrNoDataset = errors.New("no dataset given (pass a path or set dataset.path)")

// Env carries the global flags and the lazily loaded configuration shared by
// every subcommand.
type Env struct {
	ConfigPath string
	EnvFile    string
	Verbose    bool
	Quiet      bool

	once    sync.Once
	cfg     *config.Config
	loadErr error
}

// Load initializes the deck templates and reads the configuration once.
func (e *Env) Load() (*config.Config, error) {
	e.once.Do(func() {
		initErr := deck.Initialize()
		if initErr != nil {
			e.loadErr = fmt.Errorf("initialize deck: %w", initErr)

			return
		}

		e.cfg, e.loadErr = config.LoadConfig(e.ConfigPath, e.EnvFile)
	})

	return e.cfg, e.loadErr
}

// obsConfig translates the loaded configuration for mode.
func (e *Env) obsConfig(cfg *config.Config, mode observability.AppMode) (observability.Config, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	switch {
	case e.Verbose:
		level = slog.LevelDebug
	case e.Quiet:
		level = slog.LevelError
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Observability.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Observability.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.TraceVerbose = cfg.Observability.TraceVerbose
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == config.FormatJSON
	obsCfg.LogFile = cfg.Logging.File
	obsCfg.LogMaxSizeMB = cfg.Logging.MaxSizeMB
	obsCfg.LogMaxBackups = cfg.Logging.MaxBackups
	obsCfg.LogMaxAgeDays = cfg.Logging.MaxAgeDays

	return obsCfg, nil
}

// initObservability loads the configuration and starts the providers for mode.
func (e *Env) initObservability(mode observability.AppMode) (*config.Config, observability.Providers, error) {
	cfg, err := e.Load()
	if err != nil {
		return nil, observability.Providers{}, err
	}

	obsCfg, err := e.obsConfig(cfg, mode)
	if err != nil {
		return nil, observability.Providers{}, err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return cfg, providers, nil
}

// datasetPath picks the positional argument over the configured path.
func datasetPath(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return cfg.Dataset.Path
}

// loadOrders reads the dataset at path. An empty path yields no orders.
func loadOrders(path string) ([]cfd.Order, error) {
	if path == "" {
		return nil, nil
	}

	orders, err := dataset.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	return orders, nil
}

func shutdown(providers observability.Providers) {
	shutdownErr := providers.Shutdown(context.Background())
	if shutdownErr != nil {
		providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
	}
}
