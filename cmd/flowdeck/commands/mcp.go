package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/flowdeck/internal/flowapi"
	"github.com/Sumatoshi-tech/flowdeck/internal/mcp"
	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(env *Env) *cobra.Command {
	var (
		debug bool
		data  string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes flowdeck flow metrics as tools that AI agents can
discover and invoke:
  - cfd_aggregate: cumulative flow diagram of inline orders or the loaded dataset
  - leadtime_summary: lead time, time per phase and daily throughput`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := env.Load()
			if err != nil {
				return err
			}

			obsCfg, err := env.obsConfig(cfg, observability.ModeMCP)
			if err != nil {
				return err
			}

			obsCfg.LogJSON = true

			if debug {
				obsCfg.LogLevel = slog.LevelDebug
				obsCfg.DebugTrace = true
			}

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return err
			}
			defer shutdown(providers)

			if cobraCmd.Flags().Changed("dataset") {
				cfg.Dataset.Path = data
			}

			loc, err := cfg.Dataset.LoadLocation()
			if err != nil {
				return err
			}

			orders, err := loadOrders(cfg.Dataset.Path)
			if err != nil {
				return err
			}

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Service: &flowapi.Service{
					Orders:   orders,
					Location: loc,
					Logger:   providers.Logger,
					Metrics:  providers.Aggregations,
				},
				Version: version.Version,
				Logger:  providers.Logger,
				Metrics: red,
				Tracer:  providers.Tracer,
			})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&data, "dataset", "", "default dataset for tools called without orders")

	return cmd
}
