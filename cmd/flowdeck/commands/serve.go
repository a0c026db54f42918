package commands

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/flowdeck/internal/flowapi"
	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/internal/server"
	"github.com/Sumatoshi-tech/flowdeck/internal/slides"
	"github.com/Sumatoshi-tech/flowdeck/pkg/chart"
)

// NewServeCommand creates the serve subcommand.
func NewServeCommand(env *Env) *cobra.Command {
	var (
		host string
		port int
		data string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the deck and the CFD API over HTTP",
		Long: `Serve the deck and a JSON API over HTTP:
  GET  /            the rendered deck
  GET  /api/cfd     CFD of the loaded dataset (start, end, step, skip_start, skip_end)
  POST /api/cfd     CFD of the orders in the request body
  GET  /api/stats   lead time and throughput summary
  GET  /healthz     liveness
  GET  /readyz      readiness
  GET  /metrics     Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, providers, err := env.initObservability(observability.ModeServe)
			if err != nil {
				return err
			}
			defer shutdown(providers)

			flags := cobraCmd.Flags()
			if flags.Changed("host") {
				cfg.Server.Host = host
			}

			if flags.Changed("port") {
				cfg.Server.Port = port
			}

			if flags.Changed("dataset") {
				cfg.Dataset.Path = data
			}

			loc, err := cfg.Dataset.LoadLocation()
			if err != nil {
				return err
			}

			axis, err := cfg.Axis.Resolve(loc)
			if err != nil {
				return err
			}

			orders, err := loadOrders(cfg.Dataset.Path)
			if err != nil {
				return err
			}

			prom, err := observability.NewPrometheus()
			if err != nil {
				return fmt.Errorf("init prometheus: %w", err)
			}

			red, err := observability.NewREDMetrics(prom.Meter)
			if err != nil {
				return err
			}

			aggregations, err := observability.NewAggregationMetrics(prom.Meter)
			if err != nil {
				return err
			}

			service := &flowapi.Service{Orders: orders, Location: loc, Logger: providers.Logger, Metrics: aggregations}

			handler := server.NewHandler(server.Deps{
				Deck: slides.Inputs{
					Title:    cfg.Deck.Title,
					Subtitle: cfg.Deck.Subtitle,
					Theme:    chart.ParseTheme(cfg.Deck.Theme),
					Seed:     cfg.Deck.Seed,
					Axis:     axis,
					Location: loc,
					Now:      time.Now().In(loc),
				},
				Service: service,
				Tracer:  providers.Tracer,
				RED:     red,
				Metrics: prom.Handler,
				Logger:  providers.Logger,
			})

			ctx, stop := signal.NotifyContext(cobraCmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.New(cfg.Server, handler, providers.Logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default server.port)")
	cmd.Flags().StringVar(&data, "dataset", "", "order dataset served by /api/cfd and the deck")

	return cmd
}
