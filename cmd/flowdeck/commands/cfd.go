package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/flowdeck/internal/flowapi"
	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
)

const timeLayout = "2006-01-02 15:04"

// NewCFDCommand creates the cfd subcommand.
func NewCFDCommand(env *Env) *cobra.Command {
	var (
		format string
		req    flowapi.AggregateRequest
	)

	cmd := &cobra.Command{
		Use:   "cfd [dataset]",
		Short: "Aggregate an order dataset into a cumulative flow diagram",
		Long: `Aggregate an order dataset into cumulative counts per phase and print
them as a table, CSV, markdown or JSON.

Axis bounds default to the axis section of the configuration and, when unset,
to the span of the dataset.

Examples:
  flowdeck cfd orders.json --step 5m
  flowdeck cfd orders.json --start 2025-05-16T19:00 --end 2025-05-16T23:00 --format csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, providers, err := env.initObservability(observability.ModeCLI)
			if err != nil {
				return err
			}
			defer shutdown(providers)

			path := datasetPath(cfg, args)
			if path == "" {
				return ErrNoDataset
			}

			orders, err := loadOrders(path)
			if err != nil {
				return err
			}

			loc, err := cfg.Dataset.LoadLocation()
			if err != nil {
				return err
			}

			applyAxisDefaults(&req, cfg.Axis.Start, cfg.Axis.End, cfg.Axis.SkipStart, cfg.Axis.SkipEnd, cfg.Axis.Step)

			svc := &flowapi.Service{Orders: orders, Location: loc, Logger: providers.Logger, Metrics: providers.Aggregations}

			resp, err := svc.Aggregate(cobraCmd.Context(), req)
			if err != nil {
				return err
			}

			if format == FormatJSON {
				return writeJSON(cobraCmd.OutOrStdout(), resp)
			}

			return renderCFD(cobraCmd.OutOrStdout(), resp, format, loc)
		},
	}

	cmd.Flags().StringVar(&format, formatFlag, FormatTable, "output format: table, csv, markdown or json")
	cmd.Flags().StringVar(&req.Start, "start", "", "first bucket (e.g. 2025-05-16T19:00)")
	cmd.Flags().StringVar(&req.End, "end", "", "last bucket")
	cmd.Flags().StringVar(&req.Step, "step", "", "bucket width (e.g. 1m, 15m)")
	cmd.Flags().StringVar(&req.SkipStart, "skip-start", "", "start of a window left out of the axis")
	cmd.Flags().StringVar(&req.SkipEnd, "skip-end", "", "end of the skipped window")

	return cmd
}

// applyAxisDefaults fills unset request fields from the configured axis.
func applyAxisDefaults(req *flowapi.AggregateRequest, start, end, skipStart, skipEnd string, step time.Duration) {
	fill := func(dst *string, value string) {
		if *dst == "" {
			*dst = value
		}
	}

	fill(&req.Start, start)
	fill(&req.End, end)
	fill(&req.SkipStart, skipStart)
	fill(&req.SkipEnd, skipEnd)

	if req.Step == "" && step > 0 {
		req.Step = step.String()
	}
}

func renderCFD(w io.Writer, resp *flowapi.AggregateResponse, format string, loc *time.Location) error {
	tbl := newTable()

	header := table.Row{"time"}
	for _, phase := range resp.Phases {
		header = append(header, phase)
	}

	tbl.AppendHeader(append(header, "wip"))

	for _, bucket := range resp.Buckets {
		row := table.Row{bucket.Time.In(loc).Format(timeLayout)}
		for _, phase := range resp.Phases {
			row = append(row, bucket.Counts[phase])
		}

		tbl.AppendRow(append(row, bucket.WIP))
	}

	if format == FormatTable {
		tbl.AppendFooter(table.Row{fmt.Sprintf("%d orders, %d buckets, %d skipped timestamps",
			resp.Orders, len(resp.Buckets), len(resp.Rejected))})
	}

	return renderTable(w, tbl, format)
}
