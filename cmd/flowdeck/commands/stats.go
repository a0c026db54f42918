package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/flowdeck/internal/flowapi"
	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/pkg/flowmetrics"
)

const dateLayout = "Mon 2006-01-02"

// NewStatsCommand creates the stats subcommand.
func NewStatsCommand(env *Env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats [dataset]",
		Short: "Summarize lead time, time per phase and daily throughput",
		Args:  cobra.MaximumNArgs(1),
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

			svc := &flowapi.Service{Orders: orders, Location: loc, Logger: providers.Logger}

			resp, err := svc.Stats(cobraCmd.Context(), nil)
			if err != nil {
				return err
			}

			if format == FormatJSON {
				return writeJSON(cobraCmd.OutOrStdout(), resp)
			}

			return renderStats(cobraCmd.OutOrStdout(), resp, format)
		},
	}

	cmd.Flags().StringVar(&format, formatFlag, FormatTable, "output format: table, csv, markdown or json")

	return cmd
}

func renderStats(w io.Writer, resp *flowapi.StatsResponse, format string) error {
	summaries := newTable()
	summaries.AppendHeader(table.Row{"minutes", "count", "mean", "median", "p85", "p95", "min", "max"})
	summaries.AppendRow(summaryRow("lead_time", resp.LeadTime))

	for _, phase := range resp.Phases {
		summaries.AppendRow(summaryRow(phase.Phase, phase.Summary))
	}

	summaries.SetColumnConfigs(numericColumns(2, 8))

	if format == FormatTable && resp.Skipped > 0 {
		summaries.AppendFooter(table.Row{fmt.Sprintf("%d orders skipped", resp.Skipped)})
	}

	err := renderTable(w, summaries, format)
	if err != nil {
		return err
	}

	throughput := newTable()
	throughput.AppendHeader(table.Row{"day", "delivered"})

	for _, day := range resp.Throughput {
		throughput.AppendRow(table.Row{day.Date.Format(dateLayout), day.Count})
	}

	_, err = fmt.Fprintln(w)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return renderTable(w, throughput, format)
}

func summaryRow(name string, s flowmetrics.Summary) table.Row {
	return table.Row{
		name, s.Count,
		fmt.Sprintf("%.1f", s.Mean), fmt.Sprintf("%.1f", s.Median),
		fmt.Sprintf("%.1f", s.P85), fmt.Sprintf("%.1f", s.P95),
		fmt.Sprintf("%.1f", s.Min), fmt.Sprintf("%.1f", s.Max),
	}
}

// numericColumns right-aligns columns first through last, 1-based.
func numericColumns(first, last int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, last-first+1)

	for col := first; col <= last; col++ {
		configs = append(configs, table.ColumnConfig{Number: col, Align: text.AlignRight})
	}

	return configs
}
