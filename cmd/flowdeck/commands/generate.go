package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
	"github.com/Sumatoshi-tech/flowdeck/pkg/dataset"
	"github.com/Sumatoshi-tech/flowdeck/pkg/mockdata"
	"github.com/Sumatoshi-tech/flowdeck/pkg/safeconv"
)

const (
	defaultGenerateOutput = "orders.json"
	defaultGenerateOrders = 60
	dayLayout             = "2006-01-02"
)

// ErrInvalidOrderCount is returned when --orders is not positive.
var ErrInvalidOrderCount = errors.New("order count must be positive")

// NewGenerateCommand creates the generate subcommand.
func NewGenerateCommand(env *Env) *cobra.Command {
	var (
		output string
		day    string
		orders int
		seed   uint64
		list   bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Synthesize an evening of pizzeria orders",
		Long: `Synthesize orders placed between 19:00 and 22:30 on one day and save
them as a dataset. The extension of --output selects the format: .json,
.json.lz4, .yaml or .yml.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, providers, err := env.initObservability(observability.ModeCLI)
			if err != nil {
				return err
			}
			defer shutdown(providers)

			if orders <= 0 {
				return fmt.Errorf("%w: %d", ErrInvalidOrderCount, orders)
			}

			loc, err := cfg.Dataset.LoadLocation()
			if err != nil {
				return err
			}

			date := time.Now().In(loc)
			if day != "" {
				date, err = time.ParseInLocation(dayLayout, day, loc)
				if err != nil {
					return fmt.Errorf("parse --day: %w", err)
				}
			}

			if !cobraCmd.Flags().Changed("seed") {
				seed = cfg.Deck.Seed
			}

			generated := mockdata.NewInLocation(seed, loc).Orders(date, orders)

			saveErr := dataset.Save(output, mockdata.Records(generated))
			if saveErr != nil {
				return saveErr
			}

			info, err := os.Stat(output)
			if err != nil {
				return fmt.Errorf("stat %s: %w", output, err)
			}

			providers.Logger.Debug("dataset generated", "path", output, "orders", orders, "seed", seed)

			out := cobraCmd.OutOrStdout()

			if list {
				tbl := newTable()
				tbl.AppendHeader(table.Row{"id", "placed", "delivered"})

				for _, o := range generated {
					tbl.AppendRow(table.Row{o.ID, o.Placed.Format(timeLayout), o.Phases[cfd.Delivered]})
				}

				fmt.Fprintln(out, tbl.Render())
			}

			fmt.Fprintf(out, "Generated %s orders for %s to %s (%s)\n",
				humanize.Comma(int64(orders)), date.Format(dateLayout), output, humanize.Bytes(safeconv.MustInt64ToUint64(info.Size())))

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultGenerateOutput, "dataset file to write")
	cmd.Flags().StringVar(&day, "day", "", "evening to synthesize (YYYY-MM-DD, default today)")
	cmd.Flags().IntVarP(&orders, "orders", "n", defaultGenerateOrders, "number of orders")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "generator seed (default deck.seed)")
	cmd.Flags().BoolVar(&list, "list", false, "print the generated orders")

	return cmd
}
