package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/flowdeck/pkg/dataset"
)

// NewRepairCommand creates the repair subcommand.
func NewRepairCommand(env *Env) *cobra.Command {
	var (
		output  string
		dryRun  bool
		nocolor bool
	)

	cmd := &cobra.Command{
		Use:   "repair <dataset>",
		Short: "Enforce closing times and phase order in a dataset",
		Long: `Rewrite timestamps so that no order enters the queue after 23:00 or is
delivered after 23:55, and every phase completes at least one minute after the
previous one. The dataset is rewritten in place unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, err := env.Load()
			if err != nil {
				return err
			}

			setColor(nocolor)

			loc, err := cfg.Dataset.LoadLocation()
			if err != nil {
				return err
			}

			orders, err := loadOrders(args[0])
			if err != nil {
				return err
			}

			repaired, corrections := dataset.Repair(orders, loc)
			out := cobraCmd.OutOrStdout()

			for _, c := range corrections {
				color.New(color.FgYellow).Fprintf(out, "  - order %d %s: %s -> %s\n", c.Order, c.Phase.Key(), c.From, c.To)
			}

			if len(corrections) == 0 {
				color.New(color.FgGreen).Fprintf(out, "Nothing to repair (%d orders)\n", len(orders))

				return nil
			}

			if dryRun {
				color.New(color.FgCyan).Fprintf(out, "%d timestamps would be rewritten\n", len(corrections))

				return nil
			}

			target := output
			if target == "" {
				target = args[0]
			}

			saveErr := dataset.Save(target, repaired)
			if saveErr != nil {
				return fmt.Errorf("save repaired dataset: %w", saveErr)
			}

			color.New(color.FgGreen).Fprintf(out, "Rewrote %d timestamps to %s\n", len(corrections), target)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the repaired dataset here instead of in place")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report corrections without writing")
	cmd.Flags().BoolVar(&nocolor, noColorFlag, false, "disable colored output")

	return cmd
}
