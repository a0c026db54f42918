package commands

import (
	"errors"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
	"github.com/Sumatoshi-tech/flowdeck/pkg/dataset"
)

const noColorFlag = "no-color"

// NewValidateCommand creates the validate subcommand.
func NewValidateCommand(env *Env) *cobra.Command {
	var nocolor bool

	cmd := &cobra.Command{
		Use:   "validate <dataset>",
		Short: "Check a dataset against the order schema",
		Long: `Check a dataset against the order JSON schema, then report timestamps
that cannot be read and phases recorded out of order.

Examples:
  flowdeck validate orders.json
  flowdeck validate orders.yaml --no-color`,
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

			return runValidate(cobraCmd.OutOrStdout(), args[0], cfd.NewNormalizer(loc))
		},
	}

	cmd.Flags().BoolVar(&nocolor, noColorFlag, false, "disable colored output")

	return cmd
}

func runValidate(out io.Writer, path string, norm cfd.Normalizer) error {
	issues, err := dataset.ValidateFile(path)
	if err != nil {
		if errors.Is(err, dataset.ErrSchemaViolation) {
			color.New(color.FgRed).Fprintf(out, "Dataset is invalid (%s)\n", path)

			for _, issue := range issues {
				color.New(color.FgRed).Fprintf(out, "  - %s: %s\n", issue.Field, issue.Description)
			}
		}

		return err
	}

	orders, err := loadOrders(path)
	if err != nil {
		return err
	}

	unreadable := 0

	for i, order := range orders {
		for _, phase := range cfd.Phases() {
			_, parseErr := norm.Normalize(order[phase])
			if parseErr != nil {
				unreadable++

				color.New(color.FgYellow).Fprintf(out, "  - order %d %s: %v\n", i, phase.Key(), parseErr)
			}
		}
	}

	_, corrections := dataset.Repair(orders, norm.Location())

	color.New(color.FgGreen).Fprintf(out, "Dataset is valid (%s): %d orders\n", path, len(orders))

	if unreadable > 0 {
		color.New(color.FgYellow).Fprintf(out, "  %d timestamps cannot be read and will be skipped\n", unreadable)
	}

	if len(corrections) > 0 {
		color.New(color.FgYellow).Fprintf(out, "  %d timestamps need repair (run flowdeck repair %s)\n", len(corrections), path)
	}

	return nil
}

func setColor(disabled bool) {
	if disabled {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}
}
