package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/flowdeck/pkg/version"
)

// NewRootCommand assembles the flowdeck command tree around env.
func NewRootCommand(env *Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flowdeck",
		Short: "Agile metrics deck for a pizzeria kitchen",
		Long: `flowdeck turns order timestamps into cumulative flow diagrams and an
agile metrics slide deck.

Commands:
  render    Render the deck as HTML
  cfd       Aggregate a dataset into a cumulative flow diagram
  stats     Summarize lead time and throughput
  generate  Synthesize an evening of orders
  validate  Check a dataset
  repair    Enforce phase order in a dataset
  serve     Serve the deck and API over HTTP
  mcp       Start the MCP server`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			_, err := env.Load()

			return err
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&env.ConfigPath, "config", "c", "", "config file (default ./flowdeck.yaml)")
	flags.StringVar(&env.EnvFile, "env-file", "", "dotenv file (default ./.env when present)")
	flags.BoolVarP(&env.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&env.Quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(
		NewRenderCommand(env),
		NewCFDCommand(env),
		NewStatsCommand(env),
		NewGenerateCommand(env),
		NewValidateCommand(env),
		NewRepairCommand(env),
		NewServeCommand(env),
		NewMCPCommand(env),
		versionCmd(),
	)

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:              "version",
		Short:            "Show version information",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {},
		Run: func(cobraCmd *cobra.Command, _ []string) {
			fmt.Fprintf(cobraCmd.OutOrStdout(), "flowdeck %s\n", version.String())
		},
	}
}
