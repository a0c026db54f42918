package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/flowdeck/internal/deck"
	"github.com/Sumatoshi-tech/flowdeck/internal/observability"
	"github.com/Sumatoshi-tech/flowdeck/internal/slides"
	"github.com/Sumatoshi-tech/flowdeck/pkg/chart"
	"github.com/Sumatoshi-tech/flowdeck/pkg/safeconv"
)

const (
	renderDirPerm     = 0o750
	renderOutputFlag  = "output"
	renderOutputShort = "o"
	renderMultiFlag   = "multi-page"
	renderThemeFlag   = "theme"
	renderSeedFlag    = "seed"
	renderDataFlag    = "dataset"
)

// NewRenderCommand creates the render subcommand.
func NewRenderCommand(env *Env) *cobra.Command {
	var (
		output    string
		theme     string
		data      string
		seed      uint64
		multiPage bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the agile metrics deck as HTML",
		Long: `Render the pizzeria agile metrics deck.

A single self-contained HTML file is written by default. With --multi-page the
output is a directory holding one page per slide plus index.html.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, providers, err := env.initObservability(observability.ModeCLI)
			if err != nil {
				return err
			}
			defer shutdown(providers)

			flags := cobraCmd.Flags()
			if flags.Changed(renderOutputFlag) {
				cfg.Deck.Output = output
			}

			if flags.Changed(renderThemeFlag) {
				cfg.Deck.Theme = theme
			}

			if flags.Changed(renderSeedFlag) {
				cfg.Deck.Seed = seed
			}

			if flags.Changed(renderMultiFlag) {
				cfg.Deck.MultiPage = multiPage
			}

			if flags.Changed(renderDataFlag) {
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

			d, err := slides.Build(cobraCmd.Context(), slides.Inputs{
				Title:    cfg.Deck.Title,
				Subtitle: cfg.Deck.Subtitle,
				Theme:    chart.ParseTheme(cfg.Deck.Theme),
				Seed:     cfg.Deck.Seed,
				Orders:   orders,
				Axis:     axis,
				Location: loc,
				Now:      time.Now().In(loc),
				Logger:   providers.Logger,
				Metrics:  providers.Aggregations,
			})
			if err != nil {
				return err
			}

			if cfg.Deck.MultiPage {
				return renderMultiPage(cobraCmd.OutOrStdout(), d, cfg.Deck.Output)
			}

			return renderSinglePage(cobraCmd.OutOrStdout(), d, cfg.Deck.Output)
		},
	}

	cmd.Flags().StringVarP(&output, renderOutputFlag, renderOutputShort, "", "output file (directory with --multi-page)")
	cmd.Flags().StringVar(&theme, renderThemeFlag, "", "color theme: light or dark")
	cmd.Flags().StringVar(&data, renderDataFlag, "", "order dataset charted on the CFD slide")
	cmd.Flags().Uint64Var(&seed, renderSeedFlag, 0, "seed for the generated charts")
	cmd.Flags().BoolVar(&multiPage, renderMultiFlag, false, "write one HTML page per slide")

	return cmd
}

func renderSinglePage(out io.Writer, d *deck.Deck, path string) error {
	dir := filepath.Dir(path)

	mkErr := os.MkdirAll(dir, renderDirPerm)
	if mkErr != nil {
		return fmt.Errorf("create output dir: %w", mkErr)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	renderErr := d.Render(f)
	closeErr := f.Close()

	if renderErr != nil {
		return fmt.Errorf("render deck: %w", renderErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", path, closeErr)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	fmt.Fprintf(out, "Wrote %s (%d slides, %s)\n", path, len(d.Slides), humanize.Bytes(safeconv.MustInt64ToUint64(info.Size())))

	return nil
}

func renderMultiPage(out io.Writer, d *deck.Deck, dir string) error {
	written, err := (&deck.MultiPageRenderer{OutputDir: dir}).Render(d)
	if err != nil {
		return fmt.Errorf("render deck: %w", err)
	}

	var total int64

	for _, path := range written {
		info, statErr := os.Stat(path)
		if statErr != nil {
			return fmt.Errorf("stat %s: %w", path, statErr)
		}

		total += info.Size()
	}

	fmt.Fprintf(out, "Wrote %s pages to %s (%s)\n",
		humanize.Comma(int64(len(written))), dir, humanize.Bytes(safeconv.MustInt64ToUint64(total)))

	return nil
}
