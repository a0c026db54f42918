package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Output formats.
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

const formatFlag = "format"

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

// renderTable writes tbl in format. JSON is handled by the caller.
func renderTable(w io.Writer, tbl table.Writer, format string) error {
	var out string

	switch format {
	case FormatTable:
		out = tbl.Render()
	case FormatCSV:
		out = tbl.RenderCSV()
	case FormatMarkdown:
		out = tbl.RenderMarkdown()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	_, err := fmt.Fprintln(w, out)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(value)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}
