package deck

import (
	"fmt"
	"html/template"
	"io"
)

const maxGridColumns = 4

// Tone selects the color of an alert.
type Tone string

// Alert tones.
const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
)

// Text renders a paragraph of plain text.
type Text struct {
	Content string
}

// NewText creates a new text block.
func NewText(content string) *Text {
	return &Text{Content: content}
}

// Render writes the escaped text as a paragraph.
func (t *Text) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, `<p class="slide-text">%s</p>`, template.HTMLEscapeString(t.Content))
	if err != nil {
		return fmt.Errorf("writing text: %w", err)
	}

	return nil
}

// Card renders a titled container.
type Card struct {
	Title    string
	Subtitle string
	Content  Renderable
}

// NewCard creates a new card.
func NewCard(title, subtitle string) *Card {
	return &Card{Title: title, Subtitle: subtitle}
}

// WithContent sets the card content.
func (c *Card) WithContent(content Renderable) *Card {
	c.Content = content

	return c
}

// Render writes the card HTML.
func (c *Card) Render(w io.Writer) error {
	content, err := renderFragment(c.Content)
	if err != nil {
		return fmt.Errorf("rendering card content: %w", err)
	}

	return writeTemplate(w, "card.html", cardData{
		Title:    c.Title,
		Subtitle: c.Subtitle,
		Content:  content,
	})
}

// Grid lays items out in equal columns.
type Grid struct {
	Columns int
	Items   []Renderable
}

// NewGrid creates a grid with 1 to 4 columns.
func NewGrid(columns int, items ...Renderable) *Grid {
	return &Grid{Columns: max(1, min(columns, maxGridColumns)), Items: items}
}

// Render writes the grid HTML.
func (g *Grid) Render(w io.Writer) error {
	items := make([]template.HTML, len(g.Items))

	for i, item := range g.Items {
		html, err := renderFragment(item)
		if err != nil {
			return fmt.Errorf("rendering grid item %d: %w", i, err)
		}

		items[i] = html
	}

	return writeTemplate(w, "grid.html", gridData{Columns: g.Columns, Items: items})
}

// Stat renders a headline figure.
type Stat struct {
	Label string
	Value string
	Hint  string
}

// NewStat creates a new stat display.
func NewStat(label, value string) *Stat {
	return &Stat{Label: label, Value: value}
}

// WithHint sets the small print below the value.
func (s *Stat) WithHint(hint string) *Stat {
	s.Hint = hint

	return s
}

// Render writes the stat HTML.
func (s *Stat) Render(w io.Writer) error {
	return writeTemplate(w, "stat.html", statData{Label: s.Label, Value: s.Value, Hint: s.Hint})
}

// Alert renders a highlighted message.
type Alert struct {
	Title   string
	Message string
	Tone    Tone
}

// NewAlert creates a new alert.
func NewAlert(title, message string, tone Tone) *Alert {
	return &Alert{Title: title, Message: message, Tone: tone}
}

// Render writes the alert HTML.
func (a *Alert) Render(w io.Writer) error {
	tone := a.Tone
	if tone == "" {
		tone = ToneInfo
	}

	return writeTemplate(w, "alert.html", alertData{
		Title:   a.Title,
		Message: a.Message,
		Class:   "alert-" + string(tone),
	})
}

// Table renders an HTML table of escaped cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a new table.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)

	return t
}

// Render writes the table HTML.
func (t *Table) Render(w io.Writer) error {
	return writeTemplate(w, "table.html", tableData{Headers: t.Headers, Rows: t.Rows})
}

func writeTemplate(w io.Writer, name string, data any) error {
	html, err := renderTemplate(name, data)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, string(html))
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	return nil
}
