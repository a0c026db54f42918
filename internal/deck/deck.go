// Package deck renders slide decks of charts and figures as standalone HTML.
package deck

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/flowdeck/pkg/chart"
)

const styleTagLen = 8 // len("</style>").

// Renderable is anything that writes an HTML fragment.
type Renderable interface {
	Render(w io.Writer) error
}

// Slide is one screen of the deck.
type Slide struct {
	ID       string
	Title    string
	Subtitle string
	// Notes are speaker notes, hidden until the presenter toggles them.
	Notes []string
	Body  Renderable
}

// Deck is an ordered set of slides sharing a title and theme.
type Deck struct {
	Title    string
	Subtitle string
	Theme    chart.Theme
	Slides   []Slide
}

// New creates an empty deck with the light theme.
func New(title, subtitle string) *Deck {
	return &Deck{
		Title:    title,
		Subtitle: subtitle,
		Theme:    chart.ThemeLight,
	}
}

// WithTheme sets the theme for the deck.
func (d *Deck) WithTheme(theme chart.Theme) *Deck {
	d.Theme = theme

	return d
}

// Add appends slides to the deck, assigning IDs to slides without one.
func (d *Deck) Add(slides ...Slide) {
	for _, s := range slides {
		if s.ID == "" {
			s.ID = fmt.Sprintf("slide-%d", len(d.Slides)+1)
		}

		d.Slides = append(d.Slides, s)
	}
}

// Render writes the whole deck as a single navigable HTML page.
func (d *Deck) Render(w io.Writer) error {
	return HTMLRenderer{}.Render(w, d)
}

// HTMLRenderer renders decks as HTML.
type HTMLRenderer struct {
	ExtraCSS string
}

// Render writes every slide of the deck into one page with keyboard navigation.
func (r HTMLRenderer) Render(w io.Writer, d *Deck) error {
	var slidesHTML bytes.Buffer

	for i, slide := range d.Slides {
		slideHTML, err := renderSlide(slide, i, i == 0)
		if err != nil {
			return fmt.Errorf("render slide %s: %w", slide.ID, err)
		}

		slidesHTML.WriteString(string(slideHTML))
	}

	header, err := renderTemplate("header.html", headerData{
		Title:    d.Title,
		Subtitle: d.Subtitle,
		Slides:   len(d.Slides),
	})
	if err != nil {
		return fmt.Errorf("render header: %w", err)
	}

	return r.writePage(w, d, header, template.HTML(slidesHTML.String()))
}

func (r HTMLRenderer) writePage(w io.Writer, d *Deck, header, content template.HTML) error {
	scripts, err := renderTemplate("scripts.html", nil)
	if err != nil {
		return fmt.Errorf("render scripts: %w", err)
	}

	darkClass := ""
	if d.Theme == chart.ThemeDark {
		darkClass = "dark"
	}

	html, err := renderTemplate("page.html", pageData{
		Title:     d.Title,
		DarkClass: darkClass,
		Theme:     d.Theme.Config(),
		ExtraCSS:  template.CSS(r.ExtraCSS),
		Header:    header,
		Content:   content,
		Scripts:   scripts,
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	_, err = w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}

func renderSlide(slide Slide, index int, active bool) (template.HTML, error) {
	body, err := renderFragment(slide.Body)
	if err != nil {
		return "", err
	}

	return renderTemplate("slide.html", slideData{
		ID:       slide.ID,
		Index:    index,
		Title:    slide.Title,
		Subtitle: slide.Subtitle,
		Body:     body,
		Notes:    slide.Notes,
		Active:   active,
	})
}

// ChartWrapper adapts a chart so only its container and script are written,
// not a full HTML document.
type ChartWrapper struct {
	chart chart.Chart
}

// WrapChart wraps a chart for embedding in a slide.
func WrapChart(c chart.Chart) *ChartWrapper {
	return &ChartWrapper{chart: c}
}

// Render writes the chart element and script without a full HTML page.
func (cw *ChartWrapper) Render(w io.Writer) error {
	if cw.chart == nil {
		return nil
	}

	var buf bytes.Buffer

	err := cw.chart.Render(&buf)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	_, err = w.Write([]byte(extractChartContent(buf.String())))
	if err != nil {
		return fmt.Errorf("writing chart content: %w", err)
	}

	return nil
}

func renderFragment(r Renderable) (template.HTML, error) {
	if r == nil {
		return "", nil
	}

	var buf bytes.Buffer

	err := r.Render(&buf)
	if err != nil {
		return "", fmt.Errorf("rendering body: %w", err)
	}

	return template.HTML(extractChartContent(buf.String())), nil
}

func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}

	end := strings.Index(html, `</body>`)
	if end == -1 {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			break
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			break
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}

	return content
}
