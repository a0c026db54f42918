package deck

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

const indexFileName = "index.html"

// SlideMeta describes a rendered slide for the index page.
type SlideMeta struct {
	ID       string
	Title    string
	Subtitle string
}

// MultiPageRenderer writes one HTML file per slide plus an index page.
type MultiPageRenderer struct {
	OutputDir string // Directory to write HTML files into.
}

// Render writes every slide and the index. It returns the written paths.
func (r *MultiPageRenderer) Render(d *Deck) ([]string, error) {
	mkErr := os.MkdirAll(r.OutputDir, 0o755)
	if mkErr != nil {
		return nil, fmt.Errorf("create output dir: %w", mkErr)
	}

	written := make([]string, 0, len(d.Slides)+1)
	metas := make([]SlideMeta, 0, len(d.Slides))

	for i, slide := range d.Slides {
		path, err := r.renderSlidePage(d, i)
		if err != nil {
			return written, err
		}

		written = append(written, path)
		metas = append(metas, SlideMeta{ID: slide.ID, Title: slide.Title, Subtitle: slide.Subtitle})
	}

	path, err := r.renderIndex(d, metas)
	if err != nil {
		return written, err
	}

	return append(written, path), nil
}

func (r *MultiPageRenderer) renderSlidePage(d *Deck, i int) (string, error) {
	slide := d.Slides[i]

	nav := navData{Index: i + 1, Total: len(d.Slides)}
	if i > 0 {
		nav.Prev = d.Slides[i-1].ID + ".html"
	}

	if i < len(d.Slides)-1 {
		nav.Next = d.Slides[i+1].ID + ".html"
	}

	navHTML, err := renderTemplate("nav.html", nav)
	if err != nil {
		return "", fmt.Errorf("render nav: %w", err)
	}

	slideHTML, err := renderSlide(slide, i, true)
	if err != nil {
		return "", fmt.Errorf("render slide %s: %w", slide.ID, err)
	}

	return r.write(slide.ID+".html", d, navHTML+slideHTML)
}

func (r *MultiPageRenderer) renderIndex(d *Deck, metas []SlideMeta) (string, error) {
	content, err := renderTemplate("index.html", indexData{Title: d.Title, Slides: metas})
	if err != nil {
		return "", fmt.Errorf("render index content: %w", err)
	}

	return r.write(indexFileName, d, content)
}

func (r *MultiPageRenderer) write(name string, d *Deck, content template.HTML) (string, error) {
	outPath := filepath.Join(r.OutputDir, name)

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	renderErr := HTMLRenderer{}.writePage(f, d, "", content)
	if renderErr != nil {
		return "", fmt.Errorf("render %s: %w", name, renderErr)
	}

	return outPath, nil
}
