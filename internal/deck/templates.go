package deck

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
	"sync/atomic"

	"github.com/Sumatoshi-tech/flowdeck/pkg/chart"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	templates     *template.Template
	templatesOnce sync.Once
	errTemplates  error
	ready         atomic.Bool
)

// funcMap provides template function helpers.
var funcMap = template.FuncMap{
	"inc": func(i int) int {
		return i + 1
	},
}

// Initialize parses the embedded templates. It is safe to call repeatedly;
// only the first call does any work.
func Initialize() error {
	_, err := getTemplates()

	return err
}

// Ready reports whether the templates were parsed successfully.
func Ready() bool {
	return ready.Load()
}

// getTemplates returns the parsed templates, loading them once.
func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		var parseErr error

		templates, parseErr = template.New("").
			Funcs(funcMap).
			ParseFS(templateFS, "templates/*.html")
		if parseErr != nil {
			errTemplates = fmt.Errorf("parsing templates: %w", parseErr)

			return
		}

		ready.Store(true)
	})

	return templates, errTemplates
}

// renderTemplate renders a named template with the given data.
func renderTemplate(name string, data any) (template.HTML, error) {
	tmpl, err := getTemplates()
	if err != nil {
		return "", fmt.Errorf("loading templates: %w", err)
	}

	var buf bytes.Buffer

	err = tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return template.HTML(buf.String()), nil
}

// pageData holds data for the page template.
type pageData struct {
	Title     string
	DarkClass string
	Theme     chart.ThemeConfig
	ExtraCSS  template.CSS
	Header    template.HTML
	Content   template.HTML
	Scripts   template.HTML
	Notes     bool
}

// headerData holds data for the header template.
type headerData struct {
	Title    string
	Subtitle string
	Slides   int
}

// slideData holds data for the slide template.
type slideData struct {
	ID       string
	Index    int
	Title    string
	Subtitle string
	Body     template.HTML
	Notes    []string
	Active   bool
}

// navData holds data for the multi-page navigation bar.
type navData struct {
	Prev  string
	Next  string
	Index int
	Total int
}

// indexData holds template data for index.html.
type indexData struct {
	Title  string
	Slides []SlideMeta
}

// cardData holds data for the card template.
type cardData struct {
	Title    string
	Subtitle string
	Content  template.HTML
}

// gridData holds data for the grid template.
type gridData struct {
	Columns int
	Items   []template.HTML
}

// statData holds data for the stat template.
type statData struct {
	Label string
	Value string
	Hint  string
}

// alertData holds data for the alert template.
type alertData struct {
	Title   string
	Message string
	Class   string
}

// tableData holds data for the table template.
type tableData struct {
	Headers []string
	Rows    [][]string
}
