package chart

// Theme represents a color theme for the deck and its charts.
type Theme string

const (
	// ThemeLight is the light color theme used for projected slides.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ParseTheme maps a configuration value onto a Theme, defaulting to light.
func ParseTheme(name string) Theme {
	if Theme(name) == ThemeDark {
		return ThemeDark
	}

	return ThemeLight
}

// ThemeConfig holds all theme-specific styling values.
type ThemeConfig struct {
	// Page colors.
	Background string
	Surface    string
	Border     string

	// Text colors.
	TextPrimary   string
	TextSecondary string
	TextMuted     string

	// Accent colors.
	Accent       string
	AccentSubtle string

	// Semantic colors.
	Success string
	Warning string
	Error   string
	Info    string

	// Chart-specific.
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string
}

// Palette is the ordered series palette of a theme.
type Palette struct {
	Series []string
	Good   string
	Bad    string
}

// Config returns the styling values of the theme.
func (t Theme) Config() ThemeConfig {
	if t == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

// Palette returns the chart palette of the theme.
func (t Theme) Palette() Palette {
	if t == ThemeDark {
		return darkPalette
	}

	return lightPalette
}

// SeriesColor picks the i-th palette color, wrapping around.
func (p Palette) SeriesColor(i int) string {
	if len(p.Series) == 0 {
		return ""
	}

	return p.Series[i%len(p.Series)]
}

var lightTheme = ThemeConfig{
	Background: "#fffdf8",
	Surface:    "#ffffff",
	Border:     "#eadfcf",

	TextPrimary:   "#2b1d12",
	TextSecondary: "#5c4331",
	TextMuted:     "#8a7262",

	Accent:       "#c2410c", // tomato.
	AccentSubtle: "#ffedd5",

	Success: "#15803d", // basil.
	Warning: "#ca8a04",
	Error:   "#b91c1c",
	Info:    "#1d4ed8",

	ChartBackground: "transparent",
	ChartGrid:       "#eadfcf",
	ChartAxis:       "#b8a08a",
	ChartText:       "#2b1d12",
	ChartTextMuted:  "#8a7262",
}

var darkTheme = ThemeConfig{
	Background: "#17110c",
	Surface:    "#221a13",
	Border:     "#3d2f24",

	TextPrimary:   "#fdf6ec",
	TextSecondary: "#e4d3c0",
	TextMuted:     "#b39c87",

	Accent:       "#fb923c",
	AccentSubtle: "#431407",

	Success: "#4ade80",
	Warning: "#facc15",
	Error:   "#f87171",
	Info:    "#60a5fa",

	ChartBackground: "transparent",
	ChartGrid:       "#3d2f24",
	ChartAxis:       "#5e4a3a",
	ChartText:       "#e4d3c0",
	ChartTextMuted:  "#b39c87",
}

var lightPalette = Palette{
	Series: []string{
		"#c2410c", // tomato.
		"#15803d", // basil.
		"#ca8a04", // cheese.
		"#7c2d12", // crust.
		"#0369a1",
		"#be185d",
	},
	Good: "#15803d",
	Bad:  "#b91c1c",
}

var darkPalette = Palette{
	Series: []string{
		"#fb923c",
		"#4ade80",
		"#facc15",
		"#fdba74",
		"#38bdf8",
		"#f472b6",
	},
	Good: "#4ade80",
	Bad:  "#f87171",
}
