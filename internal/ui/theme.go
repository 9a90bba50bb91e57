package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette of hex colors.
type Theme struct {
	Name string

	Background  string
	Surface     string
	SurfaceAlt  string
	FocusBg     string
	SelectionBg string
	Selection   string
	Border      string
	BorderFocus string

	Text     string
	Muted    string
	Faint    string
	Accent   string
	Success  string
	Warning  string
	Danger   string
	Info     string
	Favorite string
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Faint    lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Danger   lipgloss.Style
	Info     lipgloss.Style
	Favorite lipgloss.Style
	Title    lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
}

// Styles builds the lipgloss styles for t.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return Styles{
		Text:     fg(t.Text),
		Muted:    fg(t.Muted),
		Faint:    fg(t.Faint),
		Accent:   fg(t.Accent),
		Success:  fg(t.Success).Bold(true),
		Warning:  fg(t.Warning),
		Danger:   fg(t.Danger).Bold(true),
		Info:     fg(t.Info),
		Favorite: fg(t.Favorite).Bold(true),
		Title:    fg(t.Text).Bold(true),
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.Selection)),
	}
}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns the named theme, or Nightfox when the name is unknown.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names in cycle order.
func ThemeNames() []string {
	return themeOrder
}

func nightfoxTheme() Theme {
	// https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name:        "Nightfox",
		Background:  "#131a24",
		Surface:     "#192330",
		SurfaceAlt:  "#212e3f",
		FocusBg:     "#29394f",
		SelectionBg: "#2b3b51",
		Selection:   "#cdcecf",
		Border:      "#39506d",
		BorderFocus: "#719cd6",
		Text:        "#cdcecf",
		Muted:       "#738091",
		Faint:       "#71839b",
		Accent:      "#719cd6",
		Success:     "#81b29a",
		Warning:     "#dbc074",
		Danger:      "#c94f6d",
		Info:        "#63cdcf",
		Favorite:    "#f4a261",
	}
}

func kanagawaTheme() Theme {
	// https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name:        "Kanagawa",
		Background:  "#16161D",
		Surface:     "#1F1F28",
		SurfaceAlt:  "#2A2A37",
		FocusBg:     "#2A2A37",
		SelectionBg: "#2D4F67",
		Selection:   "#DCD7BA",
		Border:      "#54546D",
		BorderFocus: "#7E9CD8",
		Text:        "#DCD7BA",
		Muted:       "#C8C093",
		Faint:       "#727169",
		Accent:      "#7E9CD8",
		Success:     "#98BB6C",
		Warning:     "#E6C384",
		Danger:      "#E46876",
		Info:        "#7FB4CA",
		Favorite:    "#FFA066",
	}
}

func slateTheme() Theme {
	// Tailwind slate/sky
	return Theme{
		Name:        "Slate",
		Background:  "#020617",
		Surface:     "#0f172a",
		SurfaceAlt:  "#1e293b",
		FocusBg:     "#283548",
		SelectionBg: "#0284c7",
		Selection:   "#f8fafc",
		Border:      "#334155",
		BorderFocus: "#38bdf8",
		Text:        "#f1f5f9",
		Muted:       "#94a3b8",
		Faint:       "#64748b",
		Accent:      "#38bdf8",
		Success:     "#22c55e",
		Warning:     "#f59e0b",
		Danger:      "#ef4444",
		Info:        "#06b6d4",
		Favorite:    "#fb923c",
	}
}
