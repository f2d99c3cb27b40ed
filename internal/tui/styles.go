package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colour scheme.
type Theme struct {
	Name       string
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Subtle     lipgloss.Color
	Accent     lipgloss.Color
	AccentSoft lipgloss.Color
	Card       lipgloss.Color
	Border     lipgloss.Color
	Success    lipgloss.Color
	Danger     lipgloss.Color
}

func DarkTheme() Theme {
	return Theme{
		Name:       "dark",
		Foreground: lipgloss.Color("#f3f4f6"),
		Muted:      lipgloss.Color("#9ca3af"),
		Subtle:     lipgloss.Color("#6b7280"),
		Accent:     lipgloss.Color("#9333ea"),
		AccentSoft: lipgloss.Color("#d8b4fe"),
		Card:       lipgloss.Color("#1f2937"),
		Border:     lipgloss.Color("#374151"),
		Success:    lipgloss.Color("#4ade80"),
		Danger:     lipgloss.Color("#f87171"),
	}
}

func LightTheme() Theme {
	return Theme{
		Name:       "light",
		Foreground: lipgloss.Color("#111827"),
		Muted:      lipgloss.Color("#4b5563"),
		Subtle:     lipgloss.Color("#9ca3af"),
		Accent:     lipgloss.Color("#7e22ce"),
		AccentSoft: lipgloss.Color("#6b21a8"),
		Card:       lipgloss.Color("#f3f4f6"),
		Border:     lipgloss.Color("#d1d5db"),
		Success:    lipgloss.Color("#15803d"),
		Danger:     lipgloss.Color("#b91c1c"),
	}
}

// ThemeByName returns the light theme for "light" and the dark theme otherwise.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// Styles is the set of lipgloss styles derived from a Theme.
type Styles struct {
	Theme Theme

	Header       lipgloss.Style
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	UserLabel    lipgloss.Style
	UserText     lipgloss.Style
	AdvisorLabel lipgloss.Style
	Timestamp    lipgloss.Style
	Muted        lipgloss.Style
	Spinner      lipgloss.Style
	Input        lipgloss.Style
	InputBusy    lipgloss.Style
	Footer       lipgloss.Style

	Sidebar   lipgloss.Style
	LinkCard  lipgloss.Style
	LinkTitle lipgloss.Style
	LinkHost  lipgloss.Style

	Welcome     lipgloss.Style
	ExampleCard lipgloss.Style

	Dialog         lipgloss.Style
	DropZone       lipgloss.Style
	DropZoneActive lipgloss.Style
	StatusOK       lipgloss.Style
	StatusErr      lipgloss.Style
	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style
}

func NewStyles(t Theme) Styles {
	base := lipgloss.NewStyle().Foreground(t.Foreground)
	return Styles{
		Theme: t,

		Header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border).
			Padding(0, 1),
		Title:        base.Bold(true),
		Subtitle:     lipgloss.NewStyle().Foreground(t.Muted),
		UserLabel:    lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		UserText:     base.PaddingLeft(2),
		AdvisorLabel: lipgloss.NewStyle().Bold(true).Foreground(t.AccentSoft),
		Timestamp:    lipgloss.NewStyle().Foreground(t.Subtle),
		Muted:        lipgloss.NewStyle().Foreground(t.Muted),
		Spinner:      lipgloss.NewStyle().Foreground(t.Accent),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent),
		InputBusy: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),
		Footer: lipgloss.NewStyle().Foreground(t.Subtle).PaddingLeft(1),

		Sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(t.Border).
			Padding(0, 1),
		LinkCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		LinkTitle: base.Bold(true),
		LinkHost:  lipgloss.NewStyle().Foreground(t.Muted),

		Welcome: lipgloss.NewStyle().Padding(1, 2),
		ExampleCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Padding(1, 2),
		DropZone: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(t.Subtle).
			Padding(1, 2).
			Align(lipgloss.Center),
		DropZoneActive: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(t.Accent).
			Padding(1, 2).
			Align(lipgloss.Center),
		StatusOK:  lipgloss.NewStyle().Foreground(t.Success),
		StatusErr: lipgloss.NewStyle().Foreground(t.Danger),
		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(t.Accent).
			Padding(0, 2),
		ButtonDisabled: lipgloss.NewStyle().
			Foreground(t.Muted).
			Background(t.Card).
			Padding(0, 2),
	}
}
