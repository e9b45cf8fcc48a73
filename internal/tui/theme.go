package tui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
	Jade   lipgloss.Color
	Seal   lipgloss.Color
	Border lipgloss.Color
}

var ink = palette{
	Text:   lipgloss.Color("#e8e2d0"),
	Muted:  lipgloss.Color("#8a8d8a"),
	Accent: lipgloss.Color("#d9b35b"),
	Jade:   lipgloss.Color("#7fb08a"),
	Seal:   lipgloss.Color("#c8453d"),
	Border: lipgloss.Color("#4a4d50"),
}

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	option   lipgloss.Style
	locked   lipgloss.Style
	notice   lipgloss.Style
	panel    lipgloss.Style
	barFill  lipgloss.Style
	barEnemy lipgloss.Style
	barEmpty lipgloss.Style
}

func newStyles(p palette) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		muted:    lipgloss.NewStyle().Foreground(p.Muted),
		option:   lipgloss.NewStyle().Foreground(p.Text),
		locked:   lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true),
		notice:   lipgloss.NewStyle().Foreground(p.Seal).Italic(true),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
		barFill:  lipgloss.NewStyle().Foreground(p.Jade),
		barEnemy: lipgloss.NewStyle().Foreground(p.Seal),
		barEmpty: lipgloss.NewStyle().Foreground(p.Border),
	}
}
