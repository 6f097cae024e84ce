package tui

import "github.com/charmbracelet/lipgloss"

var (
	Primary     = lipgloss.Color("#2196F3")
	Accent      = lipgloss.Color("#8BC34A")
	Destructive = lipgloss.Color("#e53935")
	Muted       = lipgloss.Color("#8a94a6")
)

type Styles struct {
	Title    lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Label    lipgloss.Style
	LabelOn  lipgloss.Style
	Result   lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
	Link     lipgloss.Style
	Help     lipgloss.Style
	Selected lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1),
		Tab:      lipgloss.NewStyle().Padding(0, 2).Foreground(Muted),
		TabOn:    lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(Primary).Underline(true),
		Label:    lipgloss.NewStyle().Width(14).Foreground(Muted),
		LabelOn:  lipgloss.NewStyle().Width(14).Bold(true).Foreground(Primary),
		Result:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Accent).Padding(0, 1),
		Error:    lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(Muted),
		Link:     lipgloss.NewStyle().Foreground(Primary).Underline(true),
		Help:     lipgloss.NewStyle().Foreground(Muted).MarginTop(1),
		Selected: lipgloss.NewStyle().Foreground(Accent),
	}
}
