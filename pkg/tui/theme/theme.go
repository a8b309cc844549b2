package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the panel.
type Theme struct {
	Header HeaderTheme
	Table  TableTheme
	Footer FooterTheme
}

// HeaderTheme styles the title line and the tab strip.
type HeaderTheme struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Transfer  lipgloss.Style
}

// TableTheme styles the folder, device and preference tables.
type TableTheme struct {
	Heading  lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Empty    lipgloss.Style
}

// FooterTheme styles the bottom help, status and prompt line.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Prompt lipgloss.Style
}

// Default returns the built-in theme.
func Default() Theme {
	tab := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("244"))
	return Theme{
		Header: HeaderTheme{
			Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
			Tab:       tab,
			ActiveTab: tab.Foreground(lipgloss.Color("212")).Bold(true).Underline(true),
			Transfer:  lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		},
		Table: TableTheme{
			Heading:  lipgloss.NewStyle().Bold(true),
			Row:      lipgloss.NewStyle(),
			Selected: lipgloss.NewStyle().Reverse(true),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Empty:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214")),
			Error:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
			Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		},
	}
}
