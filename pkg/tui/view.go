package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"
)

const (
	defaultWidth  = 100
	defaultHeight = 24
)

const helpText = "tab switch · ↑/↓ move · a add · d remove · s secrets · e edit · U/D limits · r refresh · q quit"

// View implements tea.Model.
func (m *Model) View() (string, *tea.Cursor) {
	width, height := m.size()

	lines := []string{m.header(width)}
	body := m.body(width, height-3)
	lines = append(lines, body...)
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	footer, cursor := m.footer(width)
	if cursor != nil {
		cursor.Y = len(lines)
	}
	lines = append(lines, footer)
	return strings.Join(lines, "\n"), cursor
}

func (m *Model) size() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 3 {
		height = defaultHeight
	}
	return width, height
}

func (m *Model) header(width int) string {
	h := m.theme.Header
	parts := []string{h.Title.Render("syncpanel")}
	for i, name := range tabNames {
		if tab(i) == m.tab {
			parts = append(parts, h.ActiveTab.Render(name))
		} else {
			parts = append(parts, h.Tab.Render(name))
		}
	}
	left := strings.Join(parts, " ")
	right := h.Transfer.Render(m.transfer)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return cell(left, width)
	}
	return left + strings.Repeat(" ", gap) + right
}

// body renders the heading row plus up to rows table rows.
func (m *Model) body(width, rows int) []string {
	t := m.theme.Table
	var headings []string
	var cells [][]string
	var widths []int

	switch m.tab {
	case tabDevices:
		headings = []string{"Device", "Folder", "Status"}
		widths = split(width, 25, 35, 40)
		for _, d := range m.devices {
			name := d.Name
			if name == "" {
				name = d.PeerID
			}
			cells = append(cells, []string{name, d.Folder, d.Status})
		}
	case tabPrefs:
		headings = []string{"Preference", "Value"}
		widths = split(width, 45, 55)
		for _, name := range m.prefNames {
			cells = append(cells, []string{name, m.prefs.String(name)})
		}
	default:
		headings = []string{"Folder", "Content"}
		widths = split(width, 55, 45)
		for _, f := range m.folders {
			cells = append(cells, []string{f.Path, f.Content})
		}
	}

	out := []string{t.Heading.Render(joinCells(headings, widths))}
	if len(cells) == 0 {
		return append(out, t.Empty.Render("  nothing to show yet"))
	}

	m.scroll(rows)
	end := m.offset + rows
	if end > len(cells) {
		end = len(cells)
	}
	for i := m.offset; i < end; i++ {
		line := joinCells(cells[i], widths)
		if i == m.cursor {
			out = append(out, t.Selected.Render(line))
		} else {
			out = append(out, t.Row.Render(line))
		}
	}
	return out
}

func (m *Model) scroll(rows int) {
	if rows < 1 {
		rows = 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *Model) footer(width int) (string, *tea.Cursor) {
	f := m.theme.Footer
	switch m.mode {
	case modeAdd, modeEditPref:
		label := "add folder: "
		if m.mode == modeEditPref {
			label = m.target + ": "
		}
		line := f.Prompt.Render(label) + m.input.View()
		var cursor *tea.Cursor
		if c := m.input.Cursor(); c != nil {
			cp := *c
			cp.X += lipgloss.Width(label)
			cursor = &cp
		}
		return cell(line, width), cursor
	}

	if m.fatal != nil {
		return cell(f.Error.Render(fmt.Sprintf("daemon unavailable: %v", m.fatal)), width), nil
	}
	if m.failure != "" {
		return cell(f.Error.Render(m.failure), width), nil
	}
	status := f.Status.Render(m.status)
	help := f.Help.Render(helpText)
	gap := width - lipgloss.Width(status) - lipgloss.Width(help)
	if gap < 1 {
		return cell(status, width), nil
	}
	return help + strings.Repeat(" ", gap) + status, nil
}

func split(width int, shares ...int) []int {
	out := make([]int, len(shares))
	used := 0
	for i, share := range shares {
		out[i] = width * share / 100
		used += out[i]
	}
	out[len(out)-1] += width - used
	return out
}

func joinCells(values []string, widths []int) string {
	var b strings.Builder
	for i, v := range values {
		w := widths[i]
		if i < len(values)-1 {
			w--
		}
		b.WriteString(cell(v, w))
		if i < len(values)-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// cell truncates s to width and pads it with spaces.
func cell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) > width {
		s = truncate.StringWithTail(s, uint(width), "…")
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
