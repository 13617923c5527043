package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func pickerAlign(alignment string) lipgloss.Position {
	switch alignment {
	case "center":
		return lipgloss.Center
	case "right":
		return lipgloss.Right
	default:
		return lipgloss.Left
	}
}

func (m pickerModel) View() string {
	color := lipgloss.Color("2")
	highlight := lipgloss.NewStyle().Foreground(color).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// Width is a screen percentage for rofi; reuse it against the terminal
	innerWidth := 60
	if m.width > 0 && m.opts.Width > 0 {
		innerWidth = m.width * m.opts.Width / 100
	}
	if innerWidth < 30 {
		innerWidth = 30
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(innerWidth)

	lineStyle := lipgloss.NewStyle().
		Width(innerWidth - 2).
		Align(pickerAlign(m.opts.Alignment))

	var content strings.Builder
	content.WriteString(highlight.Render(m.opts.Prompt) + "\n\n")

	end := m.offset + m.opts.Lines
	if end > len(m.lines) {
		end = len(m.lines)
	}
	for i := m.offset; i < end; i++ {
		line := m.lines[i]
		switch {
		case i == m.cursor:
			content.WriteString(lineStyle.Inherit(highlight).Render("› "+line) + "\n")
		case !m.selectable(i):
			content.WriteString(lineStyle.Inherit(mutedStyle).Render(line) + "\n")
		default:
			content.WriteString(lineStyle.Render("  "+line) + "\n")
		}
	}

	helpText := mutedStyle.Render("↑/↓ move • enter select • esc cancel")
	ui := lipgloss.JoinVertical(lipgloss.Center, borderStyle.Render(strings.TrimRight(content.String(), "\n")), helpText)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, ui)
}
