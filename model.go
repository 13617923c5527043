package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbletea"
)

// TUIChooser presents the menu as a Bubble Tea list in the terminal
type TUIChooser struct{}

func (TUIChooser) Choose(ctx context.Context, lines []string, opts ChooseOptions) (string, error) {
	initial := newPickerModel(lines, opts)

	final, err := tea.NewProgram(initial,
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
		tea.WithAltScreen(),
	).Run()
	if err != nil {
		return "", fmt.Errorf("terminal picker: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || !m.chosen {
		return "", ErrNothingChosen
	}
	return m.lines[m.cursor], nil
}

// pickerModel is the Bubble Tea model for the terminal menu
type pickerModel struct {
	lines  []string
	opts   ChooseOptions
	width  int
	height int

	cursor int // index into lines
	offset int // first visible line
	chosen bool
}

func newPickerModel(lines []string, opts ChooseOptions) pickerModel {
	if opts.Lines <= 0 {
		opts.Lines = 12
	}
	m := pickerModel{lines: lines, opts: opts}
	m.cursor = m.nextSelectable(-1, 1)
	return m
}

// selectable reports whether the cursor may rest on line i
func (m pickerModel) selectable(i int) bool {
	return m.lines[i] != menuSeparator
}

// nextSelectable walks from i in direction dir, returning i when nothing
// else can be selected
func (m pickerModel) nextSelectable(i, dir int) int {
	for j := i + dir; j >= 0 && j < len(m.lines); j += dir {
		if m.selectable(j) {
			return j
		}
	}
	if i < 0 {
		return 0
	}
	return i
}

func (m *pickerModel) keepCursorVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.opts.Lines {
		m.offset = m.cursor - m.opts.Lines + 1
	}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k", "shift+tab":
			m.cursor = m.nextSelectable(m.cursor, -1)
		case "down", "j", "tab":
			m.cursor = m.nextSelectable(m.cursor, 1)
		case "home", "g":
			m.cursor = m.nextSelectable(-1, 1)
		case "end", "G":
			m.cursor = m.nextSelectable(len(m.lines), -1)
		case "enter":
			if len(m.lines) > 0 {
				m.chosen = true
			}
			return m, tea.Quit
		}
		m.keepCursorVisible()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}
