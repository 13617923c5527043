package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrNothingChosen means the user dismissed the menu
var ErrNothingChosen = errors.New("nothing chosen")

// ChooseOptions controls how the menu is laid out
type ChooseOptions struct {
	Prompt    string
	Width     int // percent of screen (rofi/wofi), columns otherwise
	Lines     int
	Alignment string // left, center or right
}

// Chooser presents lines and returns the one picked
type Chooser interface {
	Choose(ctx context.Context, lines []string, opts ChooseOptions) (string, error)
}

// CommandChooser drives any dmenu-style program: lines on stdin, the
// chosen line on stdout, non-zero exit when dismissed
type CommandChooser struct {
	Name string
	args func(opts ChooseOptions) []string
	run  commandRunner
}

func alignmentValue(alignment string) string {
	switch alignment {
	case "center":
		return "0.5"
	case "right":
		return "1.0"
	default:
		return "0.0"
	}
}

func rofiArgs(opts ChooseOptions) []string {
	theme := fmt.Sprintf("window {width: %d%%;} listview {lines: %d;} element-text {horizontal-align: %s;}",
		opts.Width, opts.Lines, alignmentValue(opts.Alignment))
	return []string{"rofi", "-dmenu", "-i", "-p", opts.Prompt, "-theme-str", theme}
}

func wofiArgs(opts ChooseOptions) []string {
	return []string{"wofi", "--dmenu", "-i", "-p", opts.Prompt,
		"-L", strconv.Itoa(opts.Lines), "-W", strconv.Itoa(opts.Width) + "%"}
}

func fuzzelArgs(opts ChooseOptions) []string {
	return []string{"fuzzel", "--dmenu", "-p", opts.Prompt + " ",
		"-l", strconv.Itoa(opts.Lines), "-w", strconv.Itoa(opts.Width)}
}

func dmenuArgs(opts ChooseOptions) []string {
	return []string{"dmenu", "-i", "-p", opts.Prompt, "-l", strconv.Itoa(opts.Lines)}
}

var commandChoosers = map[string]func(opts ChooseOptions) []string{
	"rofi":   rofiArgs,
	"wofi":   wofiArgs,
	"fuzzel": fuzzelArgs,
	"dmenu":  dmenuArgs,
}

func newCommandChooser(name string) *CommandChooser {
	return &CommandChooser{Name: name, args: commandChoosers[name], run: cmderRunner(0)}
}

func (c *CommandChooser) Choose(ctx context.Context, lines []string, opts ChooseOptions) (string, error) {
	if _, err := lookPath(c.Name); err != nil {
		return "", fmt.Errorf("%s not installed: %w", c.Name, err)
	}

	stdin := strings.NewReader(strings.Join(lines, "\n") + "\n")
	res := c.run(ctx, stdin, c.args(opts)...)

	// Only the line terminator is stripped; session lines start with spaces
	choice := strings.TrimRight(res.StdOut, "\r\n")
	if res.Err != nil || choice == "" {
		if res.Err != nil && choice == "" && strings.TrimSpace(res.Combined) != "" {
			return "", fmt.Errorf("%s failed: %w: %s", c.Name, res.Err, strings.TrimSpace(res.Combined))
		}
		return "", ErrNothingChosen
	}
	return choice, nil
}

func graphicalSession() bool {
	return os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("DISPLAY") != ""
}

// NewChooser creates the configured chooser. "auto" prefers rofi in a
// graphical session, the terminal picker when attached to a tty.
func NewChooser(name string) Chooser {
	switch name {
	case "tui":
		return &TUIChooser{}
	case "auto", "":
		if graphicalSession() {
			if _, err := lookPath("rofi"); err == nil {
				return newCommandChooser("rofi")
			}
		}
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return &TUIChooser{}
		}
		return newCommandChooser("rofi")
	}
	if _, ok := commandChoosers[name]; ok {
		return newCommandChooser(name)
	}
	return newCommandChooser("rofi")
}
