package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// fakeRunner answers every command with the same result and records argv
// and stdin
type fakeRunner struct {
	result commandResult
	calls  [][]string
	stdin  []string
}

func (f *fakeRunner) run(_ context.Context, stdin io.Reader, args ...string) commandResult {
	f.calls = append(f.calls, args)
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		f.stdin = append(f.stdin, string(data))
	}
	return f.result
}

func stubLookPath(t *testing.T, err error) {
	t.Helper()
	orig := lookPath
	lookPath = func(name string) (string, error) {
		if err != nil {
			return "", err
		}
		return "/usr/bin/" + name, nil
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestRofiArgs(t *testing.T) {
	args := rofiArgs(ChooseOptions{Prompt: "Media", Width: 40, Lines: 12, Alignment: "center"})
	expected := []string{
		"rofi", "-dmenu", "-i", "-p", "Media", "-theme-str",
		"window {width: 40%;} listview {lines: 12;} element-text {horizontal-align: 0.5;}",
	}
	assertEqual(t, strings.Join(args, "|"), strings.Join(expected, "|"), "rofi args")
}

func TestCommandChooser(t *testing.T) {
	tests := []struct {
		name     string
		result   commandResult
		expected string
		err      error
	}{
		{
			name:     "strips line terminator only",
			result:   commandResult{StdOut: "  󰐊 vlc: Movie\n"},
			expected: "  󰐊 vlc: Movie",
		},
		{
			name:     "crlf",
			result:   commandResult{StdOut: "󰑐 Refresh\r\n"},
			expected: "󰑐 Refresh",
		},
		{
			name:   "dismissed",
			result: commandResult{Err: errors.New("exit status 1")},
			err:    ErrNothingChosen,
		},
		{
			name:   "empty choice",
			result: commandResult{StdOut: "\n"},
			err:    ErrNothingChosen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLookPath(t, nil)
			runner := &fakeRunner{result: tt.result}
			c := &CommandChooser{Name: "rofi", args: rofiArgs, run: runner.run}

			choice, err := c.Choose(context.Background(), []string{"a", "b"}, defaultConfig().chooseOptions())
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Choose() error = %v; want %v", err, tt.err)
				}
				return
			}
			assertNoError(t, err)
			assertEqual(t, choice, tt.expected, "choice")
			assertEqual(t, runner.stdin[0], "a\nb\n", "stdin")
			assertEqual(t, runner.calls[0][0], "rofi", "program")
		})
	}
}

func TestCommandChooserFailure(t *testing.T) {
	stubLookPath(t, nil)
	runner := &fakeRunner{result: commandResult{Err: errors.New("exit status 1"), Combined: "cannot open display"}}
	c := &CommandChooser{Name: "rofi", args: rofiArgs, run: runner.run}

	_, err := c.Choose(context.Background(), []string{"a"}, ChooseOptions{})
	assertError(t, err, "rofi crashed")
	if errors.Is(err, ErrNothingChosen) {
		t.Errorf("Choose() error = %v; want a failure, not a dismissal", err)
	}
}

func TestCommandChooserNotInstalled(t *testing.T) {
	stubLookPath(t, errors.New("not found"))
	runner := &fakeRunner{}
	c := &CommandChooser{Name: "rofi", args: rofiArgs, run: runner.run}

	_, err := c.Choose(context.Background(), []string{"a"}, ChooseOptions{})
	assertError(t, err, "missing rofi")
	assertEqual(t, len(runner.calls), 0, "commands run")
}

func TestNewChooser(t *testing.T) {
	stubLookPath(t, nil)

	if _, ok := NewChooser("tui").(*TUIChooser); !ok {
		t.Error("NewChooser(tui) is not the terminal picker")
	}
	for _, name := range []string{"rofi", "wofi", "fuzzel", "dmenu"} {
		c, ok := NewChooser(name).(*CommandChooser)
		if !ok {
			t.Fatalf("NewChooser(%s) is not a command chooser", name)
		}
		assertEqual(t, c.Name, name, "chooser name")
	}
	c, ok := NewChooser("bogus").(*CommandChooser)
	if !ok || c.Name != "rofi" {
		t.Errorf("NewChooser(bogus) = %v; want rofi", c)
	}

	t.Setenv("WAYLAND_DISPLAY", "wayland-1")
	c, ok = NewChooser("auto").(*CommandChooser)
	if !ok || c.Name != "rofi" {
		t.Errorf("NewChooser(auto) in a graphical session = %v; want rofi", c)
	}
}
