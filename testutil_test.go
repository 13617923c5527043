package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakePlayer is the state of one session inside fakeController
type fakePlayer struct {
	state    PlaybackState
	metadata map[string]string
	shuffle  bool
	loop     LoopMode

	failStatus   bool
	failMetadata bool
	failControl  bool
}

// fakeController is an in-memory MediaController that records commands
type fakeController struct {
	order   []string
	players map[string]*fakePlayer
	listErr error

	listCalls int
	commands  []string // "id:command"
}

func newFakeController() *fakeController {
	return &fakeController{players: make(map[string]*fakePlayer)}
}

// add registers a session; metadata is title, artist, url in that order
func (f *fakeController) add(id string, state PlaybackState, metadata ...string) *fakePlayer {
	p := &fakePlayer{state: state, metadata: make(map[string]string), loop: LoopNone}
	fields := []string{FieldTitle, FieldArtist, FieldURL}
	for i, v := range metadata {
		if i < len(fields) && v != "" {
			p.metadata[fields[i]] = v
		}
	}
	f.order = append(f.order, id)
	f.players[id] = p
	return p
}

func (f *fakeController) player(id string) (*fakePlayer, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, fmt.Errorf("no such player %s", id)
	}
	return p, nil
}

func (f *fakeController) ListSessions(context.Context) ([]string, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.order...), nil
}

func (f *fakeController) Status(_ context.Context, id string) (PlaybackState, error) {
	p, err := f.player(id)
	if err != nil {
		return StateUnknown, err
	}
	if p.failStatus {
		return StateUnknown, errors.New("status failed")
	}
	return p.state, nil
}

func (f *fakeController) Metadata(_ context.Context, id, field string) (string, error) {
	p, err := f.player(id)
	if err != nil {
		return "", err
	}
	if p.failMetadata {
		return "", errors.New("metadata failed")
	}
	v, ok := p.metadata[field]
	if !ok {
		return "", fmt.Errorf("no %s", field)
	}
	return v, nil
}

func (f *fakeController) Position(_ context.Context, id string) (float64, error) {
	if _, err := f.player(id); err != nil {
		return 0, err
	}
	return 30, nil
}

func (f *fakeController) Control(_ context.Context, id string, command TransportCommand) error {
	p, err := f.player(id)
	if err != nil {
		return err
	}
	if p.failControl {
		return errors.New("control failed")
	}
	f.commands = append(f.commands, id+":"+string(command))
	switch command {
	case CmdPlay:
		p.state = StatePlaying
	case CmdPause:
		p.state = StatePaused
	case CmdStop:
		p.state = StateStopped
	case CmdPlayPause:
		if p.state == StatePlaying {
			p.state = StatePaused
		} else {
			p.state = StatePlaying
		}
	}
	return nil
}

func (f *fakeController) Shuffle(_ context.Context, id string) (bool, error) {
	p, err := f.player(id)
	if err != nil {
		return false, err
	}
	return p.shuffle, nil
}

func (f *fakeController) SetShuffle(_ context.Context, id string, on bool) error {
	p, err := f.player(id)
	if err != nil {
		return err
	}
	f.commands = append(f.commands, fmt.Sprintf("%s:shuffle=%v", id, on))
	p.shuffle = on
	return nil
}

func (f *fakeController) LoopMode(_ context.Context, id string) (LoopMode, error) {
	p, err := f.player(id)
	if err != nil {
		return "", err
	}
	return p.loop, nil
}

func (f *fakeController) SetLoopMode(_ context.Context, id string, mode LoopMode) error {
	p, err := f.player(id)
	if err != nil {
		return err
	}
	f.commands = append(f.commands, id+":loop="+string(mode))
	p.loop = mode
	return nil
}

// fakeChooser answers each Choose call with the next pick. A pick receives
// the presented lines and returns the choice.
type fakeChooser struct {
	picks []func(lines []string) (string, error)
	menus [][]string
}

func (f *fakeChooser) Choose(_ context.Context, lines []string, _ ChooseOptions) (string, error) {
	f.menus = append(f.menus, lines)
	if len(f.menus) > len(f.picks) {
		return "", ErrNothingChosen
	}
	return f.picks[len(f.menus)-1](lines)
}

// pickLine returns want verbatim, whether or not it was presented
func pickLine(want string) func([]string) (string, error) {
	return func([]string) (string, error) { return want, nil }
}

// pickContaining chooses the first presented line containing substr
func pickContaining(t *testing.T, substr string) func([]string) (string, error) {
	return func(lines []string) (string, error) {
		for _, l := range lines {
			if strings.Contains(l, substr) {
				return l, nil
			}
		}
		t.Errorf("no menu line contains %q in %q", substr, lines)
		return "", ErrNothingChosen
	}
}

type notification struct {
	app, title, body, icon string
}

// fakeNotifier records notifications
type fakeNotifier struct {
	sent []notification
}

func (f *fakeNotifier) Notify(app, title, body, icon string) error {
	f.sent = append(f.sent, notification{app, title, body, icon})
	return nil
}

// newTestSelector wires fakes and a temp-dir store
func newTestSelector(t *testing.T, c *fakeController, ch *fakeChooser) (*Selector, *fakeNotifier, *DefaultPlayerStore) {
	t.Helper()
	n := &fakeNotifier{}
	store := NewDefaultPlayerStore(t.TempDir())
	return NewSelector(c, ch, n, store, nil, defaultConfig()), n, store
}

// assertError is a test helper that checks if an error occurred and fails the test if not
func assertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Errorf("Expected error: %s, got nil", msg)
	}
}

// assertNoError is a test helper that fails the test if an error occurred
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// assertEqual is a generic test helper for comparing values
func assertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}
