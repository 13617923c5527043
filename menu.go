package main

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// ErrSelectionNotFound means the chosen text matches no menu entry
var ErrSelectionNotFound = errors.New("selection not found")

// ActionKind is the closed set of things a menu line can mean
type ActionKind int

const (
	ActionNoop ActionKind = iota
	ActionRefresh
	ActionStopAll
	ActionPauseAll
	ActionResumeAllPaused
	ActionToggleShuffle
	ActionCycleRepeat
	ActionSelectSession
)

func (k ActionKind) String() string {
	switch k {
	case ActionRefresh:
		return "refresh"
	case ActionStopAll:
		return "stop-all"
	case ActionPauseAll:
		return "pause-all"
	case ActionResumeAllPaused:
		return "resume-all-paused"
	case ActionToggleShuffle:
		return "toggle-shuffle"
	case ActionCycleRepeat:
		return "cycle-repeat"
	case ActionSelectSession:
		return "select-session"
	default:
		return "noop"
	}
}

// Action is a parsed menu choice. SessionID is set only for ActionSelectSession.
type Action struct {
	Kind      ActionKind
	SessionID string
}

// MenuEntry is one presented line and what choosing it does
type MenuEntry struct {
	Line   string
	Action Action
}

// Menu lines and glyphs
const (
	menuSeparator     = "──────────────────────────────"
	defaultMarker     = "󰓎 "
	nonDefaultMarker  = "  "
	labelRefresh      = "󰑐 Refresh"
	labelStopAll      = "󰓛 Stop all"
	labelPauseAll     = "󰏤 Pause all"
	labelResumePaused = "󰐊 Resume all paused"
)

// DefaultControls is the shuffle/repeat state of the active default player,
// shown as extra action lines. Unknown values render as "Unknown".
type DefaultControls struct {
	Shuffle *bool
	Loop    LoopMode
}

func shuffleLine(c DefaultControls) string {
	state := "Unknown"
	if c.Shuffle != nil {
		state = lo.Ternary(*c.Shuffle, "On", "Off")
	}
	return "󰒟 Shuffle: " + state
}

func repeatLine(c DefaultControls) string {
	state := "Unknown"
	if c.Loop != "" {
		state = string(c.Loop)
	}
	return "󰑖 Repeat: " + state
}

// Menu is the ordered list of entries handed to a Chooser
type Menu struct {
	Entries []MenuEntry
	byLine  map[string]Action
}

func (m *Menu) add(line string, action Action) {
	m.Entries = append(m.Entries, MenuEntry{Line: line, Action: action})
	if _, taken := m.byLine[line]; !taken {
		m.byLine[line] = action
	}
}

// uniqueSessionLine disambiguates line when another entry already uses it,
// first with the instance token, then with a counter
func (m *Menu) uniqueSessionLine(line string, s PlayerSession) string {
	if _, taken := m.byLine[line]; !taken {
		return line
	}
	if instance, ok := s.Instance(); ok {
		line = fmt.Sprintf("%s [instance %s]", line, instance)
	}
	candidate := line
	for n := 2; ; n++ {
		if _, taken := m.byLine[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s (%d)", line, n)
	}
}

// Lines returns the display strings in presentation order
func (m *Menu) Lines() []string {
	return lo.Map(m.Entries, func(e MenuEntry, _ int) string {
		return e.Line
	})
}

// Parse maps the raw chosen text back to its action
func (m *Menu) Parse(choice string) (Action, error) {
	action, ok := m.byLine[choice]
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrSelectionNotFound, choice)
	}
	return action, nil
}

// BuildMenu lays out headers, ranked session lines and actions. controls
// is nil unless the default player is among the ranked sessions.
func BuildMenu(ranked []PlayerSession, defaultID string, controls *DefaultControls) *Menu {
	m := &Menu{byLine: make(map[string]Action)}

	for _, g := range Groups(ranked) {
		m.add(fmt.Sprintf("󰋋 %s (%d instances)", g.Base, g.Count), Action{Kind: ActionNoop})
	}
	m.add(menuSeparator, Action{Kind: ActionNoop})

	for _, s := range ranked {
		marker := nonDefaultMarker
		if s.ID == defaultID {
			marker = defaultMarker
		}
		m.add(m.uniqueSessionLine(marker+Describe(s), s), Action{Kind: ActionSelectSession, SessionID: s.ID})
	}
	m.add(menuSeparator, Action{Kind: ActionNoop})

	m.add(labelRefresh, Action{Kind: ActionRefresh})
	m.add(labelStopAll, Action{Kind: ActionStopAll})
	m.add(labelPauseAll, Action{Kind: ActionPauseAll})
	m.add(labelResumePaused, Action{Kind: ActionResumeAllPaused})

	if controls != nil {
		m.add(shuffleLine(*controls), Action{Kind: ActionToggleShuffle})
		m.add(repeatLine(*controls), Action{Kind: ActionCycleRepeat})
	}
	return m
}
