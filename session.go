package main

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// PlayerSession is one controllable player instance as seen at discovery time
type PlayerSession struct {
	ID     string
	State  PlaybackState
	Title  string
	Artist string
	URL    string
}

// unknownTitle stands in for a title that could not be read
const unknownTitle = "Unknown"

// State glyphs (Nerd Font)
var stateGlyphs = map[PlaybackState]string{
	StatePlaying: "󰐊",
	StatePaused:  "󰏤",
	StateStopped: "󰓛",
	StateUnknown: "󰎆",
}

// BaseApp is the player name before any ".instance..." suffix
func (s PlayerSession) BaseApp() string {
	base, _ := splitInstance(s.ID)
	return base
}

// Instance returns the instance token of the identifier, if any
func (s PlayerSession) Instance() (string, bool) {
	_, instance := splitInstance(s.ID)
	return instance, instance != ""
}

// splitInstance splits "firefox.instance_1_23" into ("firefox", "1_23") and
// "chromium.instance4411" into ("chromium", "4411")
func splitInstance(id string) (base, instance string) {
	i := strings.Index(id, ".instance")
	if i < 0 {
		return id, ""
	}
	token := strings.TrimLeft(id[i+len(".instance"):], "_")
	if token == "" {
		token = "1"
	}
	return id[:i], token
}

// originHost extracts the host of an http(s) URL with any leading "www."
// removed. It reports false for anything that isn't scheme://host/...
func originHost(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host == "" {
		return "", false
	}
	return host, true
}

// GroupedName is the disambiguated player name used in labels
func (s PlayerSession) GroupedName() string {
	base := s.BaseApp()
	instance, ok := s.Instance()
	if !ok {
		return base
	}
	if host, ok := originHost(s.URL); ok {
		return fmt.Sprintf("%s [%s]", base, host)
	}
	return fmt.Sprintf("%s [instance %s]", base, instance)
}

// Describe builds the display label for a session
func Describe(s PlayerSession) string {
	title := s.Title
	if title == "" {
		title = unknownTitle
	}
	glyph := stateGlyphs[s.State]
	if s.Artist != "" {
		return fmt.Sprintf("%s %s: %s - %s", glyph, s.GroupedName(), s.Artist, title)
	}
	return fmt.Sprintf("%s %s: %s", glyph, s.GroupedName(), title)
}

func rankOf(state PlaybackState) int {
	switch state {
	case StatePlaying:
		return 0
	case StatePaused:
		return 1
	default:
		return 2
	}
}

// Rank orders sessions Playing, then Paused, then the rest. Within a state
// the discovery order is kept. The input slice is not modified.
func Rank(sessions []PlayerSession) []PlayerSession {
	ranked := slices.Clone(sessions)
	slices.SortStableFunc(ranked, func(a, b PlayerSession) int {
		return rankOf(a.State) - rankOf(b.State)
	})
	return ranked
}

// PlayerGroup is a base application with how many sessions it has
type PlayerGroup struct {
	Base  string
	Count int
}

// Groups returns the base applications with more than one session, in
// first-seen order
func Groups(sessions []PlayerSession) []PlayerGroup {
	counts := lo.CountValuesBy(sessions, func(s PlayerSession) string {
		return s.BaseApp()
	})
	bases := lo.Uniq(lo.Map(sessions, func(s PlayerSession, _ int) string {
		return s.BaseApp()
	}))
	return lo.FilterMap(bases, func(base string, _ int) (PlayerGroup, bool) {
		return PlayerGroup{Base: base, Count: counts[base]}, counts[base] > 1
	})
}

// findSession looks up a session by identifier
func findSession(sessions []PlayerSession, id string) (PlayerSession, bool) {
	return lo.Find(sessions, func(s PlayerSession) bool {
		return s.ID == id
	})
}
