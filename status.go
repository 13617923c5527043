package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Bar icons (Nerd Font)
const (
	iconPlay         = "󰎈 "
	iconPause        = "󰏤 "
	iconStop         = "󰓛 "
	iconDefaultMusic = "󰎆 "
)

var playerIcons = map[string]string{
	"spotify":   " ",
	"firefox":   " ",
	"chromium":  " ",
	"vlc":       "󰕼 ",
	"mpv":       "󰎁 ",
	"brave":     "󰖟 ",
	"audacious": "󰽿 ",
}

// WaybarOutput is one line of a waybar custom module with return-type json
type WaybarOutput struct {
	Text    string `json:"text"`
	Class   string `json:"class,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
}

// nowPlaying is everything the bar needs about one session
type nowPlaying struct {
	Session  PlayerSession
	Album    string
	TrackID  string
	Length   float64 // seconds, 0 when unknown
	Position float64 // seconds
}

func statusClass(state PlaybackState) string {
	switch state {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

func statusIcon(state PlaybackState) string {
	switch state {
	case StatePlaying:
		return iconPlay
	case StatePaused:
		return iconPause
	default:
		return iconStop
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// renderStatus builds the waybar JSON object for np
func renderStatus(np nowPlaying, cfg Config) WaybarOutput {
	s := np.Session
	base := s.BaseApp()
	playerIcon := orDefault(playerIcons[base], iconDefaultMusic)

	progress := ""
	if s.State == StatePlaying && np.Length > 0 {
		progress = " " + progressBar(np.Position/np.Length, cfg.Status.ProgressLength) + " "
	}

	var track string
	switch {
	case base == "spotify" && strings.Contains(np.TrackID, ":ad:"):
		track = "ADVERTISEMENT"
	case s.Title != "" && s.Artist != "":
		track = s.Artist + " - " + s.Title
	case s.Title != "":
		track = s.Title
	default:
		track = "Unknown Media"
	}
	track = truncateText(track, cfg.Status.MaxLength)

	return WaybarOutput{
		Text:    playerIcon + statusIcon(s.State) + progress + track,
		Class:   fmt.Sprintf("custom-%s %s", base, statusClass(s.State)),
		Alt:     s.State.String(),
		Tooltip: renderTooltip(np),
	}
}

func renderTooltip(np nowPlaying) string {
	s := np.Session
	var b strings.Builder
	fmt.Fprintf(&b, "Player: %s\nStatus: %s\n", s.ID, s.State)
	fmt.Fprintf(&b, "Track: %s\nArtist: %s\nAlbum: %s",
		orDefault(s.Title, "Unknown Title"),
		orDefault(s.Artist, "Unknown Artist"),
		orDefault(np.Album, "Unknown Album"))
	if np.Length > 0 {
		fmt.Fprintf(&b, "\nProgress: %s [%s/%s]",
			progressBar(np.Position/np.Length, 20),
			formatTime(int64(np.Position)),
			formatTime(int64(np.Length)))
	}
	return b.String()
}

// StatusModule renders the bar text for one player
type StatusModule struct {
	selector *Selector
	player   string
}

func NewStatusModule(selector *Selector, player string) *StatusModule {
	return &StatusModule{selector: selector, player: player}
}

// target picks the explicit player, else the active default, else the
// best-ranked session
func (m *StatusModule) target(sessions []PlayerSession) (PlayerSession, bool) {
	if m.player != "" {
		return findSession(sessions, m.player)
	}
	if def, ok := activeDefault(sessions, m.selector.loadDefault()); ok {
		return def, true
	}
	ranked := Rank(sessions)
	if len(ranked) == 0 {
		return PlayerSession{}, false
	}
	return ranked[0], true
}

func (m *StatusModule) nowPlaying(ctx context.Context, session PlayerSession) nowPlaying {
	c := m.selector.controller
	np := nowPlaying{Session: session}

	field := func(name string) string {
		value, err := c.Metadata(ctx, session.ID, name)
		if err != nil {
			log.Debug().Err(err).Str("player", session.ID).Str("field", name).Msg("metadata unavailable")
			return ""
		}
		return value
	}

	np.Album = field(FieldAlbum)
	np.TrackID = field(FieldTrackID)
	if raw := field(FieldLength); raw != "" {
		if us, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			np.Length = float64(us) / 1e6
		} else {
			log.Debug().Err(err).Str("player", session.ID).Msg("bad track length")
		}
	}
	if pos, err := c.Position(ctx, session.ID); err == nil {
		np.Position = pos
	} else {
		log.Debug().Err(err).Str("player", session.ID).Msg("position unavailable")
	}
	return np
}

// Render returns the current waybar object. No player renders as empty text.
func (m *StatusModule) Render(ctx context.Context, cfg Config) (WaybarOutput, error) {
	sessions, err := m.selector.Discover(ctx)
	if err != nil {
		return WaybarOutput{}, err
	}
	session, ok := m.target(sessions)
	if !ok {
		return WaybarOutput{Text: ""}, nil
	}
	return renderStatus(m.nowPlaying(ctx, session), cfg), nil
}

func writeStatus(w io.Writer, out WaybarOutput) error {
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Once renders and writes a single line. An unreachable controller is
// written as an empty module.
func (m *StatusModule) Once(ctx context.Context, w io.Writer, cfg Config) error {
	out, err := m.Render(ctx, cfg)
	if err != nil {
		log.Debug().Err(err).Msg("status unavailable")
		out = WaybarOutput{Text: ""}
	}
	return writeStatus(w, out)
}

// Follow writes a line whenever the rendered output changes, checking every
// status.interval_ms and whenever reload fires, until ctx is done
func (m *StatusModule) Follow(ctx context.Context, w io.Writer, reload <-chan struct{}) error {
	var last string
	emit := func() error {
		cfg := config.Get()
		out, err := m.Render(ctx, cfg)
		if err != nil {
			log.Debug().Err(err).Msg("status unavailable")
			out = WaybarOutput{Text: ""}
		}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		if string(data) == last {
			return nil
		}
		last = string(data)
		_, err = fmt.Fprintln(w, last)
		return err
	}

	if err := emit(); err != nil {
		return err
	}

	interval := time.Duration(config.Get().Status.IntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reload:
			// Interval may have changed
			ticker.Reset(time.Duration(config.Get().Status.IntervalMs) * time.Millisecond)
			last = ""
		case <-ticker.C:
		}
		if err := emit(); err != nil {
			return err
		}
	}
}
