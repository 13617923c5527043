package main

import (
	"context"
	"errors"
	"strings"
)

// ErrNoPlayersAvailable is returned when the media-control service itself
// cannot be reached, as opposed to it reporting zero sessions.
var ErrNoPlayersAvailable = errors.New("no players available")

// PlaybackState is the MPRIS playback status of a session
type PlaybackState int

const (
	StateUnknown PlaybackState = iota
	StatePlaying
	StatePaused
	StateStopped
)

func (s PlaybackState) String() string {
	switch s {
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// parsePlaybackState maps playerctl/MPRIS status strings (case-insensitive)
func parsePlaybackState(s string) PlaybackState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "playing":
		return StatePlaying
	case "paused":
		return StatePaused
	case "stopped":
		return StateStopped
	default:
		return StateUnknown
	}
}

// LoopMode is the MPRIS LoopStatus of a session
type LoopMode string

const (
	LoopNone     LoopMode = "None"
	LoopTrack    LoopMode = "Track"
	LoopPlaylist LoopMode = "Playlist"
)

// Next cycles None -> Track -> Playlist -> None
func (l LoopMode) Next() LoopMode {
	switch l {
	case LoopNone:
		return LoopTrack
	case LoopTrack:
		return LoopPlaylist
	default:
		return LoopNone
	}
}

func parseLoopMode(s string) (LoopMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return LoopNone, true
	case "track":
		return LoopTrack, true
	case "playlist":
		return LoopPlaylist, true
	}
	return "", false
}

// TransportCommand is a one-shot playback instruction
type TransportCommand string

const (
	CmdPlayPause TransportCommand = "play-pause"
	CmdPlay      TransportCommand = "play"
	CmdPause     TransportCommand = "pause"
	CmdStop      TransportCommand = "stop"
)

// Metadata field names, in the form playerctl accepts them
const (
	FieldTitle   = "title"
	FieldArtist  = "artist"
	FieldAlbum   = "album"
	FieldURL     = "xesam:url"
	FieldTrackID = "mpris:trackid"
	FieldLength  = "mpris:length"
)

// MediaController defines the interface for discovering and controlling
// media-player sessions
type MediaController interface {
	ListSessions(ctx context.Context) ([]string, error)
	Status(ctx context.Context, id string) (PlaybackState, error)
	Metadata(ctx context.Context, id, field string) (string, error)
	Position(ctx context.Context, id string) (float64, error)
	Control(ctx context.Context, id string, command TransportCommand) error
	Shuffle(ctx context.Context, id string) (bool, error)
	SetShuffle(ctx context.Context, id string, on bool) error
	LoopMode(ctx context.Context, id string) (LoopMode, error)
	SetLoopMode(ctx context.Context, id string, mode LoopMode) error
}

// NewMediaController creates the controller for the configured backend
func NewMediaController(cfg Config) MediaController {
	switch cfg.Backend {
	case "dbus":
		return NewDBusController()
	default:
		return NewPlayerctlController(cfg.commandTimeout())
	}
}
