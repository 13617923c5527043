package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// ErrNoDefaultPlayer means a shuffle/repeat action was chosen while no
// default player is set or the default player is not running
var ErrNoDefaultPlayer = errors.New("no active default player")

// noPlayersNotice is shown both when the controller is unreachable and
// when it lists no sessions
const noPlayersNotice = "No players found"

// Selector discovers sessions, presents them and applies the user's choice
type Selector struct {
	controller MediaController
	chooser    Chooser
	notifier   Notifier
	store      *DefaultPlayerStore
	history    *HistoryStore // nil when history is disabled
	cfg        Config
}

func NewSelector(controller MediaController, chooser Chooser, notifier Notifier, store *DefaultPlayerStore, history *HistoryStore, cfg Config) *Selector {
	return &Selector{
		controller: controller,
		chooser:    chooser,
		notifier:   notifier,
		store:      store,
		history:    history,
		cfg:        cfg,
	}
}

func (s *Selector) notify(title, body, icon string) {
	notify(s.notifier, s.cfg.Notify.AppName, title, body, icon)
}

// Discover queries every session the controller lists. Per-session query
// failures are replaced by placeholders; only an unreachable controller
// is an error.
func (s *Selector) Discover(ctx context.Context) ([]PlayerSession, error) {
	ids, err := s.controller.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	sessions := make([]PlayerSession, 0, len(ids))
	for _, id := range ids {
		sessions = append(sessions, s.describeSession(ctx, id))
	}
	return sessions, nil
}

func (s *Selector) describeSession(ctx context.Context, id string) PlayerSession {
	session := PlayerSession{ID: id, State: StateUnknown}

	if state, err := s.controller.Status(ctx, id); err == nil {
		session.State = state
	} else {
		log.Debug().Err(err).Str("player", id).Msg("status unavailable")
	}

	field := func(name string) string {
		value, err := s.controller.Metadata(ctx, id, name)
		if err != nil {
			log.Debug().Err(err).Str("player", id).Str("field", name).Msg("metadata unavailable")
			return ""
		}
		return value
	}
	session.Title = field(FieldTitle)
	session.Artist = field(FieldArtist)
	session.URL = field(FieldURL)
	return session
}

func (s *Selector) loadDefault() string {
	id, err := s.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("could not read default player")
		return ""
	}
	return id
}

// activeDefault returns the default session if it was discovered
func activeDefault(sessions []PlayerSession, defaultID string) (PlayerSession, bool) {
	if defaultID == "" {
		return PlayerSession{}, false
	}
	return findSession(sessions, defaultID)
}

func (s *Selector) defaultControls(ctx context.Context, sessions []PlayerSession, defaultID string) *DefaultControls {
	def, ok := activeDefault(sessions, defaultID)
	if !ok {
		return nil
	}

	controls := &DefaultControls{}
	if on, err := s.controller.Shuffle(ctx, def.ID); err == nil {
		controls.Shuffle = &on
	} else {
		log.Debug().Err(err).Str("player", def.ID).Msg("shuffle state unavailable")
	}
	if mode, err := s.controller.LoopMode(ctx, def.ID); err == nil {
		controls.Loop = mode
	} else {
		log.Debug().Err(err).Str("player", def.ID).Msg("loop state unavailable")
	}
	return controls
}

// Run shows the menu until an action completes, the user dismisses it, or
// selector.max_iterations passes have been made. It returns
// ErrNoPlayersAvailable when the controller cannot be reached.
func (s *Selector) Run(ctx context.Context) error {
	for i := 0; i < s.cfg.Selector.MaxIterations; i++ {
		sessions, err := s.Discover(ctx)
		if err != nil {
			log.Error().Err(err).Msg("media control unavailable")
			s.notify("Media", noPlayersNotice, iconGeneric)
			return err
		}
		if len(sessions) == 0 {
			s.notify("Media", noPlayersNotice, iconGeneric)
			return nil
		}

		defaultID := s.loadDefault()
		menu := BuildMenu(Rank(sessions), defaultID, s.defaultControls(ctx, sessions, defaultID))

		choice, err := s.chooser.Choose(ctx, menu.Lines(), s.cfg.chooseOptions())
		if errors.Is(err, ErrNothingChosen) {
			return nil
		}
		if err != nil {
			log.Error().Err(err).Msg("menu unavailable")
			s.notify("Media", "Could not show the player menu", iconError)
			return nil
		}

		action, err := menu.Parse(choice)
		if err != nil {
			log.Debug().Err(err).Msg("ignoring selection")
			return nil
		}

		again, err := s.Apply(ctx, action, sessions, defaultID)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}

	log.Warn().Int("max_iterations", s.cfg.Selector.MaxIterations).Msg("menu shown too many times, giving up")
	return nil
}

// Apply performs action against the sessions of this pass. It reports
// whether the menu should be shown again.
func (s *Selector) Apply(ctx context.Context, action Action, sessions []PlayerSession, defaultID string) (bool, error) {
	log.Debug().Str("action", action.Kind.String()).Str("player", action.SessionID).Msg("applying")

	switch action.Kind {
	case ActionRefresh, ActionNoop:
		return true, nil

	case ActionStopAll:
		s.applyAll(ctx, sessions, CmdStop, "Stopped", func(PlayerSession) bool { return true })
		return false, nil

	case ActionPauseAll:
		s.applyAll(ctx, sessions, CmdPause, "Paused", func(PlayerSession) bool { return true })
		return false, nil

	case ActionResumeAllPaused:
		s.applyAll(ctx, sessions, CmdPlay, "Resumed", func(p PlayerSession) bool { return p.State == StatePaused })
		return false, nil

	case ActionToggleShuffle, ActionCycleRepeat:
		def, ok := activeDefault(sessions, defaultID)
		if !ok {
			log.Info().Err(ErrNoDefaultPlayer).Str("action", action.Kind.String()).Msg("rejected")
			s.notify("Media", "No active default player. Select a player first.", iconError)
			return true, nil
		}
		if action.Kind == ActionToggleShuffle {
			s.toggleShuffle(ctx, def)
		} else {
			s.cycleRepeat(ctx, def)
		}
		return false, nil

	case ActionSelectSession:
		session, ok := findSession(sessions, action.SessionID)
		if !ok {
			log.Debug().Str("player", action.SessionID).Msg("selected player vanished")
			return false, nil
		}
		s.selectSession(ctx, session)
		return false, nil
	}

	return false, nil
}

// applyAll sends command to each session matching want and notifies a summary
func (s *Selector) applyAll(ctx context.Context, sessions []PlayerSession, command TransportCommand, verb string, want func(PlayerSession) bool) {
	targets := lo.Filter(sessions, func(p PlayerSession, _ int) bool { return want(p) })

	done := 0
	for _, p := range targets {
		if err := s.controller.Control(ctx, p.ID, command); err != nil {
			log.Warn().Err(err).Str("player", p.ID).Str("command", string(command)).Msg("transport command failed")
			continue
		}
		done++
	}

	s.notify("Media", fmt.Sprintf("%s %d of %d players", verb, done, len(targets)), iconGeneric)
}

func (s *Selector) toggleShuffle(ctx context.Context, def PlayerSession) {
	on, err := s.controller.Shuffle(ctx, def.ID)
	if err != nil {
		log.Warn().Err(err).Str("player", def.ID).Msg("shuffle state unavailable")
		s.notify(def.GroupedName(), "Shuffle is not supported", iconError)
		return
	}
	if err := s.controller.SetShuffle(ctx, def.ID, !on); err != nil {
		log.Warn().Err(err).Str("player", def.ID).Msg("set shuffle failed")
		s.notify(def.GroupedName(), "Could not change shuffle", iconError)
		return
	}
	s.notify(def.GroupedName(), "Shuffle "+lo.Ternary(!on, "on", "off"), iconFor(def.BaseApp()))
}

func (s *Selector) cycleRepeat(ctx context.Context, def PlayerSession) {
	mode, err := s.controller.LoopMode(ctx, def.ID)
	if err != nil {
		log.Warn().Err(err).Str("player", def.ID).Msg("loop state unavailable")
		s.notify(def.GroupedName(), "Repeat is not supported", iconError)
		return
	}
	next := mode.Next()
	if err := s.controller.SetLoopMode(ctx, def.ID, next); err != nil {
		log.Warn().Err(err).Str("player", def.ID).Msg("set loop failed")
		s.notify(def.GroupedName(), "Could not change repeat", iconError)
		return
	}
	s.notify(def.GroupedName(), "Repeat: "+string(next), iconFor(def.BaseApp()))
}

// selectSession toggles playback on session and makes it the default player
func (s *Selector) selectSession(ctx context.Context, session PlayerSession) {
	if err := s.controller.Control(ctx, session.ID, CmdPlayPause); err != nil {
		log.Warn().Err(err).Str("player", session.ID).Msg("play-pause failed")
	}

	if err := s.store.Save(session.ID); err != nil {
		log.Warn().Err(err).Str("player", session.ID).Msg("could not save default player")
	}

	if s.history != nil {
		entry := HistoryEntry{SessionID: session.ID, Label: Describe(session)}
		if err := s.history.Add(entry, s.cfg.History.Limit); err != nil {
			log.Warn().Err(err).Msg("could not record history")
		}
	}

	state, err := s.controller.Status(ctx, session.ID)
	if err != nil {
		// Assume the toggle took effect
		state = lo.Ternary(session.State == StatePlaying, StatePaused, StatePlaying)
	}

	track := lo.CoalesceOrEmpty(session.Title, unknownTitle)
	if session.Artist != "" {
		track = session.Artist + " - " + track
	}
	s.notify(session.GroupedName(), state.String()+": "+track, iconFor(session.BaseApp()))
}
