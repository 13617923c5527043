package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog/log"
)

// Notifier sends a desktop notification
type Notifier interface {
	Notify(app, title, body, icon string) error
}

// BeeepNotifier sends notifications through beeep (D-Bus, with its own
// notify-send fallback)
type BeeepNotifier struct{}

func (BeeepNotifier) Notify(app, title, body, icon string) error {
	beeep.AppName = app
	if err := beeep.Notify(title, body, icon); err != nil {
		return fmt.Errorf("beeep notify: %w", err)
	}
	return nil
}

// NotifySendNotifier shells out to notify-send
type NotifySendNotifier struct {
	run commandRunner
}

func NewNotifySendNotifier(timeout time.Duration) *NotifySendNotifier {
	return &NotifySendNotifier{run: cmderRunner(timeout)}
}

func (n *NotifySendNotifier) Notify(app, title, body, icon string) error {
	args := []string{"notify-send", "-a", app}
	if icon != "" {
		args = append(args, "-i", icon)
	}
	args = append(args, title, body)

	res := n.run(context.Background(), nil, args...)
	if res.Err != nil {
		return fmt.Errorf("notify-send failed: %w", res.Err)
	}
	return nil
}

// NopNotifier drops notifications
type NopNotifier struct{}

func (NopNotifier) Notify(_, _, _, _ string) error { return nil }

// NewNotifier creates the configured notification backend
func NewNotifier(cfg Config) Notifier {
	switch cfg.Notify.Backend {
	case "notify-send":
		return NewNotifySendNotifier(cfg.commandTimeout())
	case "none":
		return NopNotifier{}
	default:
		return BeeepNotifier{}
	}
}

// Icon theme names
const (
	iconGeneric = "audio-headphones"
	iconError   = "dialog-error"
)

// iconFor maps a base application name to an icon theme name
func iconFor(base string) string {
	base = strings.ToLower(base)
	switch {
	case base == "spotify":
		return "spotify"
	case base == "firefox":
		return "firefox"
	case strings.HasPrefix(base, "chrome"), strings.HasPrefix(base, "chromium"):
		return "chrome"
	case base == "vlc":
		return "vlc"
	default:
		return iconGeneric
	}
}

// notify sends and logs failures; a lost notification never aborts the flow
func notify(n Notifier, app, title, body, icon string) {
	if err := n.Notify(app, title, body, icon); err != nil {
		log.Warn().Err(err).Str("title", title).Msg("notification failed")
	}
}
