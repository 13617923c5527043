package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// PlayerctlController implements MediaController using playerctl
type PlayerctlController struct {
	run      commandRunner
	lookPath func(string) (string, error)
}

// NewPlayerctlController creates a controller whose playerctl calls are
// each bounded by timeout
func NewPlayerctlController(timeout time.Duration) *PlayerctlController {
	return &PlayerctlController{
		run:      cmderRunner(timeout),
		lookPath: lookPath,
	}
}

func (p *PlayerctlController) playerctl(ctx context.Context, args ...string) commandResult {
	return p.run(ctx, nil, append([]string{"playerctl"}, args...)...)
}

// query runs a per-player playerctl command and returns its trimmed stdout
func (p *PlayerctlController) query(ctx context.Context, id string, args ...string) (string, error) {
	res := p.playerctl(ctx, append([]string{"--player", id}, args...)...)
	if res.Err != nil {
		return "", fmt.Errorf("playerctl %s failed for %s: %w", strings.Join(args, " "), id, res.Err)
	}
	return strings.TrimSpace(res.StdOut), nil
}

func (p *PlayerctlController) ListSessions(ctx context.Context) ([]string, error) {
	if _, err := p.lookPath("playerctl"); err != nil {
		return nil, fmt.Errorf("%w: playerctl not installed: %v", ErrNoPlayersAvailable, err)
	}

	res := p.playerctl(ctx, "--list-all")
	if res.Err != nil {
		// playerctl exits non-zero when the bus is fine but empty
		if strings.Contains(res.Combined, "No players found") {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: playerctl --list-all: %v", ErrNoPlayersAvailable, res.Err)
	}

	ids := lo.Filter(lo.Map(strings.Split(res.StdOut, "\n"), func(line string, _ int) string {
		return strings.TrimSpace(line)
	}), func(line string, _ int) bool {
		return line != "" && line != "No players found"
	})
	return lo.Uniq(ids), nil
}

func (p *PlayerctlController) Status(ctx context.Context, id string) (PlaybackState, error) {
	out, err := p.query(ctx, id, "status")
	if err != nil {
		return StateUnknown, err
	}
	return parsePlaybackState(out), nil
}

func (p *PlayerctlController) Metadata(ctx context.Context, id, field string) (string, error) {
	return p.query(ctx, id, "metadata", field)
}

func (p *PlayerctlController) Position(ctx context.Context, id string) (float64, error) {
	out, err := p.query(ctx, id, "position")
	if err != nil {
		return 0, err
	}
	position, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse position %q: %w", out, err)
	}
	return position, nil
}

func (p *PlayerctlController) Control(ctx context.Context, id string, command TransportCommand) error {
	_, err := p.query(ctx, id, string(command))
	return err
}

func (p *PlayerctlController) Shuffle(ctx context.Context, id string) (bool, error) {
	out, err := p.query(ctx, id, "shuffle")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(out) {
	case "on", "true":
		return true, nil
	case "off", "false":
		return false, nil
	}
	return false, fmt.Errorf("unexpected shuffle state %q", out)
}

func (p *PlayerctlController) SetShuffle(ctx context.Context, id string, on bool) error {
	_, err := p.query(ctx, id, "shuffle", lo.Ternary(on, "On", "Off"))
	return err
}

func (p *PlayerctlController) LoopMode(ctx context.Context, id string) (LoopMode, error) {
	out, err := p.query(ctx, id, "loop")
	if err != nil {
		return "", err
	}
	mode, ok := parseLoopMode(out)
	if !ok {
		return "", errors.New("unexpected loop status " + strconv.Quote(out))
	}
	return mode, nil
}

func (p *PlayerctlController) SetLoopMode(ctx context.Context, id string, mode LoopMode) error {
	_, err := p.query(ctx, id, "loop", string(mode))
	return err
}
