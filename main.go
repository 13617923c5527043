package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Params struct {
	Verbose bool   `short:"v" optional:"true" help:"Enable debug logging."`
	Config  string `optional:"true" help:"Path to a config file (default $XDG_CONFIG_HOME/mediapick/config.yaml)."`
}

type StatusParams struct {
	Player  string `short:"p" optional:"true" help:"Player to show (default: the default player, else the best-ranked one)."`
	Follow  bool   `short:"f" optional:"true" help:"Keep running and print a line whenever the output changes."`
	Verbose bool   `short:"v" optional:"true" help:"Enable debug logging."`
	Config  string `optional:"true" help:"Path to a config file."`
}

type HistoryParams struct {
	Limit   int    `short:"n" optional:"true" help:"Number of entries to show." default:"10"`
	Verbose bool   `short:"v" optional:"true" help:"Enable debug logging."`
	Config  string `optional:"true" help:"Path to a config file."`
}

func main() {
	boa.CmdT[Params]{
		Use:         "mediapick",
		Short:       "Pick and control media players from a menu",
		Long:        "mediapick lists the running MPRIS players in rofi (or another dmenu-style menu), ranked by playback state, and applies the chosen action. The chosen player becomes the default player.",
		Version:     appVersion(),
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			os.Exit(runSelect(params))
		},
		SubCmds: []*cobra.Command{
			statusCmd(),
			historyCmd(),
		},
	}.Run()
}

func defaultParamEnricher() boa.ParamEnricher {
	return boa.ParamEnricherCombine(
		boa.ParamEnricherBool,
		boa.ParamEnricherName,
		boa.ParamEnricherShort,
	)
}

func statusCmd() *cobra.Command {
	return boa.CmdT[StatusParams]{
		Use:         "status",
		Short:       "Print a waybar custom module line for the current player",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *StatusParams, cmd *cobra.Command, args []string) {
			os.Exit(runStatus(params, os.Stdout))
		},
	}.ToCobra()
}

func historyCmd() *cobra.Command {
	return boa.CmdT[HistoryParams]{
		Use:         "history",
		Short:       "Show recently selected players",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *HistoryParams, cmd *cobra.Command, args []string) {
			os.Exit(runHistory(params, os.Stdout))
		},
	}.ToCobra()
}

func appVersion() string {
	bi, hasBuildInfo := debug.ReadBuildInfo()
	if !hasBuildInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}

// setup loads config and configures logging for one command
func setup(configFile string, verbose bool) (*viper.Viper, Config, error) {
	v, err := initConfig(configFile)
	cfg := config.Get()
	setupLogger(os.Stderr, cfg.Logging.Level, verbose)
	return v, cfg, err
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openHistory returns nil when history is disabled or unavailable; the
// selector works without it
func openHistory(cfg Config) *HistoryStore {
	if !cfg.History.Enabled {
		return nil
	}
	dir := cfg.stateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Msg("could not create state dir")
		return nil
	}
	store, err := OpenHistoryStore(filepath.Join(dir, "history.db"))
	if err != nil {
		log.Warn().Err(err).Msg("history unavailable")
		return nil
	}
	return store
}

func newSelector(cfg Config, history *HistoryStore) *Selector {
	return NewSelector(
		NewMediaController(cfg),
		NewChooser(cfg.Chooser.Command),
		NewNotifier(cfg),
		NewDefaultPlayerStore(cfg.stateDir()),
		history,
		cfg,
	)
}

func runSelect(params *Params) int {
	_, cfg, err := setup(params.Config, params.Verbose)
	if err != nil {
		log.Warn().Err(err).Msg("using default config")
	}

	history := openHistory(cfg)
	if history != nil {
		defer history.Close()
	}

	ctx, stop := signalContext()
	defer stop()

	return selectExitCode(newSelector(cfg, history).Run(ctx))
}

// selectExitCode is 1 only when no media-control interface could be reached
func selectExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrNoPlayersAvailable) {
		return 1
	}
	log.Error().Err(err).Msg("selector failed")
	return 0
}

func runStatus(params *StatusParams, w io.Writer) int {
	v, cfg, err := setup(params.Config, params.Verbose)
	if err != nil {
		log.Error().Err(err).Msg("config")
		return 1
	}

	module := NewStatusModule(newSelector(cfg, nil), params.Player)

	ctx, stop := signalContext()
	defer stop()

	if !params.Follow {
		if err := module.Once(ctx, w, cfg); err != nil {
			log.Error().Err(err).Msg("write status")
			return 1
		}
		return 0
	}

	reload := make(chan struct{}, 1)
	if v.ConfigFileUsed() != "" {
		watchConfig(v, func() {
			select {
			case reload <- struct{}{}:
			default:
				// Channel full, skip notification
			}
		})
	}

	if err := module.Follow(ctx, w, reload); err != nil {
		log.Error().Err(err).Msg("write status")
		return 1
	}
	// waybar clears the module on an empty line
	fmt.Fprintln(w)
	return 0
}

func runHistory(params *HistoryParams, w io.Writer) int {
	_, cfg, err := setup(params.Config, params.Verbose)
	if err != nil {
		log.Error().Err(err).Msg("config")
		return 1
	}
	if !cfg.History.Enabled {
		log.Error().Err(ErrHistoryDisabled).Msg("history")
		return 1
	}

	store := openHistory(cfg)
	if store == nil {
		return 1
	}
	defer store.Close()

	entries, err := store.Recent(params.Limit)
	if err != nil {
		log.Error().Err(err).Msg("read history")
		return 1
	}
	renderHistory(w, entries)
	return 0
}

// renderHistory prints entries as a table, newest first
func renderHistory(w io.Writer, entries []HistoryEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Player", "Label", "Selected"})
	for i, e := range entries {
		t.AppendRow(table.Row{i + 1, e.SessionID, e.Label, e.SelectedAt.Local().Format(time.DateTime)})
	}
	t.Render()
}
