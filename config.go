package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Backend string `mapstructure:"backend"`
	Chooser struct {
		Command   string `mapstructure:"command"`
		Width     int    `mapstructure:"width"`
		Lines     int    `mapstructure:"lines"`
		Alignment string `mapstructure:"alignment"`
		Prompt    string `mapstructure:"prompt"`
	} `mapstructure:"chooser"`
	Notify struct {
		Backend string `mapstructure:"backend"`
		AppName string `mapstructure:"app_name"`
	} `mapstructure:"notify"`
	State struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"state"`
	History struct {
		Enabled bool `mapstructure:"enabled"`
		Limit   int  `mapstructure:"limit"`
	} `mapstructure:"history"`
	Selector struct {
		MaxIterations int `mapstructure:"max_iterations"`
	} `mapstructure:"selector"`
	Status struct {
		MaxLength      int `mapstructure:"max_length"`
		ProgressLength int `mapstructure:"progress_length"`
		IntervalMs     int `mapstructure:"interval_ms"`
	} `mapstructure:"status"`
	Timing struct {
		CommandTimeoutMs int `mapstructure:"command_timeout_ms"`
	} `mapstructure:"timing"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

func (c Config) commandTimeout() time.Duration {
	return time.Duration(c.Timing.CommandTimeoutMs) * time.Millisecond
}

func (c Config) chooseOptions() ChooseOptions {
	return ChooseOptions{
		Prompt:    c.Chooser.Prompt,
		Width:     c.Chooser.Width,
		Lines:     c.Chooser.Lines,
		Alignment: c.Chooser.Alignment,
	}
}

func (c Config) stateDir() string {
	if c.State.Dir != "" {
		return c.State.Dir
	}
	return CacheDir()
}

// defaultConfig is the configuration used when nothing is set
func defaultConfig() Config {
	var cfg Config
	cfg.Backend = "playerctl"
	cfg.Chooser.Command = "auto"
	cfg.Chooser.Width = 40
	cfg.Chooser.Lines = 12
	cfg.Chooser.Alignment = "left"
	cfg.Chooser.Prompt = "Media"
	cfg.Notify.Backend = "beeep"
	cfg.Notify.AppName = "mediapick"
	cfg.History.Enabled = true
	cfg.History.Limit = 20
	cfg.Selector.MaxIterations = 10
	cfg.Status.MaxLength = 35
	cfg.Status.ProgressLength = 5
	cfg.Status.IntervalMs = 1000
	cfg.Timing.CommandTimeoutMs = 3000
	cfg.Logging.Level = "warn"
	return cfg
}

// SafeConfig wraps Config with thread-safe access
type SafeConfig struct {
	mu  sync.RWMutex
	cfg Config
}

// Get returns a copy of the current config (thread-safe read)
func (sc *SafeConfig) Get() Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.cfg
}

// Set updates the config (thread-safe write)
func (sc *SafeConfig) Set(cfg Config) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cfg = cfg
}

var config = &SafeConfig{cfg: defaultConfig()}

// configError describes one invalid config field
type configError struct {
	field   string
	message string
}

func (e configError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

func oneOf(field, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return configError{field: field, message: fmt.Sprintf("must be one of %s (got '%s')", strings.Join(allowed, ", "), value)}
}

func inRange(field string, value, min, max int) error {
	if value >= min && value <= max {
		return nil
	}
	return configError{field: field, message: fmt.Sprintf("must be between %d and %d (got %d)", min, max, value)}
}

// validateConfig checks every field and returns one error per invalid field
func validateConfig(cfg *Config) []error {
	checks := []error{
		oneOf("backend", cfg.Backend, "playerctl", "dbus"),
		oneOf("chooser.command", cfg.Chooser.Command, "auto", "rofi", "wofi", "fuzzel", "dmenu", "tui"),
		inRange("chooser.width", cfg.Chooser.Width, 10, 100),
		inRange("chooser.lines", cfg.Chooser.Lines, 1, 50),
		oneOf("chooser.alignment", cfg.Chooser.Alignment, "left", "center", "right"),
		oneOf("notify.backend", cfg.Notify.Backend, "beeep", "notify-send", "none"),
		inRange("history.limit", cfg.History.Limit, 1, 1000),
		inRange("selector.max_iterations", cfg.Selector.MaxIterations, 1, 100),
		inRange("status.max_length", cfg.Status.MaxLength, 5, 500),
		inRange("status.progress_length", cfg.Status.ProgressLength, 1, 50),
		inRange("status.interval_ms", cfg.Status.IntervalMs, 100, 60000),
		inRange("timing.command_timeout_ms", cfg.Timing.CommandTimeoutMs, 100, 60000),
	}
	if cfg.Notify.AppName == "" {
		checks = append(checks, configError{field: "notify.app_name", message: "must not be empty"})
	}
	if cfg.Chooser.Prompt == "" {
		checks = append(checks, configError{field: "chooser.prompt", message: "must not be empty"})
	}
	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil || cfg.Logging.Level == "" {
		checks = append(checks, configError{field: "logging.level", message: fmt.Sprintf("invalid level '%s'", cfg.Logging.Level)})
	}

	var errs []error
	for _, err := range checks {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// applyDefaultsForInvalidFields resets each field named in errs to its default
func applyDefaultsForInvalidFields(cfg *Config, errs []error) {
	def := defaultConfig()
	for _, err := range errs {
		var ce configError
		if !errors.As(err, &ce) {
			continue
		}
		switch ce.field {
		case "backend":
			cfg.Backend = def.Backend
		case "chooser.command":
			cfg.Chooser.Command = def.Chooser.Command
		case "chooser.width":
			cfg.Chooser.Width = def.Chooser.Width
		case "chooser.lines":
			cfg.Chooser.Lines = def.Chooser.Lines
		case "chooser.alignment":
			cfg.Chooser.Alignment = def.Chooser.Alignment
		case "chooser.prompt":
			cfg.Chooser.Prompt = def.Chooser.Prompt
		case "notify.backend":
			cfg.Notify.Backend = def.Notify.Backend
		case "notify.app_name":
			cfg.Notify.AppName = def.Notify.AppName
		case "history.limit":
			cfg.History.Limit = def.History.Limit
		case "selector.max_iterations":
			cfg.Selector.MaxIterations = def.Selector.MaxIterations
		case "status.max_length":
			cfg.Status.MaxLength = def.Status.MaxLength
		case "status.progress_length":
			cfg.Status.ProgressLength = def.Status.ProgressLength
		case "status.interval_ms":
			cfg.Status.IntervalMs = def.Status.IntervalMs
		case "timing.command_timeout_ms":
			cfg.Timing.CommandTimeoutMs = def.Timing.CommandTimeoutMs
		case "logging.level":
			cfg.Logging.Level = def.Logging.Level
		}
	}
}

// printConfigWarnings logs each invalid field; defaults are used instead
func printConfigWarnings(errs []error) {
	for _, err := range errs {
		log.Warn().Err(err).Msg("invalid config value, using default")
	}
}

func setDefaults(v *viper.Viper) {
	def := defaultConfig()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("chooser.command", def.Chooser.Command)
	v.SetDefault("chooser.width", def.Chooser.Width)
	v.SetDefault("chooser.lines", def.Chooser.Lines)
	v.SetDefault("chooser.alignment", def.Chooser.Alignment)
	v.SetDefault("chooser.prompt", def.Chooser.Prompt)
	v.SetDefault("notify.backend", def.Notify.Backend)
	v.SetDefault("notify.app_name", def.Notify.AppName)
	v.SetDefault("state.dir", "")
	v.SetDefault("history.enabled", def.History.Enabled)
	v.SetDefault("history.limit", def.History.Limit)
	v.SetDefault("selector.max_iterations", def.Selector.MaxIterations)
	v.SetDefault("status.max_length", def.Status.MaxLength)
	v.SetDefault("status.progress_length", def.Status.ProgressLength)
	v.SetDefault("status.interval_ms", def.Status.IntervalMs)
	v.SetDefault("timing.command_timeout_ms", def.Timing.CommandTimeoutMs)
	v.SetDefault("logging.level", def.Logging.Level)
}

// loadConfig unmarshals v, validates, and falls back to defaults per field
func loadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaultConfig(), fmt.Errorf("error parsing config: %w", err)
	}
	if errs := validateConfig(&cfg); len(errs) > 0 {
		printConfigWarnings(errs)
		applyDefaultsForInvalidFields(&cfg, errs)
	}
	return cfg, nil
}

// initConfig reads config from configFile, or config.yaml under
// $XDG_CONFIG_HOME/mediapick, and MEDIAPICK_* environment variables
func initConfig(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check XDG_CONFIG_HOME first, fallback to ~/.config
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			homeDir, err := os.UserHomeDir()
			if err == nil {
				configHome = filepath.Join(homeDir, ".config")
			}
		}
		if configHome != "" {
			v.AddConfigPath(filepath.Join(configHome, "mediapick"))
		}
	}

	v.SetEnvPrefix("MEDIAPICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return v, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := loadConfig(v)
	config.Set(cfg)
	return v, err
}

// watchConfig reloads config on file changes and calls onChange afterwards.
// Changes that fail to parse keep the previous config.
func watchConfig(v *viper.Viper, onChange func()) {
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := loadConfig(v)
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("config reload failed")
			return
		}
		config.Set(cfg)
		log.Debug().Str("file", e.Name).Str("op", e.Op.String()).Msg("config reloaded")
		if onChange != nil {
			onChange()
		}
	})
	v.WatchConfig()
}
