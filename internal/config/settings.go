package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings are process-level knobs loaded once at startup, separate from
// the live-reloaded watch config.
type Settings struct {
	LogFile string        `yaml:"log_file"`
	Log     LogSettings   `yaml:"log"`
	TUI     TUISettings   `yaml:"tui"`
	Fetch   FetchSettings `yaml:"fetch"`
}

type LogSettings struct {
	Level string `yaml:"level"`
}

type TUISettings struct {
	RefreshInterval time.Duration `yaml:"-"`
	RawInterval     string        `yaml:"refresh_interval"`
}

type FetchSettings struct {
	Timeout    time.Duration `yaml:"-"`
	RawTimeout string        `yaml:"timeout"`
}

// LoadSettings reads the settings file. A missing file yields defaults.
func LoadSettings(path string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}

	if err := s.setDefaults(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) setDefaults() error {
	if s.LogFile == "" {
		s.LogFile = defaultLogFile()
	}
	if s.Log.Level == "" {
		s.Log.Level = "info"
	}

	if s.TUI.RawInterval == "" {
		s.TUI.RawInterval = "2s"
	}
	refresh, err := time.ParseDuration(s.TUI.RawInterval)
	if err != nil {
		return fmt.Errorf("parse tui.refresh_interval %q: %w", s.TUI.RawInterval, err)
	}
	if refresh <= 0 {
		return fmt.Errorf("tui.refresh_interval must be positive, got %s", s.TUI.RawInterval)
	}
	s.TUI.RefreshInterval = refresh

	if s.Fetch.RawTimeout == "" {
		s.Fetch.RawTimeout = "60s"
	}
	timeout, err := time.ParseDuration(s.Fetch.RawTimeout)
	if err != nil {
		return fmt.Errorf("parse fetch.timeout %q: %w", s.Fetch.RawTimeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %s", s.Fetch.RawTimeout)
	}
	s.Fetch.Timeout = timeout

	return nil
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gh-pr-watch.log"
	}
	return home + "/.local/state/gh-pr-watch/gh-pr-watch.log"
}
