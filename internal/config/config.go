package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"
)

// DefaultPollInterval applies when the config file is absent or carries a
// non-positive poll_interval_seconds.
const DefaultPollInterval = 300 * time.Second

// Watch modes.
const (
	ModeAll      = "all"      // every open PR in the repository
	ModeInvolved = "involved" // PRs you authored or are asked to review
)

var repoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*/[A-Za-z0-9._-]+$`)

// Config is the watch list, re-read from disk at the top of every poll
// cycle so external edits take effect within one interval. It is passed
// down as a value for the cycle, never shared.
type Config struct {
	Repos           []string `json:"repos"`
	IntervalSeconds int      `json:"poll_interval_seconds"`
	Mode            string   `json:"mode"`

	PollInterval time.Duration `json:"-"`
}

// Load reads the watch config. A missing file is an empty watch list, not
// an error; malformed JSON or an invalid repo identifier is an error and
// the caller keeps whatever config it loaded last.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Config{}
		cfg.setDefaults()
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("validate config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.IntervalSeconds > 0 {
		c.PollInterval = time.Duration(c.IntervalSeconds) * time.Second
	} else {
		c.PollInterval = DefaultPollInterval
	}
	if c.Mode == "" {
		c.Mode = ModeAll
	}
	c.Repos = dedupe(c.Repos)
}

func (c *Config) validate() error {
	for i, repo := range c.Repos {
		if !repoPattern.MatchString(repo) {
			return fmt.Errorf("repos[%d]: %q is not owner/name", i, repo)
		}
	}
	switch c.Mode {
	case ModeAll, ModeInvolved:
	default:
		return fmt.Errorf("invalid mode %q (%s|%s)", c.Mode, ModeAll, ModeInvolved)
	}
	return nil
}

// dedupe drops repeated repos, keeping the first occurrence in order.
func dedupe(repos []string) []string {
	seen := make(map[string]bool, len(repos))
	out := repos[:0]
	for _, r := range repos {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// ValidRepo reports whether id looks like owner/name.
func ValidRepo(id string) bool {
	return repoPattern.MatchString(id)
}
