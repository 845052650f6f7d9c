package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileIsEmptyWatchList(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))

	require.NoError(t, err)
	assert.Empty(t, cfg.Repos)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, ModeAll, cfg.Mode)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"repos": [`)

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `{"repos": ["acme/widgets", "acme/gadgets"], "poll_interval_seconds": 120}`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"acme/widgets", "acme/gadgets"}, cfg.Repos)
	assert.Equal(t, 2*time.Minute, cfg.PollInterval)
}

func TestLoad_DuplicatesKeepFirstOccurrence(t *testing.T) {
	path := writeConfig(t, `{"repos": ["acme/widgets", "acme/gadgets", "acme/widgets"]}`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"acme/widgets", "acme/gadgets"}, cfg.Repos)
}

func TestLoad_IntervalFallback(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing", `{"repos": []}`},
		{"zero", `{"repos": [], "poll_interval_seconds": 0}`},
		{"negative", `{"repos": [], "poll_interval_seconds": -5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))

			require.NoError(t, err)
			assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
		})
	}
}

func TestLoad_RejectsBadRepoIdentifier(t *testing.T) {
	tests := []string{
		`{"repos": ["not-a-repo"]}`,
		`{"repos": ["acme/widgets/extra"]}`,
		`{"repos": [""]}`,
		`{"repos": ["/widgets"]}`,
	}

	for _, content := range tests {
		_, err := Load(writeConfig(t, content))
		assert.Error(t, err, "content: %s", content)
	}
}

func TestLoad_RejectsUnknownMode(t *testing.T) {
	_, err := Load(writeConfig(t, `{"repos": [], "mode": "everything"}`))

	assert.Error(t, err)
}

func TestValidRepo(t *testing.T) {
	assert.True(t, ValidRepo("acme/widgets"))
	assert.True(t, ValidRepo("acme/widgets.io"))
	assert.False(t, ValidRepo("acme"))
	assert.False(t, ValidRepo("acme/"))
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, 2*time.Second, s.TUI.RefreshInterval)
	assert.Equal(t, time.Minute, s.Fetch.Timeout)
	assert.NotEmpty(t, s.LogFile)
}

func TestLoadSettings_Parse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\nfetch:\n  timeout: 30s\n"), 0o644))

	s, err := LoadSettings(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, 30*time.Second, s.Fetch.Timeout)
}

func TestLoadSettings_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tui:\n  refresh_interval: soon\n"), 0o644))

	_, err := LoadSettings(path)

	assert.Error(t, err)
}
