package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JAMDECK_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8590", cfg.Backend.BaseURL)
	require.Equal(t, 2*time.Second, cfg.Backend.PollInterval())
	require.Equal(t, 120, cfg.Session.DefaultBPM)
	require.NotEmpty(t, cfg.Database.Path)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[backend]
base_url = "http://music.local:9000"
poll_interval_ms = 500

[session]
default_bpm = 140
`), 0o644))
	t.Setenv("JAMDECK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://music.local:9000", cfg.Backend.BaseURL)
	require.Equal(t, 500*time.Millisecond, cfg.Backend.PollInterval())
	require.Equal(t, 140, cfg.Session.DefaultBPM)

	// Env beats file.
	t.Setenv("JAMDECK_SESSION_DEFAULT_BPM", "90")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, 90, cfg.Session.DefaultBPM)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("JAMDECK_CONFIG", path)

	want := Config{
		Backend:  BackendConfig{BaseURL: "http://localhost:7777", PollIntervalMS: 1500},
		Database: DatabaseConfig{Path: filepath.Join(t.TempDir(), "j.db")},
		Session:  SessionConfig{DefaultBPM: 132},
	}
	require.NoError(t, Save(want))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}
