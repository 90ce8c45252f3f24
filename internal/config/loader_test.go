package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadWritesAndUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, resolved, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, path, resolved)
	require.Equal(t, Default(), cfg)

	// A default file is written for the next run.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":6000\"\nmax_sessions: 5\n"), 0o600))

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, ":6000", cfg.ListenAddr)
	require.Equal(t, 5, cfg.MaxSessions)
	// Untouched keys keep their defaults.
	require.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":6000\"\n"), 0o600))

	t.Setenv("CHATAPP_LISTEN_ADDR", ":7000")
	t.Setenv("CHATAPP_LOG_LEVEL", "debug")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.ListenAddr)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestUpdateFromSkipsZeroValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{ListenAddr: ":9999", ShutdownTimeout: time.Second})

	require.Equal(t, ":9999", cfg.ListenAddr)
	require.Equal(t, time.Second, cfg.ShutdownTimeout)
	require.Equal(t, Default().HTTPAddr, cfg.HTTPAddr)
	require.Equal(t, Default().MaxLineBytes, cfg.MaxLineBytes)
}
