package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultListenAddr, s.ListenAddr)
	require.Equal(t, DefaultMaxConcurrentRequests, s.MaxConcurrentRequests)
	require.Equal(t, int64(DefaultMaxUploadBytes), s.MaxUploadBytes)
	require.Equal(t, DefaultTopN, s.TopN)
	require.Equal(t, DefaultSessionIdleTTL, s.SessionIdleTTL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tabdash.yaml")
	body := "listen_addr: \":9090\"\ntop_n: 10\nsession_idle_ttl: 10m\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", s.ListenAddr)
	require.Equal(t, 10, s.TopN)
	require.Equal(t, 10*time.Minute, s.SessionIdleTTL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tabdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("top_n: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
