package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	require.Equal(t, 20, cfg.Chat.HistoryLimit)
	require.Equal(t, ":6835", cfg.ListenAddr())
	require.False(t, cfg.ChatEnabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_SERVER_PORT", "9000")
	t.Setenv("FOLIO_SESSION_TTL", "2h")
	t.Setenv("FOLIO_CHAT_API_KEY", "abc")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ListenAddr())
	require.Equal(t, 2*time.Hour, cfg.Session.TTL)
	require.True(t, cfg.ChatEnabled())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	err := os.WriteFile(path, []byte("database:\n  dsn: other.db\nserver:\n  production: true\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "other.db", cfg.Database.DSN)
	require.True(t, cfg.Server.Production)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("FOLIO_DATABASE_DRIVER", "postgres")

	_, err := Load("")
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.NotValid))
}
