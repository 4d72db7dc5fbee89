package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, "VIEWPREFS_PORT", "VIEWPREFS_DB_SERVER", "VIEWPREFS_CACHE", "VIEWPREFS_DB_PING_TIMEOUT",
		"VIEWPREFS_STORE_MAX_AGE", "VIEWPREFS_AUTH_SIGNING_KEY", "VIEWPREFS_AUTH_SIGNING_METHOD", "VIEWPREFS_AUTH_TOKEN_LOOKUP")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "localhost:8978", cfg.Server.Address())
	require.Equal(t, "sqlite", cfg.Persistence.GetDriver())
	require.Equal(t, 5*time.Second, cfg.Persistence.GetPingTimeout())
	require.Contains(t, cfg.Persistence.GetServer(), "viewprefs.db")
	require.False(t, cfg.CacheEnabled)
	require.Equal(t, 30*time.Second, cfg.StoreMaxAge)
	require.False(t, cfg.Auth.Enabled())
	require.Equal(t, "HS256", cfg.Auth.GetSigningMethod())
	require.Equal(t, "header:Authorization", cfg.Auth.GetTokenLookup())
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	unsetenv(t, "VIEWPREFS_PORT", "VIEWPREFS_CACHE", "VIEWPREFS_DB_PING_TIMEOUT")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VIEWPREFS_PORT=9090\nVIEWPREFS_CACHE=true\nVIEWPREFS_DB_PING_TIMEOUT=2s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.True(t, cfg.CacheEnabled)
	require.Equal(t, 2*time.Second, cfg.Persistence.PingTimeout)
}

func TestLoad_InvalidPingTimeout(t *testing.T) {
	t.Setenv("VIEWPREFS_DB_PING_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoad_AuthSettings(t *testing.T) {
	unsetenv(t, "VIEWPREFS_AUTH_SIGNING_KEY", "VIEWPREFS_AUTH_AUDIENCE", "VIEWPREFS_AUTH_ISSUER")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VIEWPREFS_AUTH_SIGNING_KEY=s3cret\nVIEWPREFS_AUTH_AUDIENCE=crm, admin\nVIEWPREFS_AUTH_ISSUER=identity\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Auth.Enabled())
	require.Equal(t, "s3cret", cfg.Auth.GetSigningKey())
	require.Equal(t, []string{"crm", "admin"}, cfg.Auth.GetAudience())
	require.Equal(t, "identity", cfg.Auth.GetIssuer())
}
