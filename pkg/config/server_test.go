package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadServerConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 20.0, cfg.RateLimit)
	assert.Equal(t, 40, cfg.RateBurst)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
}

func TestLoadServerConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9000\nlog_level: debug\ncache_ttl: 2d\n"), 0o644))

	t.Setenv("HUBCONN_PORT", "9100")

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 48*time.Hour, cfg.CacheTTL)
}

func TestLoadServerConfigValidation(t *testing.T) {
	t.Chdir(t.TempDir())

	cases := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port", key: "HUBCONN_PORT", val: "70000"},
		{name: "log_level", key: "HUBCONN_LOG_LEVEL", val: "loud"},
		{name: "rate_limit", key: "HUBCONN_RATE_LIMIT", val: "-1"},
		{name: "duration", key: "HUBCONN_READ_TIMEOUT", val: "later"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := LoadServerConfig("")
			require.Error(t, err)
		})
	}
}
