package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONDUIT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := Load()
	require.Error(t, err, "an explicit config file must exist")

	t.Setenv("CONDUIT_CONFIG", "")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3333", c.Server.Addr)
	assert.Equal(t, ":9999", c.Server.DiagAddr)
	assert.False(t, c.Server.Routes)
	assert.Equal(t, "http://localhost:3333/api", c.Client.BaseURL)
	assert.Equal(t, 10*time.Second, c.Client.Timeout)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conduit.yaml")
	data := []byte("server:\n  addr: \":4000\"\nclient:\n  timeout: 3s\nstorage:\n  token_file: /tmp/session.json\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("CONDUIT_CONFIG", path)
	t.Setenv("CONDUIT_SERVER_DIAG_ADDR", ":9100")
	t.Setenv("CONDUIT_LOG_LEVEL", "debug")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":4000", c.Server.Addr)
	assert.Equal(t, ":9100", c.Server.DiagAddr)
	assert.Equal(t, 3*time.Second, c.Client.Timeout)
	assert.Equal(t, "/tmp/session.json", c.Storage.TokenFile)
	assert.Equal(t, "debug", c.Log.Level)
}
