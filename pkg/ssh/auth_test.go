package ssh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSSHConfigPassword(t *testing.T) {
	cfg, err := buildSSHConfig(Identity{User: "bench", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "bench", cfg.User)
	assert.Len(t, cfg.Auth, 1)
	assert.Equal(t, dialTimeout, cfg.Timeout)
}

func TestBuildSSHConfigRequiresUser(t *testing.T) {
	_, err := buildSSHConfig(Identity{Password: "secret"})
	assert.Error(t, err)
}

func TestBuildSSHConfigRequiresCredentials(t *testing.T) {
	_, err := buildSSHConfig(Identity{User: "bench"})
	assert.Error(t, err)
}

func TestBuildSSHConfigBadKeyFile(t *testing.T) {
	_, err := buildSSHConfig(Identity{
		User:    "bench",
		KeyPath: filepath.Join(t.TempDir(), "missing_key"),
	})
	assert.Error(t, err)

	badKey := filepath.Join(t.TempDir(), "bad_key")
	require.NoError(t, os.WriteFile(badKey, []byte("not a key"), 0600))
	_, err = buildSSHConfig(Identity{User: "bench", KeyPath: badKey})
	assert.Error(t, err)
}

func TestExpandHomeDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home+"/.ssh/id_rsa", expandHomeDir("~/.ssh/id_rsa"))
	assert.Equal(t, "/etc/key", expandHomeDir("/etc/key"))
	assert.Equal(t, "", expandHomeDir(""))
}

func TestEndpointAddr(t *testing.T) {
	ep := Endpoint{Host: "10.0.0.5", Port: 2022}
	assert.Equal(t, "10.0.0.5:2022", ep.Addr())
}
