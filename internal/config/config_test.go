package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "127.0.0.1:4242", cfg.Addr())
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rowd.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"port": 5555,
		"log_level": "debug",
		"users": {"alice": "pw"}
	}`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Address, "missing fields keep defaults")
	assert.Equal(t, uint16(5555), cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, map[string]string{"alice": "pw"}, cfg.Users)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))
	_, err = Load(path)
	assert.Error(t, err)
}
