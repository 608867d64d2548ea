package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/strix/internal/core"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 65535, cfg.Capture.SnapLen)
	assert.Equal(t, 8, cfg.Capture.BufferSizeMB)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strix.yaml")
	content := `
log:
  level: debug
capture:
  interface: eth1
  filter: udp port 5080
sanity:
  proxy_require_extensions:
    - sec-agree
    - precondition
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "eth1", cfg.Capture.Interface)
	assert.Equal(t, "udp port 5080", cfg.Capture.Filter)
	assert.Equal(t, []string{"sec-agree", "precondition"}, cfg.Sanity.ProxyRequireExtensions)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, 65535, cfg.Capture.SnapLen)
	assert.Equal(t, 100, cfg.Capture.TimeoutMs)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capture: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
