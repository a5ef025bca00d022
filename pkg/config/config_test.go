package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canvas.yaml"), []byte("server:\n  port: 9000\nsync:\n  throttle: 75ms\n"), 0o600))

	v, err := Load(dir, "canvas")
	require.NoError(t, err)
	assert.Equal(t, 9000, v.GetInt("server.port"))
	assert.Equal(t, 75*time.Millisecond, Duration(v, "sync.throttle", time.Second))

	t.Setenv("SERVER_PORT", "9100")
	assert.Equal(t, 9100, v.GetInt("server.port"))
}

func TestLoad_MissingFile(t *testing.T) {
	v, err := Load(t.TempDir(), "does-not-exist")
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestDuration_Fallback(t *testing.T) {
	v, err := Load(t.TempDir(), "none")
	require.NoError(t, err)

	v.Set("bad", "soon")
	assert.Equal(t, time.Second, Duration(v, "bad", time.Second))
	assert.Equal(t, 2*time.Second, Duration(v, "missing", 2*time.Second))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CANVAS_DOTENV_PROBE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CANVAS_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "from-file", os.Getenv("CANVAS_DOTENV_PROBE"))
}
