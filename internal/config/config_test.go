package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, 60*time.Second, cfg.WebSocket.PongWait)
	assert.Equal(t, 5, cfg.WebSocket.MaxUnjoinedStrikes)
	assert.Equal(t, RelayDriverNone, cfg.Relay.Driver)
	assert.False(t, cfg.Relay.Enabled())
	assert.Equal(t, "canvas-relay", cfg.Relay.Kafka.Topic)
}

func TestLoadServerFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9999
websocket:
  pong_wait: 5s
  max_unjoined_strikes: 2
relay:
  driver: redis
  redis:
    address: redis:6379
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canvas-server.yaml"), yaml, 0o644))

	cfg, err := LoadServer(dir)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.WebSocket.PongWait)
	assert.Equal(t, 2, cfg.WebSocket.MaxUnjoinedStrikes)
	assert.True(t, cfg.Relay.Enabled())
	assert.Equal(t, "redis:6379", cfg.Relay.Redis.Address)
}

func TestLoadGatewayDefaults(t *testing.T) {
	cfg, err := LoadGateway(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "0.0.0.0:8091", cfg.Server.Addr())
}

func TestLoadClientEnvOverride(t *testing.T) {
	t.Setenv("CANVAS_GATEWAY_URL", "http://gateway:1234")
	cfg, err := LoadClient(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://gateway:1234", cfg.Gateway.URL)
	assert.Equal(t, 50*time.Millisecond, cfg.Sync.ThrottleInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.BackoffBase)
	assert.Equal(t, 5*time.Second, cfg.Sync.BackoffMax)
	assert.Equal(t, 120.0, cfg.Interaction.MinElementSize)
	assert.Equal(t, 120.0, cfg.Interaction.DefaultElementSize)
	assert.Equal(t, 1.1, cfg.Interaction.ZoomStep)
}

func TestLoadClientInteractionFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
interaction:
  drag_threshold_px: 6
  default_element_size: 80
  zoom_step: 1.25
  id_format: ksuid
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canvas-client.yaml"), yaml, 0o644))

	cfg, err := LoadClient(dir)
	require.NoError(t, err)
	assert.Equal(t, 6.0, cfg.Interaction.DragThresholdPx)
	assert.Equal(t, 8.0, cfg.Interaction.HandleRadiusPx)
	assert.Equal(t, 80.0, cfg.Interaction.DefaultElementSize)
	assert.Equal(t, 1.25, cfg.Interaction.ZoomStep)
	assert.Equal(t, "ksuid", cfg.Interaction.IDFormat)
}
