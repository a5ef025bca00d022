package config

import (
	"time"

	pkgconfig "github.com/weiawesome/wes-io-canvas/pkg/config"
)

// Client is the configuration of cmd/canvas-client.
type Client struct {
	Server      ClientServerConfig
	Gateway     GatewayClientConfig
	Sync        SyncConfig
	Interaction InteractionConfig
	Log         LogConfig
}

type ClientServerConfig struct {
	WSURL            string        `mapstructure:"ws_url"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

type GatewayClientConfig struct {
	URL     string
	Timeout time.Duration
}

type SyncConfig struct {
	ThrottleInterval time.Duration `mapstructure:"throttle_interval"`
	BackoffBase      time.Duration `mapstructure:"backoff_base"`
	BackoffMax       time.Duration `mapstructure:"backoff_max"`
}

type InteractionConfig struct {
	DragThresholdPx    float64 `mapstructure:"drag_threshold_px"`
	HandleRadiusPx     float64 `mapstructure:"handle_radius_px"`
	MinElementSize     float64 `mapstructure:"min_element_size"`
	DefaultElementSize float64 `mapstructure:"default_element_size"`
	ZoomStep           float64 `mapstructure:"zoom_step"`
	IDFormat           string  `mapstructure:"id_format"`
}

// LoadClient reads canvas-client.yaml from dir plus environment overrides.
func LoadClient(dir string) (*Client, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	v, err := pkgconfig.Load(dir, "canvas-client")
	if err != nil {
		return nil, err
	}

	v.SetDefault("server.ws_url", "ws://localhost:8090/ws")
	v.SetDefault("server.handshake_timeout", "5s")
	v.SetDefault("gateway.url", "http://localhost:8091")
	v.SetDefault("gateway.timeout", "10s")
	v.SetDefault("sync.throttle_interval", "50ms")
	v.SetDefault("sync.backoff_base", "250ms")
	v.SetDefault("sync.backoff_max", "5s")
	v.SetDefault("interaction.drag_threshold_px", 4)
	v.SetDefault("interaction.handle_radius_px", 8)
	v.SetDefault("interaction.min_element_size", 120)
	v.SetDefault("interaction.default_element_size", 120)
	v.SetDefault("interaction.zoom_step", 1.1)
	v.SetDefault("interaction.id_format", "ulid")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	v.BindEnv("server.ws_url", "CANVAS_WS_URL")
	v.BindEnv("gateway.url", "CANVAS_GATEWAY_URL")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Server.HandshakeTimeout = pkgconfig.Duration(v, "server.handshake_timeout", 5*time.Second)
	cfg.Gateway.Timeout = pkgconfig.Duration(v, "gateway.timeout", 10*time.Second)
	cfg.Sync.ThrottleInterval = durationOr(pkgconfig.Duration(v, "sync.throttle_interval", 0), 50*time.Millisecond)
	cfg.Sync.BackoffBase = durationOr(pkgconfig.Duration(v, "sync.backoff_base", 0), 250*time.Millisecond)
	cfg.Sync.BackoffMax = durationOr(pkgconfig.Duration(v, "sync.backoff_max", 0), 5*time.Second)

	return &cfg, nil
}
