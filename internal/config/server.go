package config

import (
	"time"

	pkgconfig "github.com/weiawesome/wes-io-canvas/pkg/config"
	"github.com/weiawesome/wes-io-canvas/pkg/pubsub"
)

// RelayDriverNone keeps the room registry purely in-process.
const RelayDriverNone = "none"

// Server is the configuration of cmd/canvas-server.
type Server struct {
	Server     ServerConfig
	WebSocket  WebSocketConfig
	Relay      RelayConfig
	InstanceID string `mapstructure:"instance_id"`
	Log        LogConfig
}

type WebSocketConfig struct {
	PingInterval       time.Duration `mapstructure:"ping_interval"`
	PongWait           time.Duration `mapstructure:"pong_wait"`
	WriteWait          time.Duration `mapstructure:"write_wait"`
	MaxMessageSize     int64         `mapstructure:"max_message_size"`
	SendBuffer         int           `mapstructure:"send_buffer"`
	MaxUnjoinedStrikes int           `mapstructure:"max_unjoined_strikes"`
	MessageRate        float64       `mapstructure:"message_rate"`
	MessageBurst       int           `mapstructure:"message_burst"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins"`
}

// RelayConfig selects the cross-instance relay. Driver "none" disables it.
type RelayConfig struct {
	pubsub.Config `mapstructure:",squash"`
}

// Enabled reports whether a relay driver is configured.
func (r RelayConfig) Enabled() bool {
	return r.Driver != "" && r.Driver != RelayDriverNone
}

// DefaultWebSocket returns the websocket defaults, also used by tests.
func DefaultWebSocket() WebSocketConfig {
	return WebSocketConfig{
		PingInterval:       30 * time.Second,
		PongWait:           60 * time.Second,
		WriteWait:          10 * time.Second,
		MaxMessageSize:     1 << 20,
		SendBuffer:         256,
		MaxUnjoinedStrikes: 5,
		MessageRate:        200,
		MessageBurst:       400,
	}
}

// LoadServer reads canvas-server.yaml from dir plus environment overrides.
func LoadServer(dir string) (*Server, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	v, err := pkgconfig.Load(dir, "canvas-server")
	if err != nil {
		return nil, err
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 1<<20)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("websocket.max_unjoined_strikes", 5)
	v.SetDefault("websocket.message_rate", 200)
	v.SetDefault("websocket.message_burst", 400)
	v.SetDefault("websocket.allowed_origins", []string{})
	v.SetDefault("relay.driver", RelayDriverNone)
	v.SetDefault("relay.redis.address", "localhost:6379")
	v.SetDefault("relay.redis.password", "")
	v.SetDefault("relay.redis.db", 0)
	v.SetDefault("relay.redis.pool_size", 10)
	v.SetDefault("relay.kafka.brokers", "localhost:9092")
	v.SetDefault("relay.kafka.topic", pubsub.DefaultKafkaTopic)
	v.SetDefault("relay.kafka.group_id", "canvas-server")
	v.SetDefault("relay.kafka.partitions", 4)
	v.SetDefault("instance_id", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.BindEnv("server.port", "PORT")
	v.BindEnv("relay.driver", "RELAY_DRIVER")
	v.BindEnv("relay.redis.address", "REDIS_ADDRESS")
	v.BindEnv("relay.redis.password", "REDIS_PASSWORD")
	v.BindEnv("relay.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("relay.kafka.topic", "KAFKA_RELAY_TOPIC")
	v.BindEnv("relay.kafka.group_id", "KAFKA_RELAY_GROUP_ID")
	v.BindEnv("instance_id", "INSTANCE_ID")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	def := DefaultWebSocket()
	cfg.WebSocket.PingInterval = pkgconfig.Duration(v, "websocket.ping_interval", def.PingInterval)
	cfg.WebSocket.PongWait = pkgconfig.Duration(v, "websocket.pong_wait", def.PongWait)
	cfg.WebSocket.WriteWait = pkgconfig.Duration(v, "websocket.write_wait", def.WriteWait)
	cfg.Relay.Redis.ReadTimeout = pkgconfig.Duration(v, "relay.redis.read_timeout", 3*time.Second)
	cfg.Relay.Redis.WriteTimeout = pkgconfig.Duration(v, "relay.redis.write_timeout", 3*time.Second)

	return &cfg, nil
}
