package config

import (
	"time"

	pkgconfig "github.com/weiawesome/wes-io-canvas/pkg/config"
	"github.com/weiawesome/wes-io-canvas/pkg/database"
)

// Gateway is the configuration of cmd/canvas-gateway.
type Gateway struct {
	Server   ServerConfig
	Database database.Config
	Cache    CacheConfig
	Log      LogConfig
}

// CacheConfig configures the redis element-list cache.
type CacheConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// LoadGateway reads canvas-gateway.yaml from dir plus environment
// overrides.
func LoadGateway(dir string) (*Gateway, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	v, err := pkgconfig.Load(dir, "canvas-gateway")
	if err != nil {
		return nil, err
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8091)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "canvas")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/canvas.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("cache.enabled", "CACHE_ENABLED")
	v.BindEnv("cache.address", "REDIS_ADDRESS")
	v.BindEnv("cache.password", "REDIS_PASSWORD")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Gateway
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Cache.TTL = pkgconfig.Duration(v, "cache.ttl", 5*time.Minute)

	return &cfg, nil
}
