// Package config loads the typed configuration of each binary.
package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/weiawesome/wes-io-canvas/pkg/config"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

type ServerConfig struct {
	Host string
	Port int
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Logger converts the log section to a pkg/log config.
func (l LogConfig) Logger(service string) log.Config {
	return log.Config{Level: l.Level, Pretty: l.Pretty, ServiceName: service}
}

// DefaultDir is where binaries look for their yaml files.
const DefaultDir = "./config"

func loadDotEnv() error {
	return pkgconfig.LoadDotEnv(".env")
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
