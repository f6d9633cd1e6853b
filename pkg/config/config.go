package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// GlobalConfig holds settings shared by every part of the server.
type GlobalConfig struct {
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"` // 7 days
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadGlobalConfig reads the shared settings from the environment.
func LoadGlobalConfig() (*GlobalConfig, error) {
	var conf GlobalConfig
	if err := env.Parse(&conf); err != nil {
		return nil, fmt.Errorf("parse global config: %w", err)
	}
	if conf.AccessTokenTTL <= 0 || conf.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}
	if conf.AccessTokenTTL >= conf.RefreshTokenTTL {
		return nil, fmt.Errorf("access token lifetime must be shorter than refresh token lifetime")
	}
	return &conf, nil
}
