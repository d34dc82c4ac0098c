package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	PostgresURL   string `mapstructure:"POSTGRES_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
}

// Load reads configuration from the environment. The database URL and JWT
// secret have no fallback values: deployments must set them explicitly or
// startup fails.
func Load() (Config, error) {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	// keys without defaults must be bound or Unmarshal never sees them
	for _, key := range []string{"POSTGRES_URL", "REDIS_PASSWORD", "JWT_SECRET"} {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.PostgresURL == "" {
		return Config{}, errors.New("POSTGRES_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}
