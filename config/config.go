package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DBType   string `mapstructure:"DB_TYPE"` // sqlite, postgres, mysql
	DSN      string `mapstructure:"DSN"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Port     int    `mapstructure:"PORT"`

	// CheckTokenExpiry gates expiry enforcement at token resolve time.
	// When false, tokens are rejected only on absence, never on age.
	CheckTokenExpiry bool `mapstructure:"CHECK_TOKEN_EXPIRY"`
	TokenTTLMinutes  int  `mapstructure:"TOKEN_TTL_MINUTES"`

	RateLimitEnabled   bool   `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("DB_TYPE", "sqlite")
	viper.SetDefault("DSN", "fitgate.db")
	viper.SetDefault("CHECK_TOKEN_EXPIRY", true)
	viper.SetDefault("TOKEN_TTL_MINUTES", 60)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("REDIS_ADDR", "")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
