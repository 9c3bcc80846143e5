package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr  string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration

	LogLevel      string
	DevMode       bool
	DefaultTenant string
}

// FromEnv reads process configuration from the environment, with an optional
// .env file in the working directory underneath it.
func FromEnv() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// a missing .env is fine; the environment still applies
	_ = v.ReadInConfig()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCK_TTL", "5s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEV_MODE", false)
	v.SetDefault("DEFAULT_TENANT", "demo")
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		ListenAddr:    v.GetString("HTTP_ADDR"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		DevMode:       v.GetBool("DEV_MODE"),
		DefaultTenant: v.GetString("DEFAULT_TENANT"),
	}

	ttl, err := time.ParseDuration(v.GetString("LOCK_TTL"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid LOCK_TTL %q", v.GetString("LOCK_TTL"))
	}
	cfg.LockTTL = ttl

	if cfg.ListenAddr == "" {
		return Config{}, fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DefaultTenant == "" {
		return Config{}, fmt.Errorf("DEFAULT_TENANT must not be empty")
	}
	return cfg, nil
}
