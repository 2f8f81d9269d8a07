// Package config loads service configuration from file and environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type DetectorConfig struct {
	// Mode is one of standard, custom_direct_violation, unavailable. Chosen
	// once at startup; it never changes per request.
	Mode        string `mapstructure:"mode"`
	FrameStride int    `mapstructure:"frame_stride"`
	Workers     int    `mapstructure:"workers"`
}

type FinesConfig struct {
	FirstOffense  int64 `mapstructure:"first_offense"`
	RepeatOffense int64 `mapstructure:"repeat_offense"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Detector DetectorConfig `mapstructure:"detector"`
	Fines    FinesConfig    `mapstructure:"fines"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

// Load reads an optional yaml config file and ROADSAFETY_* environment
// overrides. Every key has a default; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=roadsafety port=5432 sslmode=disable")
	v.SetDefault("detector.mode", "standard")
	v.SetDefault("detector.frame_stride", 30)
	v.SetDefault("detector.workers", 1)
	v.SetDefault("fines.first_offense", 500)
	v.SetDefault("fines.repeat_offense", 1000)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix("ROADSAFETY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/roadsafety")
		_ = v.ReadInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
