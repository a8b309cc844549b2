// Package config loads the panel settings from flags, environment and an
// optional .syncpanel.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/logging"
)

// Keys understood by Load.
const (
	KeyAddress     = "address"
	KeyUsername    = "username"
	KeyPassword    = "password"
	KeyInterval    = "interval"
	KeyTimeout     = "timeout"
	KeyLogLevel    = "log.level"
	KeyLogFile     = "log.file"
	KeyLogFormat   = "log.format"
	KeyMetricsAddr = "metrics.addr"
)

// EnvPrefix prefixes every environment override, e.g. SYNCPANEL_ADDRESS.
const EnvPrefix = "SYNCPANEL"

// Config is the resolved panel configuration.
type Config struct {
	Address     string
	Username    string
	Password    string
	Interval    time.Duration
	Timeout     time.Duration
	LogLevel    string
	LogFile     string
	LogFormat   string
	MetricsAddr string
}

// API returns the daemon client settings.
func (c *Config) API() api.Config {
	return api.Config{
		Address:  c.Address,
		Username: c.Username,
		Password: c.Password,
		Timeout:  c.Timeout,
	}
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat, OutputPath: c.LogFile}
}

// Load reads the configuration into v and resolves it. A missing config
// file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault(KeyAddress, api.DefaultAddress)
	v.SetDefault(KeyInterval, time.Second)
	v.SetDefault(KeyTimeout, 10*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	v.SetConfigName(".syncpanel") // .yaml is implicit
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv(EnvPrefix + "_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return Decode(v)
}

// Decode resolves the configuration already held by v.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Address:     strings.TrimSpace(v.GetString(KeyAddress)),
		Username:    v.GetString(KeyUsername),
		Password:    v.GetString(KeyPassword),
		Interval:    v.GetDuration(KeyInterval),
		Timeout:     v.GetDuration(KeyTimeout),
		LogLevel:    v.GetString(KeyLogLevel),
		LogFile:     expand(v.GetString(KeyLogFile)),
		LogFormat:   v.GetString(KeyLogFormat),
		MetricsAddr: v.GetString(KeyMetricsAddr),
	}
	if cfg.Address == "" {
		cfg.Address = api.DefaultAddress
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("config: %s must be positive, got %q", KeyInterval, v.GetString(KeyInterval))
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("config: %s must be positive, got %q", KeyTimeout, v.GetString(KeyTimeout))
	}
	return cfg, nil
}

// Watch calls apply with the new configuration whenever the config file in
// use changes. Invalid edits are logged and ignored.
func Watch(v *viper.Viper, apply func(*Config)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := Decode(v)
		if err != nil {
			logging.Warn("ignoring config change", zap.Error(err))
			return
		}
		logging.Info("config reloaded", zap.String("file", e.Name))
		apply(cfg)
	})
	v.WatchConfig()
}

func expand(path string) string {
	if path == "" {
		return ""
	}
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}
