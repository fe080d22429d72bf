package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xaviermilgo/solana-akinator/core"
	"github.com/xaviermilgo/solana-akinator/logger"
)

// appConfig mirrors config.yaml.
type appConfig struct {
	Connection core.Config   `mapstructure:"connection"`
	Logging    logger.Config `mapstructure:"logging"`
	Debug      bool          `mapstructure:"debug"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("AKINATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := core.DefaultConfig()
	v.SetDefault("connection.url", d.URL)
	v.SetDefault("connection.transport", d.Transport)
	v.SetDefault("connection.client_id", "")
	v.SetDefault("connection.protocol_version", d.ProtocolVersion)
	v.SetDefault("connection.handshake_timeout", d.HandshakeTimeout.String())
	v.SetDefault("connection.write_timeout", d.WriteTimeout.String())
	v.SetDefault("connection.ping_interval", d.PingInterval.String())
	v.SetDefault("connection.pong_timeout", d.PongTimeout.String())
	v.SetDefault("connection.max_queue", d.MaxQueue)
	v.SetDefault("connection.reconnect.mode", d.Reconnect.Mode)
	v.SetDefault("connection.reconnect.base_delay", d.Reconnect.BaseDelay.String())
	v.SetDefault("connection.reconnect.max_delay", d.Reconnect.MaxDelay.String())
	v.SetDefault("connection.reconnect.max_attempts", d.Reconnect.MaxAttempts)

	// stdout belongs to the game display
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.outputs", []string{"stderr"})
	v.SetDefault("debug", false)

	return v
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"url":       "connection.url",
	"log-level": "logging.level",
	"debug":     "debug",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("flag %q is not defined", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

// loadConfig 加载配置文件
func loadConfig(v *viper.Viper, configPath string) (appConfig, error) {
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/akinator")
	}

	if err := v.ReadInConfig(); err != nil {
		// Running without a config file is fine when none was asked for.
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return appConfig{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg appConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return appConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Debug {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}
