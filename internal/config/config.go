// Package config loads settings shared by the server and the CLI.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server  ServerConfig
	Client  ClientConfig
	Storage StorageConfig
	Log     LogConfig
}

// ServerConfig holds listener settings of the development API.
type ServerConfig struct {
	Addr     string
	DiagAddr string `mapstructure:"diag_addr"`
	Routes   bool
}

// ClientConfig holds API client settings.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds where the session token is kept. An empty TokenFile
// selects the per-user default.
type StorageConfig struct {
	TokenFile string `mapstructure:"token_file"`
}

type LogConfig struct {
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix
// CONDUIT_, e.g. CONDUIT_SERVER_ADDR. CONDUIT_CONFIG names a config file.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.addr", ":3333")
	v.SetDefault("server.diag_addr", ":9999")
	v.SetDefault("server.routes", false)
	v.SetDefault("client.base_url", "http://localhost:3333/api")
	v.SetDefault("client.timeout", 10*time.Second)
	v.SetDefault("storage.token_file", "")
	v.SetDefault("log.level", "info")

	v.SetConfigType("yaml")
	if path := os.Getenv("CONDUIT_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(dir + string(os.PathSeparator) + "conduit")
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CONDUIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}

	return c, nil
}
