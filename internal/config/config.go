// Package config loads the client configuration file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the client configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
}

// ServerConfig locates the room server.
type ServerConfig struct {
	URL string `yaml:"url"` // full websocket URL
}

// SessionConfig controls client-local persistence.
type SessionConfig struct {
	// Path overrides the session file location. Empty means the
	// default under the user's home directory.
	Path string `yaml:"path"`
	// PlayerName pre-fills the join form.
	PlayerName string `yaml:"player_name"`
}

// Load reads a config file, filling defaults for anything unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.URL == "" {
		cfg.Server.URL = Default().Server.URL
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "ws://localhost:2567/ws",
		},
	}
}
