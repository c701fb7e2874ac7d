package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mcuadros/go-defaults"
	"gopkg.in/yaml.v2"
)

type SequenceConfig struct {
	Name string `yaml:"name"`
	Size int    `yaml:"size"`
}

type Config struct {
	Densify struct {
		Strategy  string           `yaml:"strategy" default:"chunked"`
		Verify    bool             `yaml:"verify"`
		Sequences []SequenceConfig `yaml:"sequences"`
	} `yaml:"densify"`
	Logging struct {
		Level string `yaml:"level" default:"info"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled       bool   `yaml:"enabled" default:"true"`
		ListenAddress string `yaml:"listen_address" default:":9100"`
	} `yaml:"metrics"`
	Database struct {
		Type        string `yaml:"type" default:"bolt"`
		Compression string `yaml:"compression" default:"zstd"`
		Bolt        struct {
			Path string `yaml:"path"`
		} `yaml:"bolt"`
		Sqlite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Redis struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db" default:"0"`
		} `yaml:"redis"`
	} `yaml:"database"`
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	cfg := Default()
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that do not depend on other packages.
// Strategy and compression names are resolved by their consumers.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "bolt":
		if c.Database.Bolt.Path == "" {
			return fmt.Errorf("%w: bolt database path is required", ErrInvalidConfig)
		}
	case "sqlite":
		if c.Database.Sqlite.Path == "" {
			return fmt.Errorf("%w: sqlite database path is required", ErrInvalidConfig)
		}
	case "redis", "memory":
	default:
		return fmt.Errorf("%w: unsupported database type %q", ErrInvalidConfig, c.Database.Type)
	}

	seen := make(map[string]bool, len(c.Densify.Sequences))
	for i, s := range c.Densify.Sequences {
		if s.Name == "" {
			return fmt.Errorf("%w: sequence %d has no name", ErrInvalidConfig, i)
		}
		if s.Size < 1 {
			return fmt.Errorf("%w: sequence %q has size %d", ErrInvalidConfig, s.Name, s.Size)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: sequence %q declared twice", ErrInvalidConfig, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
