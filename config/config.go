package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the voxtool configuration file.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Codec   CodecConfig   `yaml:"codec"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type MeshConfig struct {
	// Workers is the meshing pool size; 0 uses every CPU.
	Workers int `yaml:"workers"`
}

type CodecConfig struct {
	Compression string `yaml:"compression"` // none, zlib, zstd or auto
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

const (
	EnvConfig    = "VOXBUF_CONFIG"
	EnvLogLevel  = "VOXBUF_LOG_LEVEL"
	EnvStorePath = "VOXBUF_STORE_PATH"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Codec: CodecConfig{Compression: "auto"},
		Store: StoreConfig{Path: "./voxdb"},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads a YAML configuration. An empty path falls back to $VOXBUF_CONFIG,
// and to the defaults when that is unset too. Missing fields keep their defaults
// and the VOXBUF_LOG_LEVEL and VOXBUF_STORE_PATH variables override the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		cfg.Store.Path = v
	}
	if cfg.Mesh.Workers < 0 {
		return nil, fmt.Errorf("mesh.workers must be >= 0, got %d", cfg.Mesh.Workers)
	}
	return cfg, nil
}
