// Package config provides configuration management for the climload CLI.
//
// Configuration merges, in increasing precedence: built-in defaults, a
// climload.yaml file, CLIMLOAD_* environment variables, and command-line
// flags.
package config

import (
	"github.com/verdant-labs/climload/internal/adapter"
)

// TargetConfig describes the store the pipelines load into. The audit log
// lives in the same store.
type TargetConfig struct {
	Type     string            `koanf:"type"`
	Path     string            `koanf:"path"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	SSLMode  string            `koanf:"sslmode"`
	Options  map[string]string `koanf:"options"`
}

// AdapterConfig converts the target into the adapter layer's config.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     t.Type,
		Path:     t.Path,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		SSLMode:  t.SSLMode,
		Options:  t.Options,
	}
}

// Config holds all CLI configuration options.
type Config struct {
	DataDir  string        `koanf:"data_dir"`
	Families []string      `koanf:"families"`
	Verbose  bool          `koanf:"verbose"`
	Target   *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	DefaultDataDir    = "data"
	DefaultTargetType = "sqlite"
	DefaultTargetPath = "climload.db"
)

// DefaultFamilies lists every known dataset family, in run order.
var DefaultFamilies = []string{"ascor", "tpi"}
