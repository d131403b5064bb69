package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/verdant-labs/climload/internal/adapter"
)

// knownFamilies are the dataset families the CLI can run.
var knownFamilies = map[string]bool{"ascor": true, "tpi": true}

// Validate checks if the configuration is valid.
func Validate(c *Config) error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if len(c.Families) == 0 {
		return fmt.Errorf("at least one family is required (ascor, tpi)")
	}
	for _, fam := range c.Families {
		if !knownFamilies[strings.ToLower(fam)] {
			return fmt.Errorf("unknown family %q (known: ascor, tpi)", fam)
		}
	}
	if c.Target == nil || c.Target.Type == "" {
		return fmt.Errorf("target.type is required")
	}
	if !adapter.IsRegistered(c.Target.Type) {
		return fmt.Errorf("unsupported target type %q (supported: %s)",
			c.Target.Type, strings.Join(adapter.ListAdapters(), ", "))
	}
	switch c.Target.Type {
	case "sqlite":
		if c.Target.Path == "" {
			return fmt.Errorf("target.path is required for sqlite targets")
		}
	case "postgres":
		if c.Target.Host == "" {
			return fmt.Errorf("target.host is required for postgres targets")
		}
		if c.Target.Database == "" {
			return fmt.Errorf("target.database is required for postgres targets")
		}
	}
	return nil
}

// ValidateDataDir checks that the data directory exists. Run separately from
// Validate so help commands work without one.
func ValidateDataDir(c *Config) error {
	if _, err := os.Stat(c.DataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s\nHint: Create the directory or use --data-dir to specify a different path", c.DataDir)
	}
	return nil
}
