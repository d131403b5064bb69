package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("data-dir", "", "")
	flags.Bool("verbose", false, "")
	flags.StringSlice("families", nil, "")
	flags.String("target-type", "", "")
	flags.String("target-path", "", "")
	return flags
}

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultFamilies, cfg.Families)
	assert.Equal(t, DefaultTargetType, cfg.Target.Type)
	assert.Equal(t, DefaultTargetPath, cfg.Target.Path)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	content := `data_dir: exports
families: [ascor]
target:
  type: sqlite
  path: out/climate.db
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "climload.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "exports"), cfg.DataDir, "data_dir resolves against the config file")
	assert.Equal(t, []string{"ascor"}, cfg.Families)
	assert.Equal(t, filepath.Join(dir, "out", "climate.db"), cfg.Target.Path)
	assert.Equal(t, filepath.Join(dir, "climload.yaml"), GetConfigFileUsed())
}

func TestLoadConfigUpwardSearch(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "climload.yaml"), []byte("data_dir: exports\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	chdir(t, nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "exports"), cfg.DataDir)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "climload.yaml"), []byte("data_dir: from_file\n"), 0o644))
	chdir(t, dir)
	t.Setenv("CLIMLOAD_DATA_DIR", "/from/env")
	t.Setenv("CLIMLOAD_TARGET__PATH", "/from/env.db")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.DataDir)
	assert.Equal(t, "/from/env.db", cfg.Target.Path)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())
	t.Setenv("CLIMLOAD_DATA_DIR", "/from/env")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--data-dir", "/from/flag", "--target-path", "/flag.db"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.DataDir)
	assert.Equal(t, "/flag.db", cfg.Target.Path)
}

func TestLoadConfigUnsetFlagsIgnored(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	flags := newFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
}

func TestLoadConfigExpandsCredentials(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	content := `target:
  type: postgres
  host: db.internal
  database: climate
  user: loader
  password: ${CLIMLOAD_TEST_SECRET}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "climload.yaml"), []byte(content), 0o644))
	chdir(t, dir)
	t.Setenv("CLIMLOAD_TEST_SECRET", "hunter2")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Target.Password)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DataDir:  "data",
			Families: []string{"ascor", "tpi"},
			Target:   &TargetConfig{Type: "sqlite", Path: "x.db"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate(base()))
	})
	t.Run("missing data dir", func(t *testing.T) {
		c := base()
		c.DataDir = ""
		assert.ErrorContains(t, Validate(c), "data_dir")
	})
	t.Run("unknown family", func(t *testing.T) {
		c := base()
		c.Families = []string{"ascor", "bonds"}
		assert.ErrorContains(t, Validate(c), "unknown family")
	})
	t.Run("unknown target type", func(t *testing.T) {
		c := base()
		c.Target.Type = "oracle"
		assert.ErrorContains(t, Validate(c), "unsupported target type")
	})
	t.Run("sqlite requires path", func(t *testing.T) {
		c := base()
		c.Target.Path = ""
		assert.ErrorContains(t, Validate(c), "target.path")
	})
	t.Run("postgres requires host and database", func(t *testing.T) {
		c := base()
		c.Target = &TargetConfig{Type: "postgres", Database: "climate"}
		assert.ErrorContains(t, Validate(c), "target.host")
		c.Target = &TargetConfig{Type: "postgres", Host: "db"}
		assert.ErrorContains(t, Validate(c), "target.database")
	})
}
