// Package config provides configuration file parsing for termux-fix-shebang.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	// DirName is the directory name under XDG_CONFIG_HOME
	DirName = "termux-fix-shebang"
	// FileName is the config file name
	FileName = "config.json"
)

// DefaultPrefix is the Termux installation prefix. Package builds for other
// prefixes override it with -ldflags "-X <module>/internal/config.DefaultPrefix=...".
var DefaultPrefix = "/data/data/com.termux/files/usr"

// DefaultIgnoreFile is looked up in each root walked with --recursive.
const DefaultIgnoreFile = ".fixshebangignore"

// Config holds all run settings. Values present in the config file override
// defaults, including explicit zero values; flags override both.
type Config struct {
	Prefix      string `mapstructure:"prefix"`
	Quiet       bool   `mapstructure:"quiet"`
	DryRun      bool   `mapstructure:"dry_run"`
	Journal     bool   `mapstructure:"journal"`
	JournalPath string `mapstructure:"journal_path"` // empty: ~/.termux-fix-shebang/journal.db
	TempDir     string `mapstructure:"tmpdir"`       // empty: $TMPDIR, then <prefix>/tmp
	IgnoreFile  string `mapstructure:"ignore_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Prefix:     DefaultPrefix,
		Journal:    true,
		IgnoreFile: DefaultIgnoreFile,
	}
}

// Dir returns the config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/termux-fix-shebang if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, DirName), nil
}

// Load reads {dir}/config.json over the defaults. A missing file yields the
// defaults without an error.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads the config file at path over the defaults. Values are
// weakly typed, so "quiet": "true" and "quiet": 1 are both accepted.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	if !filepath.IsAbs(c.Prefix) {
		return fmt.Errorf("prefix %q must be an absolute path", c.Prefix)
	}
	if strings.HasSuffix(c.Prefix, "/") {
		return fmt.Errorf("prefix %q must not end with a slash", c.Prefix)
	}
	if c.TempDir != "" && !filepath.IsAbs(c.TempDir) {
		return fmt.Errorf("tmpdir %q must be an absolute path", c.TempDir)
	}
	return nil
}
