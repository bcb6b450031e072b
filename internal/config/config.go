package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional dirmirror configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults. A nil field means the file
// does not set it.
type DefaultsConfig struct {
	TimeToSync  *int     `toml:"time_to_sync"`
	LogLevel    *string  `toml:"log_level"`
	LogFormat   *string  `toml:"log_format"`
	Hash        *string  `toml:"hash"`
	ExitOnError *bool    `toml:"exit_on_error"`
	Exclude     []string `toml:"exclude"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "dirmirror", "config.toml")
}

// Load reads the config file at path. An empty path means the XDG location,
// where a missing file yields a zero Config. A path given explicitly must
// exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
		if path == "" {
			return Config{}, nil
		}
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undec[0].String())
	}
	if t := cfg.Defaults.TimeToSync; t != nil && *t < 0 {
		return Config{}, fmt.Errorf("config %s: time_to_sync must be >= 0, got %d", path, *t)
	}
	return cfg, nil
}
