// Package config loads imgfs_server's runtime defaults from
// $IMGFS_HOME/config.toml, falling back to built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/prasoul/imgfs/internal/store"
)

// Config holds the tunable defaults. Port is imgfs_server's listening port
// when none is given on the command line; the other values only apply to
// stores created through imgfscmd without explicit flags, and an existing
// store's header always wins once opened.
type Config struct {
	Port      int    `toml:"port,omitempty"`
	MaxFiles  uint32 `toml:"max_files,omitempty"`
	ThumbResW uint16 `toml:"thumb_res_w,omitempty"`
	ThumbResH uint16 `toml:"thumb_res_h,omitempty"`
	SmallResW uint16 `toml:"small_res_w,omitempty"`
	SmallResH uint16 `toml:"small_res_h,omitempty"`
}

// homeOverride is set by SetHome and takes precedence over the IMGFS_HOME
// environment variable and the default.
var homeOverride string

// SetHome overrides the config directory.
func SetHome(dir string) { homeOverride = dir }

// Home returns the config directory. Precedence: SetHome > IMGFS_HOME
// env > ~/.imgfs.
func Home() string {
	if homeOverride != "" {
		return homeOverride
	}
	if v := os.Getenv("IMGFS_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".imgfs")
	}
	return filepath.Join(home, ".imgfs")
}

// Path returns the full path to config.toml.
func Path() string {
	return filepath.Join(Home(), "config.toml")
}

// Default returns the built-in defaults, used when no config file is
// present and no flag overrides a value.
func Default() Config {
	return Config{
		Port:      8000,
		MaxFiles:  store.DefaultMaxFiles,
		ThumbResW: store.DefaultThumbRes,
		ThumbResH: store.DefaultThumbRes,
		SmallResW: store.DefaultSmallRes,
		SmallResH: store.DefaultSmallRes,
	}
}

// Load reads config.toml, overlaying it on top of Default. A missing
// file is not an error.
func Load() (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config.toml: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to config.toml, creating the config directory first.
func Save(cfg Config) error {
	if err := os.MkdirAll(Home(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(Path(), data, 0o644)
}

// CreateOptions converts cfg into store.CreateOptions, the form the
// store package's Create function consumes.
func (c Config) CreateOptions() store.CreateOptions {
	return store.CreateOptions{
		MaxFiles:  c.MaxFiles,
		ThumbResW: c.ThumbResW,
		ThumbResH: c.ThumbResH,
		SmallResW: c.SmallResW,
		SmallResH: c.SmallResH,
	}
}
