package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Profile is one named shortcut in the profiles config file: a spec path
// and default options, so a recurring invocation doesn't have to re-type
// the same flags every time.
type Profile struct {
	Spec  string
	Check bool
}

// Config is the top-level shape of the optional TOML profiles file.
type Config struct {
	Profiles map[string]Profile
}

// LoadConfig reads the profiles file at path. A missing file is not an
// error: it yields an empty Config, since profiles are optional.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &Config{Profiles: map[string]Profile{}}, nil
		}
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}
