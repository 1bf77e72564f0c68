package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultConfigPath = "cinder.toml"

// fileConfig is the contents of a cinder.toml file.
type fileConfig struct {
	IncludePaths   []string `toml:"include_paths"`
	DynamicLookup  bool     `toml:"dynamic_lookup"`
	StepQuota      int      `toml:"step_quota"`
	RecursionLimit int      `toml:"recursion_limit"`
	History        string   `toml:"history"`
	LogLevel       string   `toml:"log_level"`
	LogFile        string   `toml:"log_file"`
}

// loadConfig reads path, or ./cinder.toml when path is empty. A missing
// default file is not an error; unknown keys are.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return fileConfig{}, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if cfg.StepQuota < 0 {
		return fileConfig{}, fmt.Errorf("load config %s: step_quota must not be negative", path)
	}
	return cfg, nil
}
