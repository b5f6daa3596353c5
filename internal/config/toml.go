// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Generate GenerateConfig `toml:"generate"`
}

// GenerateConfig maps exam generation settings.
type GenerateConfig struct {
	Count       *int    `toml:"count"`
	Mode        *string `toml:"mode"`
	Shuffle     *bool   `toml:"shuffle"`
	Compile     *bool   `toml:"compile"`
	Flat        *bool   `toml:"flat"`
	ProblemsDir *string `toml:"problems-dir"`
	Template    *string `toml:"template"`
	OutputDir   *string `toml:"output-dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
