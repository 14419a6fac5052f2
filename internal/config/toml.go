// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analyze    AnalyzeConfig    `toml:"analyze"`
	Projection ProjectionConfig `toml:"projection"`
	Server     ServerConfig     `toml:"server"`
}

// AnalyzeConfig maps parsing and report settings.
type AnalyzeConfig struct {
	Mode     *string `toml:"mode"`
	Backfill *bool   `toml:"backfill"`
	Seed     *int64  `toml:"seed"`
	Top      *int    `toml:"top"`
	Horizons []int   `toml:"horizons"`
}

// ProjectionConfig maps metadata boost multipliers.
type ProjectionConfig struct {
	TitleBoost    *float64 `toml:"title-boost"`
	SubtitleBoost *float64 `toml:"subtitle-boost"`
	KeywordsBoost *float64 `toml:"keywords-boost"`
}

// ServerConfig maps HTTP server settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
