package config

import (
	"os"
	"path/filepath"
)

const appName = "asolens"

// AddrEnv overrides the server listen address.
const AddrEnv = "ASOLENS_ADDR"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// ServerAddr picks the listen address: ASOLENS_ADDR, then the config file,
// then fallback.
func ServerAddr(cfg FileConfig, fallback string) string {
	if cfg.Server.Addr != nil && *cfg.Server.Addr != "" {
		fallback = *cfg.Server.Addr
	}
	return getEnv(AddrEnv, fallback)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
