// Package config handles loading application configuration from a YAML file
// with environment variable overrides.
//
// Config file format (photo-album.yaml):
//
//	listen_addr: ":8080"
//	sets_dir: "./sets"
//	art_mode: true
//	log_level: "info"
//	log_format: "text"
//
// Configuration sources, in increasing priority order:
//  1. Built-in defaults
//  2. YAML config file (located by FindConfigFile or explicit path)
//  3. Environment variables (LISTEN_ADDR, SETS_DIR, ART_MODE, LOG_LEVEL,
//     LOG_FORMAT)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// ListenAddr is the TCP address for the HTTP server (e.g. ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// SetsDir is the path to the directory holding one subfolder per set.
	SetsDir string `yaml:"sets_dir"`

	// ArtMode enables the series-grouped archive view for art sets.
	ArtMode bool `yaml:"art_mode"`

	// LogLevel is the minimum level to log: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log output format: "text" or "json".
	LogFormat string `yaml:"log_format"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		SetsDir:    "./sets",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Load reads configuration from the YAML file at path (if non-empty), then
// applies environment variable overrides on top. Returns the merged Config.
// If path is empty, only defaults and environment variables are applied.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	// Environment variables always override file values so that Docker /
	// systemd overrides still work even when a config file is present.
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SETS_DIR"); v != "" {
		cfg.SetsDir = v
	}
	if v := os.Getenv("ART_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ArtMode = b
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg, nil
}

// FindConfigFile returns the path to the first config file found in the
// standard search order, or "" if none is found.
//
// Search order:
//  1. PHOTO_ALBUM_CONFIG environment variable (explicit override)
//  2. ./photo-album.yaml (current working directory)
//  3. ~/.config/photo-album/config.yaml (XDG user config)
func FindConfigFile() string {
	// 1. Explicit path via environment variable.
	if p := os.Getenv("PHOTO_ALBUM_CONFIG"); p != "" {
		return p
	}

	// 2. Config file in the current working directory.
	if _, err := os.Stat("photo-album.yaml"); err == nil {
		return "photo-album.yaml"
	}

	// 3. XDG user config directory.
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "photo-album", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
