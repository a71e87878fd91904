// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes a single mount.
type Config struct {
	// BackingFile is the path to the file mmap'd as the region. It is
	// created (and grown to RegionSize) if it does not already exist.
	BackingFile string `yaml:"backing_file"`

	// RegionSize is the size in bytes of the backing file. A new or
	// empty file is grown to it; an existing non-empty file must
	// already be exactly this size, or opening it fails.
	RegionSize int64 `yaml:"region_size"`

	// Mountpoint is the directory the filesystem is mounted at.
	Mountpoint string `yaml:"mountpoint"`

	// AllowOther permits users other than the one running the mount
	// process to access it. Requires user_allow_other in
	// /etc/fuse.conf.
	AllowOther bool `yaml:"allow_other"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with sensible zero-values for every field
// LoadFile doesn't require the file to set explicitly.
func Default() *Config {
	return &Config{
		RegionSize: 64 << 20, // 64 MiB
		LogLevel:   "info",
	}
}

// LoadFile reads and parses a mount configuration file. The backing
// file and mountpoint fields are mandatory; everything else falls
// back to Default's values when absent from the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports whether the mandatory fields are present and
// well-formed.
func (c *Config) Validate() error {
	if c.BackingFile == "" {
		return fmt.Errorf("backing_file is required")
	}
	if c.Mountpoint == "" {
		return fmt.Errorf("mountpoint is required")
	}
	if c.RegionSize <= 0 {
		return fmt.Errorf("region_size must be positive, got %d", c.RegionSize)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug/info/warn/error, got %q", c.LogLevel)
	}
	return nil
}
