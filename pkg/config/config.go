// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads tkprog settings from YAML with environment overrides,
// and reads and writes YAML channel-table files.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/tkprog/pkg/channel"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "tkprog.yaml"

// Config holds all programmer settings.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Session SessionConfig `yaml:"session"`

	// Profile selects the channel codec: "revised" or "legacy"
	Profile string `yaml:"profile"`

	path string
}

type SerialConfig struct {
	Port     string `yaml:"port"`      // empty = auto-discover
	Match    string `yaml:"match"`     // USB product substring for discovery
	VID      string `yaml:"vid"`       // USB vendor ID for discovery
	BaudRate int    `yaml:"baud_rate"` // initial speed
	StopBits int    `yaml:"stop_bits"`
}

type SessionConfig struct {
	BaudRate    int  `yaml:"baud_rate"`    // speed after the radio answers
	TimeoutMS   int  `yaml:"timeout_ms"`   // per read
	ByteDelayMS int  `yaml:"byte_delay_ms"`
	FirstKey    byte `yaml:"first_key"`
	SecondKey   byte `yaml:"second_key"`
}

// Default returns a config with the TK-2402 defaults.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Match:    "Prolific",
			VID:      "067B",
			BaudRate: 9600,
			StopBits: 2,
		},
		Session: SessionConfig{
			BaudRate:    19200,
			TimeoutMS:   5000,
			ByteDelayMS: 10,
			FirstKey:    0x00,
			SecondKey:   0xBB,
		},
		Profile: channel.ProfileRevised.Name,
	}
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file yields the defaults; a malformed one is
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		log.Printf("[config] no config at %s, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	loadEnvFile(filepath.Join(filepath.Dir(path), ".env"))
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile reads a KEY=VALUE .env file into the environment. Variables
// already set take precedence.
func loadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

// applyEnvOverrides reads TKPROG_PORT, TKPROG_PROFILE, TKPROG_MATCH and
// TKPROG_TIMEOUT_MS.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TKPROG_PORT"); v != "" {
		c.Serial.Port = v
	}
	if v := os.Getenv("TKPROG_PROFILE"); v != "" {
		c.Profile = v
	}
	if v := os.Getenv("TKPROG_MATCH"); v != "" {
		c.Serial.Match = v
	}
	if v := os.Getenv("TKPROG_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Session.TimeoutMS = n
		} else {
			log.Printf("[config] ignoring TKPROG_TIMEOUT_MS=%q", v)
		}
	}
}

// Validate checks values a session cannot run with.
func (c *Config) Validate() error {
	if _, err := c.CodecProfile(); err != nil {
		return err
	}
	if c.Serial.BaudRate <= 0 || c.Session.BaudRate <= 0 {
		return fmt.Errorf("baud rates must be positive (serial %d, session %d)", c.Serial.BaudRate, c.Session.BaudRate)
	}
	if c.Serial.StopBits != 1 && c.Serial.StopBits != 2 {
		return fmt.Errorf("stop_bits must be 1 or 2, got %d", c.Serial.StopBits)
	}
	if c.Session.TimeoutMS <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", c.Session.TimeoutMS)
	}
	if c.Session.ByteDelayMS < 0 {
		return fmt.Errorf("byte_delay_ms must not be negative, got %d", c.Session.ByteDelayMS)
	}
	return nil
}

// CodecProfile resolves the configured profile name.
func (c *Config) CodecProfile() (channel.Profile, error) {
	return channel.ProfileByName(c.Profile)
}

// Timeout returns the per-read timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Session.TimeoutMS) * time.Millisecond
}

// ByteDelay returns the inter-byte pause.
func (c *Config) ByteDelay() time.Duration {
	return time.Duration(c.Session.ByteDelayMS) * time.Millisecond
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config to path, or to the file it was loaded from.
func (c *Config) Save(path string) error {
	if path == "" {
		path = c.path
	}
	if path == "" {
		path = DefaultPath
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	c.path = path
	return nil
}
