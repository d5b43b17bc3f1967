// Package config loads the TOML configuration for the capture pipeline.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"voxpense/encoder"
	"voxpense/extract"
)

const envPath = "VOXPENSE_CONFIG"

type Config struct {
	APIBase      string   `toml:"api_base"`
	APIKey       string   `toml:"api_key"`
	Language     string   `toml:"language"`
	Formats      []string `toml:"formats"` // payload encodings the backend accepts
	Device       string   `toml:"device"`
	Premium      bool     `toml:"premium"`
	VoiceEnabled bool     `toml:"voice_enabled"`
}

func Default() Config {
	return Config{
		APIBase:      "https://api.voxpense.app",
		Language:     "az",
		Formats:      encoder.Preferred(),
		Premium:      true,
		VoiceEnabled: true,
	}
}

// ResolvePath picks the config file: -config flag, then the
// VOXPENSE_CONFIG environment variable, then the OS config location.
func ResolvePath(flagPath string) (string, error) {
	for _, p := range []string{flagPath, os.Getenv(envPath)} {
		if p == "" {
			continue
		}
		if filepath.IsAbs(p) {
			return p, nil
		}
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(wd, p), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "voxpense", "config.toml"), nil
}

// Load reads and validates the file at path. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !extract.SupportedLanguage(c.Language) {
		return fmt.Errorf("unsupported language %q (supported: %s)",
			c.Language, strings.Join(extract.Languages, ", "))
	}
	for _, f := range c.Formats {
		if !encoder.Known(f) {
			return fmt.Errorf("unknown audio format %q", f)
		}
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("formats must not be empty")
	}
	return nil
}

// Save writes the config, creating the directory if needed. Used by
// -setup to persist the chosen device.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
