// Package config loads the thin CLI's configuration file, trying JSON,
// YAML, and TOML in turn, and resolves the default per-platform config
// directory.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Config is the persisted set of CLI defaults; every field is optional and
// overridden by an explicit flag when both are set.
type Config struct {
	Theme         string `json:"theme,omitempty" yaml:"theme,omitempty" toml:"theme,omitempty"`
	WithExtra     bool   `json:"with_extra,omitempty" yaml:"with_extra,omitempty" toml:"with_extra,omitempty"`
	Tree          bool   `json:"tree,omitempty" yaml:"tree,omitempty" toml:"tree,omitempty"`
	Verbose       int    `json:"verbose,omitempty" yaml:"verbose,omitempty" toml:"verbose,omitempty"`
	Vendor        string `json:"vendor,omitempty" yaml:"vendor,omitempty" toml:"vendor,omitempty"`
	Product       string `json:"product,omitempty" yaml:"product,omitempty" toml:"product,omitempty"`
	UsbIDsPath    string `json:"usb_ids_path,omitempty" yaml:"usb_ids_path,omitempty" toml:"usb_ids_path,omitempty"`
	ForceLibusb   bool   `json:"force_libusb,omitempty" yaml:"force_libusb,omitempty" toml:"force_libusb,omitempty"`
}

// DefaultDir returns the platform-specific configuration directory.
func DefaultDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, "usbtree"), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "usbtree"), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", "usbtree"), nil
		}
		return "", errors.New("HOME not set")
	}
}

// CandidatePaths returns config.{json,yaml,toml} under dir, in the order
// Load tries them.
func CandidatePaths(dir string) []string {
	return []string{
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
		filepath.Join(dir, "config.toml"),
	}
}

// Load reads a config file, dispatching on its extension. If path is empty,
// it tries DefaultDir's candidate paths in order and returns a zero Config
// if none exist.
func Load(path string) (Config, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return Config{}, nil
		}
		for _, candidate := range CandidatePaths(dir) {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, errors.New("unrecognized config file extension: " + path)
	}
	return cfg, err
}

// Save writes cfg to path, dispatching on its extension.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	case ".toml":
		data, err = toml.Marshal(cfg)
	default:
		return errors.New("unrecognized config file extension: " + path)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
