// Package configfile reads and writes the slogger config document: the set
// of API key hashes and the ordered time-extraction paths. The document is
// a plain JSON file, created by cmd/ensure-config and appended to by
// cmd/generate-api-key; the service only reads it.
package configfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ApiKey pairs a display name with the SHA-256 hex digest of the raw secret.
// The raw secret itself is never persisted.
type ApiKey struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// Config is the on-disk config document.
type Config struct {
	ApiKeys   []ApiKey `json:"api_keys"`
	TimePaths []string `json:"time_paths"`
}

var hashPattern = regexp.MustCompile(`(?i)^[a-f0-9]{64}$`)

// Default returns the document used when no file exists yet.
func Default() Config {
	return Config{
		ApiKeys:   []ApiKey{},
		TimePaths: []string{"timestamp", "time", "created_at", "meta.time"},
	}
}

// Read loads the document at path. A missing file yields the default
// document, not an error.
func Read(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if len(cfg.TimePaths) == 0 {
		cfg.TimePaths = Default().TimePaths
	}
	return cfg, nil
}

// Write persists the document at path, creating parent directories.
func Write(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir for config %s: %w", path, err)
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate checks each key entry: non-empty name, hash is 64 hex characters
// in either case. Time paths must be non-empty strings.
func (c Config) Validate() error {
	for i, key := range c.ApiKeys {
		if key.Name == "" {
			return fmt.Errorf("api_keys[%d]: empty name", i)
		}
		if !hashPattern.MatchString(key.Hash) {
			return fmt.Errorf("api_keys[%d] (%s): hash is not a sha256 hex digest", i, key.Name)
		}
	}
	for i, p := range c.TimePaths {
		if p == "" {
			return fmt.Errorf("time_paths[%d]: empty path", i)
		}
	}
	return nil
}
