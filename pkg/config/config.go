// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Status reports how LoadOrCreate obtained the configuration.
type Status int

const (
	// Loaded means the file was read and decoded over the defaults.
	Loaded Status = iota
	// Created means the file was absent and has been written with the defaults.
	Created
	// Defaulted means the file could not be parsed and the defaults were kept.
	Defaulted
)

func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case Defaulted:
		return "defaulted"
	}
	return "loaded"
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	return validate(target)
}

// Result describes how LoadOrCreate obtained the configuration.
type Result struct {
	Status Status
	// ParseErr is set when Status is Defaulted.
	ParseErr error
}

// LoadOrCreate loads filename over the defaults already held in target.
// A missing file is created from target. A file that cannot be parsed leaves
// target untouched and is reported as Defaulted rather than as an error; only
// I/O and validation failures are returned.
func LoadOrCreate[T any](filename string, target *T) (Result, error) {
	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := write(filename, target); err != nil {
			return Result{Status: Created}, err
		}
		return Result{Status: Created}, validate(target)
	case err != nil:
		return Result{}, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	decoded := *target
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &decoded); err != nil {
		res := Result{
			Status:   Defaulted,
			ParseErr: fmt.Errorf("failed to parse config file %s: %w", filename, err),
		}
		return res, validate(target)
	}
	*target = decoded
	return Result{Status: Loaded}, validate(target)
}

// ExpandHome replaces a leading "~" or "~/" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

func write[T any](filename string, v *T) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filename, err)
	}
	return nil
}

func validate[T any](target *T) error {
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
