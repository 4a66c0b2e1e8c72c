// Package config loads YAML configuration for loom generation runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that carry their own
// validation logic; LoadYAML calls it after unmarshalling.
type Validator interface {
	Validate() error
}

// LoadYAML reads the file at path and unmarshals it into target.
func LoadYAML[T any](path string, target *T) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("read configuration %q: %w", absPath, err)
	}

	return LoadYAMLFromString(string(data), target)
}

// LoadYAMLFromString unmarshals YAML from a string. Useful in tests and when
// configuration arrives from somewhere other than a file.
func LoadYAMLFromString[T any](yamlContent string, target *T) error {
	if err := yaml.Unmarshal([]byte(yamlContent), target); err != nil {
		return fmt.Errorf("parse YAML configuration: %w", err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("configuration validation: %w", err)
		}
	}

	return nil
}
