package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

type validated struct {
	Name string `yaml:"name"`
}

func (v *validated) Validate() error {
	if v.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func TestLoadYAMLFromString(t *testing.T) {
	var s sample
	require.NoError(t, LoadYAMLFromString("name: a\ncount: 2\n", &s))
	require.Equal(t, sample{Name: "a", Count: 2}, s)
}

func TestLoadYAMLFromStringRejectsBadYAML(t *testing.T) {
	var s sample
	require.ErrorContains(t, LoadYAMLFromString("{", &s), "parse YAML")
}

func TestLoadYAMLRunsValidation(t *testing.T) {
	var v validated
	require.ErrorContains(t, LoadYAMLFromString("name: \"\"\n", &v), "name is required")
	require.NoError(t, LoadYAMLFromString("name: ok\n", &v))
}

func TestLoadYAMLMissingFile(t *testing.T) {
	var s sample
	err := LoadYAML(filepath.Join(t.TempDir(), "nope.yaml"), &s)
	require.ErrorContains(t, err, "read configuration")
}
