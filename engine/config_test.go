package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no jobs", Config{}, "no jobs"},
		{"missing template", Config{Jobs: []Job{{Output: "a.go"}}}, "template is required"},
		{"missing output", Config{Jobs: []Job{{Template: "a.loom"}}}, "output is required"},
		{"absolute output", Config{Jobs: []Job{{Template: "a.loom", Output: "/etc/a.go"}}}, "must be relative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorContains(t, tt.cfg.Validate(), tt.want)
		})
	}

	valid := Config{Jobs: []Job{{Template: "a.loom", Output: "a.go"}}}
	require.NoError(t, valid.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.yaml")
	content := "output_root: gen\n" +
		"jobs:\n" +
		"  - template: tpl/a.loom\n" +
		"    output: a.go\n" +
		"    cleanws: true\n" +
		"    params:\n" +
		"      version: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "gen", cfg.OutputRoot)
	require.Len(t, cfg.Jobs, 1)

	job := cfg.Jobs[0]
	require.Equal(t, "tpl/a.loom", job.Template)
	require.Equal(t, "a.go", job.Output)
	require.NotNil(t, job.CleanWhitespace)
	require.True(t, *job.CleanWhitespace)
	require.Equal(t, 3, job.Params["version"])
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs: []\n"), 0o644))

	_, err := LoadConfig(path)
	require.ErrorContains(t, err, "no jobs")
}
