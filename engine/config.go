package engine

import (
	"fmt"
	"path/filepath"

	"github.com/gad-lang/loom/config"
)

// Config describes one generation run: which templates render with which
// bindings into which output files.
type Config struct {
	// OutputRoot overrides the engine's output root when set.
	OutputRoot string `yaml:"output_root"`
	Jobs       []Job  `yaml:"jobs"`
}

// Job binds one template to one output file.
type Job struct {
	Template string `yaml:"template"`
	// Output is the produced file, relative to the output root.
	Output string         `yaml:"output"`
	Params map[string]any `yaml:"params"`
	// CleanWhitespace overrides the template's cleanws pragma when set.
	CleanWhitespace *bool `yaml:"cleanws"`
}

func (c *Config) Validate() error {
	if len(c.Jobs) == 0 {
		return fmt.Errorf("config has no jobs")
	}
	for i, job := range c.Jobs {
		if job.Template == "" {
			return fmt.Errorf("job %d: template is required", i)
		}
		if job.Output == "" {
			return fmt.Errorf("job %d: output is required", i)
		}
		if filepath.IsAbs(job.Output) {
			return fmt.Errorf("job %d: output %q must be relative to the output root", i, job.Output)
		}
	}
	return nil
}

// LoadConfig reads and validates a YAML job config.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := config.LoadYAML(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
