package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gad-lang/loom/postprocess"
	"github.com/gad-lang/loom/state"
)

type Renderer struct {
	logger         *slog.Logger
	cache          *ProgramCache
	postprocessors *postprocess.Chain
}

func NewRenderer(logger *slog.Logger, cache *ProgramCache, postprocessors *postprocess.Chain) *Renderer {
	return &Renderer{
		logger:         logger,
		cache:          cache,
		postprocessors: postprocessors,
	}
}

// RenderJob compiles the job's template, executes it with the job's params,
// post-processes the result and writes it under root, recording a manifest
// entry on success.
func (r *Renderer) RenderJob(root string, job Job, manager *state.Manager, manifest *state.Manifest, runID string) error {
	r.logger.Debug("rendering template", "template", job.Template, "output", job.Output)

	prog, err := r.cache.Get(job.Template, job.CleanWhitespace)
	if err != nil {
		return fmt.Errorf("compile template %s: %w", job.Template, err)
	}

	for _, w := range prog.Warnings {
		r.logger.Warn("pragma warning", "template", job.Template, "warning", w.Message, "line", w.Pos.Line)
	}

	out, err := prog.ExecuteString(job.Params)
	if err != nil {
		return fmt.Errorf("execute template %s: %w", job.Template, err)
	}

	outputPath := filepath.Join(root, job.Output)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	content := []byte(out)
	if r.postprocessors.HasProcessors() {
		processed, err := r.postprocessors.Process(outputPath, content)
		if err != nil {
			// ship the raw content rather than losing the run
			r.logger.Warn("post-processing failed", "path", outputPath, "error", err)
		} else {
			content = processed
		}
	}

	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if err := manager.Add(manifest, job.Output, job.Template, runID); err != nil {
		return err
	}

	r.logger.Info("rendered template", "template", job.Template, "output", outputPath)
	return nil
}
