// Package engine orchestrates generation runs: it compiles loom templates,
// executes them with the bindings a job config supplies, post-processes the
// output and writes the result files plus a manifest.
package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/gad-lang/loom/postprocess"
	"github.com/gad-lang/loom/state"
)

type Engine struct {
	logger         *slog.Logger
	outputRoot     string
	failMode       FailureMode
	renderer       *Renderer
	cache          *ProgramCache
	postprocessors *postprocess.Chain
}

// FailureMode decides how a run reacts to a failing job.
type FailureMode int

const (
	// FailFast aborts the run on the first failing job.
	FailFast FailureMode = iota
	// FailAtEnd renders every job and reports the accumulated failures.
	FailAtEnd
	// BestEffort renders every job and reports success regardless.
	BestEffort
)

func New(opts ...Option) *Engine {
	e := &Engine{
		logger:         slog.Default(),
		outputRoot:     "./out",
		failMode:       FailFast,
		cache:          NewProgramCache(),
		postprocessors: postprocess.NewChain(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.renderer = NewRenderer(e.logger, e.cache, e.postprocessors)

	return e
}

// Run renders every job in cfg. Each run is stamped with a fresh id that
// ends up on the manifest entries it produced.
func (e *Engine) Run(cfg *Config) error {
	root := e.outputRoot
	if cfg.OutputRoot != "" {
		root = cfg.OutputRoot
	}

	manager := state.NewManager(root)
	manifest, err := manager.Load()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := e.logger.With("run_id", runID)
	log.Info("starting generation run", "jobs", len(cfg.Jobs), "output_root", root)

	var multiErr MultiError
	for _, job := range cfg.Jobs {
		if err := e.renderer.RenderJob(root, job, manager, manifest, runID); err != nil {
			if e.failMode == FailFast {
				return err
			}
			multiErr.Add(job.Template, "generation failed", err)
		}
	}

	if err := manager.Save(manifest); err != nil {
		return err
	}

	if multiErr.HasErrors() && e.failMode != BestEffort {
		return &multiErr
	}

	log.Info("generation run complete")
	return nil
}

// AddPostProcessor appends a processor to the chain applied to every
// generated file, in order.
func (e *Engine) AddPostProcessor(p postprocess.Processor) {
	e.postprocessors.Add(p)
}
