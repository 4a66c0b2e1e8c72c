package engine

import (
	"log/slog"

	"github.com/gad-lang/loom/postprocess"
)

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithOutputRoot(root string) Option {
	return func(e *Engine) {
		e.outputRoot = root
	}
}

func WithFailureMode(mode FailureMode) Option {
	return func(e *Engine) {
		e.failMode = mode
	}
}

func WithPostProcessor(p postprocess.Processor) Option {
	return func(e *Engine) {
		e.postprocessors.Add(p)
	}
}
