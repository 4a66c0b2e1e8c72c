package loom

import (
	"io"
	"os"
)

// Runner executes a Program with a fluent binding surface. Each Runner is a
// single emission run; the underlying Program stays shareable.
type Runner struct {
	p    *Program
	out  io.Writer
	data []map[string]any
}

func (p *Program) Runner() *Runner {
	return &Runner{p: p, out: os.Stdout}
}

func (r *Runner) Program() *Program {
	return r.p
}

// Bind adds a single named binding.
func (r *Runner) Bind(name string, value any) *Runner {
	r.data = append(r.data, map[string]any{name: value})
	return r
}

// BindAll adds a map of bindings; later maps win on key collisions.
func (r *Runner) BindAll(m map[string]any) *Runner {
	r.data = append(r.data, m)
	return r
}

func (r *Runner) Out(w io.Writer) *Runner {
	r.out = w
	return r
}

func (r *Runner) Run() error {
	return r.p.Execute(r.out, r.data...)
}
