package loom

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/gad-lang/gad"
	gp "github.com/gad-lang/gad/parser"
	"github.com/gad-lang/gad/parser/source"
	"github.com/gad-lang/loom/parser"
)

// BindingError reports an emission run that referenced a name absent from
// the supplied bindings: either a declared parameter that was not bound, or
// a fragment naming something the run never defined. Fatal to that run only.
type BindingError struct {
	Template string
	Name     string
	Pos      parser.SourcePosition
	Err      error
}

func (e *BindingError) Error() string {
	tpl := e.Template
	if tpl == "" {
		tpl = "-"
	}
	return fmt.Sprintf("loom: template <%s>: unbound name %q at %d:%d", tpl, e.Name, e.Pos.Line, e.Pos.Column)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// FragmentError reports a spliced fragment the gad toolchain rejected,
// either at compile time or while the generator program ran. The position
// points at the originating span in the template, not at the generated gad
// source.
type FragmentError struct {
	Template string
	Pos      parser.SourcePosition
	Err      error
}

func (e *FragmentError) Error() string {
	tpl := e.Template
	if tpl == "" {
		tpl = "-"
	}
	return fmt.Sprintf("loom: template <%s>: fragment at %d:%d: %v", tpl, e.Pos.Line, e.Pos.Column, e.Err)
}

func (e *FragmentError) Unwrap() error {
	return e.Err
}

var (
	rgxUnresolved = regexp.MustCompile(`unresolved reference "?([$\w]+)"?`)
	rgxErrorPos   = regexp.MustCompile(`(\d+):(\d+)`)
)

// wrapCompileError maps a gad compile failure onto the template. An
// unresolved reference means a fragment used a name the run did not bind;
// anything else is the host toolchain rejecting a spliced fragment.
func (p *Program) wrapCompileError(err error, headerLines int) error {
	msg := err.Error()

	var pos parser.SourcePosition
	if m := rgxErrorPos.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		if at, ok := p.position(line, headerLines); ok {
			pos = at
		}
	}

	if m := rgxUnresolved.FindStringSubmatch(msg); m != nil {
		return &BindingError{Template: p.Name, Name: m[1], Pos: pos, Err: err}
	}
	return &FragmentError{Template: p.Name, Pos: pos, Err: err}
}

// wrapRuntimeError attributes a gad runtime failure to the originating span
// through the line map, following the stack trace the way the gad tooling
// itself does.
func (p *Program) wrapRuntimeError(err error, headerLines int) error {
	var rt *gad.RuntimeError
	if errors.As(err, &rt) {
		if st := rt.StackTrace(); len(st) > 0 {
			if fs := rt.FileSet(); fs != nil {
				gadPos := fs.Position(source.Pos(st[len(st)-1].Offset))
				if at, ok := p.position(gadPos.Line, headerLines); ok {
					return &FragmentError{Template: p.Name, Pos: at, Err: err}
				}
			}
		}
	}
	return &FragmentError{Template: p.Name, Err: err}
}

// HumanizeError writes a readable rendition of any loom or gad error.
func HumanizeError(out io.Writer, err error) {
	var (
		bindErr  *BindingError
		fragErr  *FragmentError
		parseErr *parser.ParseError
	)
	switch {
	case errors.As(err, &bindErr):
		fmt.Fprintf(out, "%v\n", bindErr)
	case errors.As(err, &parseErr):
		fmt.Fprintf(out, "%v\n", parseErr)
	case errors.As(err, &fragErr):
		fmt.Fprintf(out, "%v\n", fragErr)
		humanizeGad(out, fragErr.Err)
	default:
		humanizeGad(out, err)
	}
}

func humanizeGad(out io.Writer, err error) {
	switch t := err.(type) {
	case *gad.RuntimeError:
		fmt.Fprintf(out, "%+v\n", t)
		if st := t.StackTrace(); len(st) > 0 {
			pos := t.FileSet().Position(source.Pos(st[len(st)-1].Offset))
			pos.TraceLines(out, 20, 20)
		}
	case *gp.ErrorList, *gad.CompilerError:
		fmt.Fprintf(out, "%+20.20v\n", t)
	default:
		fmt.Fprintf(out, "ERROR: %v\n", err)
	}
}
