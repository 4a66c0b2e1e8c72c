package loom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/gad-lang/gad"
	"github.com/gad-lang/loom/parser"
)

// Program is an assembled generator program. It is immutable after assembly
// and may be shared by any number of concurrent emission runs; every run
// gets its own VM, bindings and output buffer. The only internal mutable
// state is the bytecode cache, guarded by a mutex.
type Program struct {
	Name string
	// Params are the binding names the document declares; each must be
	// present in the bindings of every emission run.
	Params []string
	// Warnings collected from the document's pragmas. Never fatal.
	Warnings []parser.Warning
	// Code is the assembled gad source, retained when Options.Code was set.
	Code string

	source    string
	lineMap   []parser.SourcePosition
	paramPos  map[string]parser.SourcePosition
	module    *gad.ModuleInfo
	moduleMap *gad.ModuleMap
	builtins  *gad.Builtins
	context   context.Context

	mu    sync.RWMutex
	cache map[string]*gad.Bytecode
}

// Source returns the assembled gad source, without the per-run global
// header.
func (p *Program) Source() string {
	return p.source
}

// Execute runs the generator program against the supplied bindings and
// writes the produced text to w. Output reaches w only when the run
// completes; a failed run writes nothing. The program itself is untouched by
// failures and may be retried with corrected bindings.
func (p *Program) Execute(w io.Writer, data ...map[string]any) error {
	out, err := p.ExecuteString(data...)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// ExecuteString is Execute returning the produced text directly.
func (p *Program) ExecuteString(data ...map[string]any) (string, error) {
	globals := make(gad.Dict)
	for _, d := range data {
		for name, value := range d {
			obj, err := gad.ToObject(value)
			if err != nil {
				return "", fmt.Errorf("loom: binding %q: %w", name, err)
			}
			globals[name] = obj
		}
	}

	for _, name := range p.Params {
		if _, ok := globals[name]; !ok {
			return "", &BindingError{Template: p.Name, Name: name, Pos: p.paramPos[name]}
		}
	}

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	headerLines := 0
	if len(names) > 0 {
		headerLines = 1
	}

	bc, err := p.bytecode(names)
	if err != nil {
		return "", p.wrapCompileError(err, headerLines)
	}

	var buf bytes.Buffer
	vm := gad.NewVM(bc).Setup(gad.SetupOpts{
		Builtins: p.builtins,
		ToRawStrHandler: func(vm *gad.VM, s gad.Str) gad.RawStr {
			return gad.RawStr(s)
		},
	})
	if _, err = vm.RunOpts(&gad.RunOpts{
		StdOut:  &buf,
		StdErr:  io.Discard,
		Globals: globals,
	}); err != nil {
		return "", p.wrapRuntimeError(err, headerLines)
	}

	return buf.String(), nil
}

// bytecode compiles the program for one set of global names, caching the
// result. Bindings enter gad as globals and globals must be declared in
// source, so each distinct name set gets its own bytecode.
func (p *Program) bytecode(names []string) (*gad.Bytecode, error) {
	key := strings.Join(names, ",")

	p.mu.RLock()
	bc, ok := p.cache[key]
	p.mu.RUnlock()
	if ok {
		return bc, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if bc, ok = p.cache[key]; ok {
		return bc, nil
	}

	src := p.source
	if len(names) > 0 {
		src = "global (" + strings.Join(names, ", ") + ")\n" + src
	}

	bc, err := gad.Compile([]byte(src), gad.CompileOptions{
		CompilerOptions: gad.CompilerOptions{
			Context:     p.context,
			Module:      p.module,
			ModuleMap:   p.moduleMap,
			SymbolTable: gad.NewSymbolTable(p.builtins),
		},
	})
	if err != nil {
		return nil, err
	}

	p.cache[key] = bc
	return bc, nil
}

// position translates a line of the compiled gad source back to the template
// position it was assembled from.
func (p *Program) position(line, headerLines int) (parser.SourcePosition, bool) {
	idx := line - headerLines - 1
	if idx < 0 || idx >= len(p.lineMap) {
		return parser.SourcePosition{}, false
	}
	return p.lineMap[idx], true
}
