// Package loom is a small text-and-code template engine for generating
// source files. A template document interleaves literal output with three
// kinds of delimited directives: pragmas (`<#@ ... #>`) configure processing
// of the whole document, code fragments (`<# ... #>`) are spliced verbatim
// into the generator program as gad statements, and expression fragments
// (`<#= ... #>`) have their evaluated value written to the output.
//
// The engine is a text splicer, not a parser of the host grammar: code
// fragments are opaque and unbalanced, and a template with mismatched
// nesting only fails when the assembled gad program is compiled.
package loom

import (
	"context"
	"os"

	"github.com/gad-lang/gad"
	"github.com/gad-lang/gad/stdlib/helper"
	"github.com/gad-lang/loom/parser"
)

// Compiler lexes a template document, applies the whitespace normalizer when
// enabled, and assembles the span sequence into an executable Program.
//
//	compiler := loom.New()
//	err := compiler.ParseFile("./versions.loom")
//	if err == nil {
//		prog, err := compiler.Compile()
//		if err == nil {
//			prog.Execute(os.Stdout, map[string]any{"versions": versions})
//		}
//	}
type Compiler struct {
	// Compiler options
	Options
	Module   *gad.ModuleInfo
	spans    []parser.Span
	settings parser.Settings
}

// Options defines template processing behavior.
type Options struct {
	// CleanWhitespace overrides the document's cleanws pragma when non-nil.
	// Default: nil, the pragma decides (off when absent).
	CleanWhitespace *bool
	// GlobalNames declares extra external binding names beyond the ones the
	// document declares with parameter pragmas.
	GlobalNames []string
	// PreCode is spliced before the assembled program, after imports.
	PreCode string
	// Code retains the assembled gad source on the Program for diagnostics.
	Code bool

	Builtins  *gad.Builtins
	ModuleMap *gad.ModuleMap
	Context   context.Context
}

// DefaultOptions leaves every knob at its zero value: the cleanws pragma
// decides normalization and nothing extra is spliced.
var DefaultOptions = Options{}

// New creates and initializes a new Compiler.
func New() *Compiler {
	compiler := new(Compiler)
	compiler.Module = &gad.ModuleInfo{}
	compiler.Options = DefaultOptions
	return compiler
}

// Compile parses and assembles the supplied template string into a Program
// ready to be executed against external bindings.
func Compile(input string, options Options) (*Program, error) {
	comp := New()
	comp.Options = options

	if err := comp.Parse(input); err != nil {
		return nil, err
	}

	return comp.Compile()
}

// MustCompile is the same as Compile, except the input is assumed error
// free. If else, panic.
func MustCompile(input string, options Options) *Program {
	p, err := Compile(input, options)
	if err != nil {
		panic(err)
	}
	return p
}

// CompileFile parses and assembles the template file in given path.
func CompileFile(filename string, options Options) (*Program, error) {
	comp := New()
	comp.Options = options

	if err := comp.ParseFile(filename); err != nil {
		return nil, err
	}

	return comp.Compile()
}

// MustCompileFile is the same as CompileFile, except the input is assumed
// error free. If else, panic.
func MustCompileFile(filename string, options Options) *Program {
	p, err := CompileFile(filename, options)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse lexes the given raw template string.
func (c *Compiler) Parse(input string) error {
	return c.ParseData([]byte(input), "")
}

// ParseData lexes the given raw template bytes, and the filename that
// belongs with it.
func (c *Compiler) ParseData(input []byte, filename string) error {
	spans, err := parser.Lex(string(input), filename)
	if err != nil {
		return err
	}

	c.settings = parser.CollectSettings(spans)

	clean := c.settings.CleanWhitespace
	if c.Options.CleanWhitespace != nil {
		clean = *c.Options.CleanWhitespace
	}
	if clean {
		spans = parser.CleanWhitespace(spans)
	}

	c.spans = spans
	if filename != "" {
		c.Module.Name = filename
	}
	return nil
}

// ParseFile lexes the template file in given path.
func (c *Compiler) ParseFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return c.ParseData(data, filename)
}

// Settings exposes the document-scoped pragma state collected while parsing.
func (c *Compiler) Settings() parser.Settings {
	return c.settings
}

// Compile assembles the parsed spans into a Program. No gad compilation
// happens here; malformed fragments surface when the program is executed,
// from gad's own compiler.
func (c *Compiler) Compile() (*Program, error) {
	src, lineMap := c.assemble()

	builtins := c.Builtins
	if builtins == nil {
		builtins = gad.NewBuiltins()
	}
	builtins = AppendBuiltins(builtins)

	moduleMap := c.ModuleMap
	if moduleMap == nil {
		moduleMap = helper.NewModuleMap()
	}

	ctx := c.Options.Context
	if ctx == nil {
		ctx = context.Background()
	}

	params := make([]string, 0, len(c.settings.Params)+len(c.GlobalNames))
	paramPos := make(map[string]parser.SourcePosition, len(c.settings.Params))
	for _, p := range c.settings.Params {
		if _, ok := paramPos[p.Name]; ok {
			continue
		}
		paramPos[p.Name] = p.Pos
		params = append(params, p.Name)
	}
	for _, name := range c.GlobalNames {
		if _, ok := paramPos[name]; ok {
			continue
		}
		paramPos[name] = parser.SourcePosition{Filename: c.Module.Name}
		params = append(params, name)
	}

	p := &Program{
		Name:      c.Module.Name,
		Params:    params,
		Warnings:  c.settings.Warnings,
		source:    src,
		lineMap:   lineMap,
		paramPos:  paramPos,
		module:    c.Module,
		moduleMap: moduleMap,
		builtins:  builtins,
		context:   ctx,
		cache:     make(map[string]*gad.Bytecode),
	}
	if c.Code {
		p.Code = src
	}
	return p, nil
}
