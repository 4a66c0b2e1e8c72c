package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gad-lang/loom"
	"github.com/gad-lang/loom/engine"
	"github.com/gad-lang/loom/postprocess"
)

var (
	gadSource  bool
	goImports  bool
	outFile    = ""
	configFile = ""
	bindings   = map[string]any{}
)

func init() {
	flag.BoolVar(&gadSource, "gad", false, "Print the assembled gad source instead of rendering.")
	flag.BoolVar(&goImports, "goimports", false, "Run goimports on generated Go files (config mode).")
	flag.StringVar(&outFile, "out", outFile, "Output file.")
	flag.StringVar(&configFile, "config", configFile, "Render the jobs of a YAML config.")
	flag.Func("bind", "Bind NAME=VALUE for a single-template render (repeatable).", func(s string) error {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return fmt.Errorf("expected NAME=VALUE, got %q", s)
		}
		bindings[name] = value
		return nil
	})

	flag.Parse()
}

func main() {
	if configFile != "" {
		runConfig()
		return
	}

	fileName := flag.Arg(0)
	if fileName == "" {
		checkErr(errors.New("template file name is required"))
	}

	var (
		input []byte
		err   error
	)
	if fileName == "-" {
		input, err = io.ReadAll(os.Stdin)
		fileName = "(stdin)"
	} else {
		input, err = os.ReadFile(fileName)
	}
	checkErr(err)

	comp := loom.New()
	checkErr(comp.ParseData(input, fileName))

	for _, w := range comp.Settings().Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	prog, err := comp.Compile()
	checkErr(err)

	out := io.WriteCloser(os.Stdout)
	if outFile != "" {
		out, err = os.Create(outFile)
		checkErr(err)
		defer out.Close()
	}

	if gadSource {
		_, err = io.WriteString(out, prog.Source())
		checkErr(err)
		return
	}

	checkErr(prog.Execute(out, bindings))
}

func runConfig() {
	cfg, err := engine.LoadConfig(configFile)
	checkErr(err)

	opts := []engine.Option{}
	if goImports {
		opts = append(opts, engine.WithPostProcessor(postprocess.NewGoImports()))
	}

	checkErr(engine.New(opts...).Run(cfg))
}

func checkErr(err error) {
	if err != nil {
		loom.HumanizeError(os.Stderr, err)
		os.Exit(1)
	}
}
