package postprocess

import (
	"fmt"
	"go/format"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"
)

// GoImports formats generated Go files and fixes their import blocks with
// goimports, falling back to plain gofmt when import resolution fails.
// Files that are not Go sources pass through untouched.
type GoImports struct {
	TabWidth  int
	TabIndent bool
	AllErrors bool
	Comments  bool
}

func NewGoImports() *GoImports {
	return &GoImports{
		TabWidth:  8,
		TabIndent: true,
		Comments:  true,
	}
}

func (g *GoImports) ProcessContent(filePath string, content []byte) ([]byte, error) {
	if strings.ToLower(filepath.Ext(filePath)) != ".go" {
		return content, nil
	}

	formatted, err := imports.Process(filePath, content, &imports.Options{
		AllErrors: g.AllErrors,
		Comments:  g.Comments,
		TabIndent: g.TabIndent,
		TabWidth:  g.TabWidth,
	})
	if err != nil {
		formatted, fmtErr := format.Source(content)
		if fmtErr != nil {
			return nil, fmt.Errorf("format Go output with goimports (%w) and gofmt (%w)", err, fmtErr)
		}
		return formatted, nil
	}

	return formatted, nil
}
