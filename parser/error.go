package parser

import (
	"errors"
	"fmt"
)

// ErrUnterminatedDirective marks a directive that was opened but never
// closed before end of document.
var ErrUnterminatedDirective = errors.New("unterminated directive")

type ParseError struct {
	Filename string
	Offset   int
	Line     int
	Column   int
	Err      error
}

func (p *ParseError) Error() string {
	name := p.Filename
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("loom error in <%s:%d:%d>: %v (offset %d)", name, p.Line, p.Column, p.Err, p.Offset)
}

func (p *ParseError) Unwrap() error {
	return p.Err
}
