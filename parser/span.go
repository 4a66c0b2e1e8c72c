package parser

import (
	"fmt"
	"strings"
)

type Kind int8

const (
	KindLiteral Kind = iota + 1
	KindPragma
	KindCode
	KindExpr
)

var kindNames = [...]string{
	KindLiteral: "LITERAL",
	KindPragma:  "PRAGMA",
	KindCode:    "CODE",
	KindExpr:    "EXPR",
}

func (k Kind) String() string {
	if k > 0 && k <= KindExpr {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// SourcePosition locates a span in the template document. Offset is a byte
// offset; Line and Column are 1-based.
type SourcePosition struct {
	Offset   int
	Line     int
	Column   int
	Filename string
}

func (s SourcePosition) String() string {
	var ret string
	if s.Filename != "" {
		ret = s.Filename + " "
	}
	return ret + fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Span is one region of a template document. Content is the literal text for
// KindLiteral spans and the text between the delimiters for directive spans.
// Origin is the exact source slice the span was lexed from, delimiters
// included, so concatenating the Origins of a freshly lexed sequence yields
// the input document unchanged.
type Span struct {
	Kind    Kind
	Content string
	Origin  string
	Pos     SourcePosition
}

// Reconstruct concatenates the origin text of spans in order.
func Reconstruct(spans []Span) string {
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(sp.Origin)
	}
	return b.String()
}
