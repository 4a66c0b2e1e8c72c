package parser

import "strings"

// Directive delimiters. The opening token is shared; the byte after it
// selects the directive kind. The closing token is fixed and never nests, so
// a directive body may not contain it as text.
const (
	openTok    = "<#"
	closeTok   = "#>"
	pragmaMark = '@'
	exprMark   = '='
)

// Lex splits a template document into an ordered span sequence. Every byte of
// the input is covered by exactly one span and no two adjacent spans are both
// literals. A directive left open at end of document aborts lexing with a
// *ParseError wrapping ErrUnterminatedDirective.
func Lex(input, filename string) ([]Span, error) {
	var (
		spans []Span
		cur   = position{Line: 1, Column: 1}
	)

	for cur.Offset < len(input) {
		rel := strings.Index(input[cur.Offset:], openTok)
		if rel < 0 {
			spans = append(spans, literalSpan(input[cur.Offset:], cur, filename))
			break
		}

		if rel > 0 {
			text := input[cur.Offset : cur.Offset+rel]
			spans = append(spans, literalSpan(text, cur, filename))
			cur = cur.advance(text)
		}

		start := cur
		kind := KindCode
		innerOff := start.Offset + len(openTok)
		if innerOff < len(input) {
			switch input[innerOff] {
			case pragmaMark:
				kind = KindPragma
				innerOff++
			case exprMark:
				kind = KindExpr
				innerOff++
			}
		}

		end := strings.Index(input[innerOff:], closeTok)
		if end < 0 {
			return nil, &ParseError{
				Filename: filename,
				Offset:   start.Offset,
				Line:     start.Line,
				Column:   start.Column,
				Err:      ErrUnterminatedDirective,
			}
		}

		origin := input[start.Offset : innerOff+end+len(closeTok)]
		spans = append(spans, Span{
			Kind:    kind,
			Content: input[innerOff : innerOff+end],
			Origin:  origin,
			Pos:     start.source(filename),
		})
		cur = cur.advance(origin)
	}

	return spans, nil
}

func literalSpan(text string, at position, filename string) Span {
	return Span{
		Kind:    KindLiteral,
		Content: text,
		Origin:  text,
		Pos:     at.source(filename),
	}
}

type position struct {
	Offset int
	Line   int
	Column int
}

func (p position) source(filename string) SourcePosition {
	return SourcePosition{Offset: p.Offset, Line: p.Line, Column: p.Column, Filename: filename}
}

func (p position) advance(text string) position {
	p.Offset += len(text)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			p.Line++
			p.Column = 1
		} else {
			p.Column++
		}
	}
	return p
}
