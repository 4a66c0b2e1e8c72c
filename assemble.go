package loom

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/gad-lang/loom/parser"
)

// assemble translates the span sequence 1:1 into the generator program: a
// plain gad source where literals become loom$emit calls with quoted text,
// expressions become loom$emit calls with the fragment as argument, and code
// fragments are spliced verbatim. Pragmas have no runtime effect left at
// this point and are dropped. Adjacent literal emits are coalesced, which
// also bridges the holes dropped pragmas leave behind.
//
// The returned line map records, per generated source line, the template
// position it originates from, so downstream gad failures can be attributed
// to the offending span.
func (c *Compiler) assemble() (string, []parser.SourcePosition) {
	w := &gadWriter{}

	for _, imp := range c.settings.Imports {
		w.line(imp.Alias+` := import("`+imp.Module+`")`, imp.Pos)
	}
	if c.PreCode != "" {
		for _, ln := range strings.Split(c.PreCode, "\n") {
			w.line(ln, parser.SourcePosition{Filename: c.Module.Name})
		}
	}

	var (
		pending    strings.Builder
		pendingPos parser.SourcePosition
	)

	flush := func() {
		if pending.Len() == 0 {
			return
		}
		w.line("loom$emit("+strconv.Quote(pending.String())+")", pendingPos)
		pending.Reset()
	}

	for _, sp := range c.spans {
		switch sp.Kind {
		case parser.KindLiteral:
			if pending.Len() == 0 {
				pendingPos = sp.Pos
			}
			pending.WriteString(sp.Content)
		case parser.KindExpr:
			flush()
			w.fragment("loom$emit(", sp.Content, ")", sp.Pos)
		case parser.KindCode:
			flush()
			w.fragment("", sp.Content, "", sp.Pos)
		case parser.KindPragma:
			// effect already applied while parsing
		}
	}
	flush()

	return w.b.String(), w.lineMap
}

type gadWriter struct {
	b       strings.Builder
	lineMap []parser.SourcePosition
}

func (w *gadWriter) line(text string, pos parser.SourcePosition) {
	w.b.WriteString(text)
	w.b.WriteByte('\n')
	w.lineMap = append(w.lineMap, pos)
}

// fragment splices a verbatim template fragment, keeping its internal line
// structure so every generated line maps back to a template line. Blank
// lines trimmed off the front still count toward the template line of what
// remains, so a fragment opening with a newline keeps accurate attribution.
func (w *gadWriter) fragment(prefix, frag, suffix string, pos parser.SourcePosition) {
	body := strings.TrimLeftFunc(frag, unicode.IsSpace)
	skipped := strings.Count(frag[:len(frag)-len(body)], "\n")
	lines := strings.Split(strings.TrimRightFunc(body, unicode.IsSpace), "\n")
	for i, ln := range lines {
		text := strings.TrimSuffix(ln, "\r")
		if i == 0 {
			text = prefix + text
		}
		if i == len(lines)-1 {
			text += suffix
		}
		at := pos
		if n := skipped + i; n > 0 {
			at.Line += n
			at.Column = 1
		}
		w.line(text, at)
	}
}
