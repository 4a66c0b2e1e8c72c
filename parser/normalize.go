package parser

import "strings"

// CleanWhitespace trims the formatting noise that directive lines contribute
// to output. A Code or Pragma span that occupies its own line loses the
// indentation before its opening delimiter and the blanks plus newline after
// its closing delimiter; the template author's indentation then does not leak
// into the generated text. Expression spans are never touched, their
// surrounding whitespace is intended output.
//
// The pass is pure and idempotent: it returns a new sequence, every trim
// decision is made against the incoming spans, and a literal whose Content
// diverged from its Origin was trimmed before, so a second application does
// not touch it. A blank line after a directive line therefore survives: the
// first pass consumes the directive's own line ending and the leftover
// newline is recognizable as already-trimmed output.
func CleanWhitespace(spans []Span) []Span {
	keepStart := make([]int, len(spans))
	keepEnd := make([]int, len(spans))
	for i, sp := range spans {
		keepEnd[i] = len(sp.Content)
	}

	for i := range spans {
		switch spans[i].Kind {
		case KindCode, KindPragma:
			if leadingClear(spans, i) && trailingClear(spans, i) {
				cutLeading(spans, i, keepEnd)
				cutTrailing(spans, i, keepStart)
			}
		}
	}

	out := make([]Span, len(spans))
	copy(out, spans)
	for i := range out {
		if keepStart[i] >= keepEnd[i] {
			out[i].Content = ""
		} else {
			out[i].Content = out[i].Content[keepStart[i]:keepEnd[i]]
		}
	}

	return compact(out)
}

// leadingClear reports whether span i is preceded on its line only by
// blanks. Code and Pragma spans are transparent to the check since they emit
// no text; Expression spans are not.
func leadingClear(spans []Span, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch spans[j].Kind {
		case KindLiteral:
			c := spans[j].Content
			if nl := strings.LastIndexByte(c, '\n'); nl >= 0 {
				return isBlank(c[nl+1:])
			}
			if !isBlank(c) {
				return false
			}
		case KindExpr:
			return false
		}
	}
	return true
}

// trailingClear reports whether span i is followed only by blanks up to and
// including the next newline. End of document counts as a line end.
func trailingClear(spans []Span, i int) bool {
	for j := i + 1; j < len(spans); j++ {
		switch spans[j].Kind {
		case KindLiteral:
			c := spans[j].Content
			if nl := strings.IndexByte(c, '\n'); nl >= 0 {
				return isBlank(c[:nl])
			}
			if !isBlank(c) {
				return false
			}
		case KindExpr:
			return false
		}
	}
	return true
}

// cutLeading marks the indentation before span i for removal: every
// all-blank literal to its left up to the nearest newline, which stays. A
// literal that was trimmed by an earlier application ends the walk.
func cutLeading(spans []Span, i int, keepEnd []int) {
	for j := i - 1; j >= 0; j-- {
		if spans[j].Kind != KindLiteral {
			continue
		}
		if spans[j].Content != spans[j].Origin {
			return
		}
		c := spans[j].Content
		if nl := strings.LastIndexByte(c, '\n'); nl >= 0 {
			if nl+1 < keepEnd[j] {
				keepEnd[j] = nl + 1
			}
			return
		}
		keepEnd[j] = 0
	}
}

// cutTrailing marks the blanks after span i up to and including the next
// newline for removal, with the same already-trimmed guard as cutLeading.
func cutTrailing(spans []Span, i int, keepStart []int) {
	for j := i + 1; j < len(spans); j++ {
		if spans[j].Kind != KindLiteral {
			continue
		}
		if spans[j].Content != spans[j].Origin {
			return
		}
		c := spans[j].Content
		if nl := strings.IndexByte(c, '\n'); nl >= 0 {
			if nl+1 > keepStart[j] {
				keepStart[j] = nl + 1
			}
			return
		}
		keepStart[j] = len(c)
	}
}

// compact drops literals emptied by trimming and merges literals that became
// adjacent.
func compact(spans []Span) []Span {
	out := spans[:0]
	for _, sp := range spans {
		if sp.Kind == KindLiteral {
			if sp.Content == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].Kind == KindLiteral {
				out[n-1].Content += sp.Content
				out[n-1].Origin += sp.Origin
				continue
			}
		}
		out = append(out, sp)
	}
	return out
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' && s[i] != '\r' {
			return false
		}
	}
	return true
}
