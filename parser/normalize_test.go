package parser

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// flat renders kinds and contents only, which is what normalization is
// allowed to change.
func flat(spans []Span) []string {
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = fmt.Sprintf("%s:%q", sp.Kind, sp.Content)
	}
	return out
}

func lexed(t *testing.T, input string) []Span {
	t.Helper()
	spans, err := Lex(input, "")
	if err != nil {
		t.Fatal(err)
	}
	return spans
}

func TestCleanWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "code on own line",
			input: "a\n  <# x #>  \nb",
			want:  []string{`LITERAL:"a\n"`, `CODE:" x "`, `LITERAL:"b"`},
		},
		{
			name:  "code with text before stays",
			input: "a<# x #>\nb",
			want:  []string{`LITERAL:"a"`, `CODE:" x "`, `LITERAL:"\nb"`},
		},
		{
			name:  "code with text after stays",
			input: "  <# x #>b\n",
			want:  []string{`LITERAL:"  "`, `CODE:" x "`, `LITERAL:"b\n"`},
		},
		{
			name:  "expression never trimmed",
			input: "a\n  <#= x #>\nb",
			want:  []string{`LITERAL:"a\n  "`, `EXPR:" x "`, `LITERAL:"\nb"`},
		},
		{
			name:  "pragma on own line",
			input: "<#@ template #>\ntext",
			want:  []string{`PRAGMA:" template "`, `LITERAL:"text"`},
		},
		{
			name:  "directive alone in document",
			input: "<# x #>",
			want:  []string{`CODE:" x "`},
		},
		{
			name:  "directive at end of document",
			input: "a\n  <# x #>",
			want:  []string{`LITERAL:"a\n"`, `CODE:" x "`},
		},
		{
			name:  "adjacent directives share a line",
			input: "  <# a #><# b #>\nrest",
			want:  []string{`CODE:" a "`, `CODE:" b "`, `LITERAL:"rest"`},
		},
		{
			name:  "consecutive directive lines",
			input: "\n  <# a #>\n  <# b #>\n",
			want:  []string{`LITERAL:"\n"`, `CODE:" a "`, `CODE:" b "`},
		},
		{
			name:  "expression blocks transparency",
			input: "<#= e #>  <# a #>\n",
			want:  []string{`EXPR:" e "`, `LITERAL:"  "`, `CODE:" a "`, `LITERAL:"\n"`},
		},
		{
			name:  "blank line after directive line survives",
			input: "  <# x #>  \n\nrest",
			want:  []string{`CODE:" x "`, `LITERAL:"\nrest"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanWhitespace(lexed(t, tt.input))
			if diff := cmp.Diff(tt.want, flat(got)); diff != "" {
				t.Errorf("normalized spans mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCleanWhitespaceIdempotent(t *testing.T) {
	inputs := []string{
		"a\n  <# x #>  \nb",
		"<#@ template #>\ntext",
		"\n  <# a #>\n  <# b #>\n",
		"items:\n<# for v in vals { #>\n- <#= v #>\n<# } #>\n",
		"plain text, no directives\n",
		"  <# x #>  \n\nrest",
		"<# x #>\nrest",
		"a\n<# x #>\n\n\nb\n",
	}
	for _, input := range inputs {
		once := CleanWhitespace(lexed(t, input))
		twice := CleanWhitespace(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("CleanWhitespace not idempotent for %q (-once +twice):\n%s", input, diff)
		}
	}
}

func TestCleanWhitespacePure(t *testing.T) {
	input := "a\n  <# x #>  \nb"
	spans := lexed(t, input)
	CleanWhitespace(spans)
	if diff := cmp.Diff(lexed(t, input), spans); diff != "" {
		t.Errorf("CleanWhitespace mutated its input (-want +got):\n%s", diff)
	}
}
