package loom

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gad-lang/loom/parser"
)

func runExpect(t *testing.T, tpl string, data map[string]any, expected string) {
	t.Helper()
	prog, res, err := runt(tpl, data)

	if err != nil {
		if prog != nil {
			fmt.Println("-----------")
			fmt.Println(prog.Code)
			fmt.Println("-----------")
		}
		t.Fatal(err.Error())
	}
	if res != expected {
		if prog != nil {
			fmt.Println("-----------")
			fmt.Println(prog.Code)
			fmt.Println("-----------")
		}
		t.Fatalf("Expected {%s} got {%s}.", expected, res)
	}
}

func runt(tpl string, data map[string]any) (prog *Program, res string, err error) {
	if prog, err = Compile(tpl, Options{Code: true}); err != nil {
		return
	}
	res, err = prog.ExecuteString(data)
	return
}

func Test_LiteralOnly(t *testing.T) {
	for _, doc := range []string{
		"plain text",
		"multi\nline\ntext\n",
		"quotes \"inside\" and \\backslashes\\",
		"gad-looking text: ${x} # comment := for",
		"tabs\tand trailing spaces  \n",
	} {
		runExpect(t, doc, nil, doc)
	}
}

func Test_Expression(t *testing.T) {
	runExpect(t, `A<#= x #>B`, map[string]any{"x": 3}, `A3B`)
	runExpect(t, `A<#= x #>B`, map[string]any{"x": "v"}, `AvB`)
	runExpect(t, `<#= a #>-<#= b #>`, map[string]any{"a": 1, "b": 2}, `1-2`)
}

func Test_Loop(t *testing.T) {
	runExpect(t,
		`<# for v in versions { #>V<#= v #>;<# } #>`,
		map[string]any{"versions": []any{7, 8}},
		`V7;V8;`)
}

func Test_NestedControlFlow(t *testing.T) {
	runExpect(t,
		`<# for v in vals { #><# if v > 1 { #>big<# } else { #>small<# } #><# } #>`,
		map[string]any{"vals": []any{1, 2}},
		`smallbig`)
}

func Test_MultilineCodeFragment(t *testing.T) {
	runExpect(t, `<#
sum := 0
for v in vals {
	sum += v
}
#><#= sum #>`,
		map[string]any{"vals": []any{1, 2, 3}},
		"6")
}

func Test_CleanWhitespace(t *testing.T) {
	tpl := "<#@ template cleanws=\"true\" #>\n" +
		"items:\n" +
		"<# for v in vals { #>\n" +
		"- <#= v #>\n" +
		"<# } #>\n"
	runExpect(t, tpl, map[string]any{"vals": []any{1, 2}}, "items:\n- 1\n- 2\n")
}

func Test_CleanWhitespaceKeepsExpressionLines(t *testing.T) {
	tpl := "<#@ template cleanws=\"true\" #>\n" +
		"a\n" +
		"  <#= x #>\n" +
		"b\n"
	runExpect(t, tpl, map[string]any{"x": 5}, "a\n  5\nb\n")
}

func Test_CleanWhitespaceOffByDefault(t *testing.T) {
	tpl := "x\n<# for i in vals { #>\n<# } #>\ny"
	runExpect(t, tpl, map[string]any{"vals": []any{1}}, "x\n\n\ny")
}

func Test_CleanWhitespaceOptionOverride(t *testing.T) {
	on := true
	prog, err := Compile("x\n<# for i in vals { #>\n<# } #>\ny", Options{CleanWhitespace: &on})
	require.NoError(t, err)
	res, err := prog.ExecuteString(map[string]any{"vals": []any{1}})
	require.NoError(t, err)
	require.Equal(t, "x\ny", res)
}

func Test_DeclaredParameterMissing(t *testing.T) {
	prog, err := Compile(`<#@ parameter name="x" #>v=<#= x #>`, DefaultOptions)
	require.NoError(t, err)

	_, err = prog.ExecuteString()
	var bindErr *BindingError
	require.ErrorAs(t, err, &bindErr)
	require.Equal(t, "x", bindErr.Name)

	// the program survives a failed run and works with corrected bindings
	res, err := prog.ExecuteString(map[string]any{"x": 1})
	require.NoError(t, err)
	require.Equal(t, "v=1", res)
}

func Test_UnboundName(t *testing.T) {
	prog, err := Compile(`A<#= nope #>B`, DefaultOptions)
	require.NoError(t, err)

	_, err = prog.ExecuteString()
	var bindErr *BindingError
	require.ErrorAs(t, err, &bindErr)
	require.Equal(t, "nope", bindErr.Name)

	res, err := prog.ExecuteString(map[string]any{"nope": "!"})
	require.NoError(t, err)
	require.Equal(t, "A!B", res)
}

func Test_ConcurrentEmissions(t *testing.T) {
	prog, err := Compile(`A<#= x #>B`, DefaultOptions)
	require.NoError(t, err)

	const runs = 8
	results := make([]string, runs)
	errs := make([]error, runs)

	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = prog.ExecuteString(map[string]any{"x": i})
		}(i)
	}
	wg.Wait()

	for i := 0; i < runs; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, fmt.Sprintf("A%dB", i), results[i])
	}
}

func Test_UnknownPragmaWarns(t *testing.T) {
	prog, res, err := runt(`<#@ frobnicate #>hi`, nil)
	require.NoError(t, err)
	require.Equal(t, "hi", res)
	require.Len(t, prog.Warnings, 1)
	require.Contains(t, prog.Warnings[0].Message, "unknown pragma")
}

func Test_ImportPragma(t *testing.T) {
	prog, err := Compile(`<#@ import module="strings" as="str" #>`, DefaultOptions)
	require.NoError(t, err)
	require.Contains(t, prog.Source(), `str := import("strings")`)
}

func Test_EmitCoalescing(t *testing.T) {
	prog, err := Compile(`A<#@ frobnicate #>B`, DefaultOptions)
	require.NoError(t, err)
	require.Contains(t, prog.Source(), `loom$emit("AB")`)
}

func Test_Runner(t *testing.T) {
	prog, err := Compile(`<#= a #>+<#= b #>`, DefaultOptions)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = prog.Runner().Bind("a", 1).Bind("b", 2).Out(&buf).Run()
	require.NoError(t, err)
	require.Equal(t, "1+2", buf.String())
}

func Test_FailedRunWritesNothing(t *testing.T) {
	prog, err := Compile(`partial<#= missing #>`, DefaultOptions)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = prog.Execute(&buf)
	require.Error(t, err)
	require.Zero(t, buf.Len())
}

func Test_UnterminatedDirective(t *testing.T) {
	_, err := Compile(`ok so far <# oops`, DefaultOptions)
	require.ErrorIs(t, err, parser.ErrUnterminatedDirective)

	var parseErr *parser.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 10, parseErr.Offset)
}

func Test_VersionsTemplate(t *testing.T) {
	prog, err := CompileFile("testdata/versions.loom", DefaultOptions)
	require.NoError(t, err)

	res, err := prog.ExecuteString(map[string]any{
		"versions": []any{
			map[string]any{"name": "One", "number": 1},
			map[string]any{"name": "Two", "number": 2},
		},
	})
	require.NoError(t, err)
	require.Equal(t,
		"// Code generated by loomc. DO NOT EDIT.\n\n"+
			"package protocol\n\n"+
			"const (\n"+
			"\tVersionOne Version = 1\n"+
			"\tVersionTwo Version = 2\n"+
			")\n",
		res)
}

func Test_FragmentErrorPosition(t *testing.T) {
	prog, err := Compile("line one\n<# this is not gad at all ((( #>", DefaultOptions)
	require.NoError(t, err)

	_, err = prog.ExecuteString()
	var fragErr *FragmentError
	require.ErrorAs(t, err, &fragErr)
	require.Equal(t, 2, fragErr.Pos.Line)
}

func Test_FragmentErrorPositionAfterOpeningNewline(t *testing.T) {
	prog, err := Compile("<#\nx := 1\nbad ((( \n#>", DefaultOptions)
	require.NoError(t, err)

	_, err = prog.ExecuteString()
	var fragErr *FragmentError
	require.ErrorAs(t, err, &fragErr)
	require.Equal(t, 3, fragErr.Pos.Line)
}

func Test_HumanizeRuntimeError(t *testing.T) {
	prog, err := Compile("<# x := nil #>\n<#= x() #>", DefaultOptions)
	require.NoError(t, err)

	_, err = prog.ExecuteString()
	var fragErr *FragmentError
	require.ErrorAs(t, err, &fragErr)

	var buf bytes.Buffer
	HumanizeError(&buf, err)
	require.NotEmpty(t, buf.String())
}
