package loom

import "github.com/gad-lang/gad"

// BuiltinEmit is the single runtime primitive generator programs use: it
// writes its arguments to the run's output buffer. It delegates to gad's
// write builtin; the identity ToRawStrHandler installed at execution time
// keeps the text unescaped.
var BuiltinEmit = &gad.Function{
	Name: "loom$emit",
	Value: func(call gad.Call) (gad.Object, error) {
		return call.VM.Builtins.Call(gad.BuiltinWrite, call)
	},
}

func AppendBuiltins(b *gad.Builtins) *gad.Builtins {
	b.Set(BuiltinEmit.Name, BuiltinEmit)
	return b
}
