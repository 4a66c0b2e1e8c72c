package parser

import (
	"fmt"
	"regexp"
)

// Attr is one key="value" pair of a pragma directive.
type Attr struct {
	Key   string
	Value string
}

// Pragma is the parsed form of a KindPragma span: a directive name followed
// by attributes, e.g. `template cleanws="true"`.
type Pragma struct {
	Name  string
	Attrs []Attr
	Pos   SourcePosition
}

func (p Pragma) Get(key string) (string, bool) {
	for _, a := range p.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

var (
	rgxPragmaName = regexp.MustCompile(`^\s*([A-Za-z_][\w-]*)`)
	rgxPragmaAttr = regexp.MustCompile(`([A-Za-z_][\w-]*)\s*=\s*"([^"]*)"`)
)

// ParsePragma splits the body of a pragma span into its name and attributes.
func ParsePragma(sp Span) (Pragma, error) {
	if sp.Kind != KindPragma {
		return Pragma{}, fmt.Errorf("not a pragma span: %s", sp.Kind)
	}

	nm := rgxPragmaName.FindStringSubmatch(sp.Content)
	if nm == nil {
		return Pragma{}, fmt.Errorf("pragma at %s has no name", sp.Pos)
	}

	pg := Pragma{Name: nm[1], Pos: sp.Pos}
	for _, m := range rgxPragmaAttr.FindAllStringSubmatch(sp.Content[len(nm[0]):], -1) {
		pg.Attrs = append(pg.Attrs, Attr{Key: m[1], Value: m[2]})
	}
	return pg, nil
}

// Param is an external binding the document declares with a parameter pragma.
type Param struct {
	Name string
	Pos  SourcePosition
}

// Import is a host-language module import requested by an import pragma.
type Import struct {
	Module string
	Alias  string
	Pos    SourcePosition
}

// Warning is a non-fatal diagnostic produced while collecting settings.
// Unknown pragmas and unknown attributes are ignored, forward compatible,
// but surfaced here so callers can log them.
type Warning struct {
	Pos     SourcePosition
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Pos, w.Message)
}

// Settings is the document-scoped pragma state threaded from the lexer to the
// normalizer and assembler. There is no ambient mode; callers pass this value
// explicitly.
type Settings struct {
	CleanWhitespace bool
	Params          []Param
	Imports         []Import
	Warnings        []Warning
}

// CollectSettings interprets the pragma spans of a lexed document.
func CollectSettings(spans []Span) Settings {
	var st Settings

	warnf := func(pos SourcePosition, format string, args ...any) {
		st.Warnings = append(st.Warnings, Warning{Pos: pos, Message: fmt.Sprintf(format, args...)})
	}

	for _, sp := range spans {
		if sp.Kind != KindPragma {
			continue
		}

		pg, err := ParsePragma(sp)
		if err != nil {
			warnf(sp.Pos, "ignoring malformed pragma: %v", err)
			continue
		}

		switch pg.Name {
		case "template":
			for _, a := range pg.Attrs {
				switch a.Key {
				case "cleanws":
					switch a.Value {
					case "true":
						st.CleanWhitespace = true
					case "false":
						st.CleanWhitespace = false
					default:
						warnf(pg.Pos, "template pragma: cleanws must be \"true\" or \"false\", got %q", a.Value)
					}
				default:
					warnf(pg.Pos, "template pragma: ignoring unknown attribute %q", a.Key)
				}
			}
		case "parameter":
			name, ok := pg.Get("name")
			if !ok || name == "" {
				warnf(pg.Pos, "parameter pragma requires a name attribute")
				continue
			}
			st.Params = append(st.Params, Param{Name: name, Pos: pg.Pos})
		case "import":
			module, ok := pg.Get("module")
			if !ok || module == "" {
				warnf(pg.Pos, "import pragma requires a module attribute")
				continue
			}
			alias, _ := pg.Get("as")
			if alias == "" {
				alias = module
			}
			st.Imports = append(st.Imports, Import{Module: module, Alias: alias, Pos: pg.Pos})
		default:
			warnf(pg.Pos, "ignoring unknown pragma %q", pg.Name)
		}
	}

	return st
}
