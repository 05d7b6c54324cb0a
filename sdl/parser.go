package sdl

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// --- Participle grammar structs ---
// These define the SDL text syntax using struct tags: parenthesized groups
// of symbols with optional {:key value} metadata maps and [...] vectors.

// fileAST is the top-level grammar: a sequence of groups.
type fileAST struct {
	Groups []groupAST `parser:"@@*"`
}

// groupAST parses: ( elem* )
type groupAST struct {
	Elems []elemAST `parser:"'(' @@* ')'"`
}

// elemAST is one group or vector element: a nested vector or a symbol.
type elemAST struct {
	Vector *vectorAST `parser:"  @@"`
	Symbol *symbolAST `parser:"| @@"`
}

// vectorAST parses: [ elem* ]
type vectorAST struct {
	Elems []elemAST `parser:"'[' @@* ']'"`
}

// symbolAST parses a name with an optional attached metadata map.
type symbolAST struct {
	Name string  `parser:"@Ident"`
	Meta *mapAST `parser:"@@?"`
}

// mapAST parses: { (:keyword value)* }
type mapAST struct {
	Pairs []pairAST `parser:"'{' @@* '}'"`
}

type pairAST struct {
	Key   string   `parser:"@Keyword"`
	Value valueAST `parser:"@@"`
}

// valueAST is one metadata value: a nested map, a vector of values, or a
// literal (string, float, integer, boolean, keyword, symbol).
type valueAST struct {
	Map     *mapAST      `parser:"  @@"`
	Vector  *valueVecAST `parser:"| @@"`
	Str     *string      `parser:"| @String"`
	Float   *string      `parser:"| @Float"`
	Int     *string      `parser:"| @Int"`
	Bool    *string      `parser:"| @Bool"`
	Keyword *string      `parser:"| @Keyword"`
	Sym     *string      `parser:"| @Ident"`
}

type valueVecAST struct {
	Values []valueAST `parser:"'[' @@* ']'"`
}

var sdlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s,]+`},
	{Name: "Bool", Pattern: `\b(true|false)\b`},
	{Name: "Keyword", Pattern: `:[a-zA-Z_][a-zA-Z0-9_./-]*`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Float", Pattern: `-?[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.-]*`},
	{Name: "Punct", Pattern: `[()\[\]{}]`},
})

// --- Parser construction and entry points ---

// Parse parses SDL source text into a declaration tree. The name identifies
// the source in errors (usually a file path).
func Parse(name, input string) (Source, error) {
	parser, err := participle.Build[fileAST](
		participle.Lexer(sdlLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return Source{}, fmt.Errorf("build parser: %w", err)
	}

	ast, err := parser.ParseString(name, input)
	if err != nil {
		return Source{}, fmt.Errorf("parse %s: %w", name, err)
	}

	return convertFile(name, ast)
}

// ParseFile reads an SDL source from the specified file path and parses it.
func ParseFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read source: %w", err)
	}
	return Parse(path, string(data))
}

// --- AST conversion ---

func convertFile(name string, file *fileAST) (Source, error) {
	src := Source{Name: name}
	for _, g := range file.Groups {
		elems, err := convertElems(g.Elems)
		if err != nil {
			return Source{}, err
		}
		src.Groups = append(src.Groups, Group{Elems: elems})
	}
	return src, nil
}

func convertElems(elems []elemAST) ([]Node, error) {
	var out []Node
	for _, e := range elems {
		switch {
		case e.Vector != nil:
			inner, err := convertElems(e.Vector.Elems)
			if err != nil {
				return nil, err
			}
			out = append(out, Vector{Elems: inner})
		case e.Symbol != nil:
			sym := Symbol{Name: e.Symbol.Name}
			if e.Symbol.Meta != nil {
				meta, err := convertMap(e.Symbol.Meta)
				if err != nil {
					return nil, err
				}
				sym.Meta = meta
			}
			out = append(out, sym)
		}
	}
	return out, nil
}

func convertMap(m *mapAST) (Meta, error) {
	meta := make(Meta, len(m.Pairs))
	for _, p := range m.Pairs {
		v, err := convertValue(p.Value)
		if err != nil {
			return nil, err
		}
		meta[trimKeyword(p.Key)] = v
	}
	return meta, nil
}

func convertValue(v valueAST) (any, error) {
	switch {
	case v.Map != nil:
		return convertMap(v.Map)
	case v.Vector != nil:
		out := make([]any, 0, len(v.Vector.Values))
		for _, inner := range v.Vector.Values {
			cv, err := convertValue(inner)
			if err != nil {
				return nil, err
			}
			out = append(out, cv)
		}
		return out, nil
	case v.Str != nil:
		s, err := strconv.Unquote(*v.Str)
		if err != nil {
			return nil, fmt.Errorf("bad string literal %s: %w", *v.Str, err)
		}
		return s, nil
	case v.Float != nil:
		f, err := strconv.ParseFloat(*v.Float, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float literal %s: %w", *v.Float, err)
		}
		return f, nil
	case v.Int != nil:
		n, err := strconv.ParseInt(*v.Int, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad integer literal %s: %w", *v.Int, err)
		}
		return n, nil
	case v.Bool != nil:
		return *v.Bool == "true", nil
	case v.Keyword != nil:
		return Keyword(trimKeyword(*v.Keyword)), nil
	case v.Sym != nil:
		return Symbol{Name: *v.Sym}, nil
	}
	return nil, fmt.Errorf("empty metadata value")
}

func trimKeyword(k string) string {
	if len(k) > 0 && k[0] == ':' {
		return k[1:]
	}
	return k
}
