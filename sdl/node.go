// Package sdl defines the declaration tree of the schema description
// language and its reader.
//
// A schema source is an ordered sequence of groups. A group holds symbols
// (optionally carrying a metadata map) and vectors, interleaved: a type
// symbol, optionally followed by a field vector; inside a field vector, a
// field symbol, optionally followed by a parameter vector. A group whose
// first element is the reserved `default` symbol contributes that symbol's
// metadata as the group-wide default attribute set.
//
// Trees can be parsed from text with [Parse] or built programmatically with
// the helpers in builders.go.
package sdl

// DefaultMarker is the reserved symbol name that opens a group's default
// metadata declaration.
const DefaultMarker = "default"

// Node is the marker interface for declaration-tree elements.
type Node interface {
	node()
}

// Symbol is a named declarator with optional attached metadata. A symbol
// declares a type when it appears at group level, a field at vector level,
// and a param inside a parameter vector.
type Symbol struct {
	// Name is the symbol's printed form.
	Name string
	// Meta is the attached metadata map; nil when none was attached.
	Meta Meta
}

func (Symbol) node() {}

// Vector is an ordered sequence of nodes. At group level a vector is the
// field list of the preceding type symbol; inside a field list it is the
// parameter list of the preceding field symbol.
type Vector struct {
	// Elems are the vector's elements in source order.
	Elems []Node
}

func (Vector) node() {}

// Meta maps metadata keys (keyword names without the leading colon, e.g.
// "implements" or "doc/hint") to values. Values are one of: string, int64,
// float64, bool, Keyword, Symbol, []any, or a nested Meta.
type Meta map[string]any

// Keyword is a keyword metadata value, e.g. the `:deprecated` in
// {:status :deprecated}. The string holds the name without the colon.
type Keyword string

// Group is one top-level unit of the declaration tree; every type it
// declares shares one default metadata set.
type Group struct {
	// Elems are the group's elements in source order.
	Elems []Node
}

// Source is a whole schema source: an ordered sequence of groups.
type Source struct {
	// Name identifies the source for diagnostics (usually a file path).
	Name string
	// Groups are the source's groups in source order.
	Groups []Group
}

// Defaults returns the group's default metadata (the metadata attached to
// a leading `default` marker symbol) and the remaining elements. Groups
// without a marker return a nil Meta and all elements unchanged.
func (g Group) Defaults() (Meta, []Node) {
	if len(g.Elems) > 0 {
		if sym, ok := g.Elems[0].(Symbol); ok && sym.Name == DefaultMarker {
			return sym.Meta, g.Elems[1:]
		}
	}
	return nil, g.Elems
}
