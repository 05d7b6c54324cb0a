package sdl

// Sym creates a bare Symbol.
func Sym(name string) Symbol {
	return Symbol{Name: name}
}

// SymMeta creates a Symbol with attached metadata.
func SymMeta(name string, meta Meta) Symbol {
	return Symbol{Name: name, Meta: meta}
}

// Vec creates a Vector with the given elements.
func Vec(elems ...Node) Vector {
	return Vector{Elems: elems}
}

// Defaults creates the reserved `default` marker symbol carrying a group's
// default metadata. It must be the first element of its group to take effect.
func Defaults(meta Meta) Symbol {
	return Symbol{Name: DefaultMarker, Meta: meta}
}

// NewGroup creates a Group with the given elements.
func NewGroup(elems ...Node) Group {
	return Group{Elems: elems}
}

// NewSource creates a named Source from groups.
func NewSource(name string, groups ...Group) Source {
	return Source{Name: name, Groups: groups}
}
