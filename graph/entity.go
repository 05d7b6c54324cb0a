// Package graph defines the entity records produced by a compilation pass
// and the stores that accept them as a single transaction.
//
// A compile pass hands a store one ordered list of entities whose identities
// are negative placeholders. The store assigns persistent positive ids,
// collapses entities that share a unique attribute value, rewrites every
// reference, and returns a live [Handle] for querying the committed graph.
package graph

import "sort"

// Ident identifies an entity. The compiler allocates monotonically
// decreasing negative idents as pass-local placeholders; a store assigns
// positive idents at transaction time. Zero is never a valid ident.
type Ident int64

// Placeholder returns true if the ident is a pass-local placeholder that has
// not yet been assigned by a store.
func (id Ident) Placeholder() bool { return id < 0 }

// Kind distinguishes the three entity kinds produced by a pass.
type Kind int

const (
	// KindType is a named type: a primitive, an interface, or a user type.
	KindType Kind = iota
	// KindField is a field declared by exactly one type.
	KindField
	// KindParam is a parameter annotating exactly one field.
	KindParam
)

// String returns the kind's attribute namespace ("type", "field", "param").
func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindField:
		return "field"
	case KindParam:
		return "param"
	}
	return "unknown"
}

// Well-known namespaced attribute keys.
const (
	AttrTypeName       = "type/name"
	AttrTypeImplements = "type/implements"
	AttrTypeInterface  = "type/interface"
	AttrFieldName      = "field/name"
	AttrFieldParent    = "field/parent"
	AttrFieldType      = "field/type"
	AttrFieldTag       = "field/tag"
	AttrParamName      = "param/name"
	AttrParamParent    = "param/parent"
	AttrParamType      = "param/type"
	AttrParamTag       = "param/tag"
)

// Entity is one record in the graph: an identity, a kind, and a bag of
// namespaced attributes. Reference-valued attributes hold an [Ident];
// multi-valued reference attributes hold an []Ident.
//
// Entities are immutable once built; nothing in this module mutates an
// entity after its builder returns it.
type Entity struct {
	// ID is the entity identity: negative before a transaction, positive after.
	ID Ident
	// Kind says whether this record is a type, a field, or a param.
	Kind Kind
	// Attrs maps namespaced attribute keys to values.
	Attrs map[string]any
}

// Name returns the entity's name attribute for its kind, or "" if absent.
func (e Entity) Name() string {
	if v, ok := e.Attrs[e.Kind.String()+"/name"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Attr returns the raw value of a namespaced attribute.
func (e Entity) Attr(key string) (any, bool) {
	v, ok := e.Attrs[key]
	return v, ok
}

// Ref returns a single-valued reference attribute.
func (e Entity) Ref(key string) (Ident, bool) {
	if v, ok := e.Attrs[key]; ok {
		if id, ok := v.(Ident); ok {
			return id, true
		}
	}
	return 0, false
}

// Refs returns a multi-valued reference attribute in stable (sorted) order.
// Returns nil if the attribute is absent or not reference-valued.
func (e Entity) Refs(key string) []Ident {
	v, ok := e.Attrs[key]
	if !ok {
		return nil
	}
	ids, ok := v.([]Ident)
	if !ok {
		return nil
	}
	out := make([]Ident, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Bool returns a boolean attribute, false if absent or not a bool.
func (e Entity) Bool(key string) bool {
	if v, ok := e.Attrs[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// clone returns a deep-enough copy: the attribute map and any []Ident
// values are copied, scalar values are shared.
func (e Entity) clone() Entity {
	attrs := make(map[string]any, len(e.Attrs))
	for k, v := range e.Attrs {
		if ids, ok := v.([]Ident); ok {
			cp := make([]Ident, len(ids))
			copy(cp, ids)
			attrs[k] = cp
			continue
		}
		attrs[k] = v
	}
	return Entity{ID: e.ID, Kind: e.Kind, Attrs: attrs}
}
