package graph

// ValueType is the declared value type of a constrained attribute.
type ValueType int

const (
	// ValueString is a string-valued attribute.
	ValueString ValueType = iota
	// ValueBool is a boolean-valued attribute.
	ValueBool
	// ValueRef is a reference to another entity in the same graph.
	ValueRef
)

// Cardinality says how many values an attribute may carry per entity.
type Cardinality int

const (
	// CardOne is a single-valued attribute.
	CardOne Cardinality = iota
	// CardMany is a multi-valued attribute.
	CardMany
)

// AttrSpec declares the store-level constraints for one attribute. The
// compiler produces the full set once; a store receives it at creation.
// Attributes without a spec are accepted open: single-valued, unindexed,
// any scalar value.
type AttrSpec struct {
	// Name is the namespaced attribute key, e.g. "type/implements".
	Name string
	// Type is the declared value type.
	Type ValueType
	// Cardinality is one or many.
	Cardinality Cardinality
	// Unique marks an upsert attribute: two entities transacted with the
	// same value for it collapse into one.
	Unique bool
	// Indexed requests a lookup index on this attribute.
	Indexed bool
}

// specIndex builds a name lookup over a constraint set.
func specIndex(specs []AttrSpec) map[string]AttrSpec {
	idx := make(map[string]AttrSpec, len(specs))
	for _, s := range specs {
		idx[s.Name] = s
	}
	return idx
}
