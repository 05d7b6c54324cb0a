package graph

// Handle is a live, queryable view of one committed graph. All identities
// are persistent (positive) and every reference has been rewritten to its
// final identity. A Handle is immutable and safe for concurrent readers.
type Handle struct {
	specs    []AttrSpec
	entities []Entity
	byID     map[Ident]int
	byName   map[nameKey][]Ident
	fields   map[Ident][]Ident
	params   map[Ident][]Ident
	ifaces   []Ident
	impls    map[Ident][]Ident
}

type nameKey struct {
	kind Kind
	name string
}

// newHandle indexes a list of final entities. Entities arrive in
// transaction order, which the per-parent field and param listings preserve.
func newHandle(specs []AttrSpec, entities []Entity) *Handle {
	h := &Handle{
		specs:    specs,
		entities: entities,
		byID:     make(map[Ident]int, len(entities)),
		byName:   make(map[nameKey][]Ident),
		fields:   make(map[Ident][]Ident),
		params:   make(map[Ident][]Ident),
		impls:    make(map[Ident][]Ident),
	}
	for i, e := range entities {
		h.byID[e.ID] = i
		if name := e.Name(); name != "" {
			key := nameKey{e.Kind, name}
			h.byName[key] = append(h.byName[key], e.ID)
		}
		switch e.Kind {
		case KindType:
			if e.Bool(AttrTypeInterface) {
				h.ifaces = append(h.ifaces, e.ID)
			}
			for _, target := range e.Refs(AttrTypeImplements) {
				h.impls[target] = append(h.impls[target], e.ID)
			}
		case KindField:
			if parent, ok := e.Ref(AttrFieldParent); ok {
				h.fields[parent] = append(h.fields[parent], e.ID)
			}
		case KindParam:
			if parent, ok := e.Ref(AttrParamParent); ok {
				h.params[parent] = append(h.params[parent], e.ID)
			}
		}
	}
	return h
}

// Len returns the number of entity records in the graph.
func (h *Handle) Len() int { return len(h.entities) }

// Entities returns every record in transaction order.
func (h *Handle) Entities() []Entity {
	out := make([]Entity, len(h.entities))
	copy(out, h.entities)
	return out
}

// Entity returns the record for an identity. The second return is false for
// identities that are referenced in the graph but carry no record.
func (h *Handle) Entity(id Ident) (Entity, bool) {
	i, ok := h.byID[id]
	if !ok {
		return Entity{}, false
	}
	return h.entities[i], true
}

// Type returns the Type entity with the given name.
func (h *Handle) Type(name string) (Entity, bool) {
	ids := h.byName[nameKey{KindType, name}]
	if len(ids) == 0 {
		return Entity{}, false
	}
	return h.entityAt(ids[0]), true
}

// Types returns all Type entities in transaction order.
func (h *Handle) Types() []Entity {
	return h.ofKind(KindType)
}

// Lookup returns every entity of a kind with the given name. Field and
// param names repeat across owners, so more than one record may match.
func (h *Handle) Lookup(kind Kind, name string) []Entity {
	return h.collect(h.byName[nameKey{kind, name}])
}

// FieldsOf returns the fields declared by a type, in source order.
func (h *Handle) FieldsOf(typeID Ident) []Entity {
	return h.collect(h.fields[typeID])
}

// ParamsOf returns the params annotating a field, in source order.
func (h *Handle) ParamsOf(fieldID Ident) []Entity {
	return h.collect(h.params[fieldID])
}

// Interfaces returns every type flagged as an interface.
func (h *Handle) Interfaces() []Entity {
	return h.collect(h.ifaces)
}

// Implementors returns every type whose implements set references typeID.
func (h *Handle) Implementors(typeID Ident) []Entity {
	return h.collect(h.impls[typeID])
}

// Constraints returns the attribute constraint set the graph was
// transacted under.
func (h *Handle) Constraints() []AttrSpec {
	out := make([]AttrSpec, len(h.specs))
	copy(out, h.specs)
	return out
}

func (h *Handle) entityAt(id Ident) Entity {
	return h.entities[h.byID[id]]
}

func (h *Handle) ofKind(kind Kind) []Entity {
	var out []Entity
	for _, e := range h.entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (h *Handle) collect(ids []Ident) []Entity {
	if len(ids) == 0 {
		return nil
	}
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		if i, ok := h.byID[id]; ok {
			out = append(out, h.entities[i])
		}
	}
	return out
}
