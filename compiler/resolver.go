package compiler

import "github.com/schemagraph/schemagraph/graph"

// symKey scopes a symbol by entity kind and owner, so field and param
// names that repeat across different owners stay distinct.
type symKey struct {
	kind  graph.Kind
	scope string
	name  string
}

// resolver allocates and memoizes one placeholder identity per scoped
// symbol for the duration of a single pass. Identities count down from -1
// so every one is distinct and negative, signaling "not yet persisted" to
// the store.
//
// The resolver lives inside the pass context and is discarded with it;
// no state survives into the next invocation.
type resolver struct {
	next graph.Ident
	ids  map[symKey]graph.Ident
}

func newResolver() *resolver {
	return &resolver{next: -1, ids: make(map[symKey]graph.Ident)}
}

// resolve returns the identity for a scoped symbol, allocating on first
// use. There is no separate declare step: referencing an undeclared symbol
// allocates an identity for it, which becomes a dangling reference if no
// entity is ever built for that symbol in the same pass.
func (r *resolver) resolve(kind graph.Kind, scope, name string) graph.Ident {
	key := symKey{kind: kind, scope: scope, name: name}
	if id, ok := r.ids[key]; ok {
		return id
	}
	id := r.next
	r.next--
	r.ids[key] = id
	return id
}
