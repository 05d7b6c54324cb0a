package compiler

import "github.com/schemagraph/schemagraph/graph"

// Primitives are the built-in type names seeded into every pass, before
// any user declaration, so their identities are always referenceable.
var Primitives = []string{"String", "Float", "Integer", "Boolean", "DateTime", "ID"}

// seed appends one Type entity per primitive name, each with a fresh
// identity and no attributes beyond its name. Runs exactly once per pass.
func (p *pass) seed() {
	for _, name := range Primitives {
		p.entities = append(p.entities, graph.Entity{
			ID:    p.res.resolve(graph.KindType, "", name),
			Kind:  graph.KindType,
			Attrs: map[string]any{graph.AttrTypeName: name},
		})
	}
}
