// Package compiler turns declaration trees into a normalized entity graph:
// symbol identities resolved, metadata normalized through the reader
// registry, built-in primitives seeded, group defaults propagated. The
// finished entity list is validated and handed to a graph store as one
// transaction.
package compiler

import (
	"fmt"

	"github.com/schemagraph/schemagraph/graph"
	"github.com/schemagraph/schemagraph/sdl"
)

// ShapePolicy decides what happens to group elements that do not match a
// declarator shape.
type ShapePolicy int

const (
	// ShapeLenient silently skips malformed elements. This is the default:
	// the language tolerates loose input.
	ShapeLenient ShapePolicy = iota
	// ShapeStrict rejects the pass with a *ShapeError on the first
	// malformed element.
	ShapeStrict
)

// Validator inspects the complete entity list after construction and
// before the transaction; returning an error vetoes the transaction.
type Validator func(entities []graph.Entity) error

// AcceptAll is the default validator: every entity list passes.
func AcceptAll(entities []graph.Entity) error { return nil }

// Option configures a Compiler.
type Option func(*Compiler)

// WithRegistry replaces the default attribute reader registry.
func WithRegistry(r *Registry) Option {
	return func(c *Compiler) { c.registry = r }
}

// WithValidator installs a schema validator.
func WithValidator(v Validator) Option {
	return func(c *Compiler) { c.validate = v }
}

// WithShapePolicy sets the malformed-shape policy.
func WithShapePolicy(p ShapePolicy) Option {
	return func(c *Compiler) { c.policy = p }
}

// Compiler compiles schema sources into a store. A Compiler holds no
// per-pass state: each Compile call builds its own pass context, so
// concurrent calls on distinct stores are safe.
type Compiler struct {
	store    graph.Store
	registry *Registry
	validate Validator
	policy   ShapePolicy
}

// New creates a Compiler writing to the given store.
func New(store graph.Store, opts ...Option) *Compiler {
	c := &Compiler{
		store:    store,
		registry: DefaultRegistry(),
		validate: AcceptAll,
		policy:   ShapeLenient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile concatenates the sources into one pass, builds the entity list,
// runs the validator, and transacts the whole list as one unit. On
// validation failure the store is never called. Store failures propagate
// unchanged; there is no retry and no partial commit.
func (c *Compiler) Compile(sources ...sdl.Source) (*graph.Handle, error) {
	entities, err := c.Build(sources...)
	if err != nil {
		return nil, err
	}
	if err := c.validate(entities); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return c.store.Transact(entities)
}

// Build produces the ordered entity list for the sources without
// validating or transacting: primitives first, then every group's types,
// fields, and params in first-use, depth-first, source order.
func (c *Compiler) Build(sources ...sdl.Source) ([]graph.Entity, error) {
	p := newPass(c.registry, c.policy)
	p.seed()
	for _, src := range sources {
		for i, group := range src.Groups {
			if err := p.buildGroup(src.Name, i, group); err != nil {
				return nil, err
			}
		}
	}
	return p.entities, nil
}

// Constraints returns the attribute constraint declarations the produced
// graphs rely on: the upsert name attribute for types, the reference
// attributes linking the graph, and the indexed lookups.
func Constraints() []graph.AttrSpec {
	return []graph.AttrSpec{
		{Name: graph.AttrTypeName, Type: graph.ValueString, Cardinality: graph.CardOne, Unique: true, Indexed: true},
		{Name: graph.AttrTypeImplements, Type: graph.ValueRef, Cardinality: graph.CardMany},
		{Name: graph.AttrTypeInterface, Type: graph.ValueBool, Cardinality: graph.CardOne, Indexed: true},
		{Name: graph.AttrFieldName, Type: graph.ValueString, Cardinality: graph.CardOne, Indexed: true},
		{Name: graph.AttrFieldParent, Type: graph.ValueRef, Cardinality: graph.CardOne},
		{Name: graph.AttrFieldType, Type: graph.ValueRef, Cardinality: graph.CardOne},
		{Name: graph.AttrFieldTag, Type: graph.ValueRef, Cardinality: graph.CardOne},
		{Name: graph.AttrParamName, Type: graph.ValueString, Cardinality: graph.CardOne, Indexed: true},
		{Name: graph.AttrParamParent, Type: graph.ValueRef, Cardinality: graph.CardOne},
		{Name: graph.AttrParamType, Type: graph.ValueRef, Cardinality: graph.CardOne},
		{Name: graph.AttrParamTag, Type: graph.ValueRef, Cardinality: graph.CardOne},
	}
}
