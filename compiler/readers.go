package compiler

import (
	"fmt"
	"strings"

	"github.com/schemagraph/schemagraph/graph"
	"github.com/schemagraph/schemagraph/sdl"
)

// ReaderKind is the normalization behavior applied to one recognized
// metadata key. The set is a closed tagged variant resolved at registry
// construction time; unregistered keys default to PassThrough.
type ReaderKind int

const (
	// PassThrough keeps the raw value and only namespaces the key.
	PassThrough ReaderKind = iota
	// SingleRef resolves exactly one symbol to one entity reference.
	SingleRef
	// RefExpander flattens a symbol or an arbitrarily nested list of
	// symbols into a deduplicated set of entity references.
	RefExpander
)

// Registry maps raw metadata key names to their normalization behavior.
// It is open for extension: register new keys without touching the entity
// builder.
type Registry struct {
	readers map[string]ReaderKind
}

// NewRegistry creates an empty registry: every key passes through.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]ReaderKind)}
}

// DefaultRegistry creates a registry with the standard readers:
// "implements" expands to a reference set, "type" and "tag" resolve to a
// single reference.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("implements", RefExpander)
	r.Register("type", SingleRef)
	r.Register("tag", SingleRef)
	return r
}

// Register sets the normalization behavior for a raw metadata key.
func (r *Registry) Register(key string, kind ReaderKind) {
	r.readers[key] = kind
}

// read rewrites one raw (key, value) pair into a namespaced key and a
// processed value. References always resolve in type space: the symbols
// named by implements/type/tag are type names.
func (r *Registry) read(res *resolver, ns graph.Kind, key string, raw any) (string, any, error) {
	nsKey := namespaceKey(ns, key)
	switch r.readers[key] {
	case SingleRef:
		name, ok := symbolName(raw)
		if !ok {
			return "", nil, fmt.Errorf("compiler: %s expects a symbol, got %T", nsKey, raw)
		}
		return nsKey, res.resolve(graph.KindType, "", name), nil
	case RefExpander:
		refs, err := expandRefs(res, nsKey, raw, nil)
		if err != nil {
			return "", nil, err
		}
		return nsKey, refs, nil
	default:
		return nsKey, normalizeValue(raw), nil
	}
}

// normalizeValue rewrites a pass-through value into its storage-stable
// form: symbols and keywords become their name strings, lists and nested
// maps normalize element-wise. Scalars pass unchanged, so the value
// survives snapshot and store round trips intact.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case sdl.Symbol:
		return t.Name
	case sdl.Keyword:
		return string(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case sdl.Vector:
		out := make([]any, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = normalizeValue(e)
		}
		return out
	case sdl.Meta:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	}
	return v
}

// namespaceKey qualifies an unqualified key with the entity kind it was
// read on. Already-qualified keys are left unchanged.
func namespaceKey(ns graph.Kind, key string) string {
	if strings.Contains(key, "/") {
		return key
	}
	return ns.String() + "/" + key
}

// expandRefs flattens nested symbol lists into a reference set, preserving
// first-use order and dropping duplicates.
func expandRefs(res *resolver, nsKey string, raw any, acc []graph.Ident) ([]graph.Ident, error) {
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			var err error
			acc, err = expandRefs(res, nsKey, item, acc)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	case sdl.Vector:
		for _, item := range v.Elems {
			var err error
			acc, err = expandRefs(res, nsKey, item, acc)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	default:
		name, ok := symbolName(raw)
		if !ok {
			return nil, fmt.Errorf("compiler: %s expects symbols, got %T", nsKey, raw)
		}
		id := res.resolve(graph.KindType, "", name)
		for _, seen := range acc {
			if seen == id {
				return acc, nil
			}
		}
		return append(acc, id), nil
	}
}

// symbolName extracts a type name from a symbol-shaped value. Plain
// strings are accepted for programmatic callers.
func symbolName(v any) (string, bool) {
	switch s := v.(type) {
	case sdl.Symbol:
		return s.Name, true
	case string:
		return s, true
	}
	return "", false
}
