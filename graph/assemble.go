package graph

import (
	"fmt"
	"reflect"
	"sort"
)

// uniqueKey identifies one value of one upsert attribute.
type uniqueKey struct {
	attr string
	val  any
}

// assemble is the transaction core shared by every store: it collapses
// entities that repeat an identity or a unique attribute value, assigns
// persistent positive ids in deterministic order, rewrites every reference,
// and optionally rejects references with no backing record.
func assemble(specs []AttrSpec, entities []Entity, enforceRefs bool) (*Handle, error) {
	specIdx := specIndex(specs)

	// Pass 1: collapse. Entities sharing a placeholder identity, or sharing
	// a value of a unique attribute, merge into the first occurrence.
	var order []Ident
	canonical := make(map[Ident]*Entity)
	remap := make(map[Ident]Ident)
	byUnique := make(map[uniqueKey]Ident)

	for _, in := range entities {
		e := in.clone()
		target, ok := remap[e.ID]
		if !ok {
			target = e.ID
			for _, s := range specs {
				if !s.Unique {
					continue
				}
				v, present := e.Attrs[s.Name]
				if !present || !comparableValue(v) {
					continue
				}
				if prev, seen := byUnique[uniqueKey{s.Name, v}]; seen {
					target = prev
					break
				}
			}
		}
		if existing, seen := canonical[target]; seen {
			if err := mergeEntity(existing, e, specIdx); err != nil {
				return nil, err
			}
		} else {
			e.ID = target
			canonical[target] = &e
			order = append(order, target)
		}
		remap[in.ID] = target
		for _, s := range specs {
			if !s.Unique {
				continue
			}
			if v, present := canonical[target].Attrs[s.Name]; present && comparableValue(v) {
				byUnique[uniqueKey{s.Name, v}] = target
			}
		}
	}

	// Pass 2: assign persistent ids. Declared entities first, in transaction
	// order, then identities that only ever appear as references, in sorted
	// attribute-key order so assignment is deterministic.
	assigned := make(map[Ident]Ident, len(order))
	next := Ident(1)
	for _, id := range order {
		assigned[id] = next
		next++
	}
	resolve := func(id Ident) Ident {
		if t, ok := remap[id]; ok {
			id = t
		}
		return id
	}
	for _, id := range order {
		e := canonical[id]
		for _, key := range sortedKeys(e.Attrs) {
			for _, ref := range refValues(e.Attrs[key]) {
				target := resolve(ref)
				if _, ok := assigned[target]; ok {
					continue
				}
				if enforceRefs {
					return nil, &RefError{Attr: key, From: assigned[id], To: ref}
				}
				assigned[target] = next
				next++
			}
		}
	}

	// Pass 3: rewrite references and freeze the final records.
	final := make([]Entity, 0, len(order))
	for _, id := range order {
		e := canonical[id]
		attrs := make(map[string]any, len(e.Attrs))
		for k, v := range e.Attrs {
			switch rv := v.(type) {
			case Ident:
				attrs[k] = assigned[resolve(rv)]
			case []Ident:
				out := make([]Ident, 0, len(rv))
				for _, ref := range rv {
					out = append(out, assigned[resolve(ref)])
				}
				sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
				attrs[k] = dedupIdents(out)
			default:
				attrs[k] = v
			}
		}
		final = append(final, Entity{ID: assigned[id], Kind: e.Kind, Attrs: attrs})
	}

	return newHandle(specs, final), nil
}

// mergeEntity folds src into dst: multi-valued references union, absent
// attributes fill in, disagreeing single values are a conflict.
func mergeEntity(dst *Entity, src Entity, specs map[string]AttrSpec) error {
	if dst.Kind != src.Kind {
		return fmt.Errorf("graph: cannot merge %s entity into %s entity %d", src.Kind, dst.Kind, dst.ID)
	}
	for _, key := range sortedKeys(src.Attrs) {
		v := src.Attrs[key]
		old, ok := dst.Attrs[key]
		if !ok {
			dst.Attrs[key] = v
			continue
		}
		if spec, known := specs[key]; known && spec.Cardinality == CardMany {
			oldIDs, ok1 := old.([]Ident)
			newIDs, ok2 := v.([]Ident)
			if ok1 && ok2 {
				dst.Attrs[key] = unionIdents(oldIDs, newIDs)
				continue
			}
		}
		if !valueEqual(old, v) {
			return &ConflictError{Attr: key, Old: old, New: v}
		}
	}
	return nil
}

// refValues extracts the reference identities held by one attribute value.
func refValues(v any) []Ident {
	switch rv := v.(type) {
	case Ident:
		return []Ident{rv}
	case []Ident:
		return rv
	}
	return nil
}

// valueEqual compares attribute values structurally: pass-through metadata
// may carry lists and nested maps, which compare element-wise.
func valueEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// comparableValue guards the unique-value index: list- or map-valued
// attributes never index, they only merge structurally.
func comparableValue(v any) bool {
	return v == nil || reflect.TypeOf(v).Comparable()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupIdents(sorted []Ident) []Ident {
	out := sorted[:0]
	for i, id := range sorted {
		if i == 0 || id != sorted[i-1] {
			out = append(out, id)
		}
	}
	return out
}

func unionIdents(a, b []Ident) []Ident {
	merged := make([]Ident, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	return dedupIdents(merged)
}
