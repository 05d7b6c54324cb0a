package graph

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion is bumped on incompatible snapshot layout changes.
const snapshotVersion = 1

type snapshot struct {
	Version  int              `msgpack:"version"`
	Specs    []snapshotSpec   `msgpack:"specs"`
	Entities []snapshotEntity `msgpack:"entities"`
}

type snapshotSpec struct {
	Name    string `msgpack:"name"`
	Type    int    `msgpack:"type"`
	Card    int    `msgpack:"card"`
	Unique  bool   `msgpack:"unique"`
	Indexed bool   `msgpack:"indexed"`
}

type snapshotEntity struct {
	ID    int64          `msgpack:"id"`
	Kind  int            `msgpack:"kind"`
	Attrs []snapshotAttr `msgpack:"attrs"`
}

// snapshotAttr tags each value so references survive the round trip with
// their type intact.
type snapshotAttr struct {
	Key    string  `msgpack:"key"`
	Scalar any     `msgpack:"scalar"`
	Ref    int64   `msgpack:"ref,omitempty"`
	Refs   []int64 `msgpack:"refs,omitempty"`
	IsRef  bool    `msgpack:"is_ref,omitempty"`
	IsRefs bool    `msgpack:"is_refs,omitempty"`
}

// Snapshot writes the whole graph to w as one msgpack document. The
// snapshot round-trips through LoadSnapshot.
func (h *Handle) Snapshot(w io.Writer) error {
	snap := snapshot{Version: snapshotVersion}
	for _, s := range h.specs {
		snap.Specs = append(snap.Specs, snapshotSpec{
			Name: s.Name, Type: int(s.Type), Card: int(s.Cardinality),
			Unique: s.Unique, Indexed: s.Indexed,
		})
	}
	for _, e := range h.entities {
		se := snapshotEntity{ID: int64(e.ID), Kind: int(e.Kind)}
		for _, key := range sortedKeys(e.Attrs) {
			switch v := e.Attrs[key].(type) {
			case Ident:
				se.Attrs = append(se.Attrs, snapshotAttr{Key: key, Ref: int64(v), IsRef: true})
			case []Ident:
				refs := make([]int64, len(v))
				for i, id := range v {
					refs[i] = int64(id)
				}
				se.Attrs = append(se.Attrs, snapshotAttr{Key: key, Refs: refs, IsRefs: true})
			default:
				se.Attrs = append(se.Attrs, snapshotAttr{Key: key, Scalar: v})
			}
		}
		snap.Entities = append(snap.Entities, se)
	}
	if err := msgpack.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("graph: encode snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a graph previously written with Snapshot and returns
// a handle over it.
func LoadSnapshot(r io.Reader) (*Handle, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("graph: decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("graph: unsupported snapshot version %d", snap.Version)
	}

	specs := make([]AttrSpec, 0, len(snap.Specs))
	for _, s := range snap.Specs {
		specs = append(specs, AttrSpec{
			Name: s.Name, Type: ValueType(s.Type), Cardinality: Cardinality(s.Card),
			Unique: s.Unique, Indexed: s.Indexed,
		})
	}

	entities := make([]Entity, 0, len(snap.Entities))
	for _, se := range snap.Entities {
		attrs := make(map[string]any, len(se.Attrs))
		for _, a := range se.Attrs {
			switch {
			case a.IsRef:
				attrs[a.Key] = Ident(a.Ref)
			case a.IsRefs:
				ids := make([]Ident, len(a.Refs))
				for i, ref := range a.Refs {
					ids[i] = Ident(ref)
				}
				attrs[a.Key] = ids
			default:
				attrs[a.Key] = normalizeScalar(a.Scalar)
			}
		}
		entities = append(entities, Entity{ID: Ident(se.ID), Kind: Kind(se.Kind), Attrs: attrs})
	}

	return newHandle(specs, entities), nil
}

// normalizeScalar widens decoded numerics so a round-tripped graph compares
// equal to the original: every integer becomes int64, every float float64.
// Lists and maps normalize element-wise.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case []any:
		for i, e := range n {
			n[i] = normalizeScalar(e)
		}
		return n
	case map[string]any:
		for k, e := range n {
			n[k] = normalizeScalar(e)
		}
		return n
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case uint:
		return int64(n)
	case float32:
		return float64(n)
	}
	return v
}
