package graph

import (
	"errors"
	"reflect"
	"testing"
)

func testSpecs() []AttrSpec {
	return []AttrSpec{
		{Name: AttrTypeName, Type: ValueString, Cardinality: CardOne, Unique: true, Indexed: true},
		{Name: AttrTypeImplements, Type: ValueRef, Cardinality: CardMany},
		{Name: AttrTypeInterface, Type: ValueBool, Cardinality: CardOne, Indexed: true},
		{Name: AttrFieldName, Type: ValueString, Cardinality: CardOne, Indexed: true},
		{Name: AttrFieldParent, Type: ValueRef, Cardinality: CardOne},
		{Name: AttrFieldType, Type: ValueRef, Cardinality: CardOne},
	}
}

func typeEntity(id Ident, name string, attrs map[string]any) Entity {
	all := map[string]any{AttrTypeName: name}
	for k, v := range attrs {
		all[k] = v
	}
	return Entity{ID: id, Kind: KindType, Attrs: all}
}

func TestTransact_AssignsPositiveIdentsInOrder(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	h, err := store.Transact([]Entity{
		typeEntity(-1, "A", nil),
		typeEntity(-2, "B", nil),
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	entities := h.Entities()
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if entities[0].ID != 1 || entities[1].ID != 2 {
		t.Errorf("expected ids 1, 2 in transaction order, got %d, %d", entities[0].ID, entities[1].ID)
	}
}

func TestTransact_RewritesReferences(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	h, err := store.Transact([]Entity{
		typeEntity(-1, "A", map[string]any{AttrTypeImplements: []Ident{-2}}),
		typeEntity(-2, "B", nil),
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	a, _ := h.Type("A")
	b, _ := h.Type("B")
	impl := a.Refs(AttrTypeImplements)
	if len(impl) != 1 || impl[0] != b.ID {
		t.Errorf("expected rewritten reference to B (%d), got %v", b.ID, impl)
	}
	if b.ID.Placeholder() {
		t.Errorf("committed identity should be positive, got %d", b.ID)
	}
}

func TestTransact_SameIdentityCollapses(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	h, err := store.Transact([]Entity{
		typeEntity(-1, "A", map[string]any{AttrTypeInterface: true}),
		typeEntity(-1, "A", map[string]any{AttrTypeImplements: []Ident{-2}}),
		typeEntity(-2, "B", nil),
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	if h.Len() != 2 {
		t.Fatalf("expected 2 entities after collapse, got %d", h.Len())
	}
	a, _ := h.Type("A")
	if !a.Bool(AttrTypeInterface) {
		t.Error("merged entity lost its flag")
	}
	if len(a.Refs(AttrTypeImplements)) != 1 {
		t.Error("merged entity lost its references")
	}
}

func TestTransact_UpsertByUniqueValue(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	// Distinct placeholder identities but the same unique name collapse.
	h, err := store.Transact([]Entity{
		typeEntity(-1, "A", nil),
		typeEntity(-5, "A", map[string]any{AttrTypeInterface: true}),
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	if h.Len() != 1 {
		t.Fatalf("expected 1 entity after upsert, got %d", h.Len())
	}
	a, _ := h.Type("A")
	if !a.Bool(AttrTypeInterface) {
		t.Error("upsert lost the second declaration's flag")
	}
}

func TestTransact_UpsertWithListValueMerges(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	// A redeclared name whose pass-through metadata carries a list value
	// must collapse like any other redeclaration.
	h, err := store.Transact([]Entity{
		typeEntity(-1, "Person", map[string]any{"type/tags": []any{"a", "b"}}),
		typeEntity(-5, "Person", map[string]any{"type/tags": []any{"a", "b"}}),
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	if h.Len() != 1 {
		t.Fatalf("expected 1 entity after upsert, got %d", h.Len())
	}
	person, _ := h.Type("Person")
	tags, _ := person.Attr("type/tags")
	if !reflect.DeepEqual(tags, []any{"a", "b"}) {
		t.Errorf("merged entity lost its list value, got %v", tags)
	}
}

func TestTransact_UpsertWithListValueConflict(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	_, err := store.Transact([]Entity{
		typeEntity(-1, "Person", map[string]any{"type/tags": []any{"a"}}),
		typeEntity(-5, "Person", map[string]any{"type/tags": []any{"b"}}),
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if conflict.Attr != "type/tags" {
		t.Errorf("conflict on wrong attribute: %s", conflict.Attr)
	}
}

func TestTransact_ListValuedUniqueAttributeNeverIndexes(t *testing.T) {
	specs := append(testSpecs(), AttrSpec{Name: "type/alias", Type: ValueString, Cardinality: CardOne, Unique: true})
	store := NewMemStore(specs, MemStoreConfig{})
	h, err := store.Transact([]Entity{
		typeEntity(-1, "A", map[string]any{"type/alias": []any{"x"}}),
		typeEntity(-2, "B", map[string]any{"type/alias": []any{"x"}}),
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	// Distinct names, so the shared list value must not collapse them.
	if h.Len() != 2 {
		t.Errorf("expected 2 entities, got %d", h.Len())
	}
}

func TestTransact_ManyValuedReferencesUnion(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	h, err := store.Transact([]Entity{
		typeEntity(-1, "A", map[string]any{AttrTypeImplements: []Ident{-2}}),
		typeEntity(-1, "A", map[string]any{AttrTypeImplements: []Ident{-3}}),
		typeEntity(-2, "B", nil),
		typeEntity(-3, "C", nil),
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	a, _ := h.Type("A")
	if impl := a.Refs(AttrTypeImplements); len(impl) != 2 {
		t.Errorf("expected union of reference sets, got %v", impl)
	}
}

func TestTransact_SingleValueConflict(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	_, err := store.Transact([]Entity{
		typeEntity(-1, "A", map[string]any{AttrTypeInterface: true}),
		typeEntity(-1, "A", map[string]any{AttrTypeInterface: false}),
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if conflict.Attr != AttrTypeInterface {
		t.Errorf("conflict on wrong attribute: %s", conflict.Attr)
	}
}

func TestTransact_DanglingReferenceAllowedByDefault(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	h, err := store.Transact([]Entity{
		typeEntity(-1, "A", map[string]any{AttrTypeImplements: []Ident{-9}}),
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	a, _ := h.Type("A")
	impl := a.Refs(AttrTypeImplements)
	if len(impl) != 1 {
		t.Fatalf("dangling reference must survive, got %v", impl)
	}
	if _, ok := h.Entity(impl[0]); ok {
		t.Error("dangling identity must have no record")
	}
}

func TestTransact_EnforceRefsRejectsDangling(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{EnforceRefs: true})
	_, err := store.Transact([]Entity{
		typeEntity(-1, "A", map[string]any{AttrTypeImplements: []Ident{-9}}),
	})
	var refErr *RefError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected *RefError, got %v", err)
	}
	if refErr.Attr != AttrTypeImplements {
		t.Errorf("wrong attribute in ref error: %s", refErr.Attr)
	}
}

func TestMemStore_ClosedRejectsTransact(t *testing.T) {
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := store.Transact(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestTransact_DeterministicDanglingAssignment(t *testing.T) {
	entities := []Entity{
		typeEntity(-1, "A", map[string]any{AttrTypeImplements: []Ident{-8, -9}}),
	}
	first, err := NewMemStore(testSpecs(), MemStoreConfig{}).Transact(entities)
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	second, err := NewMemStore(testSpecs(), MemStoreConfig{}).Transact(entities)
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	fa, _ := first.Type("A")
	sa, _ := second.Type("A")
	fi, si := fa.Refs(AttrTypeImplements), sa.Refs(AttrTypeImplements)
	if len(fi) != 2 || len(si) != 2 || fi[0] != si[0] || fi[1] != si[1] {
		t.Errorf("dangling assignment differs across runs: %v vs %v", fi, si)
	}
}
