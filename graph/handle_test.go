package graph

import "testing"

func buildTestHandle(t *testing.T) *Handle {
	t.Helper()
	store := NewMemStore(testSpecs(), MemStoreConfig{})
	h, err := store.Transact([]Entity{
		typeEntity(-1, "Agent", map[string]any{AttrTypeInterface: true}),
		typeEntity(-2, "Person", map[string]any{AttrTypeImplements: []Ident{-1}}),
		{ID: -3, Kind: KindField, Attrs: map[string]any{AttrFieldName: "name", AttrFieldParent: Ident(-2)}},
		{ID: -4, Kind: KindField, Attrs: map[string]any{AttrFieldName: "age", AttrFieldParent: Ident(-2)}},
		typeEntity(-5, "Company", nil),
		{ID: -6, Kind: KindField, Attrs: map[string]any{AttrFieldName: "name", AttrFieldParent: Ident(-5)}},
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	return h
}

func TestHandle_FieldsInSourceOrder(t *testing.T) {
	h := buildTestHandle(t)

	person, _ := h.Type("Person")
	fields := h.FieldsOf(person.ID)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Name() != "name" || fields[1].Name() != "age" {
		t.Errorf("fields out of source order: %s, %s", fields[0].Name(), fields[1].Name())
	}
}

func TestHandle_LookupReturnsAllOwners(t *testing.T) {
	h := buildTestHandle(t)

	named := h.Lookup(KindField, "name")
	if len(named) != 2 {
		t.Fatalf("expected name field on two types, got %d", len(named))
	}
	if h.Lookup(KindType, "Person") == nil {
		t.Error("type lookup by name failed")
	}
}

func TestHandle_InterfacesAndImplementors(t *testing.T) {
	h := buildTestHandle(t)

	if ifaces := h.Interfaces(); len(ifaces) != 1 || ifaces[0].Name() != "Agent" {
		t.Fatalf("expected Agent as the only interface, got %v", ifaces)
	}

	agent, _ := h.Type("Agent")
	impls := h.Implementors(agent.ID)
	if len(impls) != 1 || impls[0].Name() != "Person" {
		t.Errorf("expected Person implementing Agent, got %v", impls)
	}
}

func TestHandle_EntityMissing(t *testing.T) {
	h := buildTestHandle(t)

	if _, ok := h.Entity(99); ok {
		t.Error("expected no record for unknown identity")
	}
	if _, ok := h.Type("Nobody"); ok {
		t.Error("expected no type for unknown name")
	}
}

func TestHandle_ConstraintsRoundTrip(t *testing.T) {
	h := buildTestHandle(t)

	specs := h.Constraints()
	if len(specs) != len(testSpecs()) {
		t.Fatalf("expected %d constraints, got %d", len(testSpecs()), len(specs))
	}
}
