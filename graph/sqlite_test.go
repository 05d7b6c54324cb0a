package graph

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestSQLiteStore_TransactAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")

	store, err := OpenSQLite(path, testSpecs(), SQLiteStoreConfig{})
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}

	committed, err := store.Transact([]Entity{
		typeEntity(-1, "Agent", map[string]any{AttrTypeInterface: true}),
		typeEntity(-2, "Person", map[string]any{
			AttrTypeImplements: []Ident{-1},
			"type/rank":        int64(7),
			"type/tags":        []any{"a", "b", int64(2)},
			"type/extra":       map[string]any{"nested": int64(1), "flag": true},
		}),
		{ID: -3, Kind: KindField, Attrs: map[string]any{AttrFieldName: "name", AttrFieldParent: Ident(-2), AttrFieldType: Ident(-4)}},
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenHandle(path)
	if err != nil {
		t.Fatalf("OpenHandle failed: %v", err)
	}

	if reopened.Len() != committed.Len() {
		t.Fatalf("entity count changed on reopen: %d vs %d", reopened.Len(), committed.Len())
	}
	for _, want := range committed.Entities() {
		got, ok := reopened.Entity(want.ID)
		if !ok {
			t.Fatalf("entity %d missing on reopen", want.ID)
		}
		if !reflect.DeepEqual(got.Attrs, want.Attrs) {
			t.Errorf("entity %d attrs changed:\n got %v\nwant %v", want.ID, got.Attrs, want.Attrs)
		}
	}

	person, ok := reopened.Type("Person")
	if !ok {
		t.Fatal("Person missing on reopen")
	}
	if fields := reopened.FieldsOf(person.ID); len(fields) != 1 {
		t.Errorf("field index lost on reopen: %v", fields)
	}
}

func TestSQLiteStore_TransactReplacesPreviousGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")

	store, err := OpenSQLite(path, testSpecs(), SQLiteStoreConfig{})
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer store.Close()

	if _, err := store.Transact([]Entity{typeEntity(-1, "Old", nil)}); err != nil {
		t.Fatalf("first Transact failed: %v", err)
	}
	h, err := store.Transact([]Entity{typeEntity(-1, "New", nil)})
	if err != nil {
		t.Fatalf("second Transact failed: %v", err)
	}

	if _, ok := h.Type("Old"); ok {
		t.Error("previous graph must be replaced")
	}
	if _, ok := h.Type("New"); !ok {
		t.Error("new graph missing")
	}
}

func TestSQLiteStore_EnforceRefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")

	store, err := OpenSQLite(path, testSpecs(), SQLiteStoreConfig{EnforceRefs: true})
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer store.Close()

	_, err = store.Transact([]Entity{
		typeEntity(-1, "A", map[string]any{AttrTypeImplements: []Ident{-9}}),
	})
	if err == nil {
		t.Fatal("expected RefError for dangling reference")
	}
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := OpenSQLite(":memory:", testSpecs(), SQLiteStoreConfig{})
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer store.Close()

	h, err := store.Transact([]Entity{typeEntity(-1, "A", nil)})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	if _, ok := h.Type("A"); !ok {
		t.Error("A missing from in-memory store")
	}
}
