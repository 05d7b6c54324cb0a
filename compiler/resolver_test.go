package compiler

import (
	"testing"

	"github.com/schemagraph/schemagraph/graph"
)

func TestResolver_StableIdentityPerScopedSymbol(t *testing.T) {
	r := newResolver()

	first := r.resolve(graph.KindType, "", "Person")
	again := r.resolve(graph.KindType, "", "Person")
	if first != again {
		t.Errorf("same symbol resolved to %d then %d", first, again)
	}
}

func TestResolver_IdentitiesAreDistinctNegatives(t *testing.T) {
	r := newResolver()

	a := r.resolve(graph.KindType, "", "A")
	b := r.resolve(graph.KindType, "", "B")
	if a >= 0 || b >= 0 {
		t.Errorf("expected negative placeholder identities, got %d and %d", a, b)
	}
	if a == b {
		t.Errorf("distinct symbols share identity %d", a)
	}
	if b != a-1 {
		t.Errorf("expected monotonically decreasing allocation, got %d then %d", a, b)
	}
}

func TestResolver_ScopeDisambiguatesRepeatedNames(t *testing.T) {
	r := newResolver()

	personName := r.resolve(graph.KindField, "Person", "name")
	companyName := r.resolve(graph.KindField, "Company", "name")
	if personName == companyName {
		t.Errorf("fields of different owners share identity %d", personName)
	}

	typeName := r.resolve(graph.KindType, "", "name")
	if typeName == personName || typeName == companyName {
		t.Error("kind must be part of the identity scope")
	}
}

func TestResolver_SilentAllocationForUndeclaredSymbols(t *testing.T) {
	r := newResolver()

	// Referencing is indistinguishable from declaring: first mention allocates.
	ref := r.resolve(graph.KindType, "", "Never")
	if !ref.Placeholder() {
		t.Errorf("expected placeholder identity, got %d", ref)
	}
	if later := r.resolve(graph.KindType, "", "Never"); later != ref {
		t.Errorf("later mention resolved differently: %d vs %d", later, ref)
	}
}
