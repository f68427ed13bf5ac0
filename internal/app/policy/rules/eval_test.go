package rules_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/classhub/internal/app/policy/rules"
)

// mapSnapshot is a minimal Snapshot keyed by canonical path string.
type mapSnapshot map[string]rules.Document

func (m mapSnapshot) Lookup(_ context.Context, p rules.Path) (rules.Document, error) {
	return m[p.String()], nil
}

// failingSnapshot simulates a store failure on every lookup.
type failingSnapshot struct{}

func (failingSnapshot) Lookup(context.Context, rules.Path) (rules.Document, error) {
	return nil, errors.New("store unavailable")
}

func TestEval_GetPresent(t *testing.T) {
	snap := mapSnapshot{
		"classes/c1": {"created_by": "owner"},
	}
	e := rules.NewEval(context.Background(), snap, "owner", nil, nil, nil)

	doc := e.Get("classes/c1")
	if !doc.Exists() {
		t.Fatal("expected document to exist")
	}
	if doc.String("created_by") != "owner" {
		t.Errorf("created_by = %q, want %q", doc.String("created_by"), "owner")
	}
	if !e.Exists("classes/c1") {
		t.Error("Exists = false for a present document")
	}
}

func TestEval_GetMissingIsNil(t *testing.T) {
	e := rules.NewEval(context.Background(), mapSnapshot{}, "u1", nil, nil, nil)

	doc := e.Get("classes/ghost")
	if doc.Exists() {
		t.Error("missing document reported as existing")
	}
	// Chained field access on the missing document must be a zero value,
	// never a panic.
	if doc.String("created_by") != "" {
		t.Error("field access on missing document returned data")
	}
	if e.Exists("classes/ghost") {
		t.Error("Exists = true for a missing document")
	}
}

func TestEval_MalformedLookupIsFalseNotError(t *testing.T) {
	snap := mapSnapshot{"classes/c1": {}}
	e := rules.NewEval(context.Background(), snap, "u1", nil, nil, nil)

	for _, path := range []string{"", "classes", "classes/c1/members", "///"} {
		if e.Exists(path) {
			t.Errorf("Exists(%q) = true, want false", path)
		}
		if e.Get(path).Exists() {
			t.Errorf("Get(%q) returned a document", path)
		}
	}
}

func TestEval_LookupErrorFailsClosed(t *testing.T) {
	e := rules.NewEval(context.Background(), failingSnapshot{}, "u1", nil, nil, nil)

	if e.Exists("classes/c1") {
		t.Error("Exists = true when the store errored")
	}
	if e.Get("classes/c1").Exists() {
		t.Error("Get returned a document when the store errored")
	}
}

func TestEval_NilSnapshot(t *testing.T) {
	e := rules.NewEval(context.Background(), nil, "u1", nil, nil, nil)
	if e.Exists("classes/c1") {
		t.Error("Exists = true with no snapshot")
	}
}

func TestEval_Param(t *testing.T) {
	e := rules.NewEval(context.Background(), nil, "u1",
		map[string]string{"classId": "c1"}, nil, nil)
	if e.Param("classId") != "c1" {
		t.Errorf("Param(classId) = %q, want c1", e.Param("classId"))
	}
	if e.Param("subjectId") != "" {
		t.Error("missing param should be empty")
	}
}
