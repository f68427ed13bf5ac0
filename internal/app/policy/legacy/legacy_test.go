package legacy_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/classhub/internal/app/policy/engine"
	"github.com/dalemusser/classhub/internal/app/policy/legacy"
	"github.com/dalemusser/classhub/internal/app/policy/rules"
	"github.com/dalemusser/classhub/internal/app/store/snapshot"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
)

func decide(t *testing.T, fx *testutil.Fixtures, op rules.Operation, actor, path string, resource, proposed rules.Document) engine.Decision {
	t.Helper()
	eng := engine.New(zap.NewNop(), legacy.Ruleset())
	return eng.Decide(context.Background(), fx.Snapshot(), engine.Request{
		Operation: op,
		Actor:     actor,
		Path:      path,
		Resource:  resource,
		Proposed:  proposed,
	})
}

func TestMaterial_ReadableBySignedIn(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateLegacyMaterial("mat1", "c1", "author")

	if d := decide(t, fx, rules.OpRead, "anyone", "ai_materials/mat1", nil, nil); !d.Allowed {
		t.Error("signed-in read denied")
	}
	if d := decide(t, fx, rules.OpRead, "", "ai_materials/mat1", nil, nil); d.Allowed {
		t.Error("anonymous read allowed")
	}
}

func TestMaterial_TeacherCountsAsStaff(t *testing.T) {
	// In this older generation a plain teacher carries the same weight as
	// an admin. That equivalence does not exist in the current rules.
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "teach", models.RoleTeacher)
	fx.CreateMember("c1", "adm", models.RoleAdmin)
	fx.CreateMember("c1", "plain", models.RoleMember)
	fx.CreateLegacyMaterial("mat1", "c1", "author")

	for _, actor := range []string{"owner", "teach", "adm"} {
		if d := decide(t, fx, rules.OpUpdate, actor, "ai_materials/mat1", nil, nil); !d.Allowed {
			t.Errorf("staff actor %q denied", actor)
		}
	}
	if d := decide(t, fx, rules.OpUpdate, "plain", "ai_materials/mat1", nil, nil); d.Allowed {
		t.Error("plain member updated a material")
	}
}

func TestMaterial_CreateChecksProposedClass(t *testing.T) {
	// The class to rank the actor against on create comes from the
	// incoming document, not from an existing one.
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateClass("c1", "owner")
	fx.CreateClass("c2", "other-owner")
	fx.CreateMember("c1", "teach", models.RoleTeacher)

	mine := rules.Document{"class_id": "c1", "title": "Chapter 3"}
	if d := decide(t, fx, rules.OpCreate, "teach", "ai_materials/new1", nil, mine); !d.Allowed {
		t.Error("teacher denied creating a material for their own class")
	}
	foreign := rules.Document{"class_id": "c2", "title": "Chapter 3"}
	if d := decide(t, fx, rules.OpCreate, "teach", "ai_materials/new2", nil, foreign); d.Allowed {
		t.Error("teacher created a material for a class they do not staff")
	}
}

func TestMaterial_CreatorRetainsEditRights(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateClass("c1", "owner")
	fx.CreateLegacyMaterial("mat1", "c1", "author")

	// The author is not class staff but still edits their own material.
	if d := decide(t, fx, rules.OpUpdate, "author", "ai_materials/mat1", nil, nil); !d.Allowed {
		t.Error("creator denied")
	}
	if d := decide(t, fx, rules.OpDelete, "author", "ai_materials/mat1", nil, nil); !d.Allowed {
		t.Error("creator denied delete")
	}
}

func TestMaterial_MissingClassDenies(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateLegacyMaterial("mat1", "ghost-class", "author")

	// The staff lookup dangles; only the creator grant can hold.
	if d := decide(t, fx, rules.OpUpdate, "someone", "ai_materials/mat1", nil, nil); d.Allowed {
		t.Error("update allowed with no resolvable class")
	}
}
