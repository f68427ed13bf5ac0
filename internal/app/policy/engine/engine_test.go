package engine_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/classhub/internal/app/policy/classroom"
	"github.com/dalemusser/classhub/internal/app/policy/engine"
	"github.com/dalemusser/classhub/internal/app/policy/legacy"
	"github.com/dalemusser/classhub/internal/app/policy/rules"
	"github.com/dalemusser/classhub/internal/app/store/snapshot"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
)

func newEngine() *engine.Engine {
	return engine.New(zap.NewNop(), classroom.Ruleset(), legacy.Ruleset())
}

func TestDecide_DispatchesByPathRoot(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "teach", models.RoleTeacher)
	fx.CreateSubject("c1", "s1", "creator")
	fx.CreateLegacyMaterial("mat1", "c1", "author")

	eng := newEngine()
	snap := fx.Snapshot()

	// Under the current rules a teacher with no delegation cannot touch a
	// subject, but the same teacher counts as staff for the older
	// materials tree. The two generations must not bleed into each other.
	subject := eng.Decide(context.Background(), snap, engine.Request{
		Operation: rules.OpUpdate, Actor: "teach", Path: "classes/c1/subjects/s1",
	})
	if subject.Allowed {
		t.Error("undelegated teacher updated a subject")
	}
	if subject.Ruleset != "classroom" {
		t.Errorf("subject ruleset = %q, want classroom", subject.Ruleset)
	}

	material := eng.Decide(context.Background(), snap, engine.Request{
		Operation: rules.OpUpdate, Actor: "teach", Path: "ai_materials/mat1",
	})
	if !material.Allowed {
		t.Error("teacher denied on the legacy materials tree")
	}
	if material.Ruleset != "legacy-materials" {
		t.Errorf("material ruleset = %q, want legacy-materials", material.Ruleset)
	}
}

func TestDecide_UnknownRootDenies(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	eng := newEngine()

	d := eng.Decide(context.Background(), fx.Snapshot(), engine.Request{
		Operation: rules.OpRead, Actor: "u1", Path: "invoices/inv1",
	})
	if d.Allowed {
		t.Error("path outside every ruleset allowed")
	}
}

func TestDecide_MalformedPathDenies(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	eng := newEngine()

	for _, path := range []string{"", "classes", "classes/c1/members", "classes//x", "/classes/c1"} {
		d := eng.Decide(context.Background(), fx.Snapshot(), engine.Request{
			Operation: rules.OpRead, Actor: "u1", Path: path,
		})
		if d.Allowed {
			t.Errorf("malformed path %q allowed", path)
		}
	}
}

func TestDecide_NoDepthInheritance(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateClass("c1", "owner")
	eng := newEngine()

	// A class-level grant says nothing about deeper or unknown nesting.
	d := eng.Decide(context.Background(), fx.Snapshot(), engine.Request{
		Operation: rules.OpRead, Actor: "owner", Path: "classes/c1/widgets/w1",
	})
	if d.Allowed {
		t.Error("unmatched nested collection allowed via parent grant")
	}
}

func TestDecide_FetchesResourceForMutations(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateClass("c1", "owner")
	fx.CreateAssignment("c1", "a1", "creator")
	eng := newEngine()

	// No resource supplied: the engine loads the existing document so the
	// created_by grant can be checked against it.
	d := eng.Decide(context.Background(), fx.Snapshot(), engine.Request{
		Operation: rules.OpUpdate, Actor: "creator", Path: "classes/c1/assignments/a1",
	})
	if !d.Allowed {
		t.Error("creator denied when the resource had to be fetched")
	}
}

func TestDecide_MissingResourceDenies(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateClass("c1", "owner")
	eng := newEngine()

	d := eng.Decide(context.Background(), fx.Snapshot(), engine.Request{
		Operation: rules.OpUpdate, Actor: "creator", Path: "classes/c1/assignments/ghost",
	})
	if d.Allowed {
		t.Error("update of a nonexistent document allowed")
	}
}

func TestDecide_ReportsGrantingRule(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateClass("c1", "owner")
	eng := newEngine()

	d := eng.Decide(context.Background(), fx.Snapshot(), engine.Request{
		Operation: rules.OpUpdate, Actor: "owner", Path: "classes/c1",
	})
	if !d.Allowed || d.Rule != "class:owner" {
		t.Errorf("decision = %+v, want allow by class:owner", d)
	}
}

func TestDecide_FirstMatchingGrantWins(t *testing.T) {
	fx := testutil.NewFixtures(t, snapshot.NewMemoryStore())
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "adm", models.RoleAdmin)
	fx.Put("classes/c1/gallery/img1", models.GalleryImage{
		ID: "img1", ClassID: "c1", CreatedBy: "adm",
	})
	eng := newEngine()

	// The actor qualifies as both creator and admin; the decision names
	// the first grant in table order.
	d := eng.Decide(context.Background(), fx.Snapshot(), engine.Request{
		Operation: rules.OpDelete, Actor: "adm", Path: "classes/c1/gallery/img1",
	})
	if !d.Allowed || d.Rule != "gallery:creator" {
		t.Errorf("decision = %+v, want allow by gallery:creator", d)
	}
}

func TestDecide_NilSnapshotStillDeniesSafely(t *testing.T) {
	eng := newEngine()

	d := eng.Decide(context.Background(), nil, engine.Request{
		Operation: rules.OpUpdate, Actor: "owner", Path: "classes/c1",
	})
	if d.Allowed {
		t.Error("mutation allowed with no snapshot to consult")
	}
}
