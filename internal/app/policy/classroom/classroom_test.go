package classroom_test

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/classhub/internal/app/policy/classroom"
	"github.com/dalemusser/classhub/internal/app/policy/engine"
	"github.com/dalemusser/classhub/internal/app/policy/rules"
	"github.com/dalemusser/classhub/internal/app/store/snapshot"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
)

func newFixtures(t *testing.T) *testutil.Fixtures {
	t.Helper()
	return testutil.NewFixtures(t, snapshot.NewMemoryStore())
}

// decide evaluates one request against the current fixture state.
func decide(t *testing.T, fx *testutil.Fixtures, op rules.Operation, actor, path string, resource, proposed rules.Document) engine.Decision {
	t.Helper()
	eng := engine.New(zap.NewNop(), classroom.Ruleset())
	return eng.Decide(context.Background(), fx.Snapshot(), engine.Request{
		Operation: op,
		Actor:     actor,
		Path:      path,
		Resource:  resource,
		Proposed:  proposed,
	})
}

func TestUnauthenticated_DeniedEverywhere(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")

	paths := []string{
		"classes/c1",
		"classes/c1/members/u1",
		"classes/c1/subjects/s1",
		"classes/c1/assignments/a1/comments/m1",
		"users/u1",
	}
	ops := []rules.Operation{rules.OpRead, rules.OpCreate, rules.OpUpdate, rules.OpDelete}

	for _, path := range paths {
		for _, op := range ops {
			if d := decide(t, fx, op, "", path, nil, nil); d.Allowed {
				t.Errorf("%s %s: allowed for unauthenticated actor", op, path)
			}
		}
	}
}

func TestClass_ReadableByAnySignedInUser(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")

	if d := decide(t, fx, rules.OpRead, "stranger", "classes/c1", nil, nil); !d.Allowed {
		t.Error("signed-in read of a class denied")
	}
}

func TestClass_MutationIsOwnerOnly(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "alice")
	fx.CreateMember("c1", "bob", models.RoleAdmin)

	for _, op := range []rules.Operation{rules.OpUpdate, rules.OpDelete} {
		if d := decide(t, fx, op, "alice", "classes/c1", nil, nil); !d.Allowed {
			t.Errorf("%s: owner denied", op)
		}
		// Even a class admin has no override on the class document itself.
		if d := decide(t, fx, op, "bob", "classes/c1", nil, nil); d.Allowed {
			t.Errorf("%s: class admin allowed on the class document", op)
		}
		if d := decide(t, fx, op, "stranger", "classes/c1", nil, nil); d.Allowed {
			t.Errorf("%s: unrelated actor allowed", op)
		}
	}
}

func TestClass_MemberCannotDeleteOwnerCan(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "a")
	fx.CreateMember("c1", "b", models.RoleMember)

	if d := decide(t, fx, rules.OpDelete, "b", "classes/c1", nil, nil); d.Allowed {
		t.Error("member deleted the class")
	}
	if d := decide(t, fx, rules.OpDelete, "a", "classes/c1", nil, nil); !d.Allowed {
		t.Error("owner could not delete the class")
	}
}

func TestMember_SelfJoinAndAdminCreate(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "adm", models.RoleAdmin)

	// A user may create their own member record.
	own := rules.Document{"user_id": "newbie", "role": models.RoleMember}
	if d := decide(t, fx, rules.OpCreate, "newbie", "classes/c1/members/newbie", nil, own); !d.Allowed {
		t.Error("self-join denied")
	}
	// …but not someone else's.
	if d := decide(t, fx, rules.OpCreate, "newbie", "classes/c1/members/other",
		nil, rules.Document{"user_id": "other"}); d.Allowed {
		t.Error("non-admin created a member record for another user")
	}
	// Admins may.
	if d := decide(t, fx, rules.OpCreate, "adm", "classes/c1/members/other",
		nil, rules.Document{"user_id": "other"}); !d.Allowed {
		t.Error("admin could not create a member record")
	}
}

func TestMember_SelfLeave(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "m1", models.RoleMember)
	fx.CreateMember("c1", "m2", models.RoleMember)

	if d := decide(t, fx, rules.OpDelete, "m1", "classes/c1/members/m1", nil, nil); !d.Allowed {
		t.Error("member could not leave the class")
	}
	if d := decide(t, fx, rules.OpDelete, "m1", "classes/c1/members/m2", nil, nil); d.Allowed {
		t.Error("member removed another member")
	}
}

func TestSubject_UpdateDisjuncts(t *testing.T) {
	// Each grant must hold with the other two false.
	tests := []struct {
		name  string
		actor string
	}{
		{"creator", "creator"},
		{"class owner", "owner"},
		{"delegated teacher", "teach"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixtures(t)
			fx.CreateClass("c1", "owner")
			fx.CreateMember("c1", "teach", models.RoleTeacher)
			fx.CreateSubject("c1", "s1", "creator", "teach")

			if d := decide(t, fx, rules.OpUpdate, tt.actor, "classes/c1/subjects/s1", nil, nil); !d.Allowed {
				t.Errorf("%s denied subject update", tt.name)
			}
		})
	}
}

func TestSubject_UpdateDeniedWithoutAnyGrant(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "plain", models.RoleMember)
	fx.CreateSubject("c1", "s1", "creator", "teach")

	if d := decide(t, fx, rules.OpUpdate, "plain", "classes/c1/subjects/s1", nil, nil); d.Allowed {
		t.Error("plain member updated the subject")
	}
}

func TestSubject_DelegationRequiresBothRoleAndList(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	// In the delegation list but role is member, not teacher.
	fx.CreateMember("c1", "listed", models.RoleMember)
	// Teacher role but not in the list.
	fx.CreateMember("c1", "unlisted", models.RoleTeacher)
	fx.CreateSubject("c1", "s1", "creator", "listed")

	if d := decide(t, fx, rules.OpUpdate, "listed", "classes/c1/subjects/s1", nil, nil); d.Allowed {
		t.Error("listed non-teacher updated the subject")
	}
	if d := decide(t, fx, rules.OpUpdate, "unlisted", "classes/c1/subjects/s1", nil, nil); d.Allowed {
		t.Error("unlisted teacher updated the subject")
	}
}

func TestSubject_DelegatedTeacherCannotDelete(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "teach", models.RoleTeacher)
	fx.CreateSubject("c1", "s1", "creator", "teach")

	// Teacher C in Subject.teachers: update allow, delete deny.
	if d := decide(t, fx, rules.OpUpdate, "teach", "classes/c1/subjects/s1", nil, nil); !d.Allowed {
		t.Error("delegated teacher denied subject update")
	}
	if d := decide(t, fx, rules.OpDelete, "teach", "classes/c1/subjects/s1", nil, nil); d.Allowed {
		t.Error("delegated teacher deleted the subject")
	}
	// Creator and class owner may delete.
	if d := decide(t, fx, rules.OpDelete, "creator", "classes/c1/subjects/s1", nil, nil); !d.Allowed {
		t.Error("creator denied subject delete")
	}
	if d := decide(t, fx, rules.OpDelete, "owner", "classes/c1/subjects/s1", nil, nil); !d.Allowed {
		t.Error("class owner denied subject delete")
	}
}

func TestSubject_MissingSubjectIsDenyNotError(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "teach", models.RoleTeacher)
	// No subject document mirrored: the delegation lookup must quietly
	// evaluate false.
	if d := decide(t, fx, rules.OpUpdate, "teach", "classes/c1/subjects/ghost", nil, nil); d.Allowed {
		t.Error("update of a nonexistent subject allowed")
	}
}

func TestSubject_NilTeachersList(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "teach", models.RoleTeacher)
	fx.CreateSubject("c1", "s1", "creator") // no teachers delegated

	if d := decide(t, fx, rules.OpUpdate, "teach", "classes/c1/subjects/s1", nil, nil); d.Allowed {
		t.Error("teacher updated a subject with no delegation list")
	}
}

func TestCompletionApproval_EachDisjunctIndependently(t *testing.T) {
	tests := []struct {
		name  string
		actor string
		rule  string
	}{
		{"class owner", "owner", "completion:admin"},
		{"class admin", "adm", "completion:admin"},
		{"class teacher", "teach", "completion:teacher"},
		{"subject teacher", "subj-teach", "completion:subject-teacher"},
		{"approver", "approver", "completion:approver"},
		{"grader", "grader", "completion:grader"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixtures(t)
			fx.CreateClass("c1", "owner")
			fx.CreateMember("c1", "adm", models.RoleAdmin)
			fx.CreateMember("c1", "teach", models.RoleTeacher)
			fx.CreateCompletionApproval("c1", models.CompletionApproval{
				ID:              "ap1",
				UserID:          "requester",
				SubjectTeachers: []string{"subj-teach"},
				ApprovedBy:      "approver",
				GradedBy:        "grader",
			})

			d := decide(t, fx, rules.OpUpdate, tt.actor, "classes/c1/completion_approvals/ap1", nil, nil)
			if !d.Allowed {
				t.Fatalf("%s denied", tt.name)
			}
			if d.Rule != tt.rule {
				t.Errorf("granting rule = %q, want %q", d.Rule, tt.rule)
			}
		})
	}
}

func TestCompletionApproval_AllDisjunctsFalseDenies(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "requester", models.RoleMember)
	fx.CreateCompletionApproval("c1", models.CompletionApproval{
		ID:              "ap1",
		UserID:          "requester",
		SubjectTeachers: []string{"someone-else"},
		ApprovedBy:      "approver",
		GradedBy:        "grader",
	})

	// The requester holds none of the grants and may not edit.
	if d := decide(t, fx, rules.OpUpdate, "requester", "classes/c1/completion_approvals/ap1", nil, nil); d.Allowed {
		t.Error("requester updated the approval with no grant held")
	}
}

func TestCompletionApproval_GraderScenario(t *testing.T) {
	// gradedBy = D, approvedBy unset, requester = E: D updates → allow,
	// E updates → deny.
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "E", models.RoleMember)
	fx.CreateCompletionApproval("c1", models.CompletionApproval{
		ID:       "ap1",
		UserID:   "E",
		GradedBy: "D",
	})

	if d := decide(t, fx, rules.OpUpdate, "D", "classes/c1/completion_approvals/ap1", nil, nil); !d.Allowed {
		t.Error("grader denied")
	}
	if d := decide(t, fx, rules.OpUpdate, "E", "classes/c1/completion_approvals/ap1", nil, nil); d.Allowed {
		t.Error("requester allowed without any grant")
	}
}

func TestCompletionApproval_RequesterCreatesOwn(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "req", models.RoleMember)

	own := rules.Document{"user_id": "req", "status": models.ApprovalPending}
	if d := decide(t, fx, rules.OpCreate, "req", "classes/c1/completion_approvals/ap1", nil, own); !d.Allowed {
		t.Error("requester could not file their own approval request")
	}
	forged := rules.Document{"user_id": "victim"}
	if d := decide(t, fx, rules.OpCreate, "req", "classes/c1/completion_approvals/ap2", nil, forged); d.Allowed {
		t.Error("approval request created on behalf of another user")
	}
}

func TestComment_AuthorOwnsAdminModerates(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "adm", models.RoleAdmin)
	fx.CreateAssignment("c1", "a1", "owner")
	fx.CreateComment("c1", "a1", "m1", "author")

	path := "classes/c1/assignments/a1/comments/m1"

	if d := decide(t, fx, rules.OpUpdate, "author", path, nil, nil); !d.Allowed {
		t.Error("author denied comment update")
	}
	// Admins may remove comments but not rewrite them.
	if d := decide(t, fx, rules.OpUpdate, "adm", path, nil, nil); d.Allowed {
		t.Error("admin rewrote another user's comment")
	}
	if d := decide(t, fx, rules.OpDelete, "adm", path, nil, nil); !d.Allowed {
		t.Error("admin denied comment delete")
	}
	if d := decide(t, fx, rules.OpDelete, "stranger", path, nil, nil); d.Allowed {
		t.Error("stranger deleted a comment")
	}
}

func TestGallery_CreatorAndAdminAreIndependentGrants(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "adm", models.RoleAdmin)

	image := rules.Document{"created_by": "poster"}
	fx.Put("classes/c1/gallery/img1", models.GalleryImage{
		ID: "img1", ClassID: "c1", CreatedBy: "poster",
	})

	for _, op := range []rules.Operation{rules.OpUpdate, rules.OpDelete} {
		creator := decide(t, fx, op, "poster", "classes/c1/gallery/img1", image, nil)
		if !creator.Allowed || creator.Rule != "gallery:creator" {
			t.Errorf("%s: creator grant = %+v", op, creator)
		}
		admin := decide(t, fx, op, "adm", "classes/c1/gallery/img1", image, nil)
		if !admin.Allowed || admin.Rule != "gallery:admin" {
			t.Errorf("%s: admin grant = %+v", op, admin)
		}
		if d := decide(t, fx, op, "other", "classes/c1/gallery/img1", image, nil); d.Allowed {
			t.Errorf("%s: unrelated member allowed", op)
		}
	}
}

func TestUser_ProfileSelfOnly(t *testing.T) {
	fx := newFixtures(t)
	fx.Put("users/u1", models.User{ID: "u1", DisplayName: "User One"})

	if d := decide(t, fx, rules.OpUpdate, "u1", "users/u1", nil, rules.Document{}); !d.Allowed {
		t.Error("user denied updating own profile")
	}
	if d := decide(t, fx, rules.OpUpdate, "u2", "users/u1", nil, rules.Document{}); d.Allowed {
		t.Error("user updated someone else's profile")
	}
	if d := decide(t, fx, rules.OpDelete, "u1", "users/u1", nil, nil); !d.Allowed {
		t.Error("user denied deleting own profile")
	}
}

func TestUser_PhotoSizeCap(t *testing.T) {
	fx := newFixtures(t)

	small := rules.Document{"photo_base64": strings.Repeat("a", 1024)}
	if d := decide(t, fx, rules.OpCreate, "u1", "users/u1", nil, small); !d.Allowed {
		t.Error("small photo rejected")
	}

	oversized := rules.Document{"photo_base64": strings.Repeat("a", models.MaxPhotoBytes+1)}
	if d := decide(t, fx, rules.OpCreate, "u1", "users/u1", nil, oversized); d.Allowed {
		t.Error("oversized photo accepted")
	}
}

func TestCompletedAssignment_OwnerAndGraders(t *testing.T) {
	fx := newFixtures(t)
	fx.Put("users/u1/completed_assignments/ca1", models.CompletedAssignment{
		ID: "ca1", UserID: "u1", AssignmentID: "a1", ClassID: "c1",
		TeacherID: "teach", GradedBy: "grader",
	})

	path := "users/u1/completed_assignments/ca1"

	if d := decide(t, fx, rules.OpUpdate, "u1", path, nil, nil); !d.Allowed {
		t.Error("owner denied")
	}
	if d := decide(t, fx, rules.OpUpdate, "teach", path, nil, nil); !d.Allowed {
		t.Error("assigned teacher denied")
	}
	if d := decide(t, fx, rules.OpUpdate, "grader", path, nil, nil); !d.Allowed {
		t.Error("grader denied")
	}
	if d := decide(t, fx, rules.OpUpdate, "other", path, nil, nil); d.Allowed {
		t.Error("unrelated user allowed")
	}
	// Only the owner removes their own records.
	if d := decide(t, fx, rules.OpDelete, "grader", path, nil, nil); d.Allowed {
		t.Error("grader deleted the record")
	}
	if d := decide(t, fx, rules.OpDelete, "u1", path, nil, nil); !d.Allowed {
		t.Error("owner denied delete")
	}
}

func TestRoleRevocation_TakesEffectNextDecision(t *testing.T) {
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateAssignment("c1", "a1", "owner")
	fx.CreateMember("c1", "adm", models.RoleAdmin)

	path := "classes/c1/assignments/a1"

	if d := decide(t, fx, rules.OpUpdate, "adm", path, nil, nil); !d.Allowed {
		t.Fatal("admin denied while the role was granted")
	}

	fx.RemoveMember("c1", "adm")

	if d := decide(t, fx, rules.OpUpdate, "adm", path, nil, nil); d.Allowed {
		t.Error("revoked admin still allowed; decisions must not cache roles")
	}
}

func TestTeacher_IsNotAdminEquivalent(t *testing.T) {
	// The current generation keeps teacher and admin apart: a teacher may
	// not manage member records.
	fx := newFixtures(t)
	fx.CreateClass("c1", "owner")
	fx.CreateMember("c1", "teach", models.RoleTeacher)
	fx.CreateMember("c1", "m1", models.RoleMember)

	if d := decide(t, fx, rules.OpUpdate, "teach", "classes/c1/members/m1", nil, nil); d.Allowed {
		t.Error("teacher updated a member record; teacher must not be admin-equivalent here")
	}
}
