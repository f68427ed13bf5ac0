// internal/app/policy/classroom/ruleset.go
package classroom

import (
	"github.com/dalemusser/classhub/internal/app/policy/rules"
	"github.com/dalemusser/classhub/internal/domain/models"
)

// Convenience aliases keep the table readable.
var (
	read   = []rules.Operation{rules.OpRead}
	create = []rules.Operation{rules.OpCreate}
	update = []rules.Operation{rules.OpUpdate}
	del    = []rules.Operation{rules.OpDelete}
	write  = []rules.Operation{rules.OpCreate, rules.OpUpdate, rules.OpDelete}
	mutate = []rules.Operation{rules.OpUpdate, rules.OpDelete}
)

// Ruleset returns the current-generation rule table.
//
// Repeated rules for the same pattern and operation are independent grants:
// the request is allowed if any one of them holds. Several collections
// (subjects, completion_approvals, the gallery family) rely on that OR
// semantics to express their disjoint authorization paths.
func Ruleset() rules.Ruleset {
	return rules.Ruleset{
		Name:  "classroom",
		Roots: []string{"classes", "users"},
		Rules: []rules.Rule{
			// ── classes/{classId} ───────────────────────────────────────
			// The class document itself belongs to its creator alone; a
			// class admin cannot update or delete the class.
			{Pattern: rules.MustPattern("classes/{classId}"), Ops: read,
				Name: "class:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}"), Ops: create,
				Name: "class:signed-in-create", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}"), Ops: mutate,
				Name: "class:owner", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("created_by") == e.Actor && e.Actor != ""
				}},

			// ── members ────────────────────────────────────────────────
			// Member documents are keyed by the member's user id. A user
			// may create their own record (join); admins manage the rest.
			{Pattern: rules.MustPattern("classes/{classId}/members/{memberId}"), Ops: read,
				Name: "member:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/members/{memberId}"), Ops: create,
				Name: "member:admin", Allow: isAdmin},
			{Pattern: rules.MustPattern("classes/{classId}/members/{memberId}"), Ops: create,
				Name: "member:self-join", Allow: func(e *rules.Eval) bool {
					return e.Actor != "" && e.Request.String("user_id") == e.Actor
				}},
			{Pattern: rules.MustPattern("classes/{classId}/members/{memberId}"), Ops: update,
				Name: "member:admin", Allow: isAdmin},
			{Pattern: rules.MustPattern("classes/{classId}/members/{memberId}"), Ops: del,
				Name: "member:admin", Allow: isAdmin},
			{Pattern: rules.MustPattern("classes/{classId}/members/{memberId}"), Ops: del,
				Name: "member:self-leave", Allow: func(e *rules.Eval) bool {
					return e.Actor != "" && e.Resource.String("user_id") == e.Actor
				}},

			// ── subjects ───────────────────────────────────────────────
			// Update is granted to the subject creator, the class owner,
			// or a teacher named in the subject's own teachers list. The
			// delegation list never grants delete.
			{Pattern: rules.MustPattern("classes/{classId}/subjects/{subjectId}"), Ops: read,
				Name: "subject:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/subjects/{subjectId}"), Ops: create,
				Name: "subject:admin", Allow: isAdmin},
			{Pattern: rules.MustPattern("classes/{classId}/subjects/{subjectId}"), Ops: mutate,
				Name: "subject:creator", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("created_by") == e.Actor && e.Actor != ""
				}},
			{Pattern: rules.MustPattern("classes/{classId}/subjects/{subjectId}"), Ops: mutate,
				Name: "subject:class-owner", Allow: isClassOwner},
			{Pattern: rules.MustPattern("classes/{classId}/subjects/{subjectId}"), Ops: update,
				Name: "subject:delegated-teacher", Allow: func(e *rules.Eval) bool {
					return isTeacherForSubject(e, e.Param("subjectId"))
				}},

			// ── assignments ────────────────────────────────────────────
			{Pattern: rules.MustPattern("classes/{classId}/assignments/{assignmentId}"), Ops: read,
				Name: "assignment:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/assignments/{assignmentId}"), Ops: create,
				Name: "assignment:admin", Allow: isAdmin},
			{Pattern: rules.MustPattern("classes/{classId}/assignments/{assignmentId}"), Ops: create,
				Name: "assignment:teacher", Allow: isTeacher},
			{Pattern: rules.MustPattern("classes/{classId}/assignments/{assignmentId}"), Ops: mutate,
				Name: "assignment:creator", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("created_by") == e.Actor && e.Actor != ""
				}},
			{Pattern: rules.MustPattern("classes/{classId}/assignments/{assignmentId}"), Ops: mutate,
				Name: "assignment:admin", Allow: isAdmin},

			// ── comments ───────────────────────────────────────────────
			// Authors own their comments; admins may moderate (delete but
			// not rewrite).
			{Pattern: rules.MustPattern("classes/{classId}/assignments/{assignmentId}/comments/{commentId}"), Ops: read,
				Name: "comment:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/assignments/{assignmentId}/comments/{commentId}"), Ops: create,
				Name: "comment:own-author", Allow: func(e *rules.Eval) bool {
					return e.Actor != "" && e.Request.String("user_id") == e.Actor
				}},
			{Pattern: rules.MustPattern("classes/{classId}/assignments/{assignmentId}/comments/{commentId}"), Ops: update,
				Name: "comment:author", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("user_id") == e.Actor && e.Actor != ""
				}},
			{Pattern: rules.MustPattern("classes/{classId}/assignments/{assignmentId}/comments/{commentId}"), Ops: del,
				Name: "comment:author", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("user_id") == e.Actor && e.Actor != ""
				}},
			{Pattern: rules.MustPattern("classes/{classId}/assignments/{assignmentId}/comments/{commentId}"), Ops: del,
				Name: "comment:admin", Allow: isAdmin},

			// ── experience ─────────────────────────────────────────────
			{Pattern: rules.MustPattern("classes/{classId}/experience/{entryId}"), Ops: read,
				Name: "experience:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/experience/{entryId}"), Ops: write,
				Name: "experience:admin", Allow: isAdmin},
			{Pattern: rules.MustPattern("classes/{classId}/experience/{entryId}"), Ops: write,
				Name: "experience:teacher", Allow: isTeacher},

			// ── gallery family ─────────────────────────────────────────
			// Any member may post; creators manage their own uploads and
			// admins hold an independent grant (second allow statement).
			{Pattern: rules.MustPattern("classes/{classId}/gallery/{imageId}"), Ops: read,
				Name: "gallery:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/gallery/{imageId}"), Ops: create,
				Name: "gallery:signed-in-create", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/gallery/{imageId}"), Ops: mutate,
				Name: "gallery:creator", Allow: createdByActor},
			{Pattern: rules.MustPattern("classes/{classId}/gallery/{imageId}"), Ops: mutate,
				Name: "gallery:admin", Allow: isAdmin},

			{Pattern: rules.MustPattern("classes/{classId}/albums/{albumId}"), Ops: read,
				Name: "album:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/albums/{albumId}"), Ops: create,
				Name: "album:signed-in-create", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/albums/{albumId}"), Ops: mutate,
				Name: "album:creator", Allow: createdByActor},
			{Pattern: rules.MustPattern("classes/{classId}/albums/{albumId}"), Ops: mutate,
				Name: "album:admin", Allow: isAdmin},

			{Pattern: rules.MustPattern("classes/{classId}/featured_images/{imageId}"), Ops: read,
				Name: "featured:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/featured_images/{imageId}"), Ops: write,
				Name: "featured:admin", Allow: isAdmin},

			{Pattern: rules.MustPattern("classes/{classId}/gallery_approvals/{approvalId}"), Ops: read,
				Name: "gallery-approval:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/gallery_approvals/{approvalId}"), Ops: create,
				Name: "gallery-approval:signed-in-create", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/gallery_approvals/{approvalId}"), Ops: mutate,
				Name: "gallery-approval:creator", Allow: createdByActor},
			{Pattern: rules.MustPattern("classes/{classId}/gallery_approvals/{approvalId}"), Ops: mutate,
				Name: "gallery-approval:admin", Allow: isAdmin},

			// ── completion approvals ───────────────────────────────────
			// Mutation is a disjunction of independent grants: class owner
			// (inside admin), class admin, class teacher, a teacher named
			// in the approval's own subject_teachers, its approved_by, or
			// its graded_by.
			{Pattern: rules.MustPattern("classes/{classId}/completion_approvals/{approvalId}"), Ops: read,
				Name: "completion:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/completion_approvals/{approvalId}"), Ops: create,
				Name: "completion:own-request", Allow: func(e *rules.Eval) bool {
					return e.Actor != "" && e.Request.String("user_id") == e.Actor
				}},
			{Pattern: rules.MustPattern("classes/{classId}/completion_approvals/{approvalId}"), Ops: mutate,
				Name: "completion:admin", Allow: isAdmin},
			{Pattern: rules.MustPattern("classes/{classId}/completion_approvals/{approvalId}"), Ops: mutate,
				Name: "completion:teacher", Allow: isTeacher},
			{Pattern: rules.MustPattern("classes/{classId}/completion_approvals/{approvalId}"), Ops: mutate,
				Name: "completion:subject-teacher", Allow: func(e *rules.Eval) bool {
					return e.Actor != "" && e.Resource.Contains("subject_teachers", e.Actor)
				}},
			{Pattern: rules.MustPattern("classes/{classId}/completion_approvals/{approvalId}"), Ops: mutate,
				Name: "completion:approver", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("approved_by") == e.Actor && e.Actor != ""
				}},
			{Pattern: rules.MustPattern("classes/{classId}/completion_approvals/{approvalId}"), Ops: mutate,
				Name: "completion:grader", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("graded_by") == e.Actor && e.Actor != ""
				}},

			// ── class-scoped ai materials ──────────────────────────────
			{Pattern: rules.MustPattern("classes/{classId}/ai_materials/{materialId}"), Ops: read,
				Name: "material:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("classes/{classId}/ai_materials/{materialId}"), Ops: write,
				Name: "material:admin", Allow: isAdmin},
			{Pattern: rules.MustPattern("classes/{classId}/ai_materials/{materialId}"), Ops: write,
				Name: "material:teacher", Allow: isTeacher},

			// ── users/{userId} ─────────────────────────────────────────
			// Profiles are readable by any signed-in user but writable
			// only by their owner, and the photo payload is size-capped.
			{Pattern: rules.MustPattern("users/{userId}"), Ops: read,
				Name: "user:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("users/{userId}"), Ops: []rules.Operation{rules.OpCreate, rules.OpUpdate},
				Name: "user:self", Allow: func(e *rules.Eval) bool {
					if e.Actor == "" || e.Actor != e.Param("userId") {
						return false
					}
					return e.Request.FieldLen("photo_base64") <= models.MaxPhotoBytes
				}},
			{Pattern: rules.MustPattern("users/{userId}"), Ops: del,
				Name: "user:self", Allow: func(e *rules.Eval) bool {
					return e.Actor != "" && e.Actor == e.Param("userId")
				}},

			// ── users/{userId}/completed_assignments ───────────────────
			// The owning user records completions; graders and approvers
			// named on the record keep edit rights.
			{Pattern: rules.MustPattern("users/{userId}/completed_assignments/{completionId}"), Ops: read,
				Name: "completed:signed-in", Allow: signedIn},
			{Pattern: rules.MustPattern("users/{userId}/completed_assignments/{completionId}"), Ops: create,
				Name: "completed:owner", Allow: ownsUserSubtree},
			{Pattern: rules.MustPattern("users/{userId}/completed_assignments/{completionId}"), Ops: update,
				Name: "completed:owner", Allow: ownsUserSubtree},
			{Pattern: rules.MustPattern("users/{userId}/completed_assignments/{completionId}"), Ops: update,
				Name: "completed:teacher", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("teacher_id") == e.Actor && e.Actor != ""
				}},
			{Pattern: rules.MustPattern("users/{userId}/completed_assignments/{completionId}"), Ops: update,
				Name: "completed:grader", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("graded_by") == e.Actor && e.Actor != ""
				}},
			{Pattern: rules.MustPattern("users/{userId}/completed_assignments/{completionId}"), Ops: update,
				Name: "completed:approver", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("approved_by") == e.Actor && e.Actor != ""
				}},
			{Pattern: rules.MustPattern("users/{userId}/completed_assignments/{completionId}"), Ops: del,
				Name: "completed:owner", Allow: ownsUserSubtree},
		},
	}
}

// createdByActor grants creators rights on their own documents.
func createdByActor(e *rules.Eval) bool {
	return e.Resource.String("created_by") == e.Actor && e.Actor != ""
}

// ownsUserSubtree grants the user named in the path's {userId} position.
func ownsUserSubtree(e *rules.Eval) bool {
	return e.Actor != "" && e.Actor == e.Param("userId")
}
