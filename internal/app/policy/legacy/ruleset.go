// internal/app/policy/legacy/ruleset.go

// Package legacy defines the previous-generation rule table for the
// root-level ai_materials collection, kept alive for documents written
// before materials moved under their class.
//
// The generations deliberately disagree: here class staff means the class
// owner or a member whose role is admin OR teacher (teacher is
// admin-equivalent), whereas the classroom generation keeps the roles
// apart. The two tables are never merged; the engine picks one by the
// request path's root collection.
package legacy

import "github.com/dalemusser/classhub/internal/app/policy/rules"

// isClassStaff reports whether the actor is the owner, an admin, or a
// teacher of the class with the given id. Legacy documents carry their
// class in a class_id field rather than in the path.
func isClassStaff(e *rules.Eval, classID string) bool {
	if e.Actor == "" || classID == "" {
		return false
	}
	if e.Get("classes/"+classID).String("created_by") == e.Actor {
		return true
	}
	role := e.Get("classes/" + classID + "/members/" + e.Actor).String("role")
	return role == "admin" || role == "teacher"
}

// Ruleset returns the legacy rule table for root-level ai_materials.
func Ruleset() rules.Ruleset {
	pattern := rules.MustPattern("ai_materials/{materialId}")

	return rules.Ruleset{
		Name:  "legacy-materials",
		Roots: []string{"ai_materials"},
		Rules: []rules.Rule{
			{Pattern: pattern, Ops: []rules.Operation{rules.OpRead},
				Name: "legacy-material:signed-in", Allow: func(e *rules.Eval) bool {
					return e.Actor != ""
				}},
			{Pattern: pattern, Ops: []rules.Operation{rules.OpCreate},
				Name: "legacy-material:class-staff", Allow: func(e *rules.Eval) bool {
					return isClassStaff(e, e.Request.String("class_id"))
				}},
			{Pattern: pattern, Ops: []rules.Operation{rules.OpUpdate, rules.OpDelete},
				Name: "legacy-material:class-staff", Allow: func(e *rules.Eval) bool {
					return isClassStaff(e, e.Resource.String("class_id"))
				}},
			{Pattern: pattern, Ops: []rules.Operation{rules.OpUpdate, rules.OpDelete},
				Name: "legacy-material:creator", Allow: func(e *rules.Eval) bool {
					return e.Resource.String("created_by") == e.Actor && e.Actor != ""
				}},
		},
	}
}
