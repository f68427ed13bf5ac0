// internal/app/policy/classroom/helpers.go

// Package classroom defines the current-generation rule table for the
// class-scoped document tree (classes/** and users/**).
//
// Role model inside a class:
//   - The class owner (classes/{classId}.created_by) holds every
//     class-level right except those the table explicitly reserves
//     elsewhere.
//   - A member record at classes/{classId}/members/{userId} carries the
//     role: admin, teacher, or member.
//   - A subject's teachers list delegates update (never delete) rights on
//     that subject, independent of member role.
//
// In this generation isAdmin means owner-or-admin-member only; teachers are
// NOT admin-equivalent (the legacy generation differs, see policy/legacy).
package classroom

import "github.com/dalemusser/classhub/internal/app/policy/rules"

// signedIn is the baseline grant: any authenticated actor. The engine
// already denies unauthenticated requests; the explicit check keeps every
// rule safe on its own.
func signedIn(e *rules.Eval) bool {
	return e.Actor != ""
}

func classPath(e *rules.Eval) string {
	return "classes/" + e.Param("classId")
}

func memberPath(e *rules.Eval) string {
	return classPath(e) + "/members/" + e.Actor
}

// isClassOwner reports whether the actor created the class named in the
// request path.
func isClassOwner(e *rules.Eval) bool {
	if e.Actor == "" {
		return false
	}
	return e.Get(classPath(e)).String("created_by") == e.Actor
}

// isAdmin reports whether the actor is the class owner or holds an admin
// member record in the class.
func isAdmin(e *rules.Eval) bool {
	if isClassOwner(e) {
		return true
	}
	return e.Get(memberPath(e)).String("role") == "admin"
}

// isTeacher reports whether the actor's member record carries exactly the
// teacher role.
func isTeacher(e *rules.Eval) bool {
	if e.Actor == "" {
		return false
	}
	return e.Get(memberPath(e)).String("role") == "teacher"
}

// isTeacherForSubject reports whether the named subject exists, the actor is
// a teacher in the class, and the subject's teachers list names the actor.
// A missing subject or absent teachers field is false, never an error.
func isTeacherForSubject(e *rules.Eval, subjectID string) bool {
	if subjectID == "" || !isTeacher(e) {
		return false
	}
	subj := e.Get(classPath(e) + "/subjects/" + subjectID)
	if !subj.Exists() || !subj.Has("teachers") {
		return false
	}
	return subj.Contains("teachers", e.Actor)
}
