// internal/domain/models/approvals.go
package models

import "time"

// Completion approval states.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// CompletionApproval tracks a member's request to have a completed
// assignment signed off.
//
// SubjectTeachers is copied from the assignment's subject at request time so
// the named teachers keep grading rights even if the subject's delegation
// list changes later. ApprovedBy and GradedBy are set once and then act as
// ownership fields for later edits.
type CompletionApproval struct {
	ID           string `bson:"_id" json:"id"`
	ClassID      string `bson:"class_id" json:"class_id"`
	AssignmentID string `bson:"assignment_id" json:"assignment_id"`
	UserID       string `bson:"user_id" json:"user_id"` // requester
	Status       string `bson:"status" json:"status"`   // pending | approved | rejected

	SubjectTeachers []string `bson:"subject_teachers,omitempty" json:"subject_teachers,omitempty"`
	ApprovedBy      string   `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	GradedBy        string   `bson:"graded_by,omitempty" json:"graded_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CompletedAssignment records a finished assignment under the completing
// user's document, including the grade once one is given.
type CompletedAssignment struct {
	ID           string   `bson:"_id" json:"id"`
	UserID       string   `bson:"user_id" json:"user_id"` // owning user (path parent)
	AssignmentID string   `bson:"assignment_id" json:"assignment_id"`
	ClassID      string   `bson:"class_id" json:"class_id"`
	Score        *float64 `bson:"score,omitempty" json:"score,omitempty"`
	ApprovedBy   string   `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	TeacherID    string   `bson:"teacher_id,omitempty" json:"teacher_id,omitempty"`
	GradedBy     string   `bson:"graded_by,omitempty" json:"graded_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
