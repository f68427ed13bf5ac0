// internal/domain/models/assignment.go
package models

import "time"

// Assignment is a task posted in a class, optionally tied to a subject.
type Assignment struct {
	ID        string `bson:"_id" json:"id"`
	ClassID   string `bson:"class_id" json:"class_id"`
	SubjectID string `bson:"subject_id,omitempty" json:"subject_id,omitempty"`
	Title     string `bson:"title" json:"title"`
	CreatedBy string `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Comment is a discussion entry under an assignment. UserID is the author.
type Comment struct {
	ID           string `bson:"_id" json:"id"`
	ClassID      string `bson:"class_id" json:"class_id"`
	AssignmentID string `bson:"assignment_id" json:"assignment_id"`
	UserID       string `bson:"user_id" json:"user_id"`
	Text         string `bson:"text" json:"text"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
