// internal/domain/models/member.go
package models

import "time"

// Class member roles.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleMember  = "member"
)

// Member links a user to a class with a role.
//
// Member documents live at classes/{classId}/members/{userId}: the path
// addresses the record by user id, so role lookups for an actor are a
// single point read. The mongo _id stays synthetic because a user may
// belong to many classes; (class_id, user_id) is the unique pair.
type Member struct {
	ID      string `bson:"_id" json:"id"`
	ClassID string `bson:"class_id" json:"class_id"`
	UserID  string `bson:"user_id" json:"user_id"`
	Role    string `bson:"role" json:"role"` // admin | teacher | member

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
