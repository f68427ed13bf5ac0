// internal/domain/models/class.go
package models

import "time"

// Class is the root document of one classroom.
//
// NOTE:
//   - Documents are mirrored from the mobile backend, so IDs are the
//     backend's string document ids, not ObjectIDs.
//   - CreatedBy is the owning user's id. Class update/delete is restricted
//     to the owner exclusively; class admins have no override at this level.
type Class struct {
	ID        string `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	CreatedBy string `bson:"created_by" json:"created_by"`

	// RequireCompletionApproval gates whether completed assignments need a
	// teacher sign-off before they count.
	RequireCompletionApproval bool `bson:"require_completion_approval" json:"require_completion_approval"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
