// internal/domain/models/subject.go
package models

import "time"

// Subject is a teaching subject inside a class.
//
// Teachers is a delegation list: user ids in it gain update rights over the
// subject (never delete), independent of their member role.
type Subject struct {
	ID        string   `bson:"_id" json:"id"`
	ClassID   string   `bson:"class_id" json:"class_id"`
	Name      string   `bson:"name" json:"name"`
	CreatedBy string   `bson:"created_by" json:"created_by"`
	Teachers  []string `bson:"teachers,omitempty" json:"teachers,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
