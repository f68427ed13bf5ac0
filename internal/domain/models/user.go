// internal/domain/models/user.go
package models

import "time"

// MaxPhotoBytes caps the base64-encoded profile photo payload at 1 MiB.
const MaxPhotoBytes = 1 << 20

// User is a top-level user profile document. Class membership is not
// embedded here; it lives in the members collection keyed by class.
type User struct {
	ID          string `bson:"_id" json:"id"`
	DisplayName string `bson:"display_name" json:"display_name"`
	PhotoBase64 string `bson:"photo_base64,omitempty" json:"photo_base64,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
