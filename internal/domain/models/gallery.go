// internal/domain/models/gallery.go
package models

import "time"

// GalleryImage is a photo posted to the class gallery.
type GalleryImage struct {
	ID        string `bson:"_id" json:"id"`
	ClassID   string `bson:"class_id" json:"class_id"`
	AlbumID   string `bson:"album_id,omitempty" json:"album_id,omitempty"`
	URL       string `bson:"url" json:"url"`
	CreatedBy string `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Album groups gallery images.
type Album struct {
	ID        string `bson:"_id" json:"id"`
	ClassID   string `bson:"class_id" json:"class_id"`
	Name      string `bson:"name" json:"name"`
	CreatedBy string `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// FeaturedImage marks a gallery image as featured on the class page.
type FeaturedImage struct {
	ID        string `bson:"_id" json:"id"`
	ClassID   string `bson:"class_id" json:"class_id"`
	ImageID   string `bson:"image_id" json:"image_id"`
	CreatedBy string `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// GalleryApproval is a pending request to publish a member-submitted photo.
type GalleryApproval struct {
	ID        string `bson:"_id" json:"id"`
	ClassID   string `bson:"class_id" json:"class_id"`
	ImageID   string `bson:"image_id" json:"image_id"`
	Status    string `bson:"status" json:"status"`
	CreatedBy string `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ExperienceEntry is an XP ledger row for a class member.
type ExperienceEntry struct {
	ID        string `bson:"_id" json:"id"`
	ClassID   string `bson:"class_id" json:"class_id"`
	UserID    string `bson:"user_id" json:"user_id"`
	Points    int    `bson:"points" json:"points"`
	Reason    string `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedBy string `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// AiMaterial is a generated teaching material. Current-generation documents
// live under classes/{classId}/ai_materials; legacy documents live in the
// same collection but are addressed at the root (ai_materials/{id}) and
// reference their class through ClassID only.
type AiMaterial struct {
	ID        string `bson:"_id" json:"id"`
	ClassID   string `bson:"class_id" json:"class_id"`
	SubjectID string `bson:"subject_id,omitempty" json:"subject_id,omitempty"`
	Title     string `bson:"title" json:"title"`
	CreatedBy string `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
