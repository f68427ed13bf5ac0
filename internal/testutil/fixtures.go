package testutil

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dalemusser/classhub/internal/app/policy/rules"
	"github.com/dalemusser/classhub/internal/app/store/snapshot"
	"github.com/dalemusser/classhub/internal/domain/models"
)

// Fixtures populates an in-memory snapshot store with mirrored classroom
// documents, going through the typed models and a bson round trip so the
// documents carry exactly the field names the mongo view would produce.
type Fixtures struct {
	store *snapshot.MemoryStore
	t     *testing.T
}

// NewFixtures creates a Fixtures over the given store.
func NewFixtures(t *testing.T, store *snapshot.MemoryStore) *Fixtures {
	t.Helper()
	return &Fixtures{store: store, t: t}
}

// Store returns the underlying store for direct access in tests.
func (f *Fixtures) Store() *snapshot.MemoryStore {
	return f.store
}

// Put mirrors a typed model at the given path.
func (f *Fixtures) Put(path string, model any) {
	f.t.Helper()
	raw, err := bson.Marshal(model)
	if err != nil {
		f.t.Fatalf("marshal fixture for %s: %v", path, err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		f.t.Fatalf("unmarshal fixture for %s: %v", path, err)
	}
	if err := f.store.Put(path, snapshot.Normalize(m)); err != nil {
		f.t.Fatalf("store fixture at %s: %v", path, err)
	}
}

// Remove deletes the document at path.
func (f *Fixtures) Remove(path string) {
	f.t.Helper()
	if err := f.store.Delete(path); err != nil {
		f.t.Fatalf("remove fixture at %s: %v", path, err)
	}
}

// CreateClass mirrors a class owned by ownerID.
func (f *Fixtures) CreateClass(id, ownerID string) models.Class {
	f.t.Helper()
	now := time.Now().UTC()
	class := models.Class{
		ID:        id,
		Name:      "Test Class",
		CreatedBy: ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.Put("classes/"+id, class)
	return class
}

// CreateMember mirrors a member record keyed by the member's user id.
func (f *Fixtures) CreateMember(classID, userID, role string) models.Member {
	f.t.Helper()
	now := time.Now().UTC()
	member := models.Member{
		ID:        classID + ":" + userID,
		ClassID:   classID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.Put("classes/"+classID+"/members/"+userID, member)
	return member
}

// RemoveMember revokes a member record.
func (f *Fixtures) RemoveMember(classID, userID string) {
	f.t.Helper()
	f.Remove("classes/" + classID + "/members/" + userID)
}

// CreateSubject mirrors a subject with an optional teacher delegation list.
func (f *Fixtures) CreateSubject(classID, id, createdBy string, teachers ...string) models.Subject {
	f.t.Helper()
	now := time.Now().UTC()
	subject := models.Subject{
		ID:        id,
		ClassID:   classID,
		Name:      "Test Subject",
		CreatedBy: createdBy,
		Teachers:  teachers,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.Put("classes/"+classID+"/subjects/"+id, subject)
	return subject
}

// CreateAssignment mirrors an assignment.
func (f *Fixtures) CreateAssignment(classID, id, createdBy string) models.Assignment {
	f.t.Helper()
	now := time.Now().UTC()
	assignment := models.Assignment{
		ID:        id,
		ClassID:   classID,
		Title:     "Test Assignment",
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.Put("classes/"+classID+"/assignments/"+id, assignment)
	return assignment
}

// CreateComment mirrors a comment authored by userID.
func (f *Fixtures) CreateComment(classID, assignmentID, id, userID string) models.Comment {
	f.t.Helper()
	comment := models.Comment{
		ID:           id,
		ClassID:      classID,
		AssignmentID: assignmentID,
		UserID:       userID,
		Text:         "test comment",
		CreatedAt:    time.Now().UTC(),
	}
	f.Put("classes/"+classID+"/assignments/"+assignmentID+"/comments/"+id, comment)
	return comment
}

// CreateCompletionApproval mirrors a completion approval request.
func (f *Fixtures) CreateCompletionApproval(classID string, approval models.CompletionApproval) models.CompletionApproval {
	f.t.Helper()
	if approval.Status == "" {
		approval.Status = models.ApprovalPending
	}
	approval.ClassID = classID
	now := time.Now().UTC()
	approval.CreatedAt = now
	approval.UpdatedAt = now
	f.Put("classes/"+classID+"/completion_approvals/"+approval.ID, approval)
	return approval
}

// CreateLegacyMaterial mirrors a legacy root-level ai material.
func (f *Fixtures) CreateLegacyMaterial(id, classID, createdBy string) models.AiMaterial {
	f.t.Helper()
	now := time.Now().UTC()
	material := models.AiMaterial{
		ID:        id,
		ClassID:   classID,
		Title:     "Test Material",
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.Put("ai_materials/"+id, material)
	return material
}

// Snapshot returns a frozen view of the current store state.
func (f *Fixtures) Snapshot() rules.Snapshot {
	f.t.Helper()
	view, release, err := f.store.View(f.t.Context())
	if err != nil {
		f.t.Fatalf("snapshot view failed: %v", err)
	}
	f.t.Cleanup(release)
	return view
}
