// internal/app/store/snapshot/scheme.go
package snapshot

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dalemusser/classhub/internal/app/policy/rules"
)

// collectionScheme maps one path collection chain onto the flat MongoDB
// layout: the collection holding the documents and, in path order, the
// fields that carry the ancestor document ids.
type collectionScheme struct {
	collection string
	parents    []string
	// docField names the field holding the path's document id when it is
	// not the mongo _id. Members are addressed by user id, which is only
	// unique within one class, so it cannot be the _id in a flat
	// collection.
	docField string
}

// schemes is the full addressing table of the mirrored document tree. The
// mirror stores subcollections flat (one collection per entity with
// parent-id fields), so a hierarchical path
// becomes an _id + parent-field filter.
//
// Root-level ai_materials (legacy) and class-scoped ai_materials share one
// physical collection; legacy documents are simply addressed without the
// class prefix, which is what keeps both rule generations working over the
// same data during migration.
var schemes = map[string]collectionScheme{
	"classes":                      {collection: "classes"},
	"classes/members":              {collection: "members", parents: []string{"class_id"}, docField: "user_id"},
	"classes/subjects":             {collection: "subjects", parents: []string{"class_id"}},
	"classes/assignments":          {collection: "assignments", parents: []string{"class_id"}},
	"classes/assignments/comments": {collection: "comments", parents: []string{"class_id", "assignment_id"}},
	"classes/experience":           {collection: "experience", parents: []string{"class_id"}},
	"classes/gallery":              {collection: "gallery", parents: []string{"class_id"}},
	"classes/albums":               {collection: "albums", parents: []string{"class_id"}},
	"classes/featured_images":      {collection: "featured_images", parents: []string{"class_id"}},
	"classes/gallery_approvals":    {collection: "gallery_approvals", parents: []string{"class_id"}},
	"classes/completion_approvals": {collection: "completion_approvals", parents: []string{"class_id"}},
	"classes/ai_materials":         {collection: "ai_materials", parents: []string{"class_id"}},
	"users":                        {collection: "users"},
	"users/completed_assignments":  {collection: "completed_assignments", parents: []string{"user_id"}},
	"ai_materials":                 {collection: "ai_materials"},
}

// filterFor resolves a document path to its collection and filter. ok is
// false for collection chains the mirror does not know; such documents
// cannot exist, which the caller reports as absent.
func filterFor(p rules.Path) (collection string, filter bson.M, ok bool) {
	sch, ok := schemes[p.Collections()]
	if !ok {
		return "", nil, false
	}
	last := p.Segments[len(p.Segments)-1]
	docField := sch.docField
	if docField == "" {
		docField = "_id"
	}
	filter = bson.M{docField: last.ID}
	for i, field := range sch.parents {
		filter[field] = p.Segments[i].ID
	}
	return sch.collection, filter, true
}

// Collections returns the mongo collection names the mirror uses, for index
// setup.
func Collections() []string {
	seen := make(map[string]bool, len(schemes))
	var out []string
	for _, sch := range schemes {
		if !seen[sch.collection] {
			seen[sch.collection] = true
			out = append(out, sch.collection)
		}
	}
	return out
}
