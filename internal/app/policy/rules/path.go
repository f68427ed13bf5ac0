// internal/app/policy/rules/path.go
package rules

import (
	"errors"
	"strings"
)

// ErrMalformedPath is returned by ParsePath for paths that do not address a
// document. Callers inside the policy layer fold it into a deny; it is never
// surfaced to requesters as a distinct error.
var ErrMalformedPath = errors.New("malformed document path")

// Segment is one (collection, document id) step of a document path.
type Segment struct {
	Collection string
	ID         string
}

// Path is the hierarchical address of a document, e.g.
// classes/c1/members/u1. A valid path always ends at a document, so it has
// an even number of path elements.
type Path struct {
	Segments []Segment
}

// ParsePath parses a slash-separated document path. Leading and trailing
// slashes are tolerated. Empty elements, odd element counts, and empty
// input are malformed.
func ParsePath(s string) (Path, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return Path{}, ErrMalformedPath
	}
	parts := strings.Split(s, "/")
	if len(parts)%2 != 0 {
		return Path{}, ErrMalformedPath
	}
	p := Path{Segments: make([]Segment, 0, len(parts)/2)}
	for i := 0; i < len(parts); i += 2 {
		if parts[i] == "" || parts[i+1] == "" {
			return Path{}, ErrMalformedPath
		}
		p.Segments = append(p.Segments, Segment{Collection: parts[i], ID: parts[i+1]})
	}
	return p, nil
}

// Root returns the top-level collection name. Rule generations are selected
// by this prefix.
func (p Path) Root() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[0].Collection
}

// Collections returns the collection chain ("classes/members" for
// classes/c1/members/u1). Snapshot stores key their collection scheme on it.
func (p Path) Collections() string {
	names := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		names[i] = seg.Collection
	}
	return strings.Join(names, "/")
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p.Segments {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(seg.Collection)
		b.WriteByte('/')
		b.WriteString(seg.ID)
	}
	return b.String()
}
