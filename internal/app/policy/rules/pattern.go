// internal/app/policy/rules/pattern.go
package rules

import (
	"fmt"
	"strings"
)

// patternSeg is one collection step of a pattern. The collection name is
// always literal; the document position is either a literal id (rare) or a
// {param} wildcard that captures the id.
type patternSeg struct {
	collection string
	id         string // literal id, empty when param is set
	param      string // capture name, empty when id is set
}

// Pattern is a parsed path pattern such as
// classes/{classId}/subjects/{subjectId}. A pattern matches a path only at
// its exact depth: grants never inherit down the tree.
type Pattern struct {
	segs []patternSeg
	raw  string
}

// ParsePattern parses a path pattern. Document positions written as {name}
// capture the corresponding id under that name.
func ParsePattern(s string) (Pattern, error) {
	trimmed := strings.Trim(s, "/")
	if trimmed == "" {
		return Pattern{}, fmt.Errorf("empty pattern")
	}
	parts := strings.Split(trimmed, "/")
	if len(parts)%2 != 0 {
		return Pattern{}, fmt.Errorf("pattern %q does not address a document", s)
	}
	p := Pattern{raw: trimmed, segs: make([]patternSeg, 0, len(parts)/2)}
	for i := 0; i < len(parts); i += 2 {
		col, id := parts[i], parts[i+1]
		if col == "" || id == "" {
			return Pattern{}, fmt.Errorf("pattern %q has an empty element", s)
		}
		if strings.ContainsAny(col, "{}") {
			return Pattern{}, fmt.Errorf("pattern %q: collection names must be literal", s)
		}
		seg := patternSeg{collection: col}
		if strings.HasPrefix(id, "{") && strings.HasSuffix(id, "}") {
			seg.param = id[1 : len(id)-1]
			if seg.param == "" {
				return Pattern{}, fmt.Errorf("pattern %q has an empty capture", s)
			}
		} else {
			seg.id = id
		}
		p.segs = append(p.segs, seg)
	}
	return p, nil
}

// MustPattern is ParsePattern for static rule tables; it panics on a bad
// pattern so malformed tables fail at startup, not per request.
func MustPattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether the pattern matches the full path and returns the
// captured params. Depth must match exactly.
func (p Pattern) Match(path Path) (map[string]string, bool) {
	if len(p.segs) != len(path.Segments) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range p.segs {
		got := path.Segments[i]
		if seg.collection != got.Collection {
			return nil, false
		}
		if seg.param != "" {
			if params == nil {
				params = make(map[string]string, len(p.segs))
			}
			params[seg.param] = got.ID
			continue
		}
		if seg.id != got.ID {
			return nil, false
		}
	}
	return params, true
}

// Root returns the pattern's top-level collection name.
func (p Pattern) Root() string {
	if len(p.segs) == 0 {
		return ""
	}
	return p.segs[0].collection
}

func (p Pattern) String() string { return p.raw }
