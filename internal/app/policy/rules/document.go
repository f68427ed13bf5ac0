// internal/app/policy/rules/document.go
package rules

// Document is the generic field map of a mirrored document as seen by
// predicates. A nil Document stands for "does not exist"; every accessor is
// nil-safe and returns a zero value, so predicates chained on a missing
// document evaluate false instead of erroring (fail-closed).
type Document map[string]any

// Exists reports whether the document is present.
func (d Document) Exists() bool { return d != nil }

// Has reports whether the field is present and non-nil.
func (d Document) Has(field string) bool {
	v, ok := d[field]
	return ok && v != nil
}

// String returns the field as a string, or "" when absent or not a string.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Bool returns the field as a bool, or false when absent or not a bool.
func (d Document) Bool(field string) bool {
	b, _ := d[field].(bool)
	return b
}

// Strings returns the field as a string list. BSON decoding yields []any
// for arrays, so both representations are accepted. Non-string elements are
// dropped.
func (d Document) Strings(field string) []string {
	switch v := d[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Contains reports whether the string-list field contains value. It is the
// membership test behind delegation lists like a subject's teachers.
func (d Document) Contains(field, value string) bool {
	if value == "" {
		return false
	}
	for _, s := range d.Strings(field) {
		if s == value {
			return true
		}
	}
	return false
}

// FieldLen returns the byte length of a string field (0 when absent). Used
// for payload size limits such as the profile photo cap.
func (d Document) FieldLen(field string) int {
	return len(d.String(field))
}
