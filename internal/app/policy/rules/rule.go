// internal/app/policy/rules/rule.go

// Package rules holds the data types of the declarative access-control
// layer: document paths and path patterns, the generic document view seen
// by predicates, the evaluation context with its snapshot-scoped lookups,
// and the rule/ruleset tables the decision engine interprets.
//
// Semantics mirror the mobile backend's security rules:
//   - A rule grants one or more operations at one exact path pattern.
//     There is no inheritance down the path tree.
//   - Several rules may target the same (pattern, operation); the request
//     is allowed if ANY of their predicates evaluates true.
//   - Missing documents and malformed lookup targets make predicates
//     evaluate false. Authorization failures are values, never errors.
package rules

import "fmt"

// Operation is the kind of access being requested.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ParseOperation validates a wire-level operation string.
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OpRead, OpCreate, OpUpdate, OpDelete:
		return Operation(s), nil
	default:
		return "", fmt.Errorf("unknown operation %q", s)
	}
}

// Predicate is one grant condition evaluated against an Eval context.
type Predicate func(e *Eval) bool

// Rule is one allow statement: a path pattern, the operations it covers,
// and the predicate that must hold. Name identifies the grant in decisions
// and audit records.
type Rule struct {
	Pattern Pattern
	Ops     []Operation
	Name    string
	Allow   Predicate
}

// covers reports whether the rule grants the given operation.
func (r Rule) covers(op Operation) bool {
	for _, o := range r.Ops {
		if o == op {
			return true
		}
	}
	return false
}

// Ruleset is one generation of rules. Roots lists the top-level collections
// the generation owns; the engine dispatches a request to the first ruleset
// whose roots include the request path's root.
type Ruleset struct {
	Name  string
	Roots []string
	Rules []Rule
}

// CoversRoot reports whether the ruleset owns the given top-level
// collection.
func (rs Ruleset) CoversRoot(root string) bool {
	for _, r := range rs.Roots {
		if r == root {
			return true
		}
	}
	return false
}

// Matching returns, in declaration order, the rules that apply to the exact
// path and operation, paired with their captured path params.
func (rs Ruleset) Matching(path Path, op Operation) []Matched {
	var out []Matched
	for _, r := range rs.Rules {
		if !r.covers(op) {
			continue
		}
		params, ok := r.Pattern.Match(path)
		if !ok {
			continue
		}
		out = append(out, Matched{Rule: r, Params: params})
	}
	return out
}

// Matched is a rule that applies to a concrete request path.
type Matched struct {
	Rule   Rule
	Params map[string]string
}
