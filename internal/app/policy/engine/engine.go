// internal/app/policy/engine/engine.go

// Package engine turns access requests into allow/deny decisions by
// interpreting the rule tables in policy/classroom and policy/legacy
// against a snapshot of the mirrored document store.
//
// A decision is a pure function of the request and the snapshot: no state
// is kept between calls, so concurrent evaluation needs no coordination.
// Every failure mode (unauthenticated actor, malformed path, unmatched
// path, missing documents) is a deny, never an error — callers cannot
// distinguish nonexistence from lack of access.
package engine

import (
	"context"

	"github.com/dalemusser/classhub/internal/app/policy/rules"
	"go.uber.org/zap"
)

// Request is one access check.
type Request struct {
	// Operation is read, create, update, or delete.
	Operation rules.Operation
	// Actor is the authenticated user id; empty means unauthenticated.
	Actor string
	// Path addresses the target document, e.g. classes/c1/members/u1.
	Path string
	// Resource is the existing document for update/delete. When nil, the
	// engine fetches it from the snapshot at Path.
	Resource rules.Document
	// Proposed is the caller-supplied document for create/update.
	Proposed rules.Document
}

// Decision is the outcome of one check. Rule and Ruleset name the granting
// rule when Allowed, for audit and tests; deny carries no detail.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Rule    string `json:"rule,omitempty"`
	Ruleset string `json:"ruleset,omitempty"`
}

var deny = Decision{}

// Engine evaluates requests against an ordered list of rule generations.
type Engine struct {
	rulesets []rules.Ruleset
	log      *zap.Logger
}

// New builds an engine over the given rule generations. Order matters only
// if two generations claim the same root collection; the first wins.
func New(logger *zap.Logger, rs ...rules.Ruleset) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{rulesets: rs, log: logger}
}

// Decide evaluates one request against snap. All cross-document lookups for
// this decision go through snap, so they observe one consistent view.
func (e *Engine) Decide(ctx context.Context, snap rules.Snapshot, req Request) Decision {
	if req.Actor == "" {
		return deny
	}

	path, err := rules.ParsePath(req.Path)
	if err != nil {
		// Malformed target: deny, not error.
		return deny
	}

	rs, ok := e.rulesetFor(path.Root())
	if !ok {
		// Closed world: no rule generation owns this prefix.
		return deny
	}

	matched := rs.Matching(path, req.Operation)
	if len(matched) == 0 {
		return deny
	}

	resource := req.Resource
	if resource == nil && snap != nil && (req.Operation == rules.OpUpdate || req.Operation == rules.OpDelete) {
		// Callers may omit the existing document; read it from the same
		// snapshot the predicates use.
		if doc, lerr := snap.Lookup(ctx, path); lerr == nil {
			resource = doc
		}
	}

	for _, m := range matched {
		ev := rules.NewEval(ctx, snap, req.Actor, m.Params, resource, req.Proposed)
		if m.Rule.Allow(ev) {
			e.log.Debug("access allowed",
				zap.String("actor", req.Actor),
				zap.String("op", string(req.Operation)),
				zap.String("path", path.String()),
				zap.String("rule", m.Rule.Name),
				zap.String("ruleset", rs.Name))
			return Decision{Allowed: true, Rule: m.Rule.Name, Ruleset: rs.Name}
		}
	}

	e.log.Debug("access denied",
		zap.String("actor", req.Actor),
		zap.String("op", string(req.Operation)),
		zap.String("path", path.String()),
		zap.String("ruleset", rs.Name))
	return deny
}

func (e *Engine) rulesetFor(root string) (rules.Ruleset, bool) {
	for _, rs := range e.rulesets {
		if rs.CoversRoot(root) {
			return rs, true
		}
	}
	return rules.Ruleset{}, false
}
