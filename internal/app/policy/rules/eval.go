// internal/app/policy/rules/eval.go
package rules

import "context"

// Snapshot is a consistent view of the mirrored document store. All lookups
// made while evaluating one request go through the same Snapshot, so a
// decision never observes torn state across helper calls.
//
// Lookup returns a nil Document when the path addresses nothing. Errors are
// reserved for store failures; the Eval context folds them into "absent".
type Snapshot interface {
	Lookup(ctx context.Context, path Path) (Document, error)
}

// Eval is the context one predicate evaluation runs against: the acting
// identity, the captured path params, the existing and proposed document
// data, and snapshot-scoped lookups.
type Eval struct {
	// Actor is the authenticated user id, "" when unauthenticated.
	Actor string
	// Params holds the ids captured by the matched pattern.
	Params map[string]string
	// Resource is the existing document (nil for create).
	Resource Document
	// Request is the proposed document (nil for read/delete).
	Request Document

	ctx  context.Context
	snap Snapshot
}

// NewEval builds an evaluation context. snap may be nil, in which case every
// lookup reports absent.
func NewEval(ctx context.Context, snap Snapshot, actor string, params map[string]string, resource, request Document) *Eval {
	return &Eval{
		Actor:    actor,
		Params:   params,
		Resource: resource,
		Request:  request,
		ctx:      ctx,
		snap:     snap,
	}
}

// Param returns a captured path param ("" when the pattern did not capture
// it).
func (e *Eval) Param(name string) string { return e.Params[name] }

// Get fetches another document from the snapshot. Malformed paths, lookup
// failures, and missing documents all yield a nil Document, so chained field
// access on the result evaluates false rather than erroring.
func (e *Eval) Get(path string) Document {
	if e.snap == nil {
		return nil
	}
	p, err := ParsePath(path)
	if err != nil {
		return nil
	}
	doc, err := e.snap.Lookup(e.ctx, p)
	if err != nil {
		return nil
	}
	return doc
}

// Exists reports whether a document exists at the path, with the same
// fail-closed handling as Get.
func (e *Eval) Exists(path string) bool {
	return e.Get(path) != nil
}
