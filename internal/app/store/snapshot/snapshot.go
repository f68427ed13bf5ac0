// internal/app/store/snapshot/snapshot.go

// Package snapshot provides the document-store views the policy engine
// evaluates against: a MongoDB-backed mirror of the classroom document
// tree, and an in-memory store for tests and embedding.
//
// A Source hands out one consistent view per decision. Every lookup made
// while evaluating a single request goes through that view, so role changes
// and document writes never tear a decision in half.
package snapshot

import (
	"context"

	"github.com/dalemusser/classhub/internal/app/policy/rules"
)

// Source produces a consistent read view of the document store. The
// returned release function must be called when the decision completes.
type Source interface {
	View(ctx context.Context) (rules.Snapshot, func(), error)
}
