// Package rtdb is the remote realtime tree store: flat trees of records
// keyed by store-generated identifiers, with create/read/merge/delete
// primitives and push-based change subscriptions. The store handle is
// constructed explicitly and passed around; there is no package-level state.
package rtdb

import (
	"context"
	"errors"
)

// Tree names used by the services.
const (
	TreeOrders     = "orders"
	TreeBookstores = "bookstores"
)

// ErrNodeMissing is returned by reads and merges against an identifier the
// tree does not hold.
var ErrNodeMissing = errors.New("rtdb: node missing")

// Record is one node of a tree. Field values are stored as strings; typed
// decoding is the projection layer's job.
type Record struct {
	ID     string
	Fields map[string]string
}

// TreeEvent carries one full snapshot of a tree, or a terminal error.
// After an event with Err set, no further events are delivered.
type TreeEvent struct {
	Records []Record
	Err     error
}

// NodeEvent carries the current state of a single node. A nil Record means
// the node does not (or no longer) exist.
type NodeEvent struct {
	Record *Record
	Err    error
}

// CancelFunc detaches a subscription. Idempotent; after it returns no
// further events are delivered.
type CancelFunc func()

// Store is the remote order/location store contract. Implementations must
// be safe for concurrent use. Each subscription delivers snapshots
// monotonically from a single goroutine; snapshots are internally
// consistent (one atomic read of the tree). The event channel is closed
// after cancellation or a terminal error.
type Store interface {
	// Push creates a node under tree with a store-generated identifier.
	Push(ctx context.Context, tree string, fields map[string]string) (string, error)
	// Get reads one node. Returns ErrNodeMissing when absent.
	Get(ctx context.Context, tree, id string) (Record, error)
	// List reads the whole tree as one snapshot, ordered by id.
	List(ctx context.Context, tree string) ([]Record, error)
	// Merge updates the supplied fields of an existing node, leaving the
	// rest untouched. Returns ErrNodeMissing when absent.
	Merge(ctx context.Context, tree, id string, fields map[string]string) error
	// Delete removes a node. Deleting an absent node is a no-op.
	Delete(ctx context.Context, tree, id string) error
	// WatchTree subscribes to the whole tree. The first event is the
	// current snapshot.
	WatchTree(ctx context.Context, tree string) (<-chan TreeEvent, CancelFunc, error)
	// WatchNode subscribes to a single node. The first event is its
	// current state (nil Record when absent).
	WatchNode(ctx context.Context, tree, id string) (<-chan NodeEvent, CancelFunc, error)
}
