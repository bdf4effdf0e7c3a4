// Package storage defines the persistence contract for the event journal.
//
// The engine itself never touches a store; persistence is a caller concern.
// A store holds the recorded canon only. Pending proposals are drafts and
// are never persisted.
package storage

import (
	"context"
	"errors"

	"github.com/emberhall/steward/internal/steward/event"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// EventStore persists session event journals.
//
// AppendEvent assigns the next per-session sequence number in append order;
// sequence numbers are strictly increasing and never reused. ListEvents
// returns events ordered by sequence ascending, so paged replay rebuilds the
// journal in recorded order.
type EventStore interface {
	// AppendEvent atomically appends an event to a session's journal and
	// returns it with its sequence number set.
	AppendEvent(ctx context.Context, sessionID string, evt event.Event) (event.Event, error)

	// ListEvents returns up to limit events with Seq > afterSeq, ordered by
	// sequence ascending.
	ListEvents(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]event.Event, error)

	// LatestSeq returns the highest assigned sequence number for a session,
	// or 0 when the session has no events.
	LatestSeq(ctx context.Context, sessionID string) (uint64, error)

	// ListSessionIDs returns every session id with at least one stored event,
	// sorted ascending.
	ListSessionIDs(ctx context.Context) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}
