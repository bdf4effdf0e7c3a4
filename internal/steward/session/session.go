// Package session implements the session ledger: an append-only event log
// plus a mutable set of pending proposed changes.
//
// All operations are copy-on-write. They take a session value and return a
// new one; the caller decides when a new value replaces the old. This keeps
// every intermediate state inspectable and makes the ledger safe under any
// external concurrency strategy.
package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/emberhall/steward/internal/id"
	"github.com/emberhall/steward/internal/steward/event"
)

var (
	// ErrEmptySessionID indicates a missing session id.
	ErrEmptySessionID = errors.New("session id is required")
	// ErrEmptyDescription indicates a proposal without a description.
	ErrEmptyDescription = errors.New("proposal description is required")
	// ErrEmptyChangeID indicates a proposal without an id.
	ErrEmptyChangeID = errors.New("proposal id is required")
)

// ProposedChange is a non-authoritative draft of a possible change. It lives
// outside the event log and may be superseded or discarded without ever
// becoming canon.
type ProposedChange struct {
	ID          string
	Description string
	ProposedBy  string
	CreatedAt   time.Time
}

// AcceptedChange is a proposal that an arbiter confirmed. Acceptance is not
// canon: recording an event is a separate, explicit act.
type AcceptedChange struct {
	ProposedChange
	ConfirmedBy string
	ConfirmedAt time.Time
}

// Session is the root aggregate: an identifier, the ordered event log, and
// the pending and accepted proposal sets. Insertion order in Log is causal
// order.
type Session struct {
	ID       string
	Log      []event.Event
	Pending  []ProposedChange
	Accepted []AcceptedChange
}

// Create returns an empty session for the given id.
func Create(sessionID string) (Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Session{}, ErrEmptySessionID
	}
	return Session{ID: sessionID}, nil
}

// NewProposedChange builds a proposal with a generated id and timestamp.
func NewProposedChange(description, proposedBy string, now func() time.Time, idGenerator func() (string, error)) (ProposedChange, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return ProposedChange{}, ErrEmptyDescription
	}

	changeID, err := idGenerator()
	if err != nil {
		return ProposedChange{}, fmt.Errorf("generate proposal id: %w", err)
	}

	return ProposedChange{
		ID:          changeID,
		Description: description,
		ProposedBy:  strings.TrimSpace(proposedBy),
		CreatedAt:   now().UTC(),
	}, nil
}

// Propose appends a change to the pending set. The event log is untouched.
func Propose(s Session, change ProposedChange) (Session, error) {
	if strings.TrimSpace(change.ID) == "" {
		return s, fmt.Errorf("propose change: %w", ErrEmptyChangeID)
	}
	next := clone(s)
	next.Pending = append(next.Pending, change)
	return next, nil
}

// Confirm moves a pending proposal to the accepted set. It does not append
// to the event log; recording canon is a separate act (see Record).
//
// Confirming an id that is not pending, including one already confirmed, is
// a no-op reported through the second return value. The prior
// session value is returned unchanged, never a fabricated substitute.
func Confirm(s Session, changeID, confirmedBy string, now func() time.Time) (Session, bool) {
	if now == nil {
		now = time.Now
	}

	index := slices.IndexFunc(s.Pending, func(c ProposedChange) bool { return c.ID == changeID })
	if index < 0 {
		return s, false
	}

	next := clone(s)
	change := next.Pending[index]
	next.Pending = slices.Delete(next.Pending, index, index+1)
	next.Accepted = append(next.Accepted, AcceptedChange{
		ProposedChange: change,
		ConfirmedBy:    strings.TrimSpace(confirmedBy),
		ConfirmedAt:    now().UTC(),
	})
	return next, true
}

// Discard removes a pending proposal without confirming it. Discarding an
// unknown id is a no-op reported through the second return value.
func Discard(s Session, changeID string) (Session, bool) {
	index := slices.IndexFunc(s.Pending, func(c ProposedChange) bool { return c.ID == changeID })
	if index < 0 {
		return s, false
	}
	next := clone(s)
	next.Pending = slices.Delete(next.Pending, index, index+1)
	return next, true
}

// Record appends an event to the end of the log. This is the only operation
// that grows canon. Existing events are never edited, reordered, or removed.
func Record(s Session, evt event.Event) (Session, error) {
	if err := evt.Validate(); err != nil {
		return s, fmt.Errorf("record event: %w", err)
	}
	next := clone(s)
	next.Log = append(next.Log, evt)
	return next, nil
}

// PendingChange returns the pending proposal with the given id, if any.
func (s Session) PendingChange(changeID string) (ProposedChange, bool) {
	for _, change := range s.Pending {
		if change.ID == changeID {
			return change, true
		}
	}
	return ProposedChange{}, false
}

// AcceptedChangeByID returns the accepted proposal with the given id, if any.
func (s Session) AcceptedChangeByID(changeID string) (AcceptedChange, bool) {
	for _, change := range s.Accepted {
		if change.ID == changeID {
			return change, true
		}
	}
	return AcceptedChange{}, false
}

// LastEvent returns the most recently recorded event, if any.
func (s Session) LastEvent() (event.Event, bool) {
	if len(s.Log) == 0 {
		return event.Event{}, false
	}
	return s.Log[len(s.Log)-1], true
}

// Ended reports whether a session.ended event has been recorded.
func (s Session) Ended() bool {
	for _, evt := range s.Log {
		if evt.Type == event.TypeSessionEnded {
			return true
		}
	}
	return false
}

// clone copies the session's slices so appends never alias the input value.
func clone(s Session) Session {
	return Session{
		ID:       s.ID,
		Log:      slices.Clone(s.Log),
		Pending:  slices.Clone(s.Pending),
		Accepted: slices.Clone(s.Accepted),
	}
}
