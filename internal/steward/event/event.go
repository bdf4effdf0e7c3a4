// Package event defines the immutable event model for the session journal.
//
// Events are facts that have already happened. They are appended to a
// session's log by the ledger and are never edited, reordered, or removed.
// Every other view in the engine (narration, projections) is derived by
// reading this log.
package event

import (
	"strings"
	"time"
)

// Type identifies the kind of a session event. The set is closed: new kinds
// are added here, never inferred at runtime.
type Type string

const (
	// TypeOutcome records a resolved, irreversible action outcome.
	TypeOutcome Type = "action.outcome"
	// TypeNoteAdded records a steward or player note.
	TypeNoteAdded Type = "action.note_added"
	// TypeSceneSet records a scene or location being established.
	TypeSceneSet Type = "scene.set"
	// TypeSessionStarted records the start of a session.
	TypeSessionStarted Type = "session.started"
	// TypeSessionEnded records the end of a session.
	TypeSessionEnded Type = "session.ended"
)

// IsValid reports whether the type is one of the closed set.
func (t Type) IsValid() bool {
	switch t {
	case TypeOutcome, TypeNoteAdded, TypeSceneSet, TypeSessionStarted, TypeSessionEnded:
		return true
	}
	return false
}

// Domain returns the domain prefix of the event type (e.g., "action", "scene").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// ActorType identifies who or what produced an event.
type ActorType string

const (
	// ActorTypePlayer indicates a player produced the event.
	ActorTypePlayer ActorType = "player"
	// ActorTypeSystem indicates the governed auto-resolve path produced the
	// event. System events always carry an audit trail in their payload.
	ActorTypeSystem ActorType = "system"
	// ActorTypeSteward indicates the human arbiter produced the event.
	ActorTypeSteward ActorType = "steward"
)

// Actor names the producer of an event.
type Actor struct {
	// Type identifies the kind of producer.
	Type ActorType
	// ID is the producer's identity (empty for the system actor).
	ID string
}

// Event is the atomic unit of truth in a session journal.
type Event struct {
	// ID uniquely identifies the event. Assigned at creation, never reused.
	ID string
	// Seq is the event's position in the stored journal (starts at 1).
	// Assigned by storage on append; zero for events not yet persisted.
	// Log order, not Timestamp, is authoritative for causality.
	Seq uint64
	// Timestamp is when the event was created. Callers may supply arbitrary
	// times; no monotonicity is guaranteed or required.
	Timestamp time.Time
	// Actor names who produced the event.
	Actor Actor
	// Type identifies the kind of event.
	Type Type
	// Payload carries the event's typed data. Its concrete type is fixed by
	// Type; see the Payload interface.
	Payload Payload
}

// Validate reports whether the event is well-formed for recording.
func (e Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrMissingEventID
	}
	if !e.Type.IsValid() {
		return ErrUnknownEventType
	}
	if e.Payload == nil {
		return ErrMissingPayload
	}
	if e.Payload.EventType() != e.Type {
		return ErrPayloadTypeMismatch
	}
	return nil
}
