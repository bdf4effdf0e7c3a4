package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingEventID indicates an event without an identifier.
	ErrMissingEventID = errors.New("event id is required")
	// ErrUnknownEventType indicates a type outside the closed set.
	ErrUnknownEventType = errors.New("event type is not recognized")
	// ErrMissingPayload indicates an event without a payload.
	ErrMissingPayload = errors.New("event payload is required")
	// ErrPayloadTypeMismatch indicates a payload that does not match the event type.
	ErrPayloadTypeMismatch = errors.New("event payload does not match event type")
)

// Payload is the tagged union of per-type event data. The set of
// implementations is closed; each reports the Type it belongs to.
type Payload interface {
	EventType() Type
}

// ResolutionMode describes how an outcome was resolved.
type ResolutionMode string

const (
	// ResolutionNarrative indicates the outcome was declared without dice.
	ResolutionNarrative ResolutionMode = "narrative"
	// ResolutionRoll indicates the outcome was resolved by a dice roll.
	ResolutionRoll ResolutionMode = "roll"
	// ResolutionAuto indicates the governed auto-resolve path decided the outcome.
	ResolutionAuto ResolutionMode = "auto"
)

// DiceRecord captures how a rolled or declared resolution went.
type DiceRecord struct {
	Mode ResolutionMode `json:"mode"`
	// Difficulty is the declared target, when one was set.
	Difficulty *int `json:"difficulty,omitempty"`
	// Total is the rolled total, when dice were involved.
	Total *int `json:"total,omitempty"`
	// Results holds the individual die faces, when dice were involved.
	Results []int `json:"results,omitempty"`
	// Success reports whether the declared difficulty was met.
	Success *bool `json:"success,omitempty"`
	// Justification explains why this resolution was chosen.
	Justification string `json:"justification,omitempty"`
}

// DoorState describes a passage between two rooms and its lock.
type DoorState struct {
	// RoomID is the room the door belongs to.
	RoomID string `json:"room_id"`
	// LeadsTo is the room behind the door, when known.
	LeadsTo string `json:"leads_to,omitempty"`
	// Locked reports whether the door is currently locked.
	Locked bool `json:"locked"`
	// KeyID names the key that opens the door, when one exists.
	KeyID string `json:"key_id,omitempty"`
}

// AlertState describes the local alert level after an event.
type AlertState struct {
	// Level is the escalation level, 0 (calm) through 4 (hunted).
	Level int `json:"level"`
}

// WorldFragment is the world-state delta an outcome may carry.
type WorldFragment struct {
	// RoomID locates the outcome, when it is tied to a room.
	RoomID string `json:"room_id,omitempty"`
	// Adjacent lists rooms reachable from RoomID as of this event.
	Adjacent []string `json:"adjacent,omitempty"`
	// Doors lists lock-bearing passages touched by this event.
	Doors []DoorState `json:"doors,omitempty"`
	// Keys lists key ids referenced or acquired by this event.
	Keys []string `json:"keys,omitempty"`
	// Alert is the local alert level after this event, when it changed.
	Alert *AlertState `json:"alert,omitempty"`
}

// OutcomePayload captures the payload for action.outcome events.
type OutcomePayload struct {
	// Description is the human-readable resolved result.
	Description string `json:"description"`
	// Dice records the resolution mechanics, when any were used.
	Dice *DiceRecord `json:"dice,omitempty"`
	// World is the world-state delta, when the outcome has one.
	World *WorldFragment `json:"world,omitempty"`
	// Audit lists short notes explaining how the event was reached. The
	// governed auto-resolve path always fills this in.
	Audit []string `json:"audit,omitempty"`
}

// EventType implements Payload.
func (OutcomePayload) EventType() Type { return TypeOutcome }

// NoteAddedPayload captures the payload for action.note_added events.
type NoteAddedPayload struct {
	Content string `json:"content"`
}

// EventType implements Payload.
func (NoteAddedPayload) EventType() Type { return TypeNoteAdded }

// SceneSetPayload captures the payload for scene.set events.
type SceneSetPayload struct {
	// Name titles the scene.
	Name string `json:"name"`
	// Description sets the scene in prose.
	Description string `json:"description,omitempty"`
	// World seeds rooms, doors, and keys for the scene.
	World *WorldFragment `json:"world,omitempty"`
}

// EventType implements Payload.
func (SceneSetPayload) EventType() Type { return TypeSceneSet }

// SessionStartedPayload captures the payload for session.started events.
type SessionStartedPayload struct {
	SessionName string `json:"session_name,omitempty"`
}

// EventType implements Payload.
func (SessionStartedPayload) EventType() Type { return TypeSessionStarted }

// SessionEndedPayload captures the payload for session.ended events.
type SessionEndedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// EventType implements Payload.
func (SessionEndedPayload) EventType() Type { return TypeSessionEnded }

// EncodePayload serializes a payload to JSON for storage.
func EncodePayload(payload Payload) ([]byte, error) {
	if payload == nil {
		return nil, ErrMissingPayload
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", payload.EventType(), err)
	}
	return raw, nil
}

// DecodePayload deserializes stored JSON into the payload type fixed by t.
func DecodePayload(t Type, raw []byte) (Payload, error) {
	decode := func(target Payload) (Payload, error) {
		if len(raw) == 0 {
			return target, nil
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return target, nil
	}

	switch t {
	case TypeOutcome:
		payload := &OutcomePayload{}
		decoded, err := decode(payload)
		if err != nil {
			return nil, err
		}
		return *decoded.(*OutcomePayload), nil
	case TypeNoteAdded:
		payload := &NoteAddedPayload{}
		decoded, err := decode(payload)
		if err != nil {
			return nil, err
		}
		return *decoded.(*NoteAddedPayload), nil
	case TypeSceneSet:
		payload := &SceneSetPayload{}
		decoded, err := decode(payload)
		if err != nil {
			return nil, err
		}
		return *decoded.(*SceneSetPayload), nil
	case TypeSessionStarted:
		payload := &SessionStartedPayload{}
		decoded, err := decode(payload)
		if err != nil {
			return nil, err
		}
		return *decoded.(*SessionStartedPayload), nil
	case TypeSessionEnded:
		payload := &SessionEndedPayload{}
		decoded, err := decode(payload)
		if err != nil {
			return nil, err
		}
		return *decoded.(*SessionEndedPayload), nil
	default:
		return nil, ErrUnknownEventType
	}
}
