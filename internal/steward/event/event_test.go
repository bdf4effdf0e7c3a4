package event

import (
	"errors"
	"testing"
	"time"
)

func TestTypeIsValid(t *testing.T) {
	valid := []Type{TypeOutcome, TypeNoteAdded, TypeSceneSet, TypeSessionStarted, TypeSessionEnded}
	for _, typ := range valid {
		if !typ.IsValid() {
			t.Errorf("expected %s to be valid", typ)
		}
	}
	if Type("action.invented").IsValid() {
		t.Error("expected unknown type to be invalid")
	}
	if Type("").IsValid() {
		t.Error("expected empty type to be invalid")
	}
}

func TestTypeDomain(t *testing.T) {
	if got := TypeOutcome.Domain(); got != "action" {
		t.Errorf("expected action domain, got %s", got)
	}
	if got := TypeSceneSet.Domain(); got != "scene" {
		t.Errorf("expected scene domain, got %s", got)
	}
	if got := Type("bare").Domain(); got != "bare" {
		t.Errorf("expected bare domain, got %s", got)
	}
}

func TestEventValidate(t *testing.T) {
	base := Event{
		ID:        "evt-1",
		Timestamp: time.Now(),
		Actor:     Actor{Type: ActorTypePlayer, ID: "vex"},
		Type:      TypeOutcome,
		Payload:   OutcomePayload{Description: "You cross the ravine"},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	missingID := base
	missingID.ID = " "
	if err := missingID.Validate(); !errors.Is(err, ErrMissingEventID) {
		t.Errorf("expected ErrMissingEventID, got %v", err)
	}

	unknownType := base
	unknownType.Type = "action.invented"
	if err := unknownType.Validate(); !errors.Is(err, ErrUnknownEventType) {
		t.Errorf("expected ErrUnknownEventType, got %v", err)
	}

	missingPayload := base
	missingPayload.Payload = nil
	if err := missingPayload.Validate(); !errors.Is(err, ErrMissingPayload) {
		t.Errorf("expected ErrMissingPayload, got %v", err)
	}

	mismatched := base
	mismatched.Payload = NoteAddedPayload{Content: "a note"}
	if err := mismatched.Validate(); !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Errorf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestEncodeDecodePayload(t *testing.T) {
	difficulty := 12
	total := 15
	success := true
	payload := OutcomePayload{
		Description: "You pick the lock",
		Dice: &DiceRecord{
			Mode:          ResolutionRoll,
			Difficulty:    &difficulty,
			Total:         &total,
			Results:       []int{15},
			Success:       &success,
			Justification: "declared difficulty 12",
		},
		World: &WorldFragment{
			RoomID:   "vault",
			Adjacent: []string{"hall"},
			Doors:    []DoorState{{RoomID: "vault", Locked: false, KeyID: "brass-key"}},
			Keys:     []string{"brass-key"},
			Alert:    &AlertState{Level: 1},
		},
		Audit: []string{"auto-resolved"},
	}

	raw, err := EncodePayload(payload)
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}

	decoded, err := DecodePayload(TypeOutcome, raw)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	outcome, ok := decoded.(OutcomePayload)
	if !ok {
		t.Fatalf("expected OutcomePayload, got %T", decoded)
	}
	if outcome.Description != payload.Description {
		t.Errorf("expected description %q, got %q", payload.Description, outcome.Description)
	}
	if outcome.Dice == nil || outcome.Dice.Difficulty == nil || *outcome.Dice.Difficulty != 12 {
		t.Error("expected dice difficulty to round-trip")
	}
	if outcome.World == nil || outcome.World.RoomID != "vault" {
		t.Error("expected world fragment to round-trip")
	}
	if outcome.World.Alert == nil || outcome.World.Alert.Level != 1 {
		t.Error("expected alert level to round-trip")
	}
}

func TestDecodePayloadUnknownType(t *testing.T) {
	if _, err := DecodePayload(Type("action.invented"), []byte(`{}`)); !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestDecodePayloadEmptyRaw(t *testing.T) {
	decoded, err := DecodePayload(TypeSessionEnded, nil)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if _, ok := decoded.(SessionEndedPayload); !ok {
		t.Fatalf("expected SessionEndedPayload, got %T", decoded)
	}
}
