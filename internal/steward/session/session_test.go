package session

import (
	"errors"
	"testing"
	"time"

	"github.com/emberhall/steward/internal/steward/event"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
}

func fixedID(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

func TestCreateRequiresID(t *testing.T) {
	if _, err := Create(" "); !errors.Is(err, ErrEmptySessionID) {
		t.Fatalf("expected ErrEmptySessionID, got %v", err)
	}

	created, err := Create("sess-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if created.ID != "sess-1" {
		t.Errorf("expected id sess-1, got %s", created.ID)
	}
	if len(created.Log) != 0 || len(created.Pending) != 0 {
		t.Error("expected empty log and pending set")
	}
}

func TestNewProposedChangeValidates(t *testing.T) {
	if _, err := NewProposedChange("  ", "vex", fixedClock, fixedID("chg-1")); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}

	change, err := NewProposedChange("cross the ravine", "vex", fixedClock, fixedID("chg-1"))
	if err != nil {
		t.Fatalf("new proposed change: %v", err)
	}
	if change.ID != "chg-1" || change.Description != "cross the ravine" || change.ProposedBy != "vex" {
		t.Errorf("unexpected change %+v", change)
	}
	if !change.CreatedAt.Equal(fixedClock()) {
		t.Errorf("expected fixed timestamp, got %v", change.CreatedAt)
	}
}

func TestProposeDoesNotTouchLog(t *testing.T) {
	sess, _ := Create("sess-1")
	change, _ := NewProposedChange("cross the ravine", "vex", fixedClock, fixedID("chg-1"))

	next, err := Propose(sess, change)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if len(next.Pending) != 1 {
		t.Fatalf("expected 1 pending change, got %d", len(next.Pending))
	}
	if len(next.Log) != 0 {
		t.Error("propose must not grow the event log")
	}
	if len(sess.Pending) != 0 {
		t.Error("propose must not mutate the input session")
	}
}

func TestConfirmMovesToAccepted(t *testing.T) {
	sess, _ := Create("sess-1")
	change, _ := NewProposedChange("cross the ravine", "vex", fixedClock, fixedID("chg-1"))
	sess, _ = Propose(sess, change)

	confirmed, ok := Confirm(sess, "chg-1", "gm", fixedClock)
	if !ok {
		t.Fatal("expected confirm to succeed")
	}
	if len(confirmed.Pending) != 0 {
		t.Error("expected pending set to be emptied")
	}
	accepted, found := confirmed.AcceptedChangeByID("chg-1")
	if !found {
		t.Fatal("expected accepted change")
	}
	if accepted.ConfirmedBy != "gm" {
		t.Errorf("expected confirmer gm, got %s", accepted.ConfirmedBy)
	}
	if len(confirmed.Log) != 0 {
		t.Error("confirm must not grow the event log")
	}
	if len(sess.Pending) != 1 {
		t.Error("confirm must not mutate the input session")
	}
}

func TestConfirmUnknownIDIsNoop(t *testing.T) {
	sess, _ := Create("sess-1")
	same, ok := Confirm(sess, "missing", "gm", fixedClock)
	if ok {
		t.Fatal("expected confirm of unknown id to report false")
	}
	if len(same.Pending) != 0 || len(same.Accepted) != 0 || len(same.Log) != 0 {
		t.Error("expected prior state unchanged")
	}
}

func TestConfirmTwiceIsNoop(t *testing.T) {
	sess, _ := Create("sess-1")
	change, _ := NewProposedChange("cross the ravine", "vex", fixedClock, fixedID("chg-1"))
	sess, _ = Propose(sess, change)
	sess, _ = Confirm(sess, "chg-1", "gm", fixedClock)

	again, ok := Confirm(sess, "chg-1", "gm", fixedClock)
	if ok {
		t.Fatal("expected second confirm to report false")
	}
	if len(again.Accepted) != 1 {
		t.Errorf("expected 1 accepted change, got %d", len(again.Accepted))
	}
}

func TestDiscardRemovesPending(t *testing.T) {
	sess, _ := Create("sess-1")
	change, _ := NewProposedChange("sneak past", "vex", fixedClock, fixedID("chg-2"))
	sess, _ = Propose(sess, change)

	next, ok := Discard(sess, "chg-2")
	if !ok {
		t.Fatal("expected discard to succeed")
	}
	if len(next.Pending) != 0 {
		t.Error("expected pending set to be emptied")
	}
	if _, ok := Discard(next, "chg-2"); ok {
		t.Error("expected discard of missing id to report false")
	}
}

func TestRecordAppendsOnly(t *testing.T) {
	sess, _ := Create("sess-1")

	first := event.Event{
		ID:        "evt-1",
		Timestamp: fixedClock(),
		Actor:     event.Actor{Type: event.ActorTypePlayer, ID: "vex"},
		Type:      event.TypeOutcome,
		Payload:   event.OutcomePayload{Description: "You cross the ravine"},
	}
	second := event.Event{
		ID:        "evt-2",
		Timestamp: fixedClock(),
		Actor:     event.Actor{Type: event.ActorTypeSteward, ID: "gm"},
		Type:      event.TypeNoteAdded,
		Payload:   event.NoteAddedPayload{Content: "ravine crossed without incident"},
	}

	one, err := Record(sess, first)
	if err != nil {
		t.Fatalf("record first: %v", err)
	}
	two, err := Record(one, second)
	if err != nil {
		t.Fatalf("record second: %v", err)
	}

	if len(two.Log) != 2 {
		t.Fatalf("expected 2 events, got %d", len(two.Log))
	}
	if two.Log[0].ID != "evt-1" || two.Log[1].ID != "evt-2" {
		t.Error("expected append order to be preserved")
	}
	// Prior values are untouched across operations.
	if len(sess.Log) != 0 || len(one.Log) != 1 {
		t.Error("expected prior session values to keep their logs")
	}
	if one.Log[0].ID != first.ID || one.Log[0].Type != first.Type {
		t.Error("expected prior event fields to be unchanged")
	}
}

func TestRecordRejectsInvalidEvent(t *testing.T) {
	sess, _ := Create("sess-1")
	bad := event.Event{ID: "evt-1", Type: event.TypeOutcome, Payload: event.NoteAddedPayload{Content: "x"}}
	if _, err := Record(sess, bad); !errors.Is(err, event.ErrPayloadTypeMismatch) {
		t.Fatalf("expected payload mismatch error, got %v", err)
	}
}

func TestEnded(t *testing.T) {
	sess, _ := Create("sess-1")
	if sess.Ended() {
		t.Fatal("expected new session to not be ended")
	}
	ended, err := Record(sess, event.Event{
		ID:      "evt-1",
		Actor:   event.Actor{Type: event.ActorTypeSteward, ID: "gm"},
		Type:    event.TypeSessionEnded,
		Payload: event.SessionEndedPayload{},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !ended.Ended() {
		t.Fatal("expected session to be ended")
	}
}
