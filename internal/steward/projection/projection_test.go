package projection

import (
	"reflect"
	"testing"

	"github.com/emberhall/steward/internal/steward/event"
)

func outcome(id, description string, world *event.WorldFragment) event.Event {
	return event.Event{
		ID:      id,
		Actor:   event.Actor{Type: event.ActorTypePlayer, ID: "vex"},
		Type:    event.TypeOutcome,
		Payload: event.OutcomePayload{Description: description, World: world},
	}
}

func note(id, content string) event.Event {
	return event.Event{
		ID:      id,
		Actor:   event.Actor{Type: event.ActorTypeSteward, ID: "gm"},
		Type:    event.TypeNoteAdded,
		Payload: event.NoteAddedPayload{Content: content},
	}
}

func TestBuildRoomGraphEmptyLog(t *testing.T) {
	graph := BuildRoomGraph(nil)
	if len(graph.Rooms) != 0 || len(graph.Edges) != 0 {
		t.Fatalf("expected empty graph, got %+v", graph)
	}
}

func TestBuildRoomGraphSingleCrossing(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "You cross the ravine", &event.WorldFragment{
			RoomID:   "ravine-east",
			Adjacent: []string{"camp"},
		}),
	}
	graph := BuildRoomGraph(log)

	if len(graph.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(graph.Rooms))
	}
	room, ok := graph.Room("ravine-east")
	if !ok {
		t.Fatal("expected ravine-east node")
	}
	if room.Order != 0 {
		t.Errorf("expected discovery order 0, got %d", room.Order)
	}
	if room.Heat != 0 {
		t.Errorf("expected no heat for a quiet crossing, got %d", room.Heat)
	}
	if len(graph.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(graph.Edges))
	}
	edge := graph.Edges[0]
	if edge.From != "camp" || edge.To != "ravine-east" {
		t.Errorf("unexpected edge %+v", edge)
	}
}

func TestBuildRoomGraphHeatWeights(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "You attack the sentry", &event.WorldFragment{RoomID: "hall"}),
		outcome("evt-2", "You attack again", &event.WorldFragment{RoomID: "hall"}),
		outcome("evt-3", "The horn sounds", &event.WorldFragment{RoomID: "hall", Alert: &event.AlertState{Level: 2}}),
	}
	graph := BuildRoomGraph(log)
	room, ok := graph.Room("hall")
	if !ok {
		t.Fatal("expected hall node")
	}
	// Two noise events and one alert escalation, one weight each.
	if room.Heat != 3 {
		t.Errorf("expected heat 3, got %d", room.Heat)
	}
}

func TestBuildRoomGraphDeterministic(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "You cross", &event.WorldFragment{RoomID: "a", Adjacent: []string{"b", "c"}}),
		outcome("evt-2", "You double back", &event.WorldFragment{RoomID: "b", Adjacent: []string{"a"}}),
	}
	first := BuildRoomGraph(log)
	second := BuildRoomGraph(log)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical graphs for identical logs")
	}
}

func TestBuildRoomGraphIgnoresNonContributoryEvents(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "You cross", &event.WorldFragment{RoomID: "a", Adjacent: []string{"b"}}),
	}
	withNoise := append(append([]event.Event{}, log...), note("evt-2", "bookkeeping"))
	if !reflect.DeepEqual(BuildRoomGraph(log), BuildRoomGraph(withNoise)) {
		t.Fatal("a non-contributory event changed the graph")
	}
}

func TestScanHeatQuietFirstVisit(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "You cross the ravine", &event.WorldFragment{RoomID: "ravine-east", Adjacent: []string{"camp"}}),
	}
	snapshot := ComputeHeat(log)
	if snapshot.Levels["ravine-east"] != 0 {
		t.Errorf("expected heat 0 for a quiet crossing, got %d", snapshot.Levels["ravine-east"])
	}
}

func TestScanHeatRisesAndDecays(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "You attack the sentry", &event.WorldFragment{RoomID: "hall"}),
	}
	first := ScanHeat(EmptyHeat(), log)
	if first.Levels["hall"] != 1 {
		t.Fatalf("expected heat 1 after first noisy event, got %d", first.Levels["hall"])
	}

	log = append(log, outcome("evt-2", "You attack the reinforcements", &event.WorldFragment{RoomID: "hall"}))
	second := ScanHeat(first, log)
	// Noise plus the repeat-activity bump.
	if second.Levels["hall"] != 3 {
		t.Fatalf("expected heat 3 after second noisy event, got %d", second.Levels["hall"])
	}

	// No new hall events: exactly one step of decay per scan.
	third := ScanHeat(second, log)
	if third.Levels["hall"] != 2 {
		t.Fatalf("expected heat 2 after one quiet scan, got %d", third.Levels["hall"])
	}
	fourth := ScanHeat(third, log)
	if fourth.Levels["hall"] != 1 {
		t.Fatalf("expected heat 1 after two quiet scans, got %d", fourth.Levels["hall"])
	}
}

func TestScanHeatFlooredAtZero(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "You cross quietly", &event.WorldFragment{RoomID: "cellar"}),
	}
	snapshot := ComputeHeat(log)
	for i := 0; i < 3; i++ {
		snapshot = ScanHeat(snapshot, log)
	}
	if snapshot.Levels["cellar"] != 0 {
		t.Fatalf("expected heat floored at 0, got %d", snapshot.Levels["cellar"])
	}
}

func TestScanHeatBoundedAtMax(t *testing.T) {
	log := []event.Event{}
	for i := 0; i < 8; i++ {
		log = append(log, outcome("evt", "You attack with an explosion", &event.WorldFragment{
			RoomID: "hall",
			Alert:  &event.AlertState{Level: 3},
		}))
	}
	snapshot := ComputeHeat(log)
	if snapshot.Levels["hall"] != MaxHeat {
		t.Fatalf("expected heat capped at %d, got %d", MaxHeat, snapshot.Levels["hall"])
	}
}

func TestScanHeatDoesNotMutatePrev(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "You attack", &event.WorldFragment{RoomID: "hall"}),
	}
	prev := ComputeHeat(log)
	before := prev.Levels["hall"]
	log = append(log, outcome("evt-2", "You attack", &event.WorldFragment{RoomID: "hall"}))
	_ = ScanHeat(prev, log)
	if prev.Levels["hall"] != before {
		t.Fatal("scan mutated the previous snapshot")
	}
}

func TestScanHeatReplayIsDeterministic(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "You attack", &event.WorldFragment{RoomID: "hall"}),
		outcome("evt-2", "You hide", &event.WorldFragment{RoomID: "cellar"}),
	}
	first := ComputeHeat(log)
	second := ComputeHeat(log)
	if !reflect.DeepEqual(first.Levels, second.Levels) {
		t.Fatal("expected identical heat for identical logs")
	}
}

func TestMatchKeysAndDoorsEmptyLog(t *testing.T) {
	view := MatchKeysAndDoors(nil)
	if len(view.Keys) != 0 || len(view.Doors) != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}
}

func TestMatchKeysAndDoors(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "You find a brass key", &event.WorldFragment{
			RoomID: "study",
			Keys:   []string{"brass-key"},
		}),
		outcome("evt-2", "You reach the vault door", &event.WorldFragment{
			RoomID: "hall",
			Doors: []event.DoorState{
				{RoomID: "hall", LeadsTo: "vault", Locked: true, KeyID: "brass-key"},
				{RoomID: "hall", LeadsTo: "crypt", Locked: true, KeyID: "iron-key"},
			},
		}),
	}
	view := MatchKeysAndDoors(log)

	if len(view.Keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", view.Keys)
	}
	if view.Keys[0] != "brass-key" || view.Keys[1] != "iron-key" {
		t.Errorf("expected sorted key inventory, got %v", view.Keys)
	}

	if len(view.Doors) != 2 {
		t.Fatalf("expected 2 doors, got %d", len(view.Doors))
	}
	vault := view.Doors[0]
	if !vault.HasMatchingKey {
		t.Error("expected vault door to match the found brass key")
	}
	crypt := view.Doors[1]
	if !crypt.HasMatchingKey {
		// iron-key is referenced by the door itself, so it is in the
		// inventory of known keys.
		t.Error("expected referenced key to count as known")
	}
}

func TestMatchKeysAndDoorsLastStateWins(t *testing.T) {
	log := []event.Event{
		outcome("evt-1", "The door is locked", &event.WorldFragment{
			Doors: []event.DoorState{{RoomID: "hall", LeadsTo: "vault", Locked: true, KeyID: "brass-key"}},
		}),
		outcome("evt-2", "You unlock the door", &event.WorldFragment{
			Doors: []event.DoorState{{RoomID: "hall", LeadsTo: "vault", Locked: false, KeyID: "brass-key"}},
		}),
	}
	view := MatchKeysAndDoors(log)
	if len(view.Doors) != 1 {
		t.Fatalf("expected 1 door, got %d", len(view.Doors))
	}
	if view.Doors[0].Locked {
		t.Error("expected the unlock to win as the latest state")
	}
}

func TestProjectionsToleratePayloadFreeEvents(t *testing.T) {
	log := []event.Event{
		{ID: "evt-1", Type: event.TypeSessionStarted, Payload: event.SessionStartedPayload{}},
		note("evt-2", "camp established"),
	}
	if got := BuildRoomGraph(log); len(got.Rooms) != 0 {
		t.Errorf("expected no rooms, got %+v", got.Rooms)
	}
	if got := ComputeHeat(log); len(got.Levels) != 0 {
		t.Errorf("expected no heat entries, got %+v", got.Levels)
	}
	if got := MatchKeysAndDoors(log); len(got.Doors) != 0 {
		t.Errorf("expected no doors, got %+v", got.Doors)
	}
}
