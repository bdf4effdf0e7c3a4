package projection

import (
	"fmt"
	"sort"

	"github.com/emberhall/steward/internal/steward/event"
)

// Door is the latest known state of one lock-bearing passage.
type Door struct {
	RoomID  string
	LeadsTo string
	Locked  bool
	KeyID   string
	// HasMatchingKey reports whether the required key appears anywhere in
	// the key inventory. Purely a visual aid; it grants nothing.
	HasMatchingKey bool
}

// KeyDoorView pairs the key inventory with the known doors.
type KeyDoorView struct {
	// Keys lists every distinct key id ever referenced, sorted.
	Keys []string
	// Doors lists known doors in first-seen order, with last-seen state.
	Doors []Door
}

// MatchKeysAndDoors scans the full log for lock-bearing world fragments and
// derives the key inventory and door list. A log without any yields the
// explicit empty view.
func MatchKeysAndDoors(log []event.Event) KeyDoorView {
	keySet := map[string]bool{}
	doorOrder := []string{}
	doors := map[string]Door{}

	for _, evt := range log {
		world, _ := worldFragment(evt)
		if world == nil {
			continue
		}

		for _, key := range world.Keys {
			if key != "" {
				keySet[key] = true
			}
		}

		for _, state := range world.Doors {
			if state.RoomID == "" {
				continue
			}
			if state.KeyID != "" {
				keySet[state.KeyID] = true
			}
			id := doorIdentity(state)
			if _, known := doors[id]; !known {
				doorOrder = append(doorOrder, id)
			}
			doors[id] = Door{
				RoomID:  state.RoomID,
				LeadsTo: state.LeadsTo,
				Locked:  state.Locked,
				KeyID:   state.KeyID,
			}
		}
	}

	keys := make([]string, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	doorList := make([]Door, 0, len(doorOrder))
	for _, id := range doorOrder {
		door := doors[id]
		door.HasMatchingKey = door.KeyID != "" && keySet[door.KeyID]
		doorList = append(doorList, door)
	}

	return KeyDoorView{Keys: keys, Doors: doorList}
}

// doorIdentity keys a door across events by where it is and where it leads.
func doorIdentity(state event.DoorState) string {
	return fmt.Sprintf("%s|%s|%s", state.RoomID, state.LeadsTo, state.KeyID)
}
