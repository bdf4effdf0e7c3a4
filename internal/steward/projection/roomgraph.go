// Package projection derives read-only views from a session's event log.
//
// Every projection is recomputed by scanning the log; nothing here is stored
// as independent truth, and nothing here gates or mutates gameplay. A log
// with zero relevant events yields an explicit empty view, never an error.
package projection

import (
	"math"
	"sort"
	"strings"

	"github.com/emberhall/steward/internal/steward/event"
)

// noiseKeywords mark outcome descriptions that draw attention.
var noiseKeywords = []string{"attack", "fight", "shout", "scream", "crash", "explosion", "alarm", "shatter", "slam", "bang"}

// Heat weights per contributing event. Fixed by design so the projection
// stays deterministic.
const (
	noiseHeatWeight = 1
	alertHeatWeight = 1
	layoutRadius    = 100.0
)

// RoomNode is one discovered room.
type RoomNode struct {
	ID string
	// Order is the discovery index, starting at 0.
	Order int
	// X and Y are a deterministic radial layout by discovery order. The
	// placement is presentational only.
	X, Y float64
	// Heat is the cumulative noise score for the room.
	Heat int
}

// RoomEdge is an undirected adjacency between two rooms.
type RoomEdge struct {
	From string
	To   string
}

// RoomGraph is the derived map view.
type RoomGraph struct {
	Rooms []RoomNode
	Edges []RoomEdge
}

// BuildRoomGraph scans the full log and derives the room graph. Identical
// logs produce identical graphs.
func BuildRoomGraph(log []event.Event) RoomGraph {
	order := []string{}
	heat := map[string]int{}
	edges := map[RoomEdge]struct{}{}
	seen := map[string]bool{}

	discover := func(roomID string) {
		if roomID == "" || seen[roomID] {
			return
		}
		seen[roomID] = true
		order = append(order, roomID)
	}

	for _, evt := range log {
		world, description := worldFragment(evt)
		if world == nil || world.RoomID == "" {
			continue
		}

		discover(world.RoomID)
		for _, neighbor := range world.Adjacent {
			if neighbor == "" {
				continue
			}
			discover(neighbor)
			edges[normalizeEdge(world.RoomID, neighbor)] = struct{}{}
		}

		if hasNoiseKeyword(description) {
			heat[world.RoomID] += noiseHeatWeight
		}
		if world.Alert != nil && world.Alert.Level > 0 {
			heat[world.RoomID] += alertHeatWeight
		}
	}

	rooms := make([]RoomNode, 0, len(order))
	for i, roomID := range order {
		angle := 2 * math.Pi * float64(i) / float64(len(order))
		rooms = append(rooms, RoomNode{
			ID:    roomID,
			Order: i,
			X:     layoutRadius * math.Cos(angle),
			Y:     layoutRadius * math.Sin(angle),
			Heat:  heat[roomID],
		})
	}

	edgeList := make([]RoomEdge, 0, len(edges))
	for edge := range edges {
		edgeList = append(edgeList, edge)
	}
	sort.Slice(edgeList, func(i, j int) bool {
		if edgeList[i].From != edgeList[j].From {
			return edgeList[i].From < edgeList[j].From
		}
		return edgeList[i].To < edgeList[j].To
	})

	return RoomGraph{Rooms: rooms, Edges: edgeList}
}

// Room returns the node for a room id, if discovered.
func (g RoomGraph) Room(roomID string) (RoomNode, bool) {
	for _, room := range g.Rooms {
		if room.ID == roomID {
			return room, true
		}
	}
	return RoomNode{}, false
}

// worldFragment extracts the world delta and outcome description an event
// carries, if any. Only outcomes and scene markers contribute to
// projections.
func worldFragment(evt event.Event) (*event.WorldFragment, string) {
	switch payload := evt.Payload.(type) {
	case event.OutcomePayload:
		return payload.World, payload.Description
	case event.SceneSetPayload:
		return payload.World, ""
	default:
		return nil, ""
	}
}

func normalizeEdge(a, b string) RoomEdge {
	if b < a {
		a, b = b, a
	}
	return RoomEdge{From: a, To: b}
}

func hasNoiseKeyword(description string) bool {
	lowered := strings.ToLower(description)
	for _, keyword := range noiseKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
