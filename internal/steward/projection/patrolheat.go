package projection

import "github.com/emberhall/steward/internal/steward/event"

// Heat bounds. Heat is a leaky integrator: it rises on noisy or alerting
// events and bleeds off one step per scan when a room stays quiet.
const (
	MinHeat = 0
	MaxHeat = 4
)

// HeatSnapshot is the result of one patrol-heat scan. It is a pure function
// of the log prefix consumed so far: replaying the same scans over the same
// log always rebuilds the same snapshot, so nothing here is authoritative
// state.
type HeatSnapshot struct {
	// Cursor is the index into the log up to which events were consumed.
	Cursor int
	// Levels maps room id to its bounded heat score.
	Levels map[string]int
	// Visits maps room id to how many events have referenced it.
	Visits map[string]int
}

// EmptyHeat returns the explicit empty snapshot.
func EmptyHeat() HeatSnapshot {
	return HeatSnapshot{Levels: map[string]int{}, Visits: map[string]int{}}
}

// ScanHeat consumes the log events past prev.Cursor and returns the next
// snapshot. Rooms with contributing events heat up; rooms without any decay
// by exactly one step, floored at zero. The input snapshot is not mutated.
func ScanHeat(prev HeatSnapshot, log []event.Event) HeatSnapshot {
	next := HeatSnapshot{
		Cursor: len(log),
		Levels: make(map[string]int, len(prev.Levels)),
		Visits: make(map[string]int, len(prev.Visits)),
	}
	for room, level := range prev.Levels {
		next.Levels[room] = level
	}
	for room, visits := range prev.Visits {
		next.Visits[room] = visits
	}

	start := prev.Cursor
	if start < 0 {
		start = 0
	}
	if start > len(log) {
		start = len(log)
	}

	contributed := map[string]bool{}
	for _, evt := range log[start:] {
		world, description := worldFragment(evt)
		if world == nil || world.RoomID == "" {
			continue
		}
		room := world.RoomID

		delta := 0
		if hasNoiseKeyword(description) {
			delta += noiseHeatWeight
		}
		if world.Alert != nil && world.Alert.Level > 0 {
			delta += alertHeatWeight
		}
		if next.Visits[room] > 0 && delta > 0 {
			// Repeat activity in a known room compounds attention.
			delta++
		}

		next.Visits[room]++
		if _, known := next.Levels[room]; !known {
			next.Levels[room] = MinHeat
		}
		if delta > 0 {
			next.Levels[room] = clampHeat(next.Levels[room] + delta)
			contributed[room] = true
		} else {
			// A quiet visit still counts as presence for this scan: the
			// room does not decay while someone is standing in it.
			contributed[room] = true
		}
	}

	for room := range next.Levels {
		if !contributed[room] {
			next.Levels[room] = clampHeat(next.Levels[room] - 1)
		}
	}

	return next
}

// ComputeHeat scans the full log from scratch in a single pass.
func ComputeHeat(log []event.Event) HeatSnapshot {
	return ScanHeat(EmptyHeat(), log)
}

func clampHeat(level int) int {
	if level < MinHeat {
		return MinHeat
	}
	if level > MaxHeat {
		return MaxHeat
	}
	return level
}
