package service

import (
	"context"

	serrors "github.com/emberhall/steward/internal/errors"
	"github.com/emberhall/steward/internal/steward/event"
	"github.com/emberhall/steward/internal/steward/narration"
	"github.com/emberhall/steward/internal/steward/pacing"
	"github.com/emberhall/steward/internal/steward/projection"
)

// Narrate renders a recorded event. An empty eventID narrates the most
// recent event in the log.
func (s *Service) Narrate(ctx context.Context, sessionID, eventID string, opts narration.Options) (narration.Rendering, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return narration.Rendering{}, err
	}

	state.mu.Lock()
	ledger := state.ledger
	state.mu.Unlock()

	var evt event.Event
	if eventID == "" {
		last, ok := ledger.LastEvent()
		if !ok {
			return narration.Rendering{}, serrors.New(serrors.CodeEventNotFound, "session "+sessionID+" has no events")
		}
		evt = last
	} else {
		found := false
		for _, candidate := range ledger.Log {
			if candidate.ID == eventID {
				evt = candidate
				found = true
				break
			}
		}
		if !found {
			return narration.Rendering{}, serrors.New(serrors.CodeEventNotFound, "event "+eventID+" not found")
		}
	}

	return narration.Render(evt, opts), nil
}

// RoomGraph derives the room graph projection from the session's log.
func (s *Service) RoomGraph(ctx context.Context, sessionID string) (projection.RoomGraph, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return projection.RoomGraph{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return projection.BuildRoomGraph(state.ledger.Log), nil
}

// PatrolHeat derives the patrol heat projection from the session's log.
func (s *Service) PatrolHeat(ctx context.Context, sessionID string) (projection.HeatSnapshot, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return projection.HeatSnapshot{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return projection.ComputeHeat(state.ledger.Log), nil
}

// KeysAndDoors derives the key and door projection from the session's log.
func (s *Service) KeysAndDoors(ctx context.Context, sessionID string) (projection.KeyDoorView, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return projection.KeyDoorView{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return projection.MatchKeysAndDoors(state.ledger.Log), nil
}

// AdvisePacing feeds one table message to the pacing advisor and returns its
// advice. The pacing state is advisory only and lives outside the event log.
func (s *Service) AdvisePacing(ctx context.Context, sessionID, message string) (pacing.Advice, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return pacing.Advice{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	next, advice := pacing.Update(state.pacing, message)
	state.pacing = next
	return advice, nil
}
