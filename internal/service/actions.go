package service

import (
	"context"

	serrors "github.com/emberhall/steward/internal/errors"
	"github.com/emberhall/steward/internal/steward/arbiter"
	"github.com/emberhall/steward/internal/steward/event"
	"github.com/emberhall/steward/internal/steward/intent"
	"github.com/emberhall/steward/internal/steward/option"
	"github.com/emberhall/steward/internal/steward/session"
)

// ActionDraft is the result of proposing a player action.
type ActionDraft struct {
	Change  session.ProposedChange
	Intent  intent.ParsedIntent
	Options option.Set
}

// ProposeAction classifies raw input and drafts a proposed change. Nothing
// touches the event log until the change is confirmed and recorded.
func (s *Service) ProposeAction(ctx context.Context, sessionID, actorID, rawInput string) (ActionDraft, error) {
	_, span := s.tracer.Start(ctx, "service.ProposeAction")
	defer span.End()

	state, err := s.state(sessionID)
	if err != nil {
		return ActionDraft{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.ledger.Ended() {
		return ActionDraft{}, serrors.New(serrors.CodeSessionEnded, "session "+sessionID+" has ended")
	}

	proposal, err := s.arb.ProposeAction(state.ledger, actorID, rawInput)
	if err != nil {
		return ActionDraft{}, serrors.Wrap(serrors.CodeProposalEmptyInput, "propose action", err)
	}
	state.ledger = proposal.Session

	return ActionDraft{
		Change:  proposal.Change,
		Intent:  proposal.Intent,
		Options: proposal.Options,
	}, nil
}

// ConfirmAction confirms a pending change and records the resulting outcome.
// Confirming an id that is not pending is a no-op reported through the
// boolean result.
func (s *Service) ConfirmAction(ctx context.Context, sessionID, changeID, confirmedBy string, res arbiter.Resolution) (event.Event, bool, error) {
	ctx, span := s.tracer.Start(ctx, "service.ConfirmAction")
	defer span.End()

	state, err := s.state(sessionID)
	if err != nil {
		return event.Event{}, false, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.ledger.Ended() {
		return event.Event{}, false, serrors.New(serrors.CodeSessionEnded, "session "+sessionID+" has ended")
	}

	confirmed, evt, ok, err := s.arb.ConfirmOutcome(state.ledger, changeID, confirmedBy, res)
	if err != nil {
		return event.Event{}, false, serrors.Wrap(serrors.CodeResolutionUnknownMode, "confirm action", err)
	}
	if !ok {
		return event.Event{}, false, nil
	}

	state.ledger = confirmed
	if err := s.recordEvent(ctx, state, evt); err != nil {
		return event.Event{}, false, err
	}
	recorded, _ := state.ledger.LastEvent()
	return recorded, true, nil
}

// DiscardAction drops a pending change without confirming it.
func (s *Service) DiscardAction(ctx context.Context, sessionID, changeID string) (bool, error) {
	_, span := s.tracer.Start(ctx, "service.DiscardAction")
	defer span.End()

	state, err := s.state(sessionID)
	if err != nil {
		return false, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	next, ok := session.Discard(state.ledger, changeID)
	state.ledger = next
	return ok, nil
}

// AutoResolveAction runs the governed propose, confirm, record workflow in
// one call. The confirmation is attributed to the system actor and the
// outcome carries an audit trail.
func (s *Service) AutoResolveAction(ctx context.Context, sessionID, actorID, rawInput string, res arbiter.Resolution) (event.Event, error) {
	ctx, span := s.tracer.Start(ctx, "service.AutoResolveAction")
	defer span.End()

	state, err := s.state(sessionID)
	if err != nil {
		return event.Event{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.ledger.Ended() {
		return event.Event{}, serrors.New(serrors.CodeSessionEnded, "session "+sessionID+" has ended")
	}

	confirmed, evt, err := s.arb.AutoResolveOutcome(state.ledger, actorID, rawInput, res)
	if err != nil {
		return event.Event{}, serrors.Wrap(serrors.CodeProposalEmptyInput, "auto resolve action", err)
	}

	state.ledger = confirmed
	if err := s.recordEvent(ctx, state, evt); err != nil {
		return event.Event{}, err
	}
	recorded, _ := state.ledger.LastEvent()
	return recorded, nil
}

// AddNote records a bookkeeping note from the steward.
func (s *Service) AddNote(ctx context.Context, sessionID, actorID, content string) error {
	ctx, span := s.tracer.Start(ctx, "service.AddNote")
	defer span.End()

	state, err := s.state(sessionID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.ledger.Ended() {
		return serrors.New(serrors.CodeSessionEnded, "session "+sessionID+" has ended")
	}
	return s.record(ctx, state, event.Actor{Type: event.ActorTypeSteward, ID: actorID}, event.NoteAddedPayload{Content: content})
}

// SetScene records a scene.set event establishing a scene and its world
// fragment.
func (s *Service) SetScene(ctx context.Context, sessionID, name, description string, world *event.WorldFragment) error {
	ctx, span := s.tracer.Start(ctx, "service.SetScene")
	defer span.End()

	state, err := s.state(sessionID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.ledger.Ended() {
		return serrors.New(serrors.CodeSessionEnded, "session "+sessionID+" has ended")
	}
	return s.record(ctx, state, event.Actor{Type: event.ActorTypeSteward}, event.SceneSetPayload{
		Name:        name,
		Description: description,
		World:       world,
	})
}

// PendingChanges returns the pending proposal set for a session.
func (s *Service) PendingChanges(sessionID string) ([]session.ProposedChange, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	pending := make([]session.ProposedChange, len(state.ledger.Pending))
	copy(pending, state.ledger.Pending)
	return pending, nil
}
