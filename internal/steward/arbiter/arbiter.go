// Package arbiter drives the propose, confirm, record workflow.
//
// The arbiter never writes canon on its own authority. Every path through
// this package performs the same three acts the ledger exposes: a change is
// proposed, an authority confirms it, and only then is an outcome recorded.
// The governed auto-resolve path is no exception; it simply plays both roles
// and leaves an audit trail saying so.
package arbiter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emberhall/steward/internal/id"
	"github.com/emberhall/steward/internal/steward/dice"
	"github.com/emberhall/steward/internal/steward/event"
	"github.com/emberhall/steward/internal/steward/intent"
	"github.com/emberhall/steward/internal/steward/option"
	"github.com/emberhall/steward/internal/steward/session"
)

var (
	// ErrEmptyInput indicates a proposal was requested with no player input.
	ErrEmptyInput = errors.New("raw input is required")
	// ErrUnknownResolutionMode indicates an unrecognized resolution mode.
	ErrUnknownResolutionMode = errors.New("unknown resolution mode")
)

// systemActorID attributes auto-resolved confirmations in audit trails.
const systemActorID = "system"

// Arbiter owns the clock and id generator so workflows stay deterministic
// under test.
type Arbiter struct {
	now   func() time.Time
	newID func() (string, error)
}

// New returns an arbiter. Nil arguments fall back to the real clock and the
// default id generator.
func New(now func() time.Time, idGenerator func() (string, error)) Arbiter {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return Arbiter{now: now, newID: idGenerator}
}

// Proposal is the result of drafting a change from raw player input.
type Proposal struct {
	Session session.Session
	Change  session.ProposedChange
	Intent  intent.ParsedIntent
	Options option.Set
}

// Resolution describes how a confirmed change should be resolved when it is
// recorded. The zero value is a plain narrative resolution.
type Resolution struct {
	Mode          event.ResolutionMode
	Modifier      int
	Difficulty    *int
	Seed          int64
	Justification string
	World         *event.WorldFragment
}

// ProposeAction classifies raw input, drafts a proposed change from it, and
// returns the updated session alongside the parsed intent and generated
// options. Nothing touches the event log.
func (a Arbiter) ProposeAction(s session.Session, actorID, rawInput string) (Proposal, error) {
	rawInput = strings.TrimSpace(rawInput)
	if rawInput == "" {
		return Proposal{}, ErrEmptyInput
	}
	parsed := intent.Classify(actorID, rawInput)

	change, err := session.NewProposedChange(rawInput, actorID, a.now, a.newID)
	if err != nil {
		return Proposal{}, fmt.Errorf("draft proposal: %w", err)
	}

	next, err := session.Propose(s, change)
	if err != nil {
		return Proposal{}, err
	}

	return Proposal{
		Session: next,
		Change:  change,
		Intent:  parsed,
		Options: option.Generate(parsed),
	}, nil
}

// ConfirmOutcome confirms a pending change and builds the outcome event that
// records it, without appending to the log. Callers that persist events
// elsewhere record the returned event themselves; everyone else can use
// ConfirmAndRecord.
//
// Confirming an id that is not pending is a no-op reported through the
// boolean result; the session is returned unchanged and no event is built.
func (a Arbiter) ConfirmOutcome(s session.Session, changeID, confirmedBy string, res Resolution) (session.Session, event.Event, bool, error) {
	record, err := resolveDice(res)
	if err != nil {
		return s, event.Event{}, false, err
	}

	confirmed, ok := session.Confirm(s, changeID, confirmedBy, a.now)
	if !ok {
		return s, event.Event{}, false, nil
	}
	accepted, _ := confirmed.AcceptedChangeByID(changeID)

	evt, err := a.outcomeEvent(accepted, event.Actor{Type: event.ActorTypePlayer, ID: accepted.ProposedBy}, record, res.World, []string{
		fmt.Sprintf("proposed_by=%s", accepted.ProposedBy),
		fmt.Sprintf("confirmed_by=%s", accepted.ConfirmedBy),
	})
	if err != nil {
		return s, event.Event{}, false, err
	}
	return confirmed, evt, true, nil
}

// ConfirmAndRecord confirms a pending change and records the resulting
// outcome in one pass. The two acts stay distinct in the ledger: the change
// moves to the accepted set first, then an outcome event is appended.
func (a Arbiter) ConfirmAndRecord(s session.Session, changeID, confirmedBy string, res Resolution) (session.Session, event.Event, bool, error) {
	confirmed, evt, ok, err := a.ConfirmOutcome(s, changeID, confirmedBy, res)
	if err != nil || !ok {
		return s, event.Event{}, ok, err
	}

	next, err := session.Record(confirmed, evt)
	if err != nil {
		return s, event.Event{}, false, err
	}
	return next, evt, true, nil
}

// AutoResolveOutcome performs the governed workflow up to, but not
// including, recording: the change is proposed and confirmed (attributed to
// the system actor) and the outcome event is returned for the caller to
// record.
func (a Arbiter) AutoResolveOutcome(s session.Session, actorID, rawInput string, res Resolution) (session.Session, event.Event, error) {
	if res.Mode == "" {
		res.Mode = event.ResolutionAuto
	}
	record, err := resolveDice(res)
	if err != nil {
		return s, event.Event{}, err
	}

	proposal, err := a.ProposeAction(s, actorID, rawInput)
	if err != nil {
		return s, event.Event{}, err
	}

	confirmed, ok := session.Confirm(proposal.Session, proposal.Change.ID, systemActorID, a.now)
	if !ok {
		// Unreachable: the change was just proposed on this value.
		return s, event.Event{}, fmt.Errorf("confirm drafted change %s: not pending", proposal.Change.ID)
	}
	accepted, _ := confirmed.AcceptedChangeByID(proposal.Change.ID)

	audit := []string{
		fmt.Sprintf("proposed_by=%s", accepted.ProposedBy),
		fmt.Sprintf("auto_confirmed_by=%s", systemActorID),
		fmt.Sprintf("mode=%s", res.Mode),
	}
	if res.Mode == event.ResolutionRoll {
		audit = append(audit, fmt.Sprintf("seed=%d", res.Seed))
	}

	evt, err := a.outcomeEvent(accepted, event.Actor{Type: event.ActorTypeSystem, ID: systemActorID}, record, res.World, audit)
	if err != nil {
		return s, event.Event{}, err
	}
	return confirmed, evt, nil
}

// AutoResolve performs the full workflow without a human in the loop. The
// change is still proposed and confirmed before anything is recorded; the
// confirmation is attributed to the system actor and the outcome carries an
// audit trail naming every step.
func (a Arbiter) AutoResolve(s session.Session, actorID, rawInput string, res Resolution) (session.Session, event.Event, error) {
	confirmed, evt, err := a.AutoResolveOutcome(s, actorID, rawInput, res)
	if err != nil {
		return s, event.Event{}, err
	}

	next, err := session.Record(confirmed, evt)
	if err != nil {
		return s, event.Event{}, err
	}
	return next, evt, nil
}

// outcomeEvent builds the action.outcome event for an accepted change.
func (a Arbiter) outcomeEvent(accepted session.AcceptedChange, actor event.Actor, record *event.DiceRecord, world *event.WorldFragment, audit []string) (event.Event, error) {
	eventID, err := a.newID()
	if err != nil {
		return event.Event{}, fmt.Errorf("generate event id: %w", err)
	}
	return event.Event{
		ID:        eventID,
		Timestamp: a.now().UTC(),
		Actor:     actor,
		Type:      event.TypeOutcome,
		Payload: event.OutcomePayload{
			Description: accepted.Description,
			Dice:        record,
			World:       world,
			Audit:       audit,
		},
	}, nil
}

// resolveDice turns a resolution request into the dice record to persist.
// Narrative resolutions carry no record at all.
func resolveDice(res Resolution) (*event.DiceRecord, error) {
	switch res.Mode {
	case "", event.ResolutionNarrative:
		return nil, nil
	case event.ResolutionAuto:
		success := true
		return &event.DiceRecord{
			Mode:          event.ResolutionAuto,
			Success:       &success,
			Justification: res.Justification,
		}, nil
	case event.ResolutionRoll:
		check, err := dice.RollCheck(dice.CheckRequest{
			Modifier:   res.Modifier,
			Difficulty: res.Difficulty,
			Seed:       res.Seed,
		})
		if err != nil {
			return nil, fmt.Errorf("resolve roll: %w", err)
		}
		total := check.Total
		success := check.Success
		return &event.DiceRecord{
			Mode:          event.ResolutionRoll,
			Difficulty:    check.Difficulty,
			Total:         &total,
			Results:       []int{check.Face},
			Success:       &success,
			Justification: res.Justification,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownResolutionMode, res.Mode)
	}
}
