// Package service hosts sessions on top of the engine packages.
//
// The engine itself is persistence-free and concurrency-agnostic; this layer
// supplies both. Each session gets one mutex, so confirm and record on the
// same session are serialized while distinct sessions share nothing. When an
// event store is configured, every recorded event is appended through to it
// and sessions can be rebuilt by replaying the stored journal.
package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	serrors "github.com/emberhall/steward/internal/errors"
	"github.com/emberhall/steward/internal/id"
	"github.com/emberhall/steward/internal/storage"
	"github.com/emberhall/steward/internal/steward/arbiter"
	"github.com/emberhall/steward/internal/steward/event"
	"github.com/emberhall/steward/internal/steward/pacing"
	"github.com/emberhall/steward/internal/steward/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// replayPageSize bounds how many events one replay query loads.
const replayPageSize = 200

// Service hosts sessions and serializes access to each one.
type Service struct {
	store  storage.EventStore
	arb    arbiter.Arbiter
	tracer trace.Tracer
	now    func() time.Time
	newID  func() (string, error)

	mu       sync.Mutex
	sessions map[string]*sessionState
}

type sessionState struct {
	mu     sync.Mutex
	ledger session.Session
	pacing pacing.State
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the id generator.
func WithIDGenerator(generator func() (string, error)) Option {
	return func(s *Service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// New returns a session service. The store may be nil, in which case
// sessions live in memory only.
func New(store storage.EventStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		now:      time.Now,
		newID:    id.NewID,
		tracer:   otel.Tracer("steward.service"),
		sessions: map[string]*sessionState{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.arb = arbiter.New(s.now, s.newID)
	return s
}

// StartSession creates a session and records its session.started event.
func (s *Service) StartSession(ctx context.Context, sessionID, name string) error {
	ctx, span := s.tracer.Start(ctx, "service.StartSession")
	defer span.End()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return serrors.New(serrors.CodeSessionEmptyID, "session id is required")
	}

	s.mu.Lock()
	if _, exists := s.sessions[sessionID]; exists {
		s.mu.Unlock()
		return serrors.New(serrors.CodeSessionExists, "session "+sessionID+" already started")
	}
	ledger, err := session.Create(sessionID)
	if err != nil {
		s.mu.Unlock()
		return serrors.Wrap(serrors.CodeSessionEmptyID, "create session", err)
	}
	state := &sessionState{ledger: ledger, pacing: pacing.DefaultState()}
	s.sessions[sessionID] = state
	s.mu.Unlock()

	state.mu.Lock()
	defer state.mu.Unlock()
	return s.record(ctx, state, event.Actor{Type: event.ActorTypeSteward}, event.SessionStartedPayload{SessionName: name})
}

// EndSession records the session.ended event. Further mutations are refused.
func (s *Service) EndSession(ctx context.Context, sessionID, reason string) error {
	ctx, span := s.tracer.Start(ctx, "service.EndSession")
	defer span.End()

	state, err := s.state(sessionID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.ledger.Ended() {
		return serrors.New(serrors.CodeSessionEnded, "session "+sessionID+" already ended")
	}
	return s.record(ctx, state, event.Actor{Type: event.ActorTypeSteward}, event.SessionEndedPayload{Reason: reason})
}

// Session returns a copy-on-write snapshot of a session's current value.
func (s *Service) Session(sessionID string) (session.Session, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return session.Session{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.ledger, nil
}

// SessionIDs lists hosted session ids, sorted.
func (s *Service) SessionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for sessionID := range s.sessions {
		ids = append(ids, sessionID)
	}
	sort.Strings(ids)
	return ids
}

// LoadSessions rebuilds every stored session by paged replay of its journal.
// Already-hosted sessions are left alone.
func (s *Service) LoadSessions(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	ids, err := s.store.ListSessionIDs(ctx)
	if err != nil {
		return serrors.Wrap(serrors.CodeUnknown, "list stored sessions", err)
	}

	for _, sessionID := range ids {
		s.mu.Lock()
		if _, exists := s.sessions[sessionID]; exists {
			s.mu.Unlock()
			continue
		}
		s.mu.Unlock()

		ledger, err := s.replay(ctx, sessionID)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if _, exists := s.sessions[sessionID]; !exists {
			s.sessions[sessionID] = &sessionState{ledger: ledger, pacing: pacing.DefaultState()}
		}
		s.mu.Unlock()
		log.Printf("service: session loaded session_id=%s events=%d", sessionID, len(ledger.Log))
	}
	return nil
}

// replay rebuilds one session value from the stored journal.
func (s *Service) replay(ctx context.Context, sessionID string) (session.Session, error) {
	ledger, err := session.Create(sessionID)
	if err != nil {
		return session.Session{}, serrors.Wrap(serrors.CodeSessionEmptyID, "replay session", err)
	}

	var afterSeq uint64
	for {
		events, err := s.store.ListEvents(ctx, sessionID, afterSeq, replayPageSize)
		if err != nil {
			return session.Session{}, serrors.Wrap(serrors.CodeUnknown, "replay session "+sessionID, err)
		}
		if len(events) == 0 {
			return ledger, nil
		}
		for _, evt := range events {
			ledger, err = session.Record(ledger, evt)
			if err != nil {
				return session.Session{}, serrors.Wrap(serrors.CodeEventInvalid, "replay session "+sessionID, err)
			}
			afterSeq = evt.Seq
		}
	}
}

// state looks up a hosted session.
func (s *Service) state(sessionID string) (*sessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return nil, serrors.New(serrors.CodeSessionNotFound, "session "+sessionID+" not found")
	}
	return state, nil
}

// record builds an event, appends it through the store when one is
// configured, and grows the in-memory log. Callers must hold state.mu.
func (s *Service) record(ctx context.Context, state *sessionState, actor event.Actor, payload event.Payload) error {
	eventID, err := s.newID()
	if err != nil {
		return serrors.Wrap(serrors.CodeUnknown, "generate event id", err)
	}
	evt := event.Event{
		ID:        eventID,
		Timestamp: s.now().UTC(),
		Actor:     actor,
		Type:      payload.EventType(),
		Payload:   payload,
	}
	return s.recordEvent(ctx, state, evt)
}

// recordEvent persists and appends an already-built event. Callers must hold
// state.mu.
func (s *Service) recordEvent(ctx context.Context, state *sessionState, evt event.Event) error {
	if s.store != nil {
		stored, err := s.store.AppendEvent(ctx, state.ledger.ID, evt)
		if err != nil {
			return serrors.Wrap(serrors.CodeUnknown, "append event", err)
		}
		evt = stored
	} else {
		evt.Seq = uint64(len(state.ledger.Log)) + 1
	}

	next, err := session.Record(state.ledger, evt)
	if err != nil {
		return serrors.Wrap(serrors.CodeEventInvalid, "record event", err)
	}
	state.ledger = next
	log.Printf("service: event recorded session_id=%s type=%s seq=%d", state.ledger.ID, evt.Type, evt.Seq)
	return nil
}
