package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/emberhall/steward/internal/steward/event"
)

// AppendEvent atomically appends an event and returns it with its sequence
// number set. Sequence numbers are assigned per session in append order.
func (s *Store) AppendEvent(ctx context.Context, sessionID string, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(sessionID) == "" {
		return event.Event{}, fmt.Errorf("session id is required")
	}
	if err := evt.Validate(); err != nil {
		return event.Event{}, fmt.Errorf("validate event: %w", err)
	}

	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

	payload, err := event.EncodePayload(evt.Payload)
	if err != nil {
		return event.Event{}, fmt.Errorf("encode payload: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO event_seq (session_id, next_seq) VALUES (?, 1)",
		sessionID,
	); err != nil {
		return event.Event{}, fmt.Errorf("init event seq: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx,
		"SELECT next_seq FROM event_seq WHERE session_id = ?",
		sessionID,
	).Scan(&seq); err != nil {
		return event.Event{}, fmt.Errorf("get event seq: %w", err)
	}
	evt.Seq = uint64(seq)

	if _, err := tx.ExecContext(ctx,
		"UPDATE event_seq SET next_seq = next_seq + 1 WHERE session_id = ?",
		sessionID,
	); err != nil {
		return event.Event{}, fmt.Errorf("increment event seq: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (session_id, seq, event_id, timestamp, actor_type, actor_id, event_type, payload_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		seq,
		evt.ID,
		toMillis(evt.Timestamp),
		string(evt.Actor.Type),
		evt.Actor.ID,
		string(evt.Type),
		payload,
	); err != nil {
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit: %w", err)
	}

	return evt, nil
}

// ListEvents returns events ordered by sequence ascending.
func (s *Store) ListEvents(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT seq, event_id, timestamp, actor_type, actor_id, event_type, payload_json
		 FROM events WHERE session_id = ? AND seq > ? ORDER BY seq ASC LIMIT ?`,
		sessionID, int64(afterSeq), int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// LatestSeq returns the highest assigned sequence number for a session.
func (s *Store) LatestSeq(ctx context.Context, sessionID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(sessionID) == "" {
		return 0, fmt.Errorf("session id is required")
	}

	var seq int64
	if err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) FROM events WHERE session_id = ?",
		sessionID,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("get latest seq: %w", err)
	}
	return uint64(seq), nil
}

// ListSessionIDs returns every session id with at least one stored event.
func (s *Store) ListSessionIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT DISTINCT session_id FROM events ORDER BY session_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list session ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session ids: %w", err)
	}
	return ids, nil
}

func scanEvent(rows *sql.Rows) (event.Event, error) {
	var (
		seq       int64
		eventID   string
		timestamp int64
		actorType string
		actorID   string
		eventType string
		payload   []byte
	)
	if err := rows.Scan(&seq, &eventID, &timestamp, &actorType, &actorID, &eventType, &payload); err != nil {
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}

	decoded, err := event.DecodePayload(event.Type(eventType), payload)
	if err != nil {
		return event.Event{}, fmt.Errorf("decode payload seq=%d: %w", seq, err)
	}

	return event.Event{
		ID:        eventID,
		Seq:       uint64(seq),
		Timestamp: fromMillis(timestamp),
		Actor: event.Actor{
			Type: event.ActorType(actorType),
			ID:   actorID,
		},
		Type:    event.Type(eventType),
		Payload: decoded,
	}, nil
}
