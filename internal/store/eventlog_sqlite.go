package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"wishlist-cli/internal/model"

	"github.com/google/uuid"
)

var appendEventCount atomic.Uint64

// AppendEventCount reports how many events this process appended (used by tests and the
// CLI to decide whether a command wrote anything).
func AppendEventCount() uint64 { return appendEventCount.Load() }

func (s Store) AppendEvent(actorID, typ, entityID string, payload any) error {
	return s.AppendEventContext(context.Background(), actorID, typ, entityID, payload)
}

func (s Store) AppendEventContext(ctx context.Context, actorID, typ, entityID string, payload any) error {
	typ = strings.TrimSpace(typ)
	entityID = strings.TrimSpace(entityID)
	actorID = strings.TrimSpace(actorID)
	if typ == "" {
		return formatErrEventContract("missing type")
	}
	if entityID == "" {
		return formatErrEventContract("missing entity id")
	}
	if actorID == "" {
		return formatErrEventContract("missing actor id")
	}

	pb, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `INSERT INTO events(event_id, entity_id, type, actor_id, payload_json, issued_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		"evt-"+uuid.NewString(), entityID, typ, actorID, string(pb), time.Now().UTC().UnixMilli()); err != nil {
		return err
	}
	appendEventCount.Add(1)
	return nil
}

// ReadEvents returns the first limit events in chronological order (all when limit <= 0).
func (s Store) ReadEvents(ctx context.Context, limit int) ([]model.Event, error) {
	q := `SELECT event_id, entity_id, type, actor_id, payload_json, issued_at_unixms FROM events ORDER BY issued_at_unixms, rowid`
	return s.queryEvents(ctx, q, limit)
}

// ReadEventsForEntity returns the last limit events for entityID, oldest-first.
func (s Store) ReadEventsForEntity(ctx context.Context, entityID string, limit int) ([]model.Event, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return []model.Event{}, nil
	}
	q := `SELECT event_id, entity_id, type, actor_id, payload_json, issued_at_unixms FROM events WHERE entity_id = ? ORDER BY issued_at_unixms, rowid`
	evs, err := s.queryEvents(ctx, q, 0, entityID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(evs) > limit {
		evs = evs[len(evs)-limit:]
	}
	return evs, nil
}

func (s Store) queryEvents(ctx context.Context, q string, limit int, args ...any) ([]model.Event, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var (
			ev      model.Event
			payload string
			ms      int64
		)
		if err := rows.Scan(&ev.ID, &ev.EntityID, &ev.Type, &ev.ActorID, &payload, &ms); err != nil {
			return nil, err
		}
		ev.TS = time.UnixMilli(ms).UTC()
		if strings.TrimSpace(payload) != "" {
			var p any
			if err := json.Unmarshal([]byte(payload), &p); err == nil {
				ev.Payload = p
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

type eventContractError struct{ msg string }

func (e eventContractError) Error() string { return "event contract: " + e.msg }

func formatErrEventContract(msg string) error { return eventContractError{msg: msg} }
