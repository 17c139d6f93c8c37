package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worklane/worklane/internal/domain/activity"
)

// EventStore implements eventstore.Store using PostgreSQL (append-only).
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates a new EventStore backed by the given connection pool.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Append inserts a new entry into the activity_entries table.
func (s *EventStore) Append(ctx context.Context, e *activity.Entry) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO activity_entries (entity_type, entity_id, kind, description, actor_id, actor_name, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		string(e.EntityType), e.EntityID, string(e.Kind), e.Description,
		nullIfEmpty(e.ActorID), e.ActorName, e.Timestamp).
		Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// LoadByEntity returns all entries for the entity ordered by timestamp
// ascending; the serial id breaks ties in insertion order.
func (s *EventStore) LoadByEntity(ctx context.Context, entityType activity.EntityType, entityID string) ([]activity.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, entity_type, entity_id, kind, description, COALESCE(actor_id::text, ''), actor_name, occurred_at
		 FROM activity_entries WHERE entity_type = $1 AND entity_id = $2
		 ORDER BY occurred_at ASC, id ASC`,
		string(entityType), entityID)
	if err != nil {
		return nil, fmt.Errorf("load activity for %s %s: %w", entityType, entityID, err)
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var e activity.Entry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Kind, &e.Description, &e.ActorID, &e.ActorName, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteByEntity drops the log for an entity the core stopped tracking.
func (s *EventStore) DeleteByEntity(ctx context.Context, entityType activity.EntityType, entityID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM activity_entries WHERE entity_type = $1 AND entity_id = $2`,
		string(entityType), entityID)
	if err != nil {
		return fmt.Errorf("delete activity for %s %s: %w", entityType, entityID, err)
	}
	return nil
}
