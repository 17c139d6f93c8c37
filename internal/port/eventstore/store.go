// Package eventstore defines the port interface for the append-only
// activity log.
package eventstore

import (
	"context"

	"github.com/worklane/worklane/internal/domain/activity"
)

// Store is the port interface for appending and loading activity entries.
type Store interface {
	// Append persists a new entry. Entries are immutable once written.
	Append(ctx context.Context, e *activity.Entry) error

	// LoadByEntity returns all entries for the given entity ordered by
	// timestamp ascending, ties broken by insertion order.
	LoadByEntity(ctx context.Context, entityType activity.EntityType, entityID string) ([]activity.Entry, error)

	// DeleteByEntity removes the log for an entity the core has stopped
	// tracking (task or goal deletion).
	DeleteByEntity(ctx context.Context, entityType activity.EntityType, entityID string) error
}
