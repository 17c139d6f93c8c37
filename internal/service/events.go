package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/worklane/worklane/internal/domain/activity"
	"github.com/worklane/worklane/internal/domain/user"
	"github.com/worklane/worklane/internal/port/broadcast"
	"github.com/worklane/worklane/internal/port/eventstore"
	"github.com/worklane/worklane/internal/port/messagequeue"
)

// recorder bundles the side-effect sinks every mutating service shares: the
// append-only activity log, the domain event queue and the live UI hub.
//
// Side effects run after the state change is committed and never roll it
// back; failures are logged and left to the external collaborators to
// reconcile.
type recorder struct {
	events eventstore.Store
	queue  messagequeue.Queue
	hub    broadcast.Broadcaster
}

// record appends one activity entry and mirrors it to the live hub.
func (r *recorder) record(ctx context.Context, entityType activity.EntityType, entityID string, kind activity.Kind, description string, actor *user.User) {
	e := &activity.Entry{
		EntityType:  entityType,
		EntityID:    entityID,
		Kind:        kind,
		Description: description,
		Timestamp:   time.Now().UTC().Truncate(time.Second),
	}
	if actor != nil {
		e.ActorID = actor.ID
		e.ActorName = actor.Name
	}

	if r.events != nil {
		if err := r.events.Append(ctx, e); err != nil {
			slog.Error("activity append failed", "entity", entityID, "kind", kind, "error", err)
		}
	}
	if r.hub != nil {
		r.hub.BroadcastEvent(ctx, string(kind), e)
	}
}

// publish sends a domain event to the queue for external collaborators
// (notifications, AI summaries, reports).
func (r *recorder) publish(ctx context.Context, subject string, payload any) {
	if r.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("event marshal failed", "subject", subject, "error", err)
		return
	}
	if err := r.queue.Publish(ctx, subject, data); err != nil {
		slog.Error("event publish failed", "subject", subject, "error", err)
	}
}
