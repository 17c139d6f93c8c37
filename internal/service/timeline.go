package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/activity"
	"github.com/worklane/worklane/internal/domain/user"
	"github.com/worklane/worklane/internal/port/cache"
	"github.com/worklane/worklane/internal/port/database"
	"github.com/worklane/worklane/internal/port/eventstore"
)

// TimelineService reconstructs the ordered activity feed of a task or goal.
// The feed is a pure function of the entity and its log, so results are
// cached briefly; a stale feed self-corrects on the next TTL expiry.
// Concurrent rebuilds of the same feed are collapsed into one.
type TimelineService struct {
	store  database.Store
	events eventstore.Store
	cache  cache.Cache
	ttl    time.Duration
	group  singleflight.Group
}

// NewTimelineService creates a new TimelineService. cache may be nil to
// disable caching.
func NewTimelineService(store database.Store, events eventstore.Store, c cache.Cache, ttl time.Duration) *TimelineService {
	return &TimelineService{store: store, events: events, cache: c, ttl: ttl}
}

// ForTask returns the merged activity feed of one task.
func (s *TimelineService) ForTask(ctx context.Context, taskID string) ([]activity.Entry, error) {
	key := timelineKey(activity.EntityTask, taskID)
	if entries, ok := s.cached(ctx, key); ok {
		return entries, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		t, err := s.store.GetTask(ctx, taskID)
		if err != nil {
			return nil, err
		}
		log, err := s.events.LoadByEntity(ctx, activity.EntityTask, taskID)
		if err != nil {
			return nil, fmt.Errorf("load activity for task %s: %w", taskID, err)
		}

		entries := activity.TaskTimeline(t, log)
		s.put(ctx, key, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]activity.Entry), nil
}

// ForGoal returns the merged activity feed of one standalone goal. The same
// visibility rule as GoalService.Get applies.
func (s *TimelineService) ForGoal(ctx context.Context, actor *user.User, goalID string) ([]activity.Entry, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if !canViewGoal(actor, g) {
		return nil, fmt.Errorf("user %s may not view goal %s: %w", actor.ID, goalID, domain.ErrUnauthorized)
	}

	key := timelineKey(activity.EntityGoal, goalID)
	if entries, ok := s.cached(ctx, key); ok {
		return entries, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		log, err := s.events.LoadByEntity(ctx, activity.EntityGoal, goalID)
		if err != nil {
			return nil, fmt.Errorf("load activity for goal %s: %w", goalID, err)
		}

		entries := activity.GoalTimeline(g, log)
		s.put(ctx, key, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]activity.Entry), nil
}

func timelineKey(entityType activity.EntityType, id string) string {
	return fmt.Sprintf("timeline:%s:%s", entityType, id)
}

func (s *TimelineService) cached(ctx context.Context, key string) ([]activity.Entry, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var entries []activity.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *TimelineService) put(ctx context.Context, key string, entries []activity.Entry) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.Debug("timeline cache set failed", "key", key, "error", err)
	}
}
