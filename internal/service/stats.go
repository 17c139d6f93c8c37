package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/goal"
	"github.com/worklane/worklane/internal/domain/stats"
	"github.com/worklane/worklane/internal/domain/user"
	"github.com/worklane/worklane/internal/port/cache"
	"github.com/worklane/worklane/internal/port/database"
)

// WindowMonths is the span of the rolling month-bucket view.
const WindowMonths = 12

// StatsService aggregates a user's standalone goals into monthly completion
// buckets. Aggregation is a pure read, so results are cached briefly.
type StatsService struct {
	store database.Store
	cache cache.Cache
	ttl   time.Duration
}

// NewStatsService creates a new StatsService. cache may be nil to disable
// caching.
func NewStatsService(store database.Store, c cache.Cache, ttl time.Duration) *StatsService {
	return &StatsService{store: store, cache: c, ttl: ttl}
}

// Monthly returns the completion summary for one user and month, with the
// delta against the preceding month. An empty month defaults to the current
// calendar month.
func (s *StatsService) Monthly(ctx context.Context, actor *user.User, userID, month string) (*stats.Summary, error) {
	userID, err := resolveStatsUser(actor, userID)
	if err != nil {
		return nil, err
	}
	if month == "" {
		month = time.Now().UTC().Format(goal.MonthLayout)
	}
	if goal.NormalizeMonth(month) != month {
		return nil, fmt.Errorf("month %q is not a YYYY-MM bucket: %w", month, domain.ErrValidation)
	}

	key := fmt.Sprintf("stats:monthly:%s:%s", userID, month)
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var cached stats.Summary
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	goals, err := s.store.ListGoals(ctx, database.GoalFilter{AssignedTo: userID})
	if err != nil {
		return nil, err
	}

	summary := stats.Monthly(goals, month)
	s.put(ctx, key, summary)
	return &summary, nil
}

// Window returns a rolling window of month buckets for one user, starting at
// start. An empty start begins the window WindowMonths-1 months back so it
// ends on the current month.
func (s *StatsService) Window(ctx context.Context, actor *user.User, userID, start string) ([]stats.Bucket, error) {
	userID, err := resolveStatsUser(actor, userID)
	if err != nil {
		return nil, err
	}
	if start == "" {
		start = time.Now().UTC().AddDate(0, -(WindowMonths - 1), 0).Format(goal.MonthLayout)
	}
	if goal.NormalizeMonth(start) != start {
		return nil, fmt.Errorf("start %q is not a YYYY-MM bucket: %w", start, domain.ErrValidation)
	}

	key := fmt.Sprintf("stats:window:%s:%s", userID, start)
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var cached []stats.Bucket
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	goals, err := s.store.ListGoals(ctx, database.GoalFilter{AssignedTo: userID})
	if err != nil {
		return nil, err
	}

	buckets := stats.Window(goals, start, WindowMonths)
	s.put(ctx, key, buckets)
	return buckets, nil
}

// resolveStatsUser decides whose goals to aggregate: the actor's own by
// default, another user's only for managers and admins.
func resolveStatsUser(actor *user.User, userID string) (string, error) {
	if userID == "" || userID == actor.ID {
		return actor.ID, nil
	}
	if !actor.IsManager() {
		return "", fmt.Errorf("user %s may not view stats of %s: %w", actor.ID, userID, domain.ErrUnauthorized)
	}
	return userID, nil
}

func (s *StatsService) put(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.Debug("stats cache set failed", "key", key, "error", err)
	}
}
