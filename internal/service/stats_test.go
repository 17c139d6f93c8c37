package service

import (
	"context"
	"errors"
	"testing"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/goal"
)

func monthGoal(id, month string, status goal.Status) goal.Goal {
	g := seedGoal(status)
	g.ID = id
	g.TargetMonth = month
	return g
}

func TestStatsMonthly(t *testing.T) {
	store := &mockStore{goals: []goal.Goal{
		monthGoal("g1", "2025-03", goal.StatusAchieved),
		monthGoal("g2", "2025-03", goal.StatusAchieved),
		monthGoal("g3", "2025-03", goal.StatusAchieved),
		monthGoal("g4", "2025-03", goal.StatusPending),
		monthGoal("g5", "2025-02", goal.StatusAchieved),
	}}
	svc := NewStatsService(store, nil, 0)

	got, err := svc.Monthly(context.Background(), alice, "", "2025-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Achieved != 3 || got.Pending != 1 {
		t.Fatalf("expected 3 achieved / 1 pending, got %d/%d", got.Achieved, got.Pending)
	}
	if got.CompletionRate != 75 {
		t.Fatalf("expected completion rate 75, got %d", got.CompletionRate)
	}
	if got.PreviousAchieved != 1 || got.AchievedDelta != 2 || got.DeltaPercent != 200 {
		t.Fatalf("unexpected deltas: %+v", got)
	}
}

func TestStatsMonthlyRejectedExcluded(t *testing.T) {
	store := &mockStore{goals: []goal.Goal{
		monthGoal("g1", "2025-03", goal.StatusAchieved),
		monthGoal("g2", "2025-03", goal.StatusRejected),
	}}
	svc := NewStatsService(store, nil, 0)

	got, err := svc.Monthly(context.Background(), alice, "", "2025-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Achieved != 1 || got.Pending != 0 {
		t.Fatalf("rejected goals must not count, got %d/%d", got.Achieved, got.Pending)
	}
	if got.CompletionRate != 100 {
		t.Fatalf("expected 100, got %d", got.CompletionRate)
	}
}

func TestStatsMonthlyEmptyMonth(t *testing.T) {
	store := &mockStore{}
	svc := NewStatsService(store, nil, 0)

	got, err := svc.Monthly(context.Background(), alice, "", "2025-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CompletionRate != 0 || got.DeltaPercent != 0 {
		t.Fatalf("empty month must report zeros, got %+v", got)
	}
}

func TestStatsMonthlyFirstActiveMonth(t *testing.T) {
	store := &mockStore{goals: []goal.Goal{
		monthGoal("g1", "2025-03", goal.StatusAchieved),
	}}
	svc := NewStatsService(store, nil, 0)

	got, err := svc.Monthly(context.Background(), alice, "", "2025-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DeltaPercent != 100 {
		t.Fatalf("first active month reports +100%%, got %d", got.DeltaPercent)
	}
}

func TestStatsMonthlyBadBucket(t *testing.T) {
	svc := NewStatsService(&mockStore{}, nil, 0)

	_, err := svc.Monthly(context.Background(), alice, "", "March 2025")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestStatsOtherUserRequiresManager(t *testing.T) {
	svc := NewStatsService(&mockStore{}, nil, 0)

	if _, err := svc.Monthly(context.Background(), alice, bob.ID, "2025-03"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Monthly(context.Background(), carol, bob.ID, "2025-03"); err != nil {
		t.Fatalf("manager must be allowed: %v", err)
	}
}

func TestStatsWindow(t *testing.T) {
	store := &mockStore{goals: []goal.Goal{
		monthGoal("g1", "2025-01", goal.StatusAchieved),
		monthGoal("g2", "2025-03", goal.StatusPending),
	}}
	svc := NewStatsService(store, nil, 0)

	got, err := svc.Window(context.Background(), alice, "", "2025-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != WindowMonths {
		t.Fatalf("expected %d buckets, got %d", WindowMonths, len(got))
	}
	if got[0].Month != "2025-01" || got[0].Achieved != 1 {
		t.Fatalf("unexpected first bucket: %+v", got[0])
	}
	// Months without goals still get a bucket.
	if got[1].Month != "2025-02" || got[1].Achieved != 0 || got[1].Pending != 0 {
		t.Fatalf("unexpected empty bucket: %+v", got[1])
	}
	if got[2].Pending != 1 {
		t.Fatalf("expected pending goal in 2025-03, got %+v", got[2])
	}
	if got[11].Month != "2025-12" {
		t.Fatalf("expected window to end at 2025-12, got %s", got[11].Month)
	}
}

func TestStatsWindowCaches(t *testing.T) {
	store := &mockStore{goals: []goal.Goal{monthGoal("g1", "2025-01", goal.StatusAchieved)}}
	c := newMockCache()
	svc := NewStatsService(store, c, 0)

	if _, err := svc.Window(context.Background(), alice, "", "2025-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Window(context.Background(), alice, "", "2025-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.sets != 1 || c.hits != 1 {
		t.Fatalf("expected 1 fill and 1 hit, got %d/%d", c.sets, c.hits)
	}
}
