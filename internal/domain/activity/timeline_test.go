package activity

import (
	"testing"
	"time"

	"github.com/worklane/worklane/internal/domain/goal"
	"github.com/worklane/worklane/internal/domain/task"
)

func at(day int) time.Time {
	return time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC)
}

func TestMergeOrdersAscending(t *testing.T) {
	got := Merge([]Entry{
		{Kind: KindUserComment, Timestamp: at(3)},
		{Kind: KindGoalAssigned, Timestamp: at(1)},
		{Kind: KindManagerComment, Timestamp: at(2)},
	})
	want := []Kind{KindGoalAssigned, KindManagerComment, KindUserComment}
	for i, k := range want {
		if got[i].Kind != k {
			t.Fatalf("position %d: got %s, want %s", i, got[i].Kind, k)
		}
	}
}

func TestMergeZeroTimestampsFirst(t *testing.T) {
	got := Merge([]Entry{
		{Kind: KindGoalAssigned, Timestamp: at(1)},
		{Kind: KindUserComment},
	})
	if got[0].Kind != KindUserComment {
		t.Fatalf("zero-timestamp entry must sort first, got %s", got[0].Kind)
	}
}

func TestMergeStableOnTies(t *testing.T) {
	got := Merge([]Entry{
		{Description: "first", Timestamp: at(1)},
		{Description: "second", Timestamp: at(1)},
		{Description: "third", Timestamp: at(1)},
	})
	if got[0].Description != "first" || got[2].Description != "third" {
		t.Fatalf("equal timestamps must keep insertion order, got %+v", got)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	in := []Entry{
		{Description: "b", Timestamp: at(2)},
		{Description: "a", Timestamp: at(1)},
	}
	Merge(in)
	if in[0].Description != "b" {
		t.Fatal("input slice must not be reordered")
	}
}

func TestGoalTimelineSynthesizesFromFields(t *testing.T) {
	achieved := at(10)
	g := &goal.Goal{
		ID:          "g1",
		Title:       "Close five deals",
		AssignedAt:  at(1),
		AchievedAt:  &achieved,
		UserComment: "done",
		Status:      goal.StatusAchieved,
	}

	got := GoalTimeline(g, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 synthesized entries, got %d", len(got))
	}
	for _, e := range got {
		if !e.Synthesized {
			t.Fatalf("expected synthesized, got %+v", e)
		}
	}
}

func TestGoalTimelineExplicitSuppressesSynthesis(t *testing.T) {
	achieved := at(10)
	g := &goal.Goal{ID: "g1", AssignedAt: at(1), AchievedAt: &achieved}
	log := []Entry{
		{EntityID: "g1", Kind: KindGoalAssigned, Timestamp: at(1)},
		{EntityID: "g1", Kind: KindGoalAchieved, Timestamp: achieved},
	}

	got := GoalTimeline(g, log)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(got), got)
	}
	for _, e := range got {
		if e.Synthesized {
			t.Fatalf("explicit log must win over synthesis: %+v", e)
		}
	}
}

func TestGoalTimelineRejection(t *testing.T) {
	rejected := at(8)
	g := &goal.Goal{ID: "g1", AssignedAt: at(1), RejectedAt: &rejected, Status: goal.StatusRejected}

	got := GoalTimeline(g, nil)
	if len(got) != 2 {
		t.Fatalf("expected assigned + rejected, got %d", len(got))
	}
	if got[1].Kind != KindGoalRejected {
		t.Fatalf("expected rejection last, got %s", got[1].Kind)
	}
}

func TestTaskTimelineSynthesizesEmbeddedGoals(t *testing.T) {
	added := at(2)
	achieved := at(5)
	tk := &task.Task{
		ID: "t1",
		Goals: []task.EmbeddedGoal{
			{ID: "eg1", Text: "runbook", CreatedAt: &added, AchievedAt: &achieved},
		},
	}

	got := TaskTimeline(tk, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Kind != KindGoalAdded || got[1].Kind != KindGoalToggled {
		t.Fatalf("unexpected kinds: %+v", got)
	}
}

func TestTaskTimelineExplicitLogSuppressesGoalSynthesis(t *testing.T) {
	added := at(2)
	tk := &task.Task{
		ID:    "t1",
		Goals: []task.EmbeddedGoal{{ID: "eg1", Text: "runbook", CreatedAt: &added}},
	}
	log := []Entry{{EntityID: "t1", Kind: KindGoalAdded, Timestamp: added}}

	got := TaskTimeline(tk, log)
	if len(got) != 1 {
		t.Fatalf("expected only the explicit entry, got %d", len(got))
	}
}

func TestTaskTimelineCompletionFallback(t *testing.T) {
	done := at(20)
	tk := &task.Task{ID: "t1", Status: task.StatusCompleted, CompletedAt: &done}

	got := TaskTimeline(tk, nil)
	if len(got) != 1 || got[0].Kind != KindStatusChanged || !got[0].Synthesized {
		t.Fatalf("expected synthesized completion entry, got %+v", got)
	}
}
