package activity

import (
	"fmt"
	"time"

	"github.com/worklane/worklane/internal/domain/goal"
	"github.com/worklane/worklane/internal/domain/task"
)

// GoalTimeline merges a goal's explicit activity log with entries synthesized
// from its timestamp and comment fields. Synthesis is a fallback for legacy
// records written before the append-only log existed: a field-derived entry
// is emitted only when no explicit entry covers the same logical event.
func GoalTimeline(g *goal.Goal, log []Entry) []Entry {
	entries := make([]Entry, 0, len(log)+5)
	entries = append(entries, log...)

	synth := func(kind Kind, ts *time.Time, description string) {
		if hasKind(log, kind) {
			return
		}
		e := Entry{
			EntityType:  EntityGoal,
			EntityID:    g.ID,
			Kind:        kind,
			Description: description,
			Synthesized: true,
		}
		if ts != nil {
			e.Timestamp = *ts
		}
		entries = append(entries, e)
	}

	assignedAt := g.AssignedAt
	synth(KindGoalAssigned, &assignedAt, fmt.Sprintf("Goal %q assigned", g.Title))
	if g.AchievedAt != nil {
		synth(KindGoalAchieved, g.AchievedAt, "Goal marked achieved")
	}
	if g.RejectedAt != nil {
		synth(KindGoalRejected, g.RejectedAt, "Goal rejected")
	}
	if g.UserComment != "" {
		synth(KindUserComment, nil, "User comment added")
	}
	if g.ManagerComment != "" {
		synth(KindManagerComment, nil, "Manager comment added")
	}

	return Merge(entries)
}

// TaskTimeline merges a task's explicit activity log with entries synthesized
// from its embedded goal stamps and completion time.
func TaskTimeline(t *task.Task, log []Entry) []Entry {
	entries := make([]Entry, 0, len(log)+len(t.Goals)+1)
	entries = append(entries, log...)

	if t.CompletedAt != nil && !hasKind(log, KindReviewAccepted) && !hasKind(log, KindStatusChanged) {
		entries = append(entries, Entry{
			EntityType:  EntityTask,
			EntityID:    t.ID,
			Kind:        KindStatusChanged,
			Description: "Task completed",
			Timestamp:   *t.CompletedAt,
			Synthesized: true,
		})
	}

	if !hasKind(log, KindGoalAdded) && !hasKind(log, KindGoalToggled) {
		for _, g := range t.Goals {
			if g.CreatedAt != nil {
				entries = append(entries, Entry{
					EntityType:  EntityTask,
					EntityID:    t.ID,
					Kind:        KindGoalAdded,
					Description: fmt.Sprintf("Goal %q added", g.Text),
					ActorID:     g.CreatedBy,
					ActorName:   g.CreatedByName,
					Timestamp:   *g.CreatedAt,
					Synthesized: true,
				})
			}
			if g.AchievedAt != nil {
				entries = append(entries, Entry{
					EntityType:  EntityTask,
					EntityID:    t.ID,
					Kind:        KindGoalToggled,
					Description: fmt.Sprintf("Goal %q achieved", g.Text),
					ActorID:     g.AchievedBy,
					Timestamp:   *g.AchievedAt,
					Synthesized: true,
				})
			}
		}
	}

	return Merge(entries)
}
