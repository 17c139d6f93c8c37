// Package activity defines immutable activity entries and the timeline
// builder that reconstructs a single ordered feed per task or goal.
package activity

import (
	"sort"
	"time"
)

// EntityType identifies which entity an entry belongs to.
type EntityType string

const (
	EntityTask EntityType = "task"
	EntityGoal EntityType = "goal"
)

// Kind tags the logical event an entry describes. The timeline builder uses
// it to suppress field-derived synthesis when an explicit entry already
// covers the same event.
type Kind string

const (
	KindTaskCreated     Kind = "task.created"
	KindStatusChanged   Kind = "task.status_changed"
	KindPriorityChanged Kind = "task.priority_changed"
	KindReviewAccepted  Kind = "task.review_accepted"
	KindReviewDeclined  Kind = "task.review_declined"
	KindCommentAdded    Kind = "task.comment_added"
	KindGoalAdded       Kind = "task.goal_added"
	KindGoalToggled     Kind = "task.goal_toggled"

	KindGoalAssigned   Kind = "goal.assigned"
	KindGoalAchieved   Kind = "goal.achieved"
	KindGoalRejected   Kind = "goal.rejected"
	KindUserComment    Kind = "goal.user_comment"
	KindManagerComment Kind = "goal.manager_comment"
)

// Entry is one immutable, timestamped description of a single mutation.
type Entry struct {
	ID          int64      `json:"id,omitempty"`
	EntityType  EntityType `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	Kind        Kind       `json:"kind"`
	Description string     `json:"description"`
	ActorID     string     `json:"actor_id,omitempty"`
	ActorName   string     `json:"actor_name,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`

	// Synthesized marks a read-time fallback entry derived from entity
	// fields rather than the append-only log.
	Synthesized bool `json:"synthesized,omitempty"`
}

// Merge orders entries ascending by timestamp. Entries with a zero timestamp
// sort first (epoch zero) rather than being dropped; entries with equal
// timestamps keep their insertion order.
func Merge(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// hasKind reports whether any explicit entry carries the given kind.
func hasKind(entries []Entry, kind Kind) bool {
	for _, e := range entries {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
