// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Close shuts down the queue connection.
	Close() error
}

// Subject constants for domain events published by Worklane. Notification
// delivery, AI summaries and other cross-entity side effects subscribe here;
// a failed publish never rolls back the already-committed state change.
const (
	SubjectTaskCreated       = "tasks.created"
	SubjectTaskStatusChanged = "tasks.status_changed"
	SubjectTaskReviewDecided = "tasks.review_decided"
	SubjectTaskCommentAdded  = "tasks.comment_added"
	SubjectTaskDeleted       = "tasks.deleted"

	SubjectGoalAssigned     = "goals.assigned"
	SubjectGoalAchieved     = "goals.achieved"
	SubjectGoalRejected     = "goals.rejected"
	SubjectGoalCommentAdded = "goals.comment_added"
	SubjectGoalDeleted      = "goals.deleted"
)
