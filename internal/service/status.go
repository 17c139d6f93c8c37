package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/activity"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/domain/user"
	"github.com/worklane/worklane/internal/port/access"
	"github.com/worklane/worklane/internal/port/broadcast"
	"github.com/worklane/worklane/internal/port/database"
	"github.com/worklane/worklane/internal/port/eventstore"
	"github.com/worklane/worklane/internal/port/messagequeue"
)

// StatusService applies task status transitions and review decisions.
type StatusService struct {
	store  database.Store
	access access.Checker
	rec    recorder
}

// NewStatusService creates a new StatusService.
func NewStatusService(store database.Store, checker access.Checker, events eventstore.Store, queue messagequeue.Queue, hub broadcast.Broadcaster) *StatusService {
	return &StatusService{
		store:  store,
		access: checker,
		rec:    recorder{events: events, queue: queue, hub: hub},
	}
}

// statusEvent is the payload published for status changes and review decisions.
type statusEvent struct {
	TaskID    string      `json:"task_id"`
	ProjectID string      `json:"project_id"`
	Title     string      `json:"title"`
	OldStatus task.Status `json:"old_status"`
	NewStatus task.Status `json:"new_status"`
	Decision  string      `json:"decision,omitempty"`
	ActorID   string      `json:"actor_id"`
	ActorName string      `json:"actor_name,omitempty"`
}

// Transition applies an ordinary status move. It returns the task and
// whether anything changed: a transition against a completed task and a
// same-status call are both no-ops, reported with changed == false.
func (s *StatusService) Transition(ctx context.Context, actor *user.User, taskID string, target task.Status) (*task.Task, bool, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, false, err
	}

	if !s.access.CanEditTask(ctx, actor, t) {
		return nil, false, fmt.Errorf("user %s may not edit task %s: %w", actor.ID, taskID, domain.ErrUnauthorized)
	}

	if err := task.CheckTransition(t.Status, target); err != nil {
		if errors.Is(err, domain.ErrAlreadyTerminal) {
			return t, false, nil
		}
		return nil, false, err
	}
	if t.Status == target {
		return t, false, nil
	}

	old := t.Status
	t.Status = target
	t.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, false, fmt.Errorf("transition task %s from %s to %s: %w", taskID, old, target, err)
	}

	s.rec.record(ctx, activity.EntityTask, t.ID, activity.KindStatusChanged,
		fmt.Sprintf("Status changed from %s to %s by %s", old, target, actorName(actor)), actor)
	s.rec.publish(ctx, messagequeue.SubjectTaskStatusChanged, statusEvent{
		TaskID: t.ID, ProjectID: t.ProjectID, Title: t.Title,
		OldStatus: old, NewStatus: target,
		ActorID: actor.ID, ActorName: actor.Name,
	})

	return t, true, nil
}

// ReviewDecision resolves a task in review. Accept completes the task;
// decline returns it to in_progress. Only the reviewer set (task creator or
// a manager/admin) may decide.
func (s *StatusService) ReviewDecision(ctx context.Context, actor *user.User, taskID string, decision task.ReviewDecision) (*task.Task, bool, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, false, err
	}

	if t.Status == task.StatusCompleted {
		return t, false, nil
	}
	if t.Status != task.StatusReview {
		return nil, false, fmt.Errorf("task %s is %s, not in review: %w", taskID, t.Status, domain.ErrInvalidTransition)
	}
	if !t.CanReview(actor) {
		return nil, false, fmt.Errorf("user %s is not in the reviewer set of task %s: %w", actor.ID, taskID, domain.ErrUnauthorized)
	}

	old := t.Status
	now := time.Now().UTC()
	var kind activity.Kind
	var description string

	switch decision {
	case task.DecisionAccept:
		t.Status = task.StatusCompleted
		t.CompletedAt = &now
		kind = activity.KindReviewAccepted
		description = fmt.Sprintf("Review accepted by %s, task completed", actorName(actor))
	case task.DecisionDecline:
		t.Status = task.StatusInProgress
		kind = activity.KindReviewDeclined
		description = fmt.Sprintf("Review declined by %s, work resumed", actorName(actor))
	default:
		return nil, false, fmt.Errorf("unknown review decision %q: %w", decision, domain.ErrValidation)
	}

	t.UpdatedAt = now
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, false, fmt.Errorf("review decision %s on task %s: %w", decision, taskID, err)
	}

	s.rec.record(ctx, activity.EntityTask, t.ID, kind, description, actor)
	s.rec.publish(ctx, messagequeue.SubjectTaskReviewDecided, statusEvent{
		TaskID: t.ID, ProjectID: t.ProjectID, Title: t.Title,
		OldStatus: old, NewStatus: t.Status, Decision: string(decision),
		ActorID: actor.ID, ActorName: actor.Name,
	})

	return t, true, nil
}

// actorName returns a display name for activity descriptions.
func actorName(u *user.User) string {
	if u == nil {
		return "Unknown"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}
