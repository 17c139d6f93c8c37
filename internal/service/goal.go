package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/activity"
	"github.com/worklane/worklane/internal/domain/goal"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/domain/user"
	"github.com/worklane/worklane/internal/port/access"
	"github.com/worklane/worklane/internal/port/broadcast"
	"github.com/worklane/worklane/internal/port/database"
	"github.com/worklane/worklane/internal/port/eventstore"
	"github.com/worklane/worklane/internal/port/messagequeue"
)

// GoalService runs the goal lifecycle for both standalone and task-embedded
// goals: assignment, achievement, rejection and the two comment slots.
type GoalService struct {
	store  database.Store
	access access.Checker
	rec    recorder
}

// NewGoalService creates a new GoalService.
func NewGoalService(store database.Store, checker access.Checker, events eventstore.Store, queue messagequeue.Queue, hub broadcast.Broadcaster) *GoalService {
	return &GoalService{
		store:  store,
		access: checker,
		rec:    recorder{events: events, queue: queue, hub: hub},
	}
}

// goalEvent is the payload published for standalone goal mutations.
type goalEvent struct {
	GoalID     string `json:"goal_id"`
	Title      string `json:"title"`
	AssignedTo string `json:"assigned_to"`
	AssignedBy string `json:"assigned_by"`
	Status     string `json:"status,omitempty"`
	Comment    string `json:"comment,omitempty"`
	ActorID    string `json:"actor_id"`
	ActorName  string `json:"actor_name,omitempty"`
}

// Create assigns a new standalone goal. The due period must resolve to a
// YYYY-MM target month, either directly or through a parseable target date.
func (s *GoalService) Create(ctx context.Context, actor *user.User, req goal.CreateRequest) (*goal.Goal, error) {
	date, month, err := req.Validate()
	if err != nil {
		return nil, err
	}

	assignee, err := s.store.GetUser(ctx, req.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("assignee %s: %w", req.AssignedTo, err)
	}

	priority := req.Priority
	if priority == "" {
		priority = goal.PriorityMedium
	}

	now := time.Now().UTC()
	g := &goal.Goal{
		ID:          uuid.NewString(),
		AssignedTo:  req.AssignedTo,
		AssignedBy:  actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		TargetDate:  date,
		TargetMonth: month,
		Priority:    priority,
		Status:      goal.StatusPending,
		AssignedAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	s.rec.record(ctx, activity.EntityGoal, g.ID, activity.KindGoalAssigned,
		fmt.Sprintf("Goal assigned to %s by %s", assignee.Name, actorName(actor)), actor)
	s.rec.publish(ctx, messagequeue.SubjectGoalAssigned, goalEvent{
		GoalID: g.ID, Title: g.Title, AssignedTo: g.AssignedTo, AssignedBy: g.AssignedBy,
		ActorID: actor.ID, ActorName: actor.Name,
	})

	return g, nil
}

// Get returns a goal the actor is allowed to view: the assignee, the
// assigner, or a manager/admin.
func (s *GoalService) Get(ctx context.Context, actor *user.User, id string) (*goal.Goal, error) {
	g, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewGoal(actor, g) {
		return nil, fmt.Errorf("user %s may not view goal %s: %w", actor.ID, id, domain.ErrUnauthorized)
	}
	return g, nil
}

// ListMy returns goals assigned to the actor, optionally filtered by status
// and target month.
func (s *GoalService) ListMy(ctx context.Context, actor *user.User, status goal.Status, month string) ([]goal.Goal, error) {
	return s.store.ListGoals(ctx, database.GoalFilter{
		AssignedTo: actor.ID,
		Status:     status,
		Month:      goal.NormalizeMonth(month),
	})
}

// ListAssigned returns goals the actor assigned to others.
func (s *GoalService) ListAssigned(ctx context.Context, actor *user.User, status goal.Status, month string) ([]goal.Goal, error) {
	return s.store.ListGoals(ctx, database.GoalFilter{
		AssignedBy: actor.ID,
		Status:     status,
		Month:      goal.NormalizeMonth(month),
	})
}

// MarkAchieved moves a pending goal to achieved. Only the assignee (or an
// admin) may achieve a standalone goal. A second call against an achieved
// goal is a no-op that keeps the original achievement stamp; a call against
// a rejected goal fails.
func (s *GoalService) MarkAchieved(ctx context.Context, actor *user.User, goalID, comment string) (*goal.Goal, bool, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, false, err
	}
	if !actor.IsAdmin() && actor.ID != g.AssignedTo {
		return nil, false, fmt.Errorf("only the assignee may achieve goal %s: %w", goalID, domain.ErrUnauthorized)
	}

	if g.Status == goal.StatusAchieved {
		return g, false, nil
	}
	if err := goal.Advance(goal.KindStandalone, g.Status, goal.StatusAchieved); err != nil {
		return nil, false, fmt.Errorf("achieve goal %s: %w", goalID, err)
	}

	now := time.Now().UTC()
	g.Status = goal.StatusAchieved
	g.AchievedAt = &now
	g.AchievedBy = actor.ID
	g.UpdatedAt = now

	comment = strings.TrimSpace(comment)
	commented := comment != "" && g.UserComment == ""
	if commented {
		g.UserComment = comment
	}

	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return nil, false, fmt.Errorf("achieve goal %s: %w", goalID, err)
	}

	s.rec.record(ctx, activity.EntityGoal, g.ID, activity.KindGoalAchieved,
		fmt.Sprintf("Goal marked achieved by %s", actorName(actor)), actor)
	if commented {
		s.rec.record(ctx, activity.EntityGoal, g.ID, activity.KindUserComment,
			fmt.Sprintf("User comment added by %s", actorName(actor)), actor)
	}
	s.rec.publish(ctx, messagequeue.SubjectGoalAchieved, goalEvent{
		GoalID: g.ID, Title: g.Title, AssignedTo: g.AssignedTo, AssignedBy: g.AssignedBy,
		Status: string(g.Status), Comment: comment,
		ActorID: actor.ID, ActorName: actor.Name,
	})

	return g, true, nil
}

// Reject moves a pending standalone goal to rejected with a mandatory
// reason. Only the assigner or a manager/admin may reject; an achieved goal
// can no longer be rejected.
func (s *GoalService) Reject(ctx context.Context, actor *user.User, goalID, reason string) (*goal.Goal, bool, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, false, fmt.Errorf("rejection reason is required: %w", domain.ErrValidation)
	}

	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, false, err
	}
	if !actor.IsManager() && actor.ID != g.AssignedBy {
		return nil, false, fmt.Errorf("only the assigner or a manager may reject goal %s: %w", goalID, domain.ErrUnauthorized)
	}

	if err := goal.Advance(goal.KindStandalone, g.Status, goal.StatusRejected); err != nil {
		if errors.Is(err, domain.ErrAlreadyTerminal) && g.Status == goal.StatusRejected {
			return g, false, nil
		}
		return nil, false, fmt.Errorf("reject goal %s: %w", goalID, err)
	}

	now := time.Now().UTC()
	g.Status = goal.StatusRejected
	g.RejectedAt = &now
	g.RejectionReason = reason
	g.UpdatedAt = now

	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return nil, false, fmt.Errorf("reject goal %s: %w", goalID, err)
	}

	s.rec.record(ctx, activity.EntityGoal, g.ID, activity.KindGoalRejected,
		fmt.Sprintf("Goal rejected by %s", actorName(actor)), actor)
	s.rec.publish(ctx, messagequeue.SubjectGoalRejected, goalEvent{
		GoalID: g.ID, Title: g.Title, AssignedTo: g.AssignedTo, AssignedBy: g.AssignedBy,
		Status: string(g.Status), Comment: reason,
		ActorID: actor.ID, ActorName: actor.Name,
	})

	return g, true, nil
}

// AddComment fills one of the goal's two comment slots. The user slot
// belongs to the assignee, the manager slot to the assigner (or a
// manager/admin). Each slot is set-once; comments may be attached in any
// goal state, including terminal ones.
func (s *GoalService) AddComment(ctx context.Context, actor *user.User, goalID, text string, kind goal.CommentKind) (*goal.Goal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment is required: %w", domain.ErrValidation)
	}

	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	var recordKind activity.Kind
	var slot string
	switch kind {
	case goal.CommentUser:
		if actor.ID != g.AssignedTo {
			return nil, fmt.Errorf("only the assignee may add the user comment: %w", domain.ErrUnauthorized)
		}
		if g.UserComment != "" {
			return nil, fmt.Errorf("goal %s: %w", goalID, domain.ErrAlreadyCommented)
		}
		g.UserComment = text
		recordKind = activity.KindUserComment
		slot = "User"
	case goal.CommentManager:
		if actor.ID != g.AssignedBy && !actor.IsManager() {
			return nil, fmt.Errorf("only the assigner or a manager may add the manager comment: %w", domain.ErrUnauthorized)
		}
		if g.ManagerComment != "" {
			return nil, fmt.Errorf("goal %s: %w", goalID, domain.ErrAlreadyCommented)
		}
		g.ManagerComment = text
		recordKind = activity.KindManagerComment
		slot = "Manager"
	default:
		return nil, fmt.Errorf("unknown comment kind %q: %w", kind, domain.ErrValidation)
	}

	g.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("comment on goal %s: %w", goalID, err)
	}

	s.rec.record(ctx, activity.EntityGoal, g.ID, recordKind,
		fmt.Sprintf("%s comment added by %s", slot, actorName(actor)), actor)
	s.rec.publish(ctx, messagequeue.SubjectGoalCommentAdded, goalEvent{
		GoalID: g.ID, Title: g.Title, AssignedTo: g.AssignedTo, AssignedBy: g.AssignedBy,
		Comment: text, ActorID: actor.ID, ActorName: actor.Name,
	})

	return g, nil
}

// Delete removes a standalone goal and its activity log. Only the assigner
// or an admin may delete.
func (s *GoalService) Delete(ctx context.Context, actor *user.User, goalID string) error {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.ID != g.AssignedBy {
		return fmt.Errorf("only the assigner may delete goal %s: %w", goalID, domain.ErrUnauthorized)
	}

	if err := s.store.DeleteGoal(ctx, goalID); err != nil {
		return err
	}
	if err := s.rec.events.DeleteByEntity(ctx, activity.EntityGoal, goalID); err != nil {
		return fmt.Errorf("drop activity log for goal %s: %w", goalID, err)
	}

	s.rec.publish(ctx, messagequeue.SubjectGoalDeleted, goalEvent{
		GoalID: g.ID, Title: g.Title, AssignedTo: g.AssignedTo, AssignedBy: g.AssignedBy,
		ActorID: actor.ID, ActorName: actor.Name,
	})
	return nil
}

// AddTaskGoal appends an embedded goal line to a task.
func (s *GoalService) AddTaskGoal(ctx context.Context, actor *user.User, taskID, text string) (*task.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("goal text is required: %w", domain.ErrValidation)
	}

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !s.access.CanManageGoals(ctx, actor, t) {
		return nil, fmt.Errorf("user %s may not manage goals on task %s: %w", actor.ID, taskID, domain.ErrUnauthorized)
	}

	now := time.Now().UTC()
	t.Goals = append(t.Goals, task.EmbeddedGoal{
		ID:            uuid.NewString(),
		Text:          text,
		Status:        goal.StatusPending,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
		CreatedAt:     &now,
	})
	t.UpdatedAt = now

	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("add goal to task %s: %w", taskID, err)
	}

	s.rec.record(ctx, activity.EntityTask, t.ID, activity.KindGoalAdded,
		fmt.Sprintf("Goal %q added by %s", text, actorName(actor)), actor)
	return t, nil
}

// ToggleTaskGoal marks an embedded goal achieved. Embedded goals share the
// standalone lifecycle minus the rejection arm: achieving is idempotent and
// an achieved goal cannot be reopened.
func (s *GoalService) ToggleTaskGoal(ctx context.Context, actor *user.User, taskID, goalID string, achieved bool) (*task.Task, bool, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, false, err
	}
	if !s.access.CanManageGoals(ctx, actor, t) {
		return nil, false, fmt.Errorf("user %s may not manage goals on task %s: %w", actor.ID, taskID, domain.ErrUnauthorized)
	}

	g := t.FindGoal(goalID)
	if g == nil {
		return nil, false, fmt.Errorf("goal %s on task %s: %w", goalID, taskID, domain.ErrNotFound)
	}

	target := goal.StatusPending
	if achieved {
		target = goal.StatusAchieved
	}
	if g.Status == target {
		return t, false, nil
	}
	if err := goal.Advance(goal.KindEmbedded, g.Status, target); err != nil {
		return nil, false, fmt.Errorf("toggle goal %s on task %s: %w", goalID, taskID, err)
	}

	now := time.Now().UTC()
	g.Status = goal.StatusAchieved
	g.AchievedAt = &now
	g.AchievedBy = actor.ID
	t.UpdatedAt = now

	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, false, fmt.Errorf("toggle goal %s on task %s: %w", goalID, taskID, err)
	}

	s.rec.record(ctx, activity.EntityTask, t.ID, activity.KindGoalToggled,
		fmt.Sprintf("Goal %q achieved by %s", g.Text, actorName(actor)), actor)
	return t, true, nil
}

// canViewGoal reports whether the actor may read the goal.
func canViewGoal(u *user.User, g *goal.Goal) bool {
	if u == nil {
		return false
	}
	return u.IsManager() || u.ID == g.AssignedTo || u.ID == g.AssignedBy
}
