package service

import (
	"context"
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

// TaskService manages the task records themselves: creation, listing,
// priority, comments and deletion. Status moves live in StatusService.
type TaskService struct {
	store  database.Store
	access access.Checker
	rec    recorder
}

// NewTaskService creates a new TaskService.
func NewTaskService(store database.Store, checker access.Checker, events eventstore.Store, queue messagequeue.Queue, hub broadcast.Broadcaster) *TaskService {
	return &TaskService{
		store:  store,
		access: checker,
		rec:    recorder{events: events, queue: queue, hub: hub},
	}
}

// taskEvent is the payload published for task create/delete and comments.
type taskEvent struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	CommentID string `json:"comment_id,omitempty"`
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name,omitempty"`
}

// Create stores a new task in not_started with the actor as creator.
func (s *TaskService) Create(ctx context.Context, actor *user.User, req task.CreateRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}

	now := time.Now().UTC()
	t := &task.Task{
		ID:              uuid.NewString(),
		ProjectID:       req.ProjectID,
		GroupID:         req.GroupID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Status:          task.StatusNotStarted,
		Priority:        priority,
		AssignedBy:      actor.ID,
		AssigneeIDs:     req.AssigneeIDs,
		CollaboratorIDs: req.CollaboratorIDs,
		AssignedDate:    req.AssignedDate,
		DueDate:         req.DueDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, text := range req.Goals {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		t.Goals = append(t.Goals, task.EmbeddedGoal{
			ID:            uuid.NewString(),
			Text:          text,
			Status:        goal.StatusPending,
			CreatedBy:     actor.ID,
			CreatedByName: actor.Name,
			CreatedAt:     &now,
		})
	}

	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.rec.record(ctx, activity.EntityTask, t.ID, activity.KindTaskCreated,
		fmt.Sprintf("Task created by %s", actorName(actor)), actor)
	s.rec.publish(ctx, messagequeue.SubjectTaskCreated, taskEvent{
		TaskID: t.ID, ProjectID: t.ProjectID, Title: t.Title,
		ActorID: actor.ID, ActorName: actor.Name,
	})

	return t, nil
}

// Get returns one task by id.
func (s *TaskService) Get(ctx context.Context, id string) (*task.Task, error) {
	return s.store.GetTask(ctx, id)
}

// List returns the tasks of one project.
func (s *TaskService) List(ctx context.Context, projectID string) ([]task.Task, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("project_id is required: %w", domain.ErrValidation)
	}
	return s.store.ListTasks(ctx, projectID)
}

// ListMy returns the project's tasks where the actor is an assignee or
// collaborator.
func (s *TaskService) ListMy(ctx context.Context, actor *user.User, projectID string) ([]task.Task, error) {
	all, err := s.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	mine := make([]task.Task, 0, len(all))
	for _, t := range all {
		if t.IsAssignee(actor.ID) || t.IsCollaborator(actor.ID) {
			mine = append(mine, t)
		}
	}
	return mine, nil
}

// ListAssigned returns the project's tasks the actor created.
func (s *TaskService) ListAssigned(ctx context.Context, actor *user.User, projectID string) ([]task.Task, error) {
	all, err := s.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	assigned := make([]task.Task, 0, len(all))
	for _, t := range all {
		if t.AssignedBy == actor.ID {
			assigned = append(assigned, t)
		}
	}
	return assigned, nil
}

// UpdatePriority changes a task's priority.
func (s *TaskService) UpdatePriority(ctx context.Context, actor *user.User, taskID string, priority task.Priority) (*task.Task, error) {
	if !task.ValidPriorities[priority] {
		return nil, fmt.Errorf("invalid priority %q: %w", priority, domain.ErrValidation)
	}

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !s.access.CanEditTask(ctx, actor, t) {
		return nil, fmt.Errorf("user %s may not edit task %s: %w", actor.ID, taskID, domain.ErrUnauthorized)
	}
	if t.Priority == priority {
		return t, nil
	}

	old := t.Priority
	t.Priority = priority
	t.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("update priority on task %s: %w", taskID, err)
	}

	s.rec.record(ctx, activity.EntityTask, t.ID, activity.KindPriorityChanged,
		fmt.Sprintf("Priority changed from %s to %s by %s", old, priority, actorName(actor)), actor)
	return t, nil
}

// Delete removes a task, its comments' parent references, and its activity
// log. Only the creator or an admin may delete.
func (s *TaskService) Delete(ctx context.Context, actor *user.User, taskID string) error {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.ID != t.AssignedBy {
		return fmt.Errorf("only the creator may delete task %s: %w", taskID, domain.ErrUnauthorized)
	}

	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	if err := s.rec.events.DeleteByEntity(ctx, activity.EntityTask, taskID); err != nil {
		return fmt.Errorf("drop activity log for task %s: %w", taskID, err)
	}

	s.rec.publish(ctx, messagequeue.SubjectTaskDeleted, taskEvent{
		TaskID: t.ID, ProjectID: t.ProjectID, Title: t.Title,
		ActorID: actor.ID, ActorName: actor.Name,
	})
	return nil
}

// AddComment appends a comment to a task. A reply's parent must be an
// existing comment on the same task.
func (s *TaskService) AddComment(ctx context.Context, actor *user.User, taskID string, req task.CommentCreate) (*task.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if req.ParentID != "" {
		parent, err := s.store.GetComment(ctx, req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent comment %s: %w", req.ParentID, err)
		}
		if parent.TaskID != taskID {
			return nil, fmt.Errorf("parent comment %s belongs to another task: %w", req.ParentID, domain.ErrValidation)
		}
	}

	c := &task.Comment{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		AuthorID:    actor.ID,
		AuthorName:  actor.Name,
		Content:     strings.TrimSpace(req.Content),
		Attachments: req.Attachments,
		ParentID:    req.ParentID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("comment on task %s: %w", taskID, err)
	}

	s.rec.record(ctx, activity.EntityTask, t.ID, activity.KindCommentAdded,
		fmt.Sprintf("Comment added by %s", actorName(actor)), actor)
	s.rec.publish(ctx, messagequeue.SubjectTaskCommentAdded, taskEvent{
		TaskID: t.ID, ProjectID: t.ProjectID, Title: t.Title, CommentID: c.ID,
		ActorID: actor.ID, ActorName: actor.Name,
	})

	return c, nil
}

// ListComments returns a task's comments in creation order.
func (s *TaskService) ListComments(ctx context.Context, taskID string) ([]task.Comment, error) {
	if _, err := s.store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, taskID)
}
