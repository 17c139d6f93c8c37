// Package task defines the Task entity and its status transition rules.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/goal"
	"github.com/worklane/worklane/internal/domain/user"
)

// Status represents the current state of a task.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusHold       Status = "hold"
	StatusReview     Status = "review"
	StatusCompleted  Status = "completed"
)

// statusOrder is the required forward order of task statuses.
var statusOrder = map[Status]int{
	StatusNotStarted: 0,
	StatusInProgress: 1,
	StatusHold:       2,
	StatusReview:     3,
	StatusCompleted:  4,
}

// statusAliases maps accepted input spellings onto canonical statuses.
var statusAliases = map[string]Status{
	"not_started": StatusNotStarted,
	"in_progress": StatusInProgress,
	"hold":        StatusHold,
	"on_hold":     StatusHold,
	"review":      StatusReview,
	"completed":   StatusCompleted,
}

// NormalizeStatus resolves an input string to a canonical status.
func NormalizeStatus(value string) (Status, bool) {
	s, ok := statusAliases[strings.ToLower(strings.TrimSpace(value))]
	return s, ok
}

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriorities is the set of accepted task priorities.
var ValidPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// EmbeddedGoal is a goal line owned exclusively by its parent task. It shares
// the goal lifecycle but has no rejection arm and no independent assignment.
type EmbeddedGoal struct {
	ID            string      `json:"id"`
	Text          string      `json:"text"`
	Status        goal.Status `json:"status"`
	CreatedBy     string      `json:"created_by,omitempty"`
	CreatedByName string      `json:"created_by_name,omitempty"`
	CreatedAt     *time.Time  `json:"created_at,omitempty"`
	AchievedBy    string      `json:"achieved_by,omitempty"`
	AchievedAt    *time.Time  `json:"achieved_at,omitempty"`
}

// Task represents one work item inside a project.
type Task struct {
	ID              string         `json:"id"`
	ProjectID       string         `json:"project_id"`
	GroupID         string         `json:"group_id,omitempty"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Status          Status         `json:"status"`
	Priority        Priority       `json:"priority"`
	AssignedBy      string         `json:"assigned_by"`
	AssigneeIDs     []string       `json:"assignee_ids"`
	CollaboratorIDs []string       `json:"collaborator_ids"`
	Goals           []EmbeddedGoal `json:"goals"`
	AssignedDate    *time.Time     `json:"assigned_date,omitempty"`
	DueDate         *time.Time     `json:"due_date,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	Version         int            `json:"version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CreateRequest holds the fields needed to create a new task.
type CreateRequest struct {
	ProjectID       string     `json:"project_id"`
	GroupID         string     `json:"group_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Priority        Priority   `json:"priority,omitempty"`
	AssigneeIDs     []string   `json:"assignee_ids,omitempty"`
	CollaboratorIDs []string   `json:"collaborator_ids,omitempty"`
	AssignedDate    *time.Time `json:"assigned_date,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	Goals           []string   `json:"goals,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.ProjectID) == "" {
		return fmt.Errorf("project_id is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if r.Priority != "" && !ValidPriorities[r.Priority] {
		return fmt.Errorf("invalid priority %q: %w", r.Priority, domain.ErrValidation)
	}
	return nil
}

// CheckTransition validates an ordinary (non-review) status move.
//
// Ordinary moves may only go forward in the status order. A task in review is
// frozen until a review decision resolves it, and completed is reachable only
// through an accepted review.
func CheckTransition(current, target Status) error {
	if _, ok := statusOrder[target]; !ok {
		return fmt.Errorf("unknown status %q: %w", target, domain.ErrValidation)
	}
	if current == StatusCompleted {
		return fmt.Errorf("task is completed: %w", domain.ErrAlreadyTerminal)
	}
	if current == StatusReview {
		return fmt.Errorf("task is in review, awaiting a review decision: %w", domain.ErrInvalidTransition)
	}
	if target == StatusCompleted {
		return fmt.Errorf("completed is only reachable through an accepted review: %w", domain.ErrInvalidTransition)
	}
	if statusOrder[target] < statusOrder[current] {
		return fmt.Errorf("cannot move task back from %s to %s: %w", current, target, domain.ErrInvalidTransition)
	}
	return nil
}

// ReviewDecision resolves a task in review.
type ReviewDecision string

const (
	DecisionAccept  ReviewDecision = "accept"
	DecisionDecline ReviewDecision = "decline"
)

// CanReview reports whether u belongs to the task's reviewer set: the task
// creator, or any manager/admin-role user.
func (t *Task) CanReview(u *user.User) bool {
	if u == nil {
		return false
	}
	return u.ID == t.AssignedBy || u.IsManager()
}

// IsAssignee reports whether the given user id is in the task's assignee set.
func (t *Task) IsAssignee(id string) bool {
	for _, a := range t.AssigneeIDs {
		if a == id {
			return true
		}
	}
	return false
}

// IsCollaborator reports whether the given user id is in the collaborator set.
func (t *Task) IsCollaborator(id string) bool {
	for _, c := range t.CollaboratorIDs {
		if c == id {
			return true
		}
	}
	return false
}

// FindGoal returns the embedded goal with the given id, or nil.
func (t *Task) FindGoal(goalID string) *EmbeddedGoal {
	for i := range t.Goals {
		if t.Goals[i].ID == goalID {
			return &t.Goals[i]
		}
	}
	return nil
}
