// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/worklane/worklane/internal/domain/goal"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/domain/user"
)

// GoalFilter narrows goal listings. Zero values mean no filtering.
type GoalFilter struct {
	AssignedTo string
	AssignedBy string
	Status     goal.Status
	Month      string
}

// Store is the port interface for database operations.
//
// UpdateTask and UpdateGoal perform optimistic version checks: the write
// succeeds only when the stored version matches the entity's version, and
// reports domain.ErrConflict otherwise. This serializes concurrent state
// changes against the same entity.
type Store interface {
	// Tasks
	ListTasks(ctx context.Context, projectID string) ([]task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	CreateTask(ctx context.Context, t *task.Task) error
	UpdateTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, id string) error

	// Task comments
	ListComments(ctx context.Context, taskID string) ([]task.Comment, error)
	GetComment(ctx context.Context, id string) (*task.Comment, error)
	CreateComment(ctx context.Context, c *task.Comment) error

	// Standalone goals
	ListGoals(ctx context.Context, filter GoalFilter) ([]goal.Goal, error)
	GetGoal(ctx context.Context, id string) (*goal.Goal, error)
	CreateGoal(ctx context.Context, g *goal.Goal) error
	UpdateGoal(ctx context.Context, g *goal.Goal) error
	DeleteGoal(ctx context.Context, id string) error

	// Users (read-only mirror maintained by the account collaborator)
	GetUser(ctx context.Context, id string) (*user.User, error)
}
