// Package access defines the capability-check port supplied by the external
// access-grant collaborator.
package access

import (
	"context"

	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/domain/user"
)

// Checker answers capability questions for the acting user. The engines
// consume it as an opaque predicate; group/category grant storage lives
// outside this service.
type Checker interface {
	// CanEditTask reports whether u may progress the task's status.
	CanEditTask(ctx context.Context, u *user.User, t *task.Task) bool

	// CanManageGoals reports whether u may add or toggle the task's
	// embedded goals.
	CanManageGoals(ctx context.Context, u *user.User, t *task.Task) bool
}

// Default implements Checker from task ownership alone: assignees and the
// task creator may edit and manage goals, collaborators may not, and
// manager/admin roles bypass ownership.
type Default struct{}

func (Default) CanEditTask(_ context.Context, u *user.User, t *task.Task) bool {
	if u == nil || t == nil {
		return false
	}
	return u.IsManager() || u.ID == t.AssignedBy || t.IsAssignee(u.ID)
}

func (Default) CanManageGoals(_ context.Context, u *user.User, t *task.Task) bool {
	if u == nil || t == nil {
		return false
	}
	return u.IsManager() || u.ID == t.AssignedBy || t.IsAssignee(u.ID)
}
