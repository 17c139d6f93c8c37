package service

import (
	"context"
	"time"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/activity"
	"github.com/worklane/worklane/internal/domain/goal"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/domain/user"
	"github.com/worklane/worklane/internal/port/database"
	"github.com/worklane/worklane/internal/port/eventstore"
	"github.com/worklane/worklane/internal/port/messagequeue"
)

// Ensure the mocks implement their ports at compile time.
var (
	_ database.Store     = (*mockStore)(nil)
	_ eventstore.Store   = (*mockEvents)(nil)
	_ messagequeue.Queue = (*mockQueue)(nil)
)

// mockStore is a minimal in-memory implementation of database.Store for testing.
type mockStore struct {
	tasks    []task.Task
	comments []task.Comment
	goals    []goal.Goal
	users    []user.User

	// Error hooks — set these to inject failures.
	getTaskErr    error
	updateTaskErr error
	getGoalErr    error
	updateGoalErr error
	listGoalsErr  error
}

func (m *mockStore) ListTasks(_ context.Context, projectID string) ([]task.Task, error) {
	out := make([]task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStore) GetTask(_ context.Context, id string) (*task.Task, error) {
	if m.getTaskErr != nil {
		return nil, m.getTaskErr
	}
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			t := m.tasks[i]
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateTask(_ context.Context, t *task.Task) error {
	m.tasks = append(m.tasks, *t)
	return nil
}

func (m *mockStore) UpdateTask(_ context.Context, t *task.Task) error {
	if m.updateTaskErr != nil {
		return m.updateTaskErr
	}
	for i := range m.tasks {
		if m.tasks[i].ID == t.ID {
			if m.tasks[i].Version != t.Version {
				return domain.ErrConflict
			}
			t.Version++
			m.tasks[i] = *t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteTask(_ context.Context, id string) error {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) ListComments(_ context.Context, taskID string) ([]task.Comment, error) {
	out := make([]task.Comment, 0, len(m.comments))
	for _, c := range m.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStore) GetComment(_ context.Context, id string) (*task.Comment, error) {
	for i := range m.comments {
		if m.comments[i].ID == id {
			c := m.comments[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateComment(_ context.Context, c *task.Comment) error {
	m.comments = append(m.comments, *c)
	return nil
}

func (m *mockStore) ListGoals(_ context.Context, filter database.GoalFilter) ([]goal.Goal, error) {
	if m.listGoalsErr != nil {
		return nil, m.listGoalsErr
	}
	out := make([]goal.Goal, 0, len(m.goals))
	for _, g := range m.goals {
		if filter.AssignedTo != "" && g.AssignedTo != filter.AssignedTo {
			continue
		}
		if filter.AssignedBy != "" && g.AssignedBy != filter.AssignedBy {
			continue
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		if filter.Month != "" && g.TargetMonth != filter.Month {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (m *mockStore) GetGoal(_ context.Context, id string) (*goal.Goal, error) {
	if m.getGoalErr != nil {
		return nil, m.getGoalErr
	}
	for i := range m.goals {
		if m.goals[i].ID == id {
			g := m.goals[i]
			return &g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateGoal(_ context.Context, g *goal.Goal) error {
	m.goals = append(m.goals, *g)
	return nil
}

func (m *mockStore) UpdateGoal(_ context.Context, g *goal.Goal) error {
	if m.updateGoalErr != nil {
		return m.updateGoalErr
	}
	for i := range m.goals {
		if m.goals[i].ID == g.ID {
			if m.goals[i].Version != g.Version {
				return domain.ErrConflict
			}
			g.Version++
			m.goals[i] = *g
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteGoal(_ context.Context, id string) error {
	for i := range m.goals {
		if m.goals[i].ID == id {
			m.goals = append(m.goals[:i], m.goals[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockEvents is an in-memory append-only activity log.
type mockEvents struct {
	entries []activity.Entry

	appendErr error
	loadErr   error
}

func (m *mockEvents) Append(_ context.Context, e *activity.Entry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	e.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockEvents) LoadByEntity(_ context.Context, entityType activity.EntityType, entityID string) ([]activity.Entry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]activity.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEvents) DeleteByEntity(_ context.Context, entityType activity.EntityType, entityID string) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.EntityType != entityType || e.EntityID != entityID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// mockQueue records published subjects.
type mockQueue struct {
	published []string
}

func (m *mockQueue) Publish(_ context.Context, subject string, _ []byte) error {
	m.published = append(m.published, subject)
	return nil
}

func (m *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (m *mockQueue) Close() error { return nil }

// mockHub records broadcast event types.
type mockHub struct {
	events []string
}

func (m *mockHub) BroadcastEvent(_ context.Context, eventType string, _ any) {
	m.events = append(m.events, eventType)
}

// mockCache is an in-memory cache.Cache without TTL expiry.
type mockCache struct {
	data map[string][]byte
	sets int
	hits int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	if ok {
		m.hits++
	}
	return v, ok, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// Test fixtures shared across the service tests.
var (
	alice   = &user.User{ID: "u-alice", Name: "Alice", Role: user.RoleUser}
	bob     = &user.User{ID: "u-bob", Name: "Bob", Role: user.RoleUser}
	carol   = &user.User{ID: "u-carol", Name: "Carol", Role: user.RoleManager}
	outside = &user.User{ID: "u-out", Name: "Outsider", Role: user.RoleUser}
)
