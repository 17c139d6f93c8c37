package service

import (
	"context"
	"errors"
	"testing"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/activity"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/port/access"
)

func newTaskFixture(tasks ...task.Task) (*TaskService, *mockStore, *mockEvents, *mockQueue) {
	store := &mockStore{tasks: tasks}
	events := &mockEvents{}
	queue := &mockQueue{}
	svc := NewTaskService(store, access.Default{}, events, queue, &mockHub{})
	return svc, store, events, queue
}

func TestTaskCreate(t *testing.T) {
	svc, store, events, queue := newTaskFixture()

	got, err := svc.Create(context.Background(), bob, task.CreateRequest{
		ProjectID:   "p1",
		Title:       "Ship the importer",
		AssigneeIDs: []string{alice.ID},
		Goals:       []string{"write the runbook", "  "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != task.StatusNotStarted {
		t.Fatalf("expected not_started, got %s", got.Status)
	}
	if got.Priority != task.PriorityMedium {
		t.Fatalf("expected default medium priority, got %s", got.Priority)
	}
	if got.AssignedBy != bob.ID {
		t.Fatalf("expected creator %s, got %s", bob.ID, got.AssignedBy)
	}
	// Blank goal lines are dropped.
	if len(got.Goals) != 1 || got.Goals[0].Text != "write the runbook" {
		t.Fatalf("expected one embedded goal, got %+v", got.Goals)
	}
	if len(store.tasks) != 1 {
		t.Fatalf("expected 1 task in store, got %d", len(store.tasks))
	}
	if len(events.entries) != 1 || events.entries[0].Kind != activity.KindTaskCreated {
		t.Fatalf("expected task.created entry, got %+v", events.entries)
	}
	if queue.published[0] != "tasks.created" {
		t.Fatalf("expected tasks.created publish, got %v", queue.published)
	}
}

func TestTaskCreateValidation(t *testing.T) {
	svc, _, _, _ := newTaskFixture()

	_, err := svc.Create(context.Background(), bob, task.CreateRequest{ProjectID: "p1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing title, got %v", err)
	}
}

func TestTaskListMy(t *testing.T) {
	mine := seedTask(task.StatusInProgress)
	other := seedTask(task.StatusInProgress)
	other.ID = "t2"
	other.AssigneeIDs = []string{"u-someone"}
	svc, _, _, _ := newTaskFixture(mine, other)

	got, err := svc.ListMy(context.Background(), alice, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("expected only t1, got %+v", got)
	}
}

func TestTaskListAssigned(t *testing.T) {
	byBob := seedTask(task.StatusInProgress)
	byCarol := seedTask(task.StatusInProgress)
	byCarol.ID = "t2"
	byCarol.AssignedBy = carol.ID
	svc, _, _, _ := newTaskFixture(byBob, byCarol)

	got, err := svc.ListAssigned(context.Background(), bob, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("expected only t1, got %+v", got)
	}
}

func TestTaskUpdatePriority(t *testing.T) {
	svc, _, events, _ := newTaskFixture(seedTask(task.StatusInProgress))

	got, err := svc.UpdatePriority(context.Background(), alice, "t1", task.PriorityHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Priority != task.PriorityHigh {
		t.Fatalf("expected high, got %s", got.Priority)
	}
	if len(events.entries) != 1 || events.entries[0].Kind != activity.KindPriorityChanged {
		t.Fatalf("expected priority_changed entry, got %+v", events.entries)
	}
}

func TestTaskUpdatePriorityInvalid(t *testing.T) {
	svc, _, _, _ := newTaskFixture(seedTask(task.StatusInProgress))

	_, err := svc.UpdatePriority(context.Background(), alice, "t1", task.Priority("urgent"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTaskUpdatePrioritySameNoOp(t *testing.T) {
	svc, _, events, _ := newTaskFixture(seedTask(task.StatusInProgress))

	_, err := svc.UpdatePriority(context.Background(), alice, "t1", task.PriorityMedium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events.entries) != 0 {
		t.Fatal("same-priority update must not record activity")
	}
}

func TestTaskUpdatePriorityUnauthorized(t *testing.T) {
	svc, _, _, _ := newTaskFixture(seedTask(task.StatusInProgress))

	_, err := svc.UpdatePriority(context.Background(), outside, "t1", task.PriorityHigh)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTaskDelete(t *testing.T) {
	svc, store, events, queue := newTaskFixture(seedTask(task.StatusInProgress))
	events.entries = []activity.Entry{{EntityType: activity.EntityTask, EntityID: "t1", Kind: activity.KindTaskCreated}}

	if err := svc.Delete(context.Background(), bob, "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.tasks) != 0 {
		t.Fatal("task not removed")
	}
	if len(events.entries) != 0 {
		t.Fatal("activity log not dropped with the task")
	}
	if queue.published[0] != "tasks.deleted" {
		t.Fatalf("expected tasks.deleted publish, got %v", queue.published)
	}
}

func TestTaskDeleteOnlyCreator(t *testing.T) {
	svc, _, _, _ := newTaskFixture(seedTask(task.StatusInProgress))

	err := svc.Delete(context.Background(), alice, "t1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for the assignee, got %v", err)
	}
}

func TestTaskAddComment(t *testing.T) {
	svc, store, events, queue := newTaskFixture(seedTask(task.StatusInProgress))

	c, err := svc.AddComment(context.Background(), alice, "t1", task.CommentCreate{Content: "blocked on review"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.AuthorID != alice.ID || c.TaskID != "t1" {
		t.Fatalf("unexpected comment: %+v", c)
	}
	if len(store.comments) != 1 {
		t.Fatalf("expected 1 comment in store, got %d", len(store.comments))
	}
	if len(events.entries) != 1 || events.entries[0].Kind != activity.KindCommentAdded {
		t.Fatalf("expected comment_added entry, got %+v", events.entries)
	}
	if queue.published[0] != "tasks.comment_added" {
		t.Fatalf("expected tasks.comment_added publish, got %v", queue.published)
	}
}

func TestTaskAddCommentReply(t *testing.T) {
	svc, store, _, _ := newTaskFixture(seedTask(task.StatusInProgress))
	store.comments = []task.Comment{{ID: "c1", TaskID: "t1", AuthorID: bob.ID, Content: "status?"}}

	c, err := svc.AddComment(context.Background(), alice, "t1", task.CommentCreate{Content: "nearly done", ParentID: "c1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ParentID != "c1" {
		t.Fatalf("expected parent c1, got %q", c.ParentID)
	}
}

func TestTaskAddCommentReplyWrongTask(t *testing.T) {
	svc, store, _, _ := newTaskFixture(seedTask(task.StatusInProgress))
	store.comments = []task.Comment{{ID: "c1", TaskID: "t-other", AuthorID: bob.ID, Content: "elsewhere"}}

	_, err := svc.AddComment(context.Background(), alice, "t1", task.CommentCreate{Content: "reply", ParentID: "c1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for cross-task parent, got %v", err)
	}
}

func TestTaskAddCommentEmpty(t *testing.T) {
	svc, _, _, _ := newTaskFixture(seedTask(task.StatusInProgress))

	_, err := svc.AddComment(context.Background(), alice, "t1", task.CommentCreate{Content: "   "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTaskListComments(t *testing.T) {
	svc, store, _, _ := newTaskFixture(seedTask(task.StatusInProgress))
	store.comments = []task.Comment{
		{ID: "c1", TaskID: "t1"},
		{ID: "c2", TaskID: "t-other"},
	}

	got, err := svc.ListComments(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("expected only c1, got %+v", got)
	}
}

func TestTaskListCommentsUnknownTask(t *testing.T) {
	svc, _, _, _ := newTaskFixture()

	_, err := svc.ListComments(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
