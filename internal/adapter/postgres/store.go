package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/domain/user"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Tasks ---

const taskColumns = `id, project_id, COALESCE(group_id::text, ''), title, description, status, priority,
	assigned_by, assignee_ids, collaborator_ids, goals, assigned_date, due_date, completed_at,
	version, created_at, updated_at`

func scanTask(row scannable) (task.Task, error) {
	var t task.Task
	var goalsJSON []byte
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.GroupID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssignedBy, &t.AssigneeIDs, &t.CollaboratorIDs, &goalsJSON,
		&t.AssignedDate, &t.DueDate, &t.CompletedAt,
		&t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}
	if len(goalsJSON) > 0 {
		if err := json.Unmarshal(goalsJSON, &t.Goals); err != nil {
			return t, fmt.Errorf("decode task goals: %w", err)
		}
	}
	t.AssigneeIDs = orEmpty(t.AssigneeIDs)
	t.CollaboratorIDs = orEmpty(t.CollaboratorIDs)
	t.Goals = orEmpty(t.Goals)
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, projectID string) ([]task.Task, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`, taskColumns),
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns), id)

	t, err := scanTask(row)
	if err != nil {
		return nil, notFoundWrap(err, "get task %s", id)
	}
	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	goalsJSON, err := json.Marshal(orEmpty(t.Goals))
	if err != nil {
		return fmt.Errorf("marshal task goals: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO tasks (id, project_id, group_id, title, description, status, priority,
		 assigned_by, assignee_ids, collaborator_ids, goals, assigned_date, due_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID, t.ProjectID, nullIfEmpty(t.GroupID), t.Title, t.Description, t.Status, t.Priority,
		t.AssignedBy, pgTextArray(t.AssigneeIDs), pgTextArray(t.CollaboratorIDs), goalsJSON,
		t.AssignedDate, t.DueDate, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateTask writes the task back under an optimistic version check. A
// mismatched version means a concurrent writer won; the caller sees
// domain.ErrConflict.
func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	goalsJSON, err := json.Marshal(orEmpty(t.Goals))
	if err != nil {
		return fmt.Errorf("marshal task goals: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5,
		 assignee_ids = $6, collaborator_ids = $7, goals = $8, assigned_date = $9, due_date = $10,
		 completed_at = $11, updated_at = $12, version = version + 1
		 WHERE id = $1 AND version = $13`,
		t.ID, t.Title, t.Description, t.Status, t.Priority,
		pgTextArray(t.AssigneeIDs), pgTextArray(t.CollaboratorIDs), goalsJSON,
		t.AssignedDate, t.DueDate, t.CompletedAt, t.UpdatedAt, t.Version)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update task %s: %w", t.ID, domain.ErrConflict)
	}
	t.Version++
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete task %s", id)
}

// --- Task comments ---

const commentColumns = `id, task_id, author_id, author_name, content, attachments, COALESCE(parent_id::text, ''), created_at`

func scanComment(row scannable) (task.Comment, error) {
	var c task.Comment
	var attachmentsJSON []byte
	err := row.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.AuthorName, &c.Content, &attachmentsJSON, &c.ParentID, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	if len(attachmentsJSON) > 0 {
		if err := json.Unmarshal(attachmentsJSON, &c.Attachments); err != nil {
			return c, fmt.Errorf("decode attachments: %w", err)
		}
	}
	return c, nil
}

func (s *Store) ListComments(ctx context.Context, taskID string) ([]task.Comment, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM task_comments WHERE task_id = $1 ORDER BY created_at ASC`, commentColumns),
		taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []task.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) GetComment(ctx context.Context, id string) (*task.Comment, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM task_comments WHERE id = $1`, commentColumns), id)

	c, err := scanComment(row)
	if err != nil {
		return nil, notFoundWrap(err, "get comment %s", id)
	}
	return &c, nil
}

func (s *Store) CreateComment(ctx context.Context, c *task.Comment) error {
	attachmentsJSON, err := json.Marshal(orEmpty(c.Attachments))
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO task_comments (id, task_id, author_id, author_name, content, attachments, parent_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.TaskID, c.AuthorID, c.AuthorName, c.Content, attachmentsJSON, nullIfEmpty(c.ParentID), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// --- Users ---

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, role FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Role)
	if err != nil {
		return nil, notFoundWrap(err, "get user %s", id)
	}
	return &u, nil
}
