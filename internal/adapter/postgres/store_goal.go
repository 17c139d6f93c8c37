package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/goal"
	"github.com/worklane/worklane/internal/port/database"
)

const goalColumns = `id, assigned_to, assigned_by, title, description, target_date, target_month,
	priority, status, assigned_at, achieved_at, COALESCE(achieved_by::text, ''), rejected_at,
	COALESCE(user_comment, ''), COALESCE(manager_comment, ''), COALESCE(rejection_reason, ''),
	version, created_at, updated_at`

func scanGoal(row scannable) (goal.Goal, error) {
	var g goal.Goal
	err := row.Scan(
		&g.ID, &g.AssignedTo, &g.AssignedBy, &g.Title, &g.Description, &g.TargetDate, &g.TargetMonth,
		&g.Priority, &g.Status, &g.AssignedAt, &g.AchievedAt, &g.AchievedBy, &g.RejectedAt,
		&g.UserComment, &g.ManagerComment, &g.RejectionReason,
		&g.Version, &g.CreatedAt, &g.UpdatedAt,
	)
	return g, err
}

func (s *Store) ListGoals(ctx context.Context, filter database.GoalFilter) ([]goal.Goal, error) {
	var conditions []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.AssignedTo != "" {
		add("assigned_to = $%d", filter.AssignedTo)
	}
	if filter.AssignedBy != "" {
		add("assigned_by = $%d", filter.AssignedBy)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Month != "" {
		add("target_month = $%d", filter.Month)
	}

	query := fmt.Sprintf(`SELECT %s FROM goals`, goalColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY assigned_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []goal.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) GetGoal(ctx context.Context, id string) (*goal.Goal, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM goals WHERE id = $1`, goalColumns), id)

	g, err := scanGoal(row)
	if err != nil {
		return nil, notFoundWrap(err, "get goal %s", id)
	}
	return &g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO goals (id, assigned_to, assigned_by, title, description, target_date, target_month,
		 priority, status, assigned_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		g.ID, g.AssignedTo, g.AssignedBy, g.Title, g.Description, g.TargetDate, g.TargetMonth,
		g.Priority, g.Status, g.AssignedAt, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

// UpdateGoal writes the goal back under an optimistic version check, the same
// serialization used for tasks.
func (s *Store) UpdateGoal(ctx context.Context, g *goal.Goal) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE goals SET title = $2, description = $3, target_date = $4, target_month = $5,
		 priority = $6, status = $7, achieved_at = $8, achieved_by = $9, rejected_at = $10,
		 user_comment = $11, manager_comment = $12, rejection_reason = $13,
		 updated_at = $14, version = version + 1
		 WHERE id = $1 AND version = $15`,
		g.ID, g.Title, g.Description, g.TargetDate, g.TargetMonth,
		g.Priority, g.Status, g.AchievedAt, nullIfEmpty(g.AchievedBy), g.RejectedAt,
		nullIfEmpty(g.UserComment), nullIfEmpty(g.ManagerComment), nullIfEmpty(g.RejectionReason),
		g.UpdatedAt, g.Version)
	if err != nil {
		return fmt.Errorf("update goal %s: %w", g.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update goal %s: %w", g.ID, domain.ErrConflict)
	}
	g.Version++
	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete goal %s", id)
}
