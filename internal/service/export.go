package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/goal"
	"github.com/worklane/worklane/internal/domain/user"
	"github.com/worklane/worklane/internal/port/database"
)

// ExportHeader is the column order of exported goal rows.
var ExportHeader = []string{"Title", "Assigned To", "Target Month", "Priority", "Status", "Rejection Reason"}

// ExportService renders a user's goals as flat rows for spreadsheet export.
type ExportService struct {
	store database.Store
}

// NewExportService creates a new ExportService.
func NewExportService(store database.Store) *ExportService {
	return &ExportService{store: store}
}

// Rows returns one row per goal assigned to userID, optionally narrowed to a
// month. The first row is ExportHeader. Managers and admins may export other
// users' goals; everyone may export their own.
func (s *ExportService) Rows(ctx context.Context, actor *user.User, userID, month string) ([][]string, error) {
	userID, err := resolveStatsUser(actor, userID)
	if err != nil {
		return nil, err
	}

	goals, err := s.store.ListGoals(ctx, database.GoalFilter{
		AssignedTo: userID,
		Month:      goal.NormalizeMonth(month),
	})
	if err != nil {
		return nil, err
	}

	name := userID
	if u, err := s.store.GetUser(ctx, userID); err == nil && u.Name != "" {
		name = u.Name
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}

	rows := make([][]string, 0, len(goals)+1)
	rows = append(rows, ExportHeader)
	for _, g := range goals {
		rows = append(rows, []string{
			g.Title,
			name,
			goal.MonthLabel(g.TargetMonth),
			string(g.Priority),
			string(g.Status),
			g.RejectionReason,
		})
	}
	return rows, nil
}
