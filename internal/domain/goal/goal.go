// Package goal defines the goal entity and the shared goal state machine.
//
// Two goal shapes exist: standalone goals assigned from one user to another,
// and goals embedded in a task. Both run the same lifecycle
// (pending → achieved, standalone additionally pending → rejected); the
// variant is a tag on the transition call, not a second state machine.
package goal

import (
	"fmt"
	"strings"
	"time"

	"github.com/worklane/worklane/internal/domain"
)

// Status represents the lifecycle state of a goal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAchieved Status = "achieved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status admits no further state change.
// Comment slots may still be filled on a terminal goal.
func (s Status) Terminal() bool {
	return s == StatusAchieved || s == StatusRejected
}

// Kind distinguishes the two goal shapes sharing this state machine.
type Kind string

const (
	KindStandalone Kind = "standalone"
	KindEmbedded   Kind = "embedded"
)

// Priority represents the urgency of a goal.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriorities is the set of accepted goal priorities.
var ValidPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// CommentKind selects which comment slot a goal comment fills.
type CommentKind string

const (
	CommentUser    CommentKind = "user"
	CommentManager CommentKind = "manager"
)

// Goal is a standalone goal assigned from one user to another.
type Goal struct {
	ID              string     `json:"id"`
	AssignedTo      string     `json:"assigned_to"`
	AssignedBy      string     `json:"assigned_by"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	TargetDate      *time.Time `json:"target_date,omitempty"`
	TargetMonth     string     `json:"target_month"`
	Priority        Priority   `json:"priority"`
	Status          Status     `json:"status"`
	AssignedAt      time.Time  `json:"assigned_at"`
	AchievedAt      *time.Time `json:"achieved_at,omitempty"`
	AchievedBy      string     `json:"achieved_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	UserComment     string     `json:"user_comment,omitempty"`
	ManagerComment  string     `json:"manager_comment,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	Version         int        `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateRequest holds the fields needed to assign a new goal.
type CreateRequest struct {
	AssignedTo  string   `json:"assigned_to"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	TargetDate  string   `json:"target_date,omitempty"`
	TargetMonth string   `json:"target_month,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
}

// Validate checks required fields and resolves the due period. It returns the
// parsed target date (nil when only a month was given) and the YYYY-MM bucket.
func (r *CreateRequest) Validate() (*time.Time, string, error) {
	if strings.TrimSpace(r.AssignedTo) == "" {
		return nil, "", fmt.Errorf("assigned_to is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(r.Title) == "" {
		return nil, "", fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if r.Priority != "" && !ValidPriorities[r.Priority] {
		return nil, "", fmt.Errorf("invalid priority %q: %w", r.Priority, domain.ErrValidation)
	}

	month := NormalizeMonth(r.TargetMonth)
	var date *time.Time
	if strings.TrimSpace(r.TargetDate) != "" {
		t, ok := ParseTargetDate(r.TargetDate)
		if !ok {
			return nil, "", fmt.Errorf("target_date %q is not a valid date: %w", r.TargetDate, domain.ErrValidation)
		}
		date = &t
		month = t.Format(MonthLayout)
	}
	if month == "" {
		return nil, "", fmt.Errorf("a target date or target month is required: %w", domain.ErrValidation)
	}
	return date, month, nil
}

// Advance validates a state change under the shared lifecycle rules. The
// caller is expected to have ruled out current == target (a no-op) first.
//
// Terminal states admit no further transition: re-achieving or re-rejecting
// reports ErrAlreadyTerminal, crossing between terminal states or reopening
// a terminal goal reports ErrInvalidTransition.
func Advance(kind Kind, current, target Status) error {
	if current == target {
		if current.Terminal() {
			return fmt.Errorf("goal already %s: %w", current, domain.ErrAlreadyTerminal)
		}
		return nil
	}
	if current.Terminal() {
		return fmt.Errorf("goal is %s, cannot become %s: %w", current, target, domain.ErrInvalidTransition)
	}
	switch target {
	case StatusAchieved:
		return nil
	case StatusRejected:
		if kind == KindEmbedded {
			return fmt.Errorf("embedded goals cannot be rejected: %w", domain.ErrInvalidTransition)
		}
		return nil
	default:
		return fmt.Errorf("invalid target status %q: %w", target, domain.ErrInvalidTransition)
	}
}
