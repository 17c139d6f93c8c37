package task

import (
	"errors"
	"testing"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/user"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"in_progress", StatusInProgress, true},
		{"  Review ", StatusReview, true},
		{"on_hold", StatusHold, true},
		{"hold", StatusHold, true},
		{"done", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeStatus(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("NormalizeStatus(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCheckTransitionForward(t *testing.T) {
	cases := []struct{ from, to Status }{
		{StatusNotStarted, StatusInProgress},
		{StatusNotStarted, StatusReview},
		{StatusInProgress, StatusHold},
		{StatusHold, StatusReview},
	}
	for _, c := range cases {
		if err := CheckTransition(c.from, c.to); err != nil {
			t.Errorf("CheckTransition(%s, %s) = %v; want nil", c.from, c.to, err)
		}
	}
}

func TestCheckTransitionBackward(t *testing.T) {
	cases := []struct{ from, to Status }{
		{StatusInProgress, StatusNotStarted},
		{StatusHold, StatusInProgress},
		{StatusHold, StatusNotStarted},
	}
	for _, c := range cases {
		err := CheckTransition(c.from, c.to)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("CheckTransition(%s, %s) = %v; want ErrInvalidTransition", c.from, c.to, err)
		}
	}
}

func TestCheckTransitionCompletedGate(t *testing.T) {
	for _, from := range []Status{StatusNotStarted, StatusInProgress, StatusHold} {
		err := CheckTransition(from, StatusCompleted)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("CheckTransition(%s, completed) = %v; want ErrInvalidTransition", from, err)
		}
	}
}

func TestCheckTransitionReviewFrozen(t *testing.T) {
	for _, to := range []Status{StatusNotStarted, StatusInProgress, StatusHold, StatusCompleted} {
		err := CheckTransition(StatusReview, to)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("CheckTransition(review, %s) = %v; want ErrInvalidTransition", to, err)
		}
	}
}

func TestCheckTransitionTerminal(t *testing.T) {
	for _, to := range []Status{StatusNotStarted, StatusInProgress, StatusHold, StatusReview, StatusCompleted} {
		err := CheckTransition(StatusCompleted, to)
		if !errors.Is(err, domain.ErrAlreadyTerminal) {
			t.Errorf("CheckTransition(completed, %s) = %v; want ErrAlreadyTerminal", to, err)
		}
	}
}

func TestCheckTransitionUnknownTarget(t *testing.T) {
	err := CheckTransition(StatusNotStarted, Status("archived"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCanReview(t *testing.T) {
	tk := &Task{AssignedBy: "u-creator", AssigneeIDs: []string{"u-worker"}}

	if !tk.CanReview(&user.User{ID: "u-creator", Role: user.RoleUser}) {
		t.Error("creator must be in the reviewer set")
	}
	if !tk.CanReview(&user.User{ID: "u-other", Role: user.RoleManager}) {
		t.Error("manager must be in the reviewer set")
	}
	if tk.CanReview(&user.User{ID: "u-worker", Role: user.RoleUser}) {
		t.Error("assignee must not review their own work")
	}
	if tk.CanReview(nil) {
		t.Error("nil user can never review")
	}
}

func TestCreateRequestValidate(t *testing.T) {
	ok := CreateRequest{ProjectID: "p1", Title: "T"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, bad := range []CreateRequest{
		{Title: "no project"},
		{ProjectID: "p1", Title: "  "},
		{ProjectID: "p1", Title: "T", Priority: "urgent"},
	} {
		if err := bad.Validate(); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Validate(%+v) = %v; want ErrValidation", bad, err)
		}
	}
}
