package http

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/worklane/worklane/internal/domain/goal"
)

// --- Standalone goals ---

func (h *Handlers) CreateGoal(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[goal.CreateRequest](w, r)
	if !ok {
		return
	}
	g, err := h.Goals.Create(r.Context(), actor(r), req)
	if err != nil {
		writeDomainError(w, err, "assignee not found")
		return
	}
	if h.Metrics != nil {
		h.Metrics.GoalsAssigned.Add(r.Context(), 1)
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *Handlers) GetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := h.Goals.Get(r.Context(), actor(r), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "goal not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handlers) MyGoals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	goals, err := h.Goals.ListMy(r.Context(), actor(r), goal.Status(q.Get("status")), q.Get("month"))
	if err != nil {
		writeDomainError(w, err, "goals not found")
		return
	}
	if goals == nil {
		goals = []goal.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *Handlers) AssignedGoals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	goals, err := h.Goals.ListAssigned(r.Context(), actor(r), goal.Status(q.Get("status")), q.Get("month"))
	if err != nil {
		writeDomainError(w, err, "goals not found")
		return
	}
	if goals == nil {
		goals = []goal.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *Handlers) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.Goals.Delete(r.Context(), actor(r), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "goal not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type goalStatusRequest struct {
	Status  goal.Status `json:"status"`
	Comment string      `json:"comment,omitempty"`
}

// UpdateGoalStatus resolves a goal: achieved by the assignee, rejected by the
// assigner with a mandatory reason in the comment field.
func (h *Handlers) UpdateGoalStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[goalStatusRequest](w, r)
	if !ok {
		return
	}

	var (
		g       *goal.Goal
		changed bool
		err     error
	)
	switch req.Status {
	case goal.StatusAchieved:
		g, changed, err = h.Goals.MarkAchieved(r.Context(), actor(r), urlParam(r, "id"), req.Comment)
	case goal.StatusRejected:
		g, changed, err = h.Goals.Reject(r.Context(), actor(r), urlParam(r, "id"), req.Comment)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("status must be %q or %q", goal.StatusAchieved, goal.StatusRejected))
		return
	}
	if err != nil {
		writeDomainError(w, err, "goal not found")
		return
	}
	if changed && h.Metrics != nil {
		switch req.Status {
		case goal.StatusAchieved:
			h.Metrics.GoalsAchieved.Add(r.Context(), 1)
		case goal.StatusRejected:
			h.Metrics.GoalsRejected.Add(r.Context(), 1)
		}
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: changed, Goal: g})
}

type goalCommentRequest struct {
	Comment     string           `json:"comment"`
	CommentType goal.CommentKind `json:"comment_type"`
}

func (h *Handlers) AddGoalComment(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[goalCommentRequest](w, r)
	if !ok {
		return
	}
	g, err := h.Goals.AddComment(r.Context(), actor(r), urlParam(r, "id"), req.Comment, req.CommentType)
	if err != nil {
		writeDomainError(w, err, "goal not found")
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *Handlers) GoalTimeline(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Timeline.ForGoal(r.Context(), actor(r), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "goal not found")
		return
	}
	if h.Metrics != nil {
		h.Metrics.TimelineBuilds.Add(r.Context(), 1)
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Stats and export ---

func (h *Handlers) GoalStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := h.Stats.Monthly(r.Context(), actor(r), q.Get("user_id"), q.Get("month"))
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handlers) GoalWindow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	buckets, err := h.Stats.Window(r.Context(), actor(r), q.Get("user_id"), q.Get("start"))
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

// ExportGoals streams the caller's goals for the given month as CSV.
func (h *Handlers) ExportGoals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.Export.Rows(r.Context(), actor(r), q.Get("user_id"), q.Get("month"))
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}

	filename := fmt.Sprintf("goals-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	// Rows already leads with the header row.
	if err := csv.NewWriter(w).WriteAll(rows); err != nil {
		slog.Error("failed to write CSV export", "error", err)
	}
}
