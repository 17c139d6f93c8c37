package http

import (
	"net/http"

	"github.com/worklane/worklane/internal/adapter/otel"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/domain/user"
	"github.com/worklane/worklane/internal/middleware"
	"github.com/worklane/worklane/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Tasks    *service.TaskService
	Status   *service.StatusService
	Goals    *service.GoalService
	Timeline *service.TimelineService
	Stats    *service.StatsService
	Export   *service.ExportService
	Metrics  *otel.Metrics
}

// actor pulls the acting user installed by the identity middleware.
func actor(r *http.Request) *user.User {
	return middleware.UserFromContext(r.Context())
}

// changedResponse wraps an entity with whether the call mutated it. No-op
// calls against terminal states report changed == false with status 200.
type changedResponse struct {
	Changed bool `json:"changed"`
	Task    any  `json:"task,omitempty"`
	Goal    any  `json:"goal,omitempty"`
}

// --- Tasks ---

func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[task.CreateRequest](w, r)
	if !ok {
		return
	}
	t, err := h.Tasks.Create(r.Context(), actor(r), req)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tasks.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.List(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) ListMyTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.ListMy(r.Context(), actor(r), r.URL.Query().Get("project_id"))
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) ListAssignedTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.ListAssigned(r.Context(), actor(r), r.URL.Query().Get("project_id"))
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.Delete(r.Context(), actor(r), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Status transitions ---

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[statusRequest](w, r)
	if !ok {
		return
	}
	target, ok := task.NormalizeStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown status "+req.Status)
		return
	}

	t, changed, err := h.Status.Transition(r.Context(), actor(r), urlParam(r, "id"), target)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	if changed && h.Metrics != nil {
		h.Metrics.StatusTransitions.Add(r.Context(), 1)
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: changed, Task: t})
}

type reviewRequest struct {
	Decision task.ReviewDecision `json:"decision"`
}

func (h *Handlers) ReviewTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[reviewRequest](w, r)
	if !ok {
		return
	}

	t, changed, err := h.Status.ReviewDecision(r.Context(), actor(r), urlParam(r, "id"), req.Decision)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	if changed && h.Metrics != nil {
		h.Metrics.ReviewDecisions.Add(r.Context(), 1)
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: changed, Task: t})
}

type priorityRequest struct {
	Priority task.Priority `json:"priority"`
}

func (h *Handlers) UpdateTaskPriority(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[priorityRequest](w, r)
	if !ok {
		return
	}
	t, err := h.Tasks.UpdatePriority(r.Context(), actor(r), urlParam(r, "id"), req.Priority)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// --- Comments ---

func (h *Handlers) ListTaskComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Tasks.ListComments(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	if comments == nil {
		comments = []task.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *Handlers) CreateTaskComment(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[task.CommentCreate](w, r)
	if !ok {
		return
	}
	c, err := h.Tasks.AddComment(r.Context(), actor(r), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// --- Embedded goals ---

type taskGoalRequest struct {
	Text string `json:"text"`
}

func (h *Handlers) AddTaskGoal(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[taskGoalRequest](w, r)
	if !ok {
		return
	}
	t, err := h.Goals.AddTaskGoal(r.Context(), actor(r), urlParam(r, "id"), req.Text)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

type toggleGoalRequest struct {
	Achieved bool `json:"achieved"`
}

func (h *Handlers) ToggleTaskGoal(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[toggleGoalRequest](w, r)
	if !ok {
		return
	}
	t, changed, err := h.Goals.ToggleTaskGoal(r.Context(), actor(r), urlParam(r, "id"), urlParam(r, "goalID"), req.Achieved)
	if err != nil {
		writeDomainError(w, err, "goal not found")
		return
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: changed, Task: t})
}

// --- Timelines ---

func (h *Handlers) TaskTimeline(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Timeline.ForTask(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	if h.Metrics != nil {
		h.Metrics.TimelineBuilds.Add(r.Context(), 1)
	}
	writeJSON(w, http.StatusOK, entries)
}
