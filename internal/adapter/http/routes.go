package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		// Tasks
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks/my", h.ListMyTasks)
		r.Get("/tasks/assigned", h.ListAssignedTasks)
		r.Get("/tasks/{id}", h.GetTask)
		r.Delete("/tasks/{id}", h.DeleteTask)
		r.Get("/projects/{id}/tasks", h.ListProjectTasks)

		// Task lifecycle
		r.Put("/tasks/{id}/status", h.UpdateTaskStatus)
		r.Put("/tasks/{id}/priority", h.UpdateTaskPriority)
		r.Post("/tasks/{id}/review", h.ReviewTask)

		// Task comments
		r.Get("/tasks/{id}/comments", h.ListTaskComments)
		r.Post("/tasks/{id}/comments", h.CreateTaskComment)

		// Embedded task goals
		r.Post("/tasks/{id}/goals", h.AddTaskGoal)
		r.Put("/tasks/{id}/goals/{goalID}", h.ToggleTaskGoal)

		// Task timeline
		r.Get("/tasks/{id}/timeline", h.TaskTimeline)

		// Standalone goals. Fixed segments are registered before the
		// {id} routes so chi does not swallow them as identifiers.
		r.Post("/goals", h.CreateGoal)
		r.Get("/goals/my", h.MyGoals)
		r.Get("/goals/assigned", h.AssignedGoals)
		r.Get("/goals/stats", h.GoalStats)
		r.Get("/goals/window", h.GoalWindow)
		r.Get("/goals/export", h.ExportGoals)
		r.Get("/goals/{id}", h.GetGoal)
		r.Delete("/goals/{id}", h.DeleteGoal)
		r.Put("/goals/{id}/status", h.UpdateGoalStatus)
		r.Post("/goals/{id}/comments", h.AddGoalComment)
		r.Get("/goals/{id}/timeline", h.GoalTimeline)
	})
}
