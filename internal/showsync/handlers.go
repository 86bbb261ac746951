package showsync

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/telecal/telecal/internal/scheduler"
)

// TaskID is the scheduler id the refresh sweep is registered under.
const TaskID = "episode-refresh"

// TaskRunner triggers and describes registered background tasks.
// Implemented by scheduler.Scheduler.
type TaskRunner interface {
	RunNow(taskID string) error
	ListTasks() []scheduler.TaskInfo
}

// Handlers provides HTTP handlers for inspecting and triggering sweeps.
type Handlers struct {
	service *Service
	runner  TaskRunner
}

// NewHandlers creates new sweep handlers.
func NewHandlers(service *Service, runner TaskRunner) *Handlers {
	return &Handlers{service: service, runner: runner}
}

// RegisterRoutes registers the sweep routes. Both require auth.
func (h *Handlers) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/sync/status", h.Status, auth)
	e.POST("/sync/run", h.Trigger, auth)
}

type statusResponse struct {
	Sweep Status               `json:"sweep"`
	Tasks []scheduler.TaskInfo `json:"tasks"`
}

// Status returns the last sweep status and the registered task schedule.
// GET /sync/status
func (h *Handlers) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Sweep: h.service.LastStatus(),
		Tasks: h.runner.ListTasks(),
	})
}

// Trigger starts a sweep through the scheduler, so a manual run is tracked
// like a scheduled one.
// POST /sync/run
func (h *Handlers) Trigger(c echo.Context) error {
	if h.service.IsRunning() {
		return echo.NewHTTPError(http.StatusConflict, "refresh is already running")
	}

	if err := h.runner.RunNow(TaskID); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	return c.NoContent(http.StatusAccepted)
}
