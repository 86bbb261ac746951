package showsync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/telecal/telecal/internal/scheduler"
)

// stubRunner records triggers and serves canned task info.
type stubRunner struct {
	ran   []string
	err   error
	tasks []scheduler.TaskInfo
}

func (r *stubRunner) RunNow(taskID string) error {
	r.ran = append(r.ran, taskID)
	return r.err
}

func (r *stubRunner) ListTasks() []scheduler.TaskInfo {
	return r.tasks
}

func doSyncRequest(t *testing.T, method, path string, fn func(echo.Context) error) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := fn(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandlers_Trigger_RunsThroughScheduler(t *testing.T) {
	h := newHarness(t, 10)
	runner := &stubRunner{}
	handlers := NewHandlers(h.service, runner)

	rec := doSyncRequest(t, http.MethodPost, "/sync/run", handlers.Trigger)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Trigger status = %d, want 202", rec.Code)
	}
	if len(runner.ran) != 1 || runner.ran[0] != TaskID {
		t.Errorf("scheduler triggered with %v, want [%q]", runner.ran, TaskID)
	}
}

func TestHandlers_Trigger_RejectedWhileRunning(t *testing.T) {
	h := newHarness(t, 10)
	runner := &stubRunner{}
	handlers := NewHandlers(h.service, runner)

	h.service.running.Store(true)
	defer h.service.running.Store(false)

	rec := doSyncRequest(t, http.MethodPost, "/sync/run", handlers.Trigger)
	if rec.Code != http.StatusConflict {
		t.Fatalf("Trigger during active sweep status = %d, want 409", rec.Code)
	}
	if len(runner.ran) != 0 {
		t.Errorf("scheduler triggered %v during an active sweep", runner.ran)
	}
}

func TestHandlers_Status_IncludesTasks(t *testing.T) {
	h := newHarness(t, 10)
	runner := &stubRunner{tasks: []scheduler.TaskInfo{
		{ID: TaskID, Name: "Episode Refresh", Cron: "0 * * * *"},
	}}
	handlers := NewHandlers(h.service, runner)

	rec := doSyncRequest(t, http.MethodGet, "/sync/status", handlers.Status)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status status = %d, want 200", rec.Code)
	}

	var resp struct {
		Sweep Status               `json:"sweep"`
		Tasks []scheduler.TaskInfo `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode status response: %v", err)
	}
	if len(resp.Tasks) != 1 || resp.Tasks[0].ID != TaskID {
		t.Errorf("status tasks = %+v, want the refresh task", resp.Tasks)
	}
	if resp.Sweep.Running {
		t.Error("sweep reported running with no active sweep")
	}
}
