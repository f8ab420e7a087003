package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hearth-app/hearth/internal/auth"
	"github.com/hearth-app/hearth/internal/gantt"
	"github.com/hearth-app/hearth/internal/live"
	"github.com/hearth-app/hearth/internal/model"
	"github.com/hearth-app/hearth/internal/store"
)

type TaskHandler struct {
	tasks      *store.TaskStore
	categories *store.CategoryStore
	bus        *live.Bus
	logger     *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, cs *store.CategoryStore, bus *live.Bus, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, categories: cs, bus: bus, logger: logger}
}

type taskRequest struct {
	CategoryID     int64      `json:"category_id" validate:"required"`
	Name           string     `json:"name" validate:"required,max=100"`
	Details        string     `json:"details" validate:"max=2000"`
	ImageRef       string     `json:"image_ref" validate:"max=500"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	Responsibility *int64     `json:"responsibility"`
	Status         string     `json:"status" validate:"omitempty,oneof=todo in_progress finished canceled"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeValid(w, r, &req) {
		return
	}

	householdID := auth.HouseholdID(r.Context())
	if !categoryInHousehold(w, h.logger, h.categories, req.CategoryID, householdID) {
		return
	}

	status := req.Status
	if status == "" {
		status = model.TaskTodo
	}
	task, err := h.tasks.Create(householdID, req.CategoryID, strings.TrimSpace(req.Name), req.Details, req.ImageRef, req.StartDate, req.EndDate, req.Responsibility, status)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.publish(task, live.ActionCreated)
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !categoryInHousehold(w, h.logger, h.categories, categoryID, auth.HouseholdID(r.Context())) {
		return
	}

	tasks, err := h.tasks.ListByCategory(categoryID)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Timeline lays the category's tasks onto a gantt window. The window is
// picked by ?range= (today|week|month|year|fit, default week), shifted
// by ?offset= whole windows.
func (h *TaskHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !categoryInHousehold(w, h.logger, h.categories, categoryID, auth.HouseholdID(r.Context())) {
		return
	}

	tasks, err := h.tasks.ListByCategory(categoryID)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	now := time.Now()
	var win gantt.Window
	switch r.URL.Query().Get("range") {
	case "today":
		win = gantt.Today(now)
	case "month":
		win = gantt.Month(now)
	case "year":
		win = gantt.Year(now)
	case "fit":
		win = gantt.FitAll(tasks, now)
	default:
		win = gantt.Week(now)
	}
	offset := parseOffset(r.URL.Query().Get("offset"))
	for ; offset > 0; offset-- {
		win = win.Shift(1)
	}
	for ; offset < 0; offset++ {
		win = win.Shift(-1)
	}

	writeJSON(w, http.StatusOK, gantt.Layout(tasks, win, now))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	task, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.CategoryID != task.CategoryID {
		writeError(w, http.StatusBadRequest, "category_id cannot change")
		return
	}

	status := req.Status
	if status == "" {
		status = task.Status
	}
	updated, err := h.tasks.Update(task.ID, task.CategoryID, strings.TrimSpace(req.Name), req.Details, req.ImageRef, req.StartDate, req.EndDate, req.Responsibility, status)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

type taskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress finished canceled"`
}

func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	task, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req taskStatusRequest
	if !decodeValid(w, r, &req) {
		return
	}

	updated, err := h.tasks.SetStatus(task.ID, req.Status)
	if err != nil {
		h.logger.Error("set task status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set status")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(task.ID); err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.publish(task, live.ActionDeleted)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// parseOffset reads a signed window offset, clamped to ±520 so a bad
// query cannot spin the shift loop.
func parseOffset(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	if n > 520 {
		n = 520
	}
	if n < -520 {
		n = -520
	}
	return n
}

func (h *TaskHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Task, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	task, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return nil, false
	}
	if task == nil || task.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusNotFound, "task not found")
		return nil, false
	}
	return task, true
}


func (h *TaskHandler) publish(task *model.Task, action string) {
	h.bus.Publish(live.Event{
		Collection:  live.CollTasks,
		HouseholdID: task.HouseholdID,
		CategoryID:  task.CategoryID,
		ID:          task.ID,
		Action:      action,
	})
}
