package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hearth-app/hearth/internal/auth"
	"github.com/hearth-app/hearth/internal/model"
	"github.com/hearth-app/hearth/internal/store"
)

// SummaryHandler serves the dashboard roll-up: open and urgent counts
// across the household plus recent spend.
type SummaryHandler struct {
	categories *store.CategoryStore
	items      *store.ItemStore
	tasks      *store.TaskStore
	reminders  *store.ReminderStore
	logger     *slog.Logger
}

func NewSummaryHandler(cs *store.CategoryStore, is *store.ItemStore, ts *store.TaskStore, rs *store.ReminderStore, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{categories: cs, items: is, tasks: ts, reminders: rs, logger: logger}
}

type summaryResponse struct {
	Open       int     `json:"open"`
	Urgent     int     `json:"urgent"`
	WeekSpend  float64 `json:"week_spend"`
	MonthSpend float64 `json:"month_spend"`
}

func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	var resp summaryResponse

	shopping, err := h.categories.ListByKind(householdID, model.KindShopping)
	if err != nil {
		h.logger.Error("summary: list shopping categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	for _, cat := range shopping {
		open, urgent, err := h.items.CountTodo(cat.ID)
		if err != nil {
			h.logger.Error("summary: count items", "category_id", cat.ID, "error", err)
			continue
		}
		resp.Open += open
		resp.Urgent += urgent
	}

	taskCats, err := h.categories.ListByKind(householdID, model.KindTasks)
	if err != nil {
		h.logger.Error("summary: list task categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	for _, cat := range taskCats {
		open, err := h.tasks.CountOpen(cat.ID)
		if err != nil {
			h.logger.Error("summary: count tasks", "category_id", cat.ID, "error", err)
			continue
		}
		resp.Open += open
	}

	reminderCats, err := h.categories.ListByKind(householdID, model.KindReminders)
	if err != nil {
		h.logger.Error("summary: list reminder categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	for _, cat := range reminderCats {
		open, err := h.reminders.CountOpen(cat.ID)
		if err != nil {
			h.logger.Error("summary: count reminders", "category_id", cat.ID, "error", err)
			continue
		}
		resp.Open += open
	}

	now := time.Now()
	week := now.AddDate(0, 0, -7).Format("2006-01-02")
	month := now.AddDate(0, -1, 0).Format("2006-01-02")
	if resp.WeekSpend, err = h.items.SpendSince(householdID, week); err != nil {
		h.logger.Error("summary: week spend", "error", err)
	}
	if resp.MonthSpend, err = h.items.SpendSince(householdID, month); err != nil {
		h.logger.Error("summary: month spend", "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}
