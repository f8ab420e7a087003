package handler

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/hearth-app/hearth/internal/auth"
	"github.com/hearth-app/hearth/internal/database"
	"github.com/hearth-app/hearth/internal/live"
	"github.com/hearth-app/hearth/internal/model"
	"github.com/hearth-app/hearth/internal/store"
)

type env struct {
	db        *sql.DB
	bus       *live.Bus
	logger    *slog.Logger
	household *model.Household
	category  *model.Category

	items      *store.ItemStore
	tasks      *store.TaskStore
	categories *store.CategoryStore
}

// newEnv sets up an in-memory database with one user, household and
// category of the given kind.
func newEnv(t *testing.T, kind model.CollectionKind) *env {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := &env{
		db:         db,
		bus:        live.NewBus(logger),
		logger:     logger,
		items:      store.NewItemStore(db),
		tasks:      store.NewTaskStore(db),
		categories: store.NewCategoryStore(db),
	}

	user, err := store.NewUserStore(db).Create("owner@example.com", "Owner", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	e.household, err = store.NewHouseholdStore(db).Create("Test Household", user.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	e.category, err = e.categories.Create(e.household.ID, kind, "General", "", "", false)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return e
}

// request builds an authenticated JSON request, optionally with an {id}
// path value.
func (e *env) request(method, target, body string, id int64) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if id != 0 {
		r.SetPathValue("id", strconv.FormatInt(id, 10))
	}
	return r.WithContext(auth.WithAuth(r.Context(), auth.AuthContext{
		UserID:      1,
		HouseholdID: e.household.ID,
		Role:        model.RoleOwner,
	}))
}

func checkStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}
