package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hearth-app/hearth/internal/auth"
	"github.com/hearth-app/hearth/internal/database"
	"github.com/hearth-app/hearth/internal/store"
)

func setupAuthDB(t *testing.T) (*store.SessionStore, *store.HouseholdStore, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db), store.NewHouseholdStore(db), store.NewUserStore(db)
}

func TestRequireAuthNoCookie(t *testing.T) {
	ss, hs, _ := setupAuthDB(t)

	handler := RequireAuth(ss, hs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ss, hs, _ := setupAuthDB(t)

	handler := RequireAuth(ss, hs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "invalid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	ss, hs, us := setupAuthDB(t)

	user, err := us.Create("ada@example.com", "Ada", "hash")
	if err != nil {
		t.Fatal(err)
	}
	hh, err := hs.Create("Lovelace", user.ID)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := ss.Create(user.ID, hh.ID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	var got auth.AuthContext
	handler := RequireAuth(ss, hs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got.UserID != user.ID || got.HouseholdID != hh.ID || got.Role != "owner" {
		t.Fatalf("auth context = %+v", got)
	}
}

func TestRequireOwner(t *testing.T) {
	owner := auth.WithAuth(httptest.NewRequest("DELETE", "/api/members/2", nil).Context(),
		auth.AuthContext{UserID: 1, HouseholdID: 1, Role: "owner"})
	member := auth.WithAuth(httptest.NewRequest("DELETE", "/api/members/2", nil).Context(),
		auth.AuthContext{UserID: 2, HouseholdID: 1, Role: "member"})

	handler := RequireOwner(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/members/2", nil).WithContext(owner))
	if rec.Code != http.StatusOK {
		t.Errorf("owner: status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/members/2", nil).WithContext(member))
	if rec.Code != http.StatusForbidden {
		t.Errorf("member: status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
