package store

import (
	"database/sql"
	"testing"

	"github.com/hearth-app/hearth/internal/database"
	"github.com/hearth-app/hearth/internal/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	db        *sql.DB
	user      *model.User
	household *model.Household
	category  *model.Category

	users      *UserStore
	households *HouseholdStore
	categories *CategoryStore
	items      *ItemStore
}

// newFixture creates a user, a household and one category of the given
// kind.
func newFixture(t *testing.T, kind model.CollectionKind) *fixture {
	t.Helper()
	db := testDB(t)
	f := &fixture{
		db:         db,
		users:      NewUserStore(db),
		households: NewHouseholdStore(db),
		categories: NewCategoryStore(db),
		items:      NewItemStore(db),
	}

	var err error
	f.user, err = f.users.Create("owner@example.com", "Owner", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	f.household, err = f.households.Create("Test Household", f.user.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	f.category, err = f.categories.Create(f.household.ID, kind, "General", "", "", false)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return f
}
