package store

import (
	"testing"

	"github.com/hearth-app/hearth/internal/model"
)

func TestListByKindOrdering(t *testing.T) {
	f := newFixture(t, model.KindShopping)

	second, err := f.categories.Create(f.household.ID, model.KindShopping, "Pharmacy", "", "", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	pinned, err := f.categories.Create(f.household.ID, model.KindShopping, "Weekly", "", "", true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Explicit sort keys so ordering does not depend on creation time.
	for i, id := range []int64{f.category.ID, second.ID, pinned.ID} {
		if err := f.categories.UpdateSortOrder(id, int64(i)); err != nil {
			t.Fatalf("sort order: %v", err)
		}
	}

	cats, err := f.categories.ListByKind(f.household.ID, model.KindShopping)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	if cats[0].ID != pinned.ID {
		t.Errorf("pinned category not first: got %q", cats[0].Label)
	}
	if cats[1].ID != f.category.ID || cats[2].ID != second.ID {
		t.Errorf("unpinned order = %q, %q", cats[1].Label, cats[2].Label)
	}
}

func TestListByKindScopesKindAndHousehold(t *testing.T) {
	f := newFixture(t, model.KindShopping)

	if _, err := f.categories.Create(f.household.ID, model.KindTasks, "Renovation", "", "", false); err != nil {
		t.Fatalf("create task category: %v", err)
	}

	other, err := f.users.Create("other@example.com", "Other", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	otherHH, err := f.households.Create("Other Household", other.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if _, err := f.categories.Create(otherHH.ID, model.KindShopping, "Their Groceries", "", "", false); err != nil {
		t.Fatalf("create foreign category: %v", err)
	}

	cats, err := f.categories.ListByKind(f.household.ID, model.KindShopping)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 1 || cats[0].ID != f.category.ID {
		t.Fatalf("shopping list leaked across kind or household: %+v", cats)
	}
}

func TestCategoryUpdate(t *testing.T) {
	f := newFixture(t, model.KindNotes)

	got, err := f.categories.Update(f.category.ID, "Recipes", "img://1", "#aabbcc", true)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Label != "Recipes" || got.Color != "#aabbcc" || !got.Pinned {
		t.Fatalf("update not applied: %+v", got)
	}
}
