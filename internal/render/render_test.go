package render

import (
	"testing"
	"time"

	"github.com/hearth-app/hearth/internal/model"
)

func item(id, categoryID int64, name, status string, created time.Time) model.Item {
	return model.Item{ID: id, CategoryID: categoryID, Name: name, Status: status, CreatedAt: created}
}

func TestBuildListViewDropsForeignCategories(t *testing.T) {
	now := time.Now()
	items := []model.Item{
		item(1, 1, "milk", model.StatusTodo, now),
		item(2, 2, "hammer", model.StatusTodo, now),
		item(3, 1, "eggs", model.StatusTodo, now),
	}

	view := BuildListView(items, "", 1)

	if view.Dropped != 1 {
		t.Fatalf("Dropped = %d, want 1", view.Dropped)
	}
	if len(view.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(view.Rows))
	}
	for _, r := range view.Rows {
		if r.CategoryID != 1 {
			t.Fatalf("row %q has category %d", r.Name, r.CategoryID)
		}
	}
}

func TestBuildListViewSortTodoBeforeDone(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(-time.Hour) // todo item is older
	doneItem := item(1, 1, "flour", model.StatusDone, t1)
	todoItem := item(2, 1, "milk", model.StatusTodo, t2)

	// Order must not depend on input order.
	for _, input := range [][]model.Item{
		{doneItem, todoItem},
		{todoItem, doneItem},
	} {
		view := BuildListView(input, "", 1)
		if len(view.Rows) != 2 {
			t.Fatalf("got %d rows, want 2", len(view.Rows))
		}
		if view.Rows[0].Status != model.StatusTodo || view.Rows[1].Status != model.StatusDone {
			t.Fatalf("order = [%s, %s], want [todo, done]", view.Rows[0].Status, view.Rows[1].Status)
		}
	}
}

func TestBuildListViewNewestFirstWithinGroup(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []model.Item{
		item(1, 1, "old", model.StatusTodo, base),
		item(2, 1, "new", model.StatusTodo, base.Add(time.Hour)),
	}

	view := BuildListView(items, "", 1)

	if view.Rows[0].Name != "new" || view.Rows[1].Name != "old" {
		t.Fatalf("order = [%s, %s], want newest first", view.Rows[0].Name, view.Rows[1].Name)
	}
}

func TestBuildListViewSearch(t *testing.T) {
	now := time.Now()
	items := []model.Item{
		item(1, 1, "Whole Milk", model.StatusTodo, now),
		item(2, 1, "eggs", model.StatusTodo, now),
	}

	view := BuildListView(items, "MILK", 1)

	if len(view.Rows) != 1 || view.Rows[0].Name != "Whole Milk" {
		t.Fatalf("search returned %+v", view.Rows)
	}
}

func TestBuildListViewEmptyStates(t *testing.T) {
	now := time.Now()
	populated := []model.Item{item(1, 1, "milk", model.StatusTodo, now)}

	if got := BuildListView(nil, "", 1).Empty; got != EmptyNoItems {
		t.Fatalf("empty category without search: %v, want EmptyNoItems", got)
	}
	if got := BuildListView(populated, "zzz", 1).Empty; got != EmptyNoMatches {
		t.Fatalf("no search hits: %v, want EmptyNoMatches", got)
	}
	if got := BuildListView(nil, "zzz", 1).Empty; got != EmptyNoMatches {
		t.Fatalf("empty category with search: %v, want EmptyNoMatches", got)
	}
	if got := BuildListView(populated, "", 1).Empty; got != EmptyNone {
		t.Fatalf("populated list: %v, want EmptyNone", got)
	}
}

func TestBuildListViewOpenCount(t *testing.T) {
	now := time.Now()
	items := []model.Item{
		item(1, 1, "milk", model.StatusTodo, now),
		item(2, 1, "flour", model.StatusDone, now),
		item(3, 1, "eggs", model.StatusTodo, now),
	}

	if got := BuildListView(items, "", 1).OpenCount; got != 2 {
		t.Fatalf("OpenCount = %d, want 2", got)
	}
}

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		status string
		urgent bool
		want   Style
	}{
		{model.StatusTodo, false, Style{Label: "todo", Color: "accent"}},
		{model.StatusTodo, true, Style{Label: "urgent", Color: "red"}},
		{model.StatusDone, false, Style{Label: "done", Color: "green"}},
		{model.StatusDone, true, Style{Label: "done", Color: "green"}},
	}
	for _, tt := range tests {
		if got := StatusStyle(tt.status, tt.urgent); got != tt.want {
			t.Errorf("StatusStyle(%q, %v) = %+v, want %+v", tt.status, tt.urgent, got, tt.want)
		}
	}
}
