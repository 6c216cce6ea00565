package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReorderMovesColumn(t *testing.T) {
	v := NewViewState(PersonsRegistry(), CategoryNone)

	v.Reorder("phone", "name")
	want := []string{"phone", "name", "category", "organization", "manager",
		"weddingVenue", "weddingDate", "instagramId"}
	if diff := cmp.Diff(want, v.ColumnOrder); diff != "" {
		t.Errorf("order after move-left (-want +got):\n%s", diff)
	}

	v.Reorder("phone", "weddingDate")
	want = []string{"name", "category", "organization", "manager",
		"weddingVenue", "weddingDate", "phone", "instagramId"}
	if diff := cmp.Diff(want, v.ColumnOrder); diff != "" {
		t.Errorf("order after move-right (-want +got):\n%s", diff)
	}
}

func TestReorderNoOps(t *testing.T) {
	reg := PersonsRegistry()
	v := NewViewState(reg, CategoryNone)
	orig := append([]string(nil), v.ColumnOrder...)

	v.Reorder("name", "name")
	v.Reorder("name", "missing")
	v.Reorder("missing", "name")

	if diff := cmp.Diff(orig, v.ColumnOrder); diff != "" {
		t.Errorf("no-op reorder changed order (-want +got):\n%s", diff)
	}
}

func TestHideShowAndLastColumn(t *testing.T) {
	v := NewViewState(PersonsRegistry(), CategoryNone)

	v.Hide("phone")
	v.Hide("bogus") // absent id ignored
	if !v.Hidden["phone"] || v.Hidden["bogus"] {
		t.Errorf("hidden set = %v", v.Hidden)
	}

	// Hiding every column is permitted; the row body just goes empty.
	for _, id := range v.ColumnOrder {
		v.Hide(id)
	}
	if got := v.Visible(); len(got) != 0 {
		t.Errorf("visible after hiding all = %v, want none", got)
	}

	v.Show("name")
	if got := v.Visible(); len(got) != 1 || got[0] != "name" {
		t.Errorf("visible after show = %v", got)
	}
}

func TestSetSortReplacesSingleKey(t *testing.T) {
	v := NewViewState(PersonsRegistry(), CategoryNone)

	v.SetSort("name", SortAsc)
	v.SetSort("weddingDate", SortDesc)

	want := &Sort{Field: "weddingDate", Direction: SortDesc}
	if diff := cmp.Diff(want, v.Sort); diff != "" {
		t.Errorf("sort (-want +got):\n%s", diff)
	}
}

func TestCategoryChangeHardResets(t *testing.T) {
	reg := ActivitiesRegistry()
	v := NewViewState(reg, CategoryActivity)

	v.Reorder("notes", "done")
	v.Hide("priority")
	v.SetSort("subject", SortDesc)

	v.ResetForCategory(reg, CategoryCall)

	want := []string{"done", "subject", "deal", "instagramId", "phone",
		"organization", "callType", "scheduleDate", "scheduleTime",
		"assignedUser", "scheduleBy", "priority", "notes"}
	if diff := cmp.Diff(want, v.ColumnOrder); diff != "" {
		t.Errorf("call default columns (-want +got):\n%s", diff)
	}
	if len(v.Hidden) != 0 {
		t.Errorf("hidden not cleared: %v", v.Hidden)
	}
	if v.Sort != nil {
		t.Errorf("sort not cleared: %+v", v.Sort)
	}
}

func TestColumnOrderIsPermutationOfDefaults(t *testing.T) {
	reg := ActivitiesRegistry()
	for _, cat := range []Category{CategoryNone, CategoryActivity, CategoryCall, CategoryMeeting} {
		v := NewViewState(reg, cat)
		seen := make(map[string]int)
		for _, id := range v.ColumnOrder {
			seen[id]++
		}
		for id, n := range seen {
			if n != 1 {
				t.Errorf("category %q: column %q appears %d times", cat, id, n)
			}
		}
	}
}
