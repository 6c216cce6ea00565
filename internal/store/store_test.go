package store

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/crmdeck/crmdeck/internal/query"
	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "crmdeck.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return s
}

func seedPersons(t *testing.T, s *Store, persons ...query.Person) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(persons))
	for _, p := range persons {
		id, err := s.CreatePerson(context.Background(), p)
		if err != nil {
			t.Fatalf("CreatePerson(%q): %v", p.Name, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func seedActivities(t *testing.T, s *Store, acts ...query.Activity) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(acts))
	for _, a := range acts {
		id, err := s.CreateActivity(context.Background(), a)
		if err != nil {
			t.Fatalf("CreateActivity(%q): %v", a.Subject, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestListPersonsFilters(t *testing.T) {
	s := newTestStore(t)
	seedPersons(t, s,
		query.Person{Name: "Amelia Hart", Category: "Bride", WeddingDate: "2024-07-15"},
		query.Person{Name: "Ben Okafor", Category: "Groom", WeddingDate: "2024-07-15"},
		query.Person{Name: "Amara Singh", Category: "Bride", WeddingDate: "2024-09-01"},
	)
	ctx := context.Background()

	tests := []struct {
		name   string
		params url.Values
		want   []string
	}{
		{"no filters returns all sorted by name", url.Values{}, []string{"Amara Singh", "Amelia Hart", "Ben Okafor"}},
		{"name equals", url.Values{"name": {"Ben Okafor"}}, []string{"Ben Okafor"}},
		{"name contains", url.Values{"nameContains": {"mar"}}, []string{"Amara Singh"}},
		{"name prefix", url.Values{"namePrefix": {"Am"}}, []string{"Amara Singh", "Amelia Hart"}},
		{"category not equals", url.Values{"categoryNot": {"Bride"}}, []string{"Ben Okafor"}},
		{"wedding date window", url.Values{"weddingDateFrom": {"2024-08-01"}, "weddingDateTo": {"2024-12-31"}}, []string{"Amara Singh"}},
		{"filters AND together", url.Values{"namePrefix": {"Am"}, "weddingDate": {"2024-07-15"}}, []string{"Amelia Hart"}},
		{"unknown parameter ignored", url.Values{"organization": {"x"}}, []string{"Amara Singh", "Amelia Hart", "Ben Okafor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.ListPersons(ctx, tt.params)
			if err != nil {
				t.Fatalf("ListPersons: %v", err)
			}
			got := make([]string, 0, len(page.Content))
			for _, p := range page.Content {
				got = append(got, p.Name)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("names (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListPersonsPageEnvelope(t *testing.T) {
	s := newTestStore(t)
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		seedPersons(t, s, query.Person{Name: n})
	}

	page, err := s.ListPersons(context.Background(), url.Values{"page": {"1"}, "size": {"2"}})
	if err != nil {
		t.Fatalf("ListPersons: %v", err)
	}
	if page.TotalElements != 5 || page.TotalPages != 3 || page.Number != 1 || page.Size != 2 {
		t.Errorf("envelope = %+v", page)
	}
	if len(page.Content) != 2 || page.Content[0].Name != "c" {
		t.Errorf("page 1 content = %+v", page.Content)
	}
}

func TestListPersonsSortWhitelist(t *testing.T) {
	s := newTestStore(t)
	seedPersons(t, s,
		query.Person{Name: "b", WeddingDate: "2024-01-01"},
		query.Person{Name: "a", WeddingDate: "2024-06-01"},
	)
	ctx := context.Background()

	page, err := s.ListPersons(ctx, url.Values{"sort": {"weddingDate,desc"}})
	if err != nil {
		t.Fatalf("ListPersons: %v", err)
	}
	if page.Content[0].Name != "a" {
		t.Errorf("sort by weddingDate desc: first = %q", page.Content[0].Name)
	}

	// An unknown sort field falls back to the name default instead of
	// reaching SQL.
	page, err = s.ListPersons(ctx, url.Values{"sort": {"id; DROP TABLE persons,desc"}})
	if err != nil {
		t.Fatalf("ListPersons with bad sort: %v", err)
	}
	if page.Content[0].Name != "a" {
		t.Errorf("fallback sort: first = %q", page.Content[0].Name)
	}
}

func TestListActivitiesDateWindowAndDone(t *testing.T) {
	s := newTestStore(t)
	seedActivities(t, s,
		query.Activity{Subject: "old undone", ScheduleDate: "2024-06-10"},
		query.Activity{Subject: "today", ScheduleDate: "2024-06-15"},
		query.Activity{Subject: "old done", ScheduleDate: "2024-06-12", Done: true},
		query.Activity{Subject: "future", ScheduleDate: "2024-06-20"},
	)
	ctx := context.Background()

	// The overdue window: strictly before today, undone only.
	page, err := s.ListActivities(ctx, url.Values{
		"dateTo": {"2024-06-14"},
		"done":   {"false"},
	})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].Subject != "old undone" {
		t.Errorf("overdue window = %+v", page.Content)
	}

	// A single-day window hits exactly that day.
	page, err = s.ListActivities(ctx, url.Values{
		"dateFrom": {"2024-06-15"},
		"dateTo":   {"2024-06-15"},
	})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].Subject != "today" {
		t.Errorf("single-day window = %+v", page.Content)
	}
}

func TestListActivitiesCategoryScope(t *testing.T) {
	s := newTestStore(t)
	seedActivities(t, s,
		query.Activity{Subject: "call", Category: "CALL", ScheduleDate: "2024-06-01"},
		query.Activity{Subject: "meeting", Category: "MEETING", ScheduleDate: "2024-06-02"},
	)

	page, err := s.ListActivities(context.Background(), url.Values{"category": {"CALL"}})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].Subject != "call" {
		t.Errorf("category scope = %+v", page.Content)
	}
}

func TestUpdateActivityPatchesOnlyGivenFields(t *testing.T) {
	s := newTestStore(t)
	ids := seedActivities(t, s, query.Activity{
		Subject: "venue call", Status: "Planned", AssignedUser: "dana", Priority: "High",
	})
	ctx := context.Background()

	done := true
	status := "Completed"
	if err := s.UpdateActivity(ctx, ids[0], query.ActivityUpdate{Done: &done, Status: &status}); err != nil {
		t.Fatalf("UpdateActivity: %v", err)
	}

	page, err := s.ListActivities(ctx, url.Values{})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	got := page.Content[0]
	if !got.Done || got.Status != "Completed" {
		t.Errorf("patched fields = done=%v status=%q", got.Done, got.Status)
	}
	if got.AssignedUser != "dana" || got.Priority != "High" {
		t.Errorf("untouched fields changed: %+v", got)
	}

	if err := s.UpdateActivity(ctx, 9999, query.ActivityUpdate{Done: &done}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing id = %v, want ErrNotFound", err)
	}
}

func TestDeleteRecordNotFound(t *testing.T) {
	s := newTestStore(t)
	ids := seedPersons(t, s, query.Person{Name: "a"})
	ctx := context.Background()

	if err := s.DeletePerson(ctx, ids[0]); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}
	if err := s.DeletePerson(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteActivity(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing activity = %v, want ErrNotFound", err)
	}
}

func TestSavedFilterUpsertListDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := query.SavedFilter{
		Name:   "kates calls",
		Screen: query.ScreenActivities,
		Conditions: []query.Condition{
			{Field: "assignedUser", Operator: string(query.OpEquals), Value: "kate"},
		},
	}
	if err := s.SaveFilter(ctx, f); err != nil {
		t.Fatalf("SaveFilter: %v", err)
	}

	// Saving the same name overwrites.
	f.Conditions[0].Value = "dana"
	if err := s.SaveFilter(ctx, f); err != nil {
		t.Fatalf("SaveFilter overwrite: %v", err)
	}

	got, err := s.ListFilters(ctx, query.ScreenActivities)
	if err != nil {
		t.Fatalf("ListFilters: %v", err)
	}
	if len(got) != 1 || got[0].Conditions[0].Value != "dana" {
		t.Errorf("filters = %+v", got)
	}

	// Per-screen isolation.
	other, err := s.ListFilters(ctx, query.ScreenPersons)
	if err != nil {
		t.Fatalf("ListFilters persons: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("persons screen sees activities filters: %+v", other)
	}

	if err := s.DeleteFilter(ctx, query.ScreenActivities, "kates calls"); err != nil {
		t.Fatalf("DeleteFilter: %v", err)
	}
	if err := s.DeleteFilter(ctx, query.ScreenActivities, "kates calls"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing filter = %v, want ErrNotFound", err)
	}
}

func TestSeedDemoRefusesNonEmpty(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)

	if err := s.SeedDemo(now); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	stats, err := s.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.PersonCount == 0 || stats.ActivityCount == 0 {
		t.Errorf("stats after seed = %+v", stats)
	}

	if err := s.SeedDemo(now); err == nil {
		t.Error("second seed must refuse a non-empty database")
	}
}

func TestDueActivities(t *testing.T) {
	s := newTestStore(t)
	seedActivities(t, s,
		query.Activity{Subject: "overdue", ScheduleDate: "2024-06-10"},
		query.Activity{Subject: "done already", ScheduleDate: "2024-06-10", Done: true},
		query.Activity{Subject: "due today", ScheduleDate: "2024-06-15"},
		query.Activity{Subject: "future", ScheduleDate: "2024-06-20"},
		query.Activity{Subject: "undated"},
	)

	got, err := s.DueActivities(context.Background(), "2024-06-15", 10)
	if err != nil {
		t.Fatalf("DueActivities: %v", err)
	}
	want := []string{"overdue", "due today"}
	subjects := make([]string, 0, len(got))
	for _, a := range got {
		subjects = append(subjects, a.Subject)
	}
	if diff := cmp.Diff(want, subjects); diff != "" {
		t.Errorf("due subjects (-want +got):\n%s", diff)
	}
}

func TestEscapeLike(t *testing.T) {
	s := newTestStore(t)
	seedPersons(t, s,
		query.Person{Name: "100% Events"},
		query.Person{Name: "100x Events"},
	)

	page, err := s.ListPersons(context.Background(), url.Values{"nameContains": {"100%"}})
	if err != nil {
		t.Fatalf("ListPersons: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].Name != "100% Events" {
		t.Errorf("literal %% match = %+v", page.Content)
	}
}
