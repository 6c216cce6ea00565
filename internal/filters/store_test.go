package filters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crmdeck/crmdeck/internal/query"
	"github.com/crmdeck/crmdeck/internal/query/querytest"
)

var storeNow = func() time.Time {
	return time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local)
}

func TestListUnionOfSystemAndCustom(t *testing.T) {
	eng := &querytest.MockEngine{
		Filters: []query.SavedFilter{
			{Name: "kates calls", Conditions: []query.Condition{
				{Field: "assignedUser", Operator: string(query.OpEquals), Value: "kate"},
			}},
		},
	}
	s := New(eng, query.ScreenActivities, storeNow)

	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var system, custom int
	for _, f := range got {
		if f.IsSystem {
			system++
		} else {
			custom++
		}
	}
	if system != 3 || custom != 1 {
		t.Errorf("system=%d custom=%d, want 3 system and 1 custom", system, custom)
	}
}

func TestListToleratesEmptyRemote(t *testing.T) {
	s := New(&querytest.MockEngine{}, query.ScreenActivities, storeNow)
	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List with no custom filters: %v", err)
	}
	for _, f := range got {
		if !f.IsSystem {
			t.Errorf("unexpected custom filter %q", f.Name)
		}
	}
}

func TestSystemFilterBoundsTrackNow(t *testing.T) {
	s := New(&querytest.MockEngine{}, query.ScreenActivities, storeNow)
	f, ok := s.Get("today")
	if !ok {
		t.Fatal("today filter missing")
	}
	for _, c := range f.Conditions {
		if c.Value != "2024-06-15" {
			t.Errorf("%s = %q, want 2024-06-15", c.Field, c.Value)
		}
	}

	f, ok = s.Get("overdue")
	if !ok {
		t.Fatal("overdue filter missing")
	}
	for _, c := range f.Conditions {
		if c.Field == "dateTo" && c.Value != "2024-06-14" {
			t.Errorf("overdue dateTo = %q, want yesterday", c.Value)
		}
	}
}

func TestSaveUpsertsByName(t *testing.T) {
	eng := &querytest.MockEngine{}
	s := New(eng, query.ScreenActivities, storeNow)
	ctx := context.Background()

	first := []query.Condition{{Field: "status", Operator: string(query.OpEquals), Value: "Planned"}}
	second := []query.Condition{{Field: "status", Operator: string(query.OpEquals), Value: "Completed"}}

	if err := s.Save(ctx, "mine", first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	// Same name twice overwrites silently, no conflict error.
	if err := s.Save(ctx, "mine", second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	f, ok := s.Get("mine")
	if !ok || f.Conditions[0].Value != "Completed" {
		t.Errorf("filter after overwrite = %+v", f)
	}
	if len(eng.SavedFilters) != 2 {
		t.Errorf("remote saw %d saves, want 2", len(eng.SavedFilters))
	}
}

func TestSaveFailureKeepsLocalCopyAndReturnsError(t *testing.T) {
	boom := errors.New("network down")
	eng := &querytest.MockEngine{
		SaveFilterFunc: func(context.Context, query.SavedFilter) error { return boom },
	}
	s := New(eng, query.ScreenActivities, storeNow)

	err := s.Save(context.Background(), "mine", []query.Condition{
		{Field: "status", Operator: string(query.OpEquals), Value: "Planned"},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("save error = %v, want wrapped network error", err)
	}
	// Local copy keeps serving the session.
	if _, ok := s.Get("mine"); !ok {
		t.Error("local copy discarded on remote failure")
	}
}

func TestListFailureReturnsCacheAndError(t *testing.T) {
	boom := errors.New("timeout")
	calls := 0
	eng := &querytest.MockEngine{
		ListFiltersFunc: func(context.Context, query.Screen) ([]query.SavedFilter, error) {
			calls++
			if calls == 1 {
				return []query.SavedFilter{{Name: "kept"}}, nil
			}
			return nil, boom
		},
	}
	s := New(eng, query.ScreenActivities, storeNow)
	ctx := context.Background()

	if _, err := s.List(ctx); err != nil {
		t.Fatalf("first list: %v", err)
	}

	got, err := s.List(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("second list error = %v", err)
	}
	found := false
	for _, f := range got {
		if f.Name == "kept" {
			found = true
		}
	}
	if !found {
		t.Error("cached custom filter missing from degraded list")
	}
}

func TestDeleteSystemFilterRejected(t *testing.T) {
	eng := &querytest.MockEngine{}
	s := New(eng, query.ScreenActivities, storeNow)

	if err := s.Delete(context.Background(), "today"); !errors.Is(err, ErrSystemFilter) {
		t.Errorf("delete system filter = %v, want ErrSystemFilter", err)
	}
	if len(eng.DeletedFilters) != 0 {
		t.Error("system filter delete reached the backend")
	}
}

func TestDeleteCustomFilterRemovesExactlyThatEntry(t *testing.T) {
	eng := &querytest.MockEngine{}
	s := New(eng, query.ScreenActivities, storeNow)
	ctx := context.Background()

	_ = s.Save(ctx, "one", nil)
	_ = s.Save(ctx, "two", nil)

	if err := s.Delete(ctx, "one"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Get("one"); ok {
		t.Error("deleted filter still present")
	}
	if _, ok := s.Get("two"); !ok {
		t.Error("unrelated filter removed")
	}
}

func TestSaveRejectsSystemName(t *testing.T) {
	s := New(&querytest.MockEngine{}, query.ScreenActivities, storeNow)
	if err := s.Save(context.Background(), "today", nil); err == nil {
		t.Error("saving over a built-in name must fail")
	}
}
