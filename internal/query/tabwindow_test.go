package query

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// wednesday is 2024-06-12, a Wednesday, used as the anchor for week tests.
var wednesday = time.Date(2024, 6, 12, 15, 30, 0, 0, time.Local)

func boolPtr(b bool) *bool { return &b }

func TestResolveTabComputedWindows(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 45, 12, 0, time.Local) // Saturday

	tests := []struct {
		name string
		tab  TabWindow
		want TabBounds
	}{
		{"today", TabToday, TabBounds{DateFrom: "2024-06-15", DateTo: "2024-06-15"}},
		{"tomorrow", TabTomorrow, TabBounds{DateFrom: "2024-06-16", DateTo: "2024-06-16"}},
		{"overdue", TabOverdue, TabBounds{DateTo: "2024-06-14", Done: boolPtr(false)}},
		{"all", TabAll, TabBounds{}},
		{"todo", TabToDo, TabBounds{Done: boolPtr(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveTab(tt.tab, now, Explicit{})
			if !ok {
				t.Fatalf("ResolveTab(%v) not ok", tt.tab)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("bounds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveTabIsPureInNow(t *testing.T) {
	for _, tab := range []TabWindow{TabAll, TabToDo, TabOverdue, TabToday, TabTomorrow, TabThisWeek, TabNextWeek} {
		a, _ := ResolveTab(tab, wednesday, Explicit{})
		b, _ := ResolveTab(tab, wednesday, Explicit{})
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("%v: resolve not deterministic (-first +second):\n%s", tab, diff)
		}
	}
}

func TestResolveThisWeekContainsNow(t *testing.T) {
	got, _ := ResolveTab(TabThisWeek, wednesday, Explicit{})

	// Sunday-start week containing Wednesday 2024-06-12.
	want := TabBounds{DateFrom: "2024-06-09", DateTo: "2024-06-15"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("this week bounds (-want +got):\n%s", diff)
	}

	day := wednesday.Format(DateLayout)
	if day < got.DateFrom || day > got.DateTo {
		t.Errorf("week [%s, %s] does not contain now %s", got.DateFrom, got.DateTo, day)
	}
}

func TestResolveNextWeekFollowsSaturday(t *testing.T) {
	got, _ := ResolveTab(TabNextWeek, wednesday, Explicit{})

	// The 7 days immediately following the current week's Saturday (06-15).
	want := TabBounds{DateFrom: "2024-06-16", DateTo: "2024-06-22"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("next week bounds (-want +got):\n%s", diff)
	}
}

func TestResolveThisWeekOnSunday(t *testing.T) {
	sunday := time.Date(2024, 6, 9, 8, 0, 0, 0, time.Local)
	got, _ := ResolveTab(TabThisWeek, sunday, Explicit{})
	want := TabBounds{DateFrom: "2024-06-09", DateTo: "2024-06-15"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sunday week bounds (-want +got):\n%s", diff)
	}
}

func TestResolveOverdueNeverIncludesToday(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 1, 0, time.Local)
	got, _ := ResolveTab(TabOverdue, now, Explicit{})

	if got.DateTo != "2024-06-14" {
		t.Errorf("overdue dateTo = %q, want 2024-06-14", got.DateTo)
	}
	if got.Done == nil || *got.Done {
		t.Error("overdue must carry done=false")
	}
	// A record dated today falls outside [_, 2024-06-14] regardless of done.
	if today := now.Format(DateLayout); today <= got.DateTo {
		t.Errorf("today %s must sort after overdue bound %s", today, got.DateTo)
	}
}

func TestResolveParametricTabs(t *testing.T) {
	now := wednesday

	if _, ok := ResolveTab(TabSelectDate, now, Explicit{}); ok {
		t.Error("SelectDate without explicit date must not resolve")
	}
	if _, ok := ResolveTab(TabSelectPeriod, now, Explicit{Range: DateRange{Start: "2024-06-01"}}); ok {
		t.Error("SelectPeriod with half a range must not resolve")
	}

	got, ok := ResolveTab(TabSelectDate, now, Explicit{Date: "2024-03-08"})
	if !ok || got.DateFrom != "2024-03-08" || got.DateTo != "2024-03-08" {
		t.Errorf("SelectDate = %+v ok=%v, want 2024-03-08 bounds", got, ok)
	}

	got, ok = ResolveTab(TabSelectPeriod, now, Explicit{Range: DateRange{Start: "2024-06-01", End: "2024-06-10"}})
	if !ok || got.DateFrom != "2024-06-01" || got.DateTo != "2024-06-10" {
		t.Errorf("SelectPeriod = %+v ok=%v, want verbatim range", got, ok)
	}
}
