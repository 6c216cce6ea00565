package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelectionToggle(t *testing.T) {
	s := NewSelection()

	s.Toggle(7)
	s.Toggle(9)
	s.Toggle(7)

	if s.Count() != 1 || !s.IDs[9] {
		t.Errorf("selection after toggles = %v", s.IDs)
	}
}

func TestSelectAllReplacesWithVisibleSet(t *testing.T) {
	s := NewSelection()
	s.Toggle(100) // pre-existing selection outside the visible set

	s.SelectAll([]int64{1, 2, 3})

	if diff := cmp.Diff([]int64{1, 2, 3}, s.Sorted()); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
}

func TestPruneDropsStaleIDs(t *testing.T) {
	s := NewSelection()
	s.SelectAll([]int64{1, 2, 3, 4})

	// The visible set shrank (a filter was removed); stale ids must go.
	s.Prune([]int64{2, 4, 5})

	if diff := cmp.Diff([]int64{2, 4}, s.Sorted()); diff != "" {
		t.Errorf("pruned selection (-want +got):\n%s", diff)
	}
}

func TestClear(t *testing.T) {
	s := NewSelection()
	s.SelectAll([]int64{1, 2})
	s.Clear()
	if s.Count() != 0 {
		t.Errorf("selection not empty after clear: %v", s.IDs)
	}
}
