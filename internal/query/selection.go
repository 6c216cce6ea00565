package query

// Selection tracks multi-selected row ids for bulk actions. Selections are
// scoped to the currently visible, filtered row set and never survive a
// recomposition.
type Selection struct {
	IDs map[int64]bool
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{IDs: make(map[int64]bool)}
}

// Toggle flips membership of one record id.
func (s *Selection) Toggle(id int64) {
	if s.IDs == nil {
		s.IDs = make(map[int64]bool)
	}
	if s.IDs[id] {
		delete(s.IDs, id)
	} else {
		s.IDs[id] = true
	}
}

// SelectAll selects exactly the given visible ids, replacing any prior
// selection. It never reaches outside the visible, filtered row set.
func (s *Selection) SelectAll(visible []int64) {
	s.IDs = make(map[int64]bool, len(visible))
	for _, id := range visible {
		s.IDs[id] = true
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.IDs = make(map[int64]bool)
}

// Prune drops ids no longer present in the visible set.
func (s *Selection) Prune(visible []int64) {
	keep := make(map[int64]bool, len(visible))
	for _, id := range visible {
		if s.IDs[id] {
			keep[id] = true
		}
	}
	s.IDs = keep
}

// Count returns the number of selected rows.
func (s *Selection) Count() int {
	return len(s.IDs)
}

// Sorted returns the selected ids in ascending order.
func (s *Selection) Sorted() []int64 {
	out := make([]int64, 0, len(s.IDs))
	for id := range s.IDs {
		out = append(out, id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
