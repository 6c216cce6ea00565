package query

// ViewState holds column presentation state: order, hidden set, and the
// single active sort. It is orthogonal to filter state and survives filter
// changes; only a category change resets it.
type ViewState struct {
	ColumnOrder []string
	Hidden      map[string]bool
	Sort        *Sort
}

// NewViewState builds the default view state for a screen and category.
func NewViewState(reg *Registry, cat Category) ViewState {
	return ViewState{
		ColumnOrder: reg.DefaultColumns(cat),
		Hidden:      make(map[string]bool),
	}
}

// Reorder moves column id `from` to the position currently held by `to`.
// No-op when the ids are equal or either is absent from the order.
func (v *ViewState) Reorder(from, to string) {
	if from == to {
		return
	}
	fi, ti := -1, -1
	for i, id := range v.ColumnOrder {
		switch id {
		case from:
			fi = i
		case to:
			ti = i
		}
	}
	if fi < 0 || ti < 0 {
		return
	}
	col := v.ColumnOrder[fi]
	order := append(v.ColumnOrder[:fi], v.ColumnOrder[fi+1:]...)
	// Deleting before fi shifts the target left by one.
	if fi < ti {
		ti--
	}
	order = append(order, "")
	copy(order[ti+1:], order[ti:])
	order[ti] = col
	v.ColumnOrder = order
}

// Hide adds a column to the hidden set. Hiding the last visible column is
// permitted; the row body simply renders empty.
func (v *ViewState) Hide(id string) {
	if !v.has(id) {
		return
	}
	if v.Hidden == nil {
		v.Hidden = make(map[string]bool)
	}
	v.Hidden[id] = true
}

// Show removes a column from the hidden set.
func (v *ViewState) Show(id string) {
	delete(v.Hidden, id)
}

// ToggleHidden flips a column's hidden state.
func (v *ViewState) ToggleHidden(id string) {
	if v.Hidden[id] {
		v.Show(id)
	} else {
		v.Hide(id)
	}
}

// SetSort replaces the single active sort. There are no secondary keys.
// The sort field need not be a visible column.
func (v *ViewState) SetSort(field string, dir SortDirection) {
	v.Sort = &Sort{Field: field, Direction: dir}
}

// ClearSort removes the active sort.
func (v *ViewState) ClearSort() {
	v.Sort = nil
}

// Visible returns the column ids currently shown, in order.
func (v *ViewState) Visible() []string {
	out := make([]string, 0, len(v.ColumnOrder))
	for _, id := range v.ColumnOrder {
		if !v.Hidden[id] {
			out = append(out, id)
		}
	}
	return out
}

// ResetForCategory hard-resets to the category's default permutation with
// no hidden columns and no sort. Categories expose structurally different
// column sets, so this is a replacement, not a merge.
func (v *ViewState) ResetForCategory(reg *Registry, cat Category) {
	v.ColumnOrder = reg.DefaultColumns(cat)
	v.Hidden = make(map[string]bool)
	v.Sort = nil
}

func (v *ViewState) has(id string) bool {
	for _, c := range v.ColumnOrder {
		if c == id {
			return true
		}
	}
	return false
}
