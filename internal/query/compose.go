package query

import (
	"net/url"
	"sort"
	"strconv"
	"time"
)

// DefaultPageSize is the page size used when none is set.
const DefaultPageSize = 20

// State is the complete filter/view state of one screen. All transitions
// go through Apply; the composed query is derived from the state by
// Compose and never mutated in place.
type State struct {
	Screen   Screen
	Category Category
	Tab      TabWindow
	Explicit Explicit
	Manual   []Condition // manual filter conditions, one per field
	Active   *SavedFilter
	View     ViewState
	Page     int
	Size     int
}

// NewState returns the default state for a screen.
func NewState(reg *Registry) State {
	return State{
		Screen: reg.Screen,
		Tab:    TabAll,
		View:   NewViewState(reg, CategoryNone),
		Size:   DefaultPageSize,
	}
}

// Transition is one reducer input. The concrete types form a tagged union.
type Transition interface{ isTransition() }

// SetCondition upserts a manual filter condition by field.
type SetCondition struct{ Cond Condition }

// RemoveCondition drops the manual condition on one field.
type RemoveCondition struct{ Field string }

// SelectTab switches the quick-filter tab window. Parametric tabs require
// Explicit; selecting one without it is a no-op.
type SelectTab struct {
	Tab      TabWindow
	Explicit Explicit
}

// SelectSavedFilter activates a saved filter, replacing any previously
// active filter's entire contribution.
type SelectSavedFilter struct{ Filter SavedFilter }

// ClearSavedFilter deactivates the active saved filter without touching
// manual conditions or the active tab.
type ClearSavedFilter struct{}

// Reorder moves a column in the view state.
type Reorder struct{ From, To string }

// ToggleHidden flips a column's visibility.
type ToggleHidden struct{ Column string }

// SetSort replaces the single active sort.
type SetSort struct {
	Field     string
	Direction SortDirection
}

// ChangeCategory switches the record category, hard-resetting view state.
type ChangeCategory struct{ Category Category }

// SetPage is a pure pagination change; it does not reset to page 0.
type SetPage struct{ Page int }

// SetPageSize changes the page size and returns to the first page.
type SetPageSize struct{ Size int }

func (SetCondition) isTransition()      {}
func (RemoveCondition) isTransition()   {}
func (SelectTab) isTransition()         {}
func (SelectSavedFilter) isTransition() {}
func (ClearSavedFilter) isTransition()  {}
func (Reorder) isTransition()           {}
func (ToggleHidden) isTransition()      {}
func (SetSort) isTransition()           {}
func (ChangeCategory) isTransition()    {}
func (SetPage) isTransition()           {}
func (SetPageSize) isTransition()       {}

// Apply reduces one transition into a new state. Any transition that can
// change the composed query returns the user to the first page; column
// reorder/visibility and explicit pagination changes do not.
func Apply(reg *Registry, st State, tr Transition) State {
	switch t := tr.(type) {
	case SetCondition:
		st.Manual = upsertCondition(st.Manual, t.Cond)
		// A manual edit of a date field takes over the date dimension from
		// whatever tab was active.
		if isDateField(reg, t.Cond.Field) {
			st.Tab = TabAll
			st.Explicit = Explicit{}
		}
		st.Page = 0

	case RemoveCondition:
		st.Manual = removeCondition(st.Manual, t.Field)
		st.Page = 0

	case SelectTab:
		switch {
		case t.Tab == TabSelectDate && t.Explicit.Date == "":
			// Parametric tab without its date: previous bounds retained,
			// tab not switched.
			return st
		case t.Tab == TabSelectPeriod && (t.Explicit.Range.Start == "" || t.Explicit.Range.End == ""):
			return st
		}
		st.Tab = t.Tab
		st.Explicit = t.Explicit
		// A tab switch is a full date-bound replacement: residual manual
		// date conditions must not leak into the new window.
		st.Manual = removeDateConditions(reg, st.Manual)
		st.Page = 0

	case SelectSavedFilter:
		f := t.Filter
		st.Active = &f
		st.Page = 0

	case ClearSavedFilter:
		st.Active = nil
		st.Page = 0

	case Reorder:
		st.View.Reorder(t.From, t.To)

	case ToggleHidden:
		st.View.ToggleHidden(t.Column)

	case SetSort:
		st.View.SetSort(t.Field, t.Direction)
		st.Page = 0

	case ChangeCategory:
		if t.Category == st.Category {
			return st
		}
		st.Category = t.Category
		st.View.ResetForCategory(reg, t.Category)
		st.Page = 0

	case SetPage:
		if t.Page >= 0 {
			st.Page = t.Page
		}

	case SetPageSize:
		if t.Size > 0 {
			st.Size = t.Size
			st.Page = 0
		}
	}
	return st
}

func upsertCondition(conds []Condition, c Condition) []Condition {
	out := make([]Condition, 0, len(conds)+1)
	replaced := false
	for _, existing := range conds {
		if existing.Field == c.Field {
			out = append(out, c)
			replaced = true
		} else {
			out = append(out, existing)
		}
	}
	if !replaced {
		out = append(out, c)
	}
	return out
}

func removeCondition(conds []Condition, field string) []Condition {
	out := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c.Field != field {
			out = append(out, c)
		}
	}
	return out
}

func removeDateConditions(reg *Registry, conds []Condition) []Condition {
	out := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if !isDateField(reg, c.Field) {
			out = append(out, c)
		}
	}
	return out
}

// ComposedQuery is the materialized request against the paginated backend.
// It is built fresh on every composition so a cleared filter can never
// leave stale fields behind.
type ComposedQuery struct {
	Screen   Screen
	Page     int
	Size     int
	Sort     Sort
	Category Category
	Params   map[string]string
}

// Compose derives the outgoing query from the current state. It is a pure
// function of (state, now). Precedence: the active saved filter's
// conditions bind first, manual conditions overwrite them per field, and
// the tab window's bounds replace the date dimension entirely.
func Compose(reg *Registry, st State, now time.Time) ComposedQuery {
	// Field-keyed fragments so a manual condition supersedes every query
	// key the saved filter contributed for the same field.
	byField := make(map[string]map[string]string)
	fieldOrder := make([]string, 0, 8)
	bind := func(c Condition) {
		frag := Fragment(reg, c)
		if frag == nil {
			return
		}
		if _, seen := byField[c.Field]; !seen {
			fieldOrder = append(fieldOrder, c.Field)
		}
		byField[c.Field] = frag
	}

	if st.Active != nil {
		for _, c := range st.Active.Conditions {
			bind(c)
		}
	}
	for _, c := range st.Manual {
		bind(c)
	}

	params := make(map[string]string)
	for _, field := range fieldOrder {
		for k, v := range byField[field] {
			params[k] = v
		}
	}

	// Tab bounds replace any date bounds contributed above; they are never
	// merged with residual values.
	if bounds, ok := ResolveTab(st.Tab, now, st.Explicit); ok {
		if st.Tab != TabAll && st.Tab != TabToDo {
			delete(params, reg.TabFromKey)
			delete(params, reg.TabToKey)
			// Saved-filter conditions on date fields are part of the same
			// dimension; the tab replaces them, it never merges.
			for _, f := range reg.Fields {
				if f.Type == FieldDate && f.QueryKey != "" {
					delete(params, f.QueryKey)
					delete(params, f.QueryKey+"From")
					delete(params, f.QueryKey+"To")
				}
			}
		}
		if bounds.DateFrom != "" {
			params[reg.TabFromKey] = bounds.DateFrom
		}
		if bounds.DateTo != "" {
			params[reg.TabToKey] = bounds.DateTo
		}
		if bounds.Done != nil && reg.HasDone {
			params["done"] = strconv.FormatBool(*bounds.Done)
		}
	}

	// The category scope is authoritative for the screen.
	if st.Category != CategoryNone {
		params["category"] = string(st.Category)
	}

	sortKey := reg.DefaultSort
	if st.View.Sort != nil {
		sortKey = *st.View.Sort
	}

	size := st.Size
	if size <= 0 {
		size = DefaultPageSize
	}

	return ComposedQuery{
		Screen:   st.Screen,
		Page:     st.Page,
		Size:     size,
		Sort:     sortKey,
		Category: st.Category,
		Params:   params,
	}
}

// Values renders the query as URL parameters.
func (q ComposedQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	v.Set("sort", q.Sort.Field+","+string(q.Sort.Direction))
	for k, val := range q.Params {
		v.Set(k, val)
	}
	return v
}

// Encode returns the canonical string form of the query. Encodings are
// stable for equal queries, so they double as the key for discarding stale
// fetch responses.
func (q ComposedQuery) Encode() string {
	return q.Screen.String() + "?" + q.Values().Encode()
}

// Chips returns the active filter parameters as "key=value" strings in
// stable order, for the active-filter chip row. Pagination and sort are
// not chips.
func (q ComposedQuery) Chips() []string {
	keys := make([]string, 0, len(q.Params))
	for k := range q.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	chips := make([]string, 0, len(keys))
	for _, k := range keys {
		chips = append(chips, k+"="+q.Params[k])
	}
	return chips
}
