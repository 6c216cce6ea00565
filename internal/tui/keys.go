package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crmdeck/crmdeck/internal/query"
)

// quickTabs are the tab-bar windows cycled with tab/shift+tab. The
// parametric windows need a value and are entered through their prompts.
var quickTabs = []query.TabWindow{
	query.TabAll, query.TabToDo, query.TabOverdue, query.TabToday,
	query.TabTomorrow, query.TabThisWeek, query.TabNextWeek,
}

// categoryCycle is the order the category scope steps through.
var categoryCycle = []query.Category{
	query.CategoryNone, query.CategoryActivity, query.CategoryCall, query.CategoryMeeting,
}

// handleKey dispatches on the active input mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeFilterField:
		return m.handleFilterFieldKeys(msg)
	case modeFilterOp:
		return m.handleFilterOpKeys(msg)
	case modeFilterValue:
		return m.handleFilterValueKeys(msg)
	case modeTabPrompt:
		return m.handleTabPromptKeys(msg)
	case modeSavedFilters:
		return m.handleSavedFilterKeys(msg)
	case modeSaveName:
		return m.handleSaveNameKeys(msg)
	case modeColumns:
		return m.handleColumnKeys(msg)
	case modeConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case modeDetail, modeHelp:
		m.mode = modeList
		return m, nil
	default:
		return m.handleListKeys(msg)
	}
}

// handleListKeys handles keys in the main list view.
func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.mode = modeHelp
		return m, nil

	case "j", "down":
		if m.cursor < m.rowCount()-1 {
			m.cursor++
			m.clampCursor()
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.clampCursor()
		}
		return m, nil

	case "g", "home":
		m.cursor = 0
		m.scrollOffset = 0
		return m, nil

	case "G", "end":
		m.cursor = m.rowCount() - 1
		m.clampCursor()
		return m, nil

	case "h", "left":
		if m.state.Page > 0 {
			m2, cmd := m.apply(query.SetPage{Page: m.state.Page - 1})
			m2.cursor = 0
			m2.scrollOffset = 0
			return m2, cmd
		}
		return m, nil

	case "l", "right":
		if m.state.Page+1 < m.totalPages {
			m2, cmd := m.apply(query.SetPage{Page: m.state.Page + 1})
			m2.cursor = 0
			m2.scrollOffset = 0
			return m2, cmd
		}
		return m, nil

	case "+":
		return m.apply(query.SetPageSize{Size: m.state.Size + 10})

	case "-":
		if m.state.Size > 10 {
			return m.apply(query.SetPageSize{Size: m.state.Size - 10})
		}
		return m, nil

	case "tab":
		return m.apply(query.SelectTab{Tab: m.nextQuickTab(1)})

	case "shift+tab":
		return m.apply(query.SelectTab{Tab: m.nextQuickTab(-1)})

	case "P": // explicit period tab
		m.mode = modeTabPrompt
		m.pendingTab = query.TabSelectPeriod
		m.tabInput.Placeholder = "2026-01-01..2026-01-31"
		m.tabInput.SetValue("")
		m.tabInput.Focus()
		return m, nil

	case "D": // explicit date tab
		m.mode = modeTabPrompt
		m.pendingTab = query.TabSelectDate
		m.tabInput.Placeholder = "2026-01-15"
		m.tabInput.SetValue("")
		m.tabInput.Focus()
		return m, nil

	case "f":
		m.mode = modeFilterField
		m.fieldCursor = 0
		return m, nil

	case "F":
		m.mode = modeSavedFilters
		m.pickerCursor = 0
		m.filtersLoading = true
		spin := m.startSpinner()
		return m, tea.Batch(spin, m.loadSavedFilters())

	case "w":
		if len(m.state.Manual) == 0 {
			return m, m.flash("no manual conditions to save")
		}
		m.mode = modeSaveName
		m.nameInput.SetValue("")
		m.nameInput.Focus()
		return m, nil

	case "c":
		m.mode = modeColumns
		m.colCursor = 0
		return m, nil

	case "C":
		if m.state.Screen != query.ScreenActivities {
			return m, nil
		}
		return m.apply(query.ChangeCategory{Category: m.nextCategory()})

	case "r":
		// Reverse the active sort (the default sort when none is set).
		cur := m.reg.DefaultSort
		if m.state.View.Sort != nil {
			cur = *m.state.View.Sort
		}
		dir := query.SortAsc
		if cur.Direction == query.SortAsc {
			dir = query.SortDesc
		}
		return m.apply(query.SetSort{Field: cur.Field, Direction: dir})

	case " ":
		if id := m.rowID(m.cursor); id != 0 {
			m.selection.Toggle(id)
			if m.cursor < m.rowCount()-1 {
				m.cursor++
				m.clampCursor()
			}
		}
		return m, nil

	case "a":
		m.selection.SelectAll(m.visibleIDs())
		return m, nil

	case "x":
		m.selection.Clear()
		return m, nil

	case "d":
		if len(m.targetIDs()) == 0 {
			return m, nil
		}
		m.mode = modeConfirmDelete
		return m, nil

	case "m":
		return m.markDone(true)

	case "M":
		return m.markDone(false)

	case "enter":
		if m.rowCount() > 0 {
			m.mode = modeDetail
		}
		return m, nil

	case "v":
		return m.switchScreen()

	case "R":
		return m.reload()

	case "esc":
		if m.state.Active != nil {
			return m.apply(query.ClearSavedFilter{})
		}
		if m.state.Tab != query.TabAll {
			return m.apply(query.SelectTab{Tab: query.TabAll})
		}
		return m, nil
	}

	return m, nil
}

// nextQuickTab steps through the quick tab windows from the current one.
// A parametric tab currently active re-enters the cycle at All in either
// direction.
func (m Model) nextQuickTab(step int) query.TabWindow {
	for i, t := range quickTabs {
		if t == m.state.Tab {
			return quickTabs[(i+step+len(quickTabs))%len(quickTabs)]
		}
	}
	return query.TabAll
}

// nextCategory steps through the activity category scopes.
func (m Model) nextCategory() query.Category {
	for i, c := range categoryCycle {
		if c == m.state.Category {
			return categoryCycle[(i+1)%len(categoryCycle)]
		}
	}
	return query.CategoryNone
}

// handleFilterFieldKeys: choosing which field to filter on.
func (m Model) handleFilterFieldKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := m.reg.Fields
	switch msg.String() {
	case "esc":
		m.mode = modeList
		return m, nil

	case "j", "down":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
		return m, nil

	case "k", "up":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
		return m, nil

	case "d":
		// Drop the manual condition on the highlighted field.
		f := fields[m.fieldCursor]
		for _, c := range m.state.Manual {
			if c.Field == f.ID {
				m2, cmd := m.apply(query.RemoveCondition{Field: f.ID})
				return m2, cmd
			}
		}
		return m, nil

	case "enter":
		f := fields[m.fieldCursor]
		m.editField = f.ID
		m.opCursor = 0
		// Resume from the existing condition's operator if one is set.
		for _, c := range m.state.Manual {
			if c.Field != f.ID {
				continue
			}
			for i, op := range query.OperatorsFor(f.Type) {
				if string(op) == c.Operator {
					m.opCursor = i
				}
			}
		}
		m.mode = modeFilterOp
		return m, nil
	}
	return m, nil
}

// handleFilterOpKeys: choosing the operator for the chosen field.
func (m Model) handleFilterOpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.reg.Field(m.editField)
	if f == nil {
		m.mode = modeFilterField
		return m, nil
	}
	ops := query.OperatorsFor(f.Type)

	switch msg.String() {
	case "esc":
		m.mode = modeFilterField
		return m, nil

	case "j", "down":
		if m.opCursor < len(ops)-1 {
			m.opCursor++
		}
		return m, nil

	case "k", "up":
		if m.opCursor > 0 {
			m.opCursor--
		}
		return m, nil

	case "enter":
		m.mode = modeFilterValue
		m.optionCursor = 0
		if len(f.Options) > 0 {
			return m, nil
		}
		m.valueInput.SetValue("")
		switch {
		case f.Type == query.FieldDate && ops[m.opCursor] == query.OpBetween:
			m.valueInput.Placeholder = "2026-01-01..2026-01-31"
		case f.Type == query.FieldDate:
			m.valueInput.Placeholder = "2026-01-15"
		default:
			m.valueInput.Placeholder = f.Label
		}
		m.valueInput.Focus()
		return m, nil
	}
	return m, nil
}

// handleFilterValueKeys: entering or choosing the value.
func (m Model) handleFilterValueKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.reg.Field(m.editField)
	if f == nil {
		m.mode = modeFilterField
		return m, nil
	}
	ops := query.OperatorsFor(f.Type)
	op := ops[m.opCursor]

	// Select fields with declared options pick from a list.
	if len(f.Options) > 0 {
		switch msg.String() {
		case "esc":
			m.mode = modeFilterOp
			return m, nil
		case "j", "down":
			if m.optionCursor < len(f.Options)-1 {
				m.optionCursor++
			}
			return m, nil
		case "k", "up":
			if m.optionCursor > 0 {
				m.optionCursor--
			}
			return m, nil
		case "enter":
			m.mode = modeList
			return m.apply(query.SetCondition{Cond: query.Condition{
				Field:    f.ID,
				Operator: string(op),
				Value:    f.Options[m.optionCursor],
			}})
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.valueInput.Blur()
		m.mode = modeFilterOp
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.valueInput.Value())
		m.valueInput.Blur()
		m.mode = modeList
		if value == "" {
			return m, nil
		}
		return m.apply(query.SetCondition{Cond: query.Condition{
			Field:    f.ID,
			Operator: string(op),
			Value:    value,
		}})
	}

	var cmd tea.Cmd
	m.valueInput, cmd = m.valueInput.Update(msg)
	return m, cmd
}

// handleTabPromptKeys: entering the explicit date or period for the
// parametric tab windows.
func (m Model) handleTabPromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.tabInput.Blur()
		m.mode = modeList
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.tabInput.Value())
		m.tabInput.Blur()
		m.mode = modeList
		if value == "" {
			return m, nil
		}

		var explicit query.Explicit
		if m.pendingTab == query.TabSelectPeriod {
			start, end, ok := splitPeriod(value)
			if !ok {
				return m, m.flash("period must be start..end")
			}
			explicit.Range = query.DateRange{Start: start, End: end}
		} else {
			explicit.Date = value
		}
		return m.apply(query.SelectTab{Tab: m.pendingTab, Explicit: explicit})
	}

	var cmd tea.Cmd
	m.tabInput, cmd = m.tabInput.Update(msg)
	return m, cmd
}

// splitPeriod parses a "start..end" period entry.
func splitPeriod(v string) (string, string, bool) {
	i := strings.Index(v, "..")
	if i <= 0 || i+2 >= len(v) {
		return "", "", false
	}
	return v[:i], v[i+2:], true
}

// handleSavedFilterKeys: the saved-filter picker modal. Index 0 is the
// "(none)" entry that clears the active filter.
func (m Model) handleSavedFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "F":
		m.mode = modeList
		return m, nil

	case "j", "down":
		if m.pickerCursor < len(m.savedFilters) {
			m.pickerCursor++
		}
		return m, nil

	case "k", "up":
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
		return m, nil

	case "d":
		if m.pickerCursor == 0 || m.pickerCursor > len(m.savedFilters) {
			return m, nil
		}
		f := m.savedFilters[m.pickerCursor-1]
		if f.IsSystem {
			return m, m.flash("built-in filters cannot be deleted")
		}
		// Deleting the active filter also deactivates it.
		var cmds []tea.Cmd
		if m.state.Active != nil && m.state.Active.Name == f.Name {
			var m2 Model
			var cmd tea.Cmd
			m2, cmd = m.apply(query.ClearSavedFilter{})
			m = m2
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, m.deleteFilter(f.Name))
		return m, tea.Batch(cmds...)

	case "enter":
		m.mode = modeList
		if m.pickerCursor == 0 {
			return m.apply(query.ClearSavedFilter{})
		}
		if m.pickerCursor <= len(m.savedFilters) {
			return m.apply(query.SelectSavedFilter{Filter: m.savedFilters[m.pickerCursor-1]})
		}
		return m, nil
	}
	return m, nil
}

// handleSaveNameKeys: naming the filter built from the manual conditions.
func (m Model) handleSaveNameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.nameInput.Blur()
		m.mode = modeList
		return m, nil

	case "enter":
		name := strings.TrimSpace(m.nameInput.Value())
		m.nameInput.Blur()
		m.mode = modeList
		if name == "" {
			return m, m.flash("filter name is required")
		}
		return m, m.saveFilter(name)
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// handleColumnKeys: the column presentation mode. Order and visibility
// changes re-render locally; only sort changes touch the backend.
func (m Model) handleColumnKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	order := m.state.View.ColumnOrder
	switch msg.String() {
	case "esc", "c":
		m.mode = modeList
		return m, nil

	case "j", "down":
		if m.colCursor < len(order)-1 {
			m.colCursor++
		}
		return m, nil

	case "k", "up":
		if m.colCursor > 0 {
			m.colCursor--
		}
		return m, nil

	case "J":
		if m.colCursor < len(order)-1 {
			m2, cmd := m.apply(query.Reorder{From: order[m.colCursor], To: order[m.colCursor+1]})
			m2.colCursor++
			return m2, cmd
		}
		return m, nil

	case "K":
		if m.colCursor > 0 {
			m2, cmd := m.apply(query.Reorder{From: order[m.colCursor], To: order[m.colCursor-1]})
			m2.colCursor--
			return m2, cmd
		}
		return m, nil

	case " ":
		if m.colCursor < len(order) {
			return m.apply(query.ToggleHidden{Column: order[m.colCursor]})
		}
		return m, nil

	case "s":
		if m.colCursor >= len(order) {
			return m, nil
		}
		col := m.state.View.ColumnOrder[m.colCursor]
		dir := query.SortAsc
		if s := m.state.View.Sort; s != nil && s.Field == col && s.Direction == query.SortAsc {
			dir = query.SortDesc
		}
		return m.apply(query.SetSort{Field: col, Direction: dir})
	}
	return m, nil
}

// handleConfirmDeleteKeys: the bulk delete confirmation.
func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.mode = modeList
		return m.deleteTargets()
	case "n", "esc":
		m.mode = modeList
		return m, nil
	}
	return m, nil
}
