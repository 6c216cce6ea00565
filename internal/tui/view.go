package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crmdeck/crmdeck/internal/query"
)

// Monochrome theme - adaptive for light and dark terminals
var (
	bgBase   = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}
	bgAlt    = lipgloss.AdaptiveColor{Light: "#f0f0f0", Dark: "#181818"}
	bgCursor = lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#282828"}

	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#333333"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}).
			Padding(0, 1)

	tabBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}).
			Background(bgBase)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Background(bgBase)

	chipStyle = lipgloss.NewStyle().
			Faint(true).
			Background(bgBase)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Background(bgBase)

	separatorStyle = lipgloss.NewStyle().
			Faint(true).
			Background(bgBase)

	cursorRowStyle = lipgloss.NewStyle().
			Background(bgCursor)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Background(bgBase)

	normalRowStyle = lipgloss.NewStyle().
			Background(bgBase)

	altRowStyle = lipgloss.NewStyle().
			Background(bgAlt)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}).
			Background(bgBase).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Background(bgBase)

	spinnerStyle = lipgloss.NewStyle().
			Bold(true).
			Background(bgBase)

	selectedIndicatorStyle = lipgloss.NewStyle().
				Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true)

	modalCursorStyle = lipgloss.NewStyle().
				Bold(true).
				Background(bgCursor)

	flashStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#996600", Dark: "#ffcc00"}).
			Background(bgBase)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	body := fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		m.titleBarView(),
		m.tabBarView(),
		m.chipsView(),
		m.tableView(),
		m.footerView(),
	)

	if m.mode == modeList {
		return body
	}
	return m.overlayModal()
}

// titleBarView renders the top bar: app name, screen, category scope, and
// the active saved filter.
func (m Model) titleBarView() string {
	title := "crmdeck"
	if m.version != "" && m.version != "dev" {
		title = fmt.Sprintf("crmdeck [%s]", m.version)
	}

	screen := m.state.Screen.String()
	if screen != "" {
		screen = strings.ToUpper(screen[:1]) + screen[1:]
	}
	if m.state.Category != query.CategoryNone {
		screen += " / " + string(m.state.Category)
	}
	line := fmt.Sprintf("%s - %s", title, screen)

	if m.state.Active != nil {
		filter := "filter: " + m.state.Active.Name
		gap := m.width - 2 - lipgloss.Width(line) - lipgloss.Width(filter)
		if gap > 1 {
			line += strings.Repeat(" ", gap) + filter
		}
	}
	return titleBarStyle.Render(padRight(line, m.width-2))
}

// tabBarView renders the quick-filter tab bar. The parametric tabs show
// their explicit value when active.
func (m Model) tabBarView() string {
	var sb strings.Builder
	for i, t := range query.Tabs {
		label := t.String()
		if t == m.state.Tab {
			switch t {
			case query.TabSelectDate:
				label += " " + m.state.Explicit.Date
			case query.TabSelectPeriod:
				label += " " + m.state.Explicit.Range.Start + ".." + m.state.Explicit.Range.End
			}
			sb.WriteString(activeTabStyle.Render("[" + label + "]"))
		} else {
			sb.WriteString(tabBarStyle.Render(" " + label + " "))
		}
		if i < len(query.Tabs)-1 {
			sb.WriteString(tabBarStyle.Render("│"))
		}
	}
	return padRight(sb.String(), m.width)
}

// chipsView renders the active filter parameters of the composed query.
func (m Model) chipsView() string {
	chips := query.Compose(m.reg, m.state, m.now()).Chips()
	if len(chips) == 0 {
		return chipStyle.Render(padRight(" no filters", m.width))
	}
	return chipStyle.Render(padRight(" "+strings.Join(chips, "  "), m.width))
}

// tableView renders the record table for the current screen.
func (m Model) tableView() string {
	if m.err != nil {
		return m.fillBody(errorStyle.Render(padRight(fmt.Sprintf("Error: %v", m.err), m.width)), 1)
	}
	if m.rowCount() == 0 && !m.loading {
		return m.fillBody(normalRowStyle.Render(padRight("No records", m.width)), 1)
	}

	cols := m.state.View.Visible()

	var sb strings.Builder

	// Header row with the sort indicator on the active sort column.
	sortField := m.reg.DefaultSort.Field
	sortDir := m.reg.DefaultSort.Direction
	if s := m.state.View.Sort; s != nil {
		sortField, sortDir = s.Field, s.Direction
	}
	var header strings.Builder
	header.WriteString("   ")
	for _, id := range cols {
		label := m.reg.ColumnLabel(id)
		if id == sortField {
			if sortDir == query.SortDesc {
				label += "↓"
			} else {
				label += "↑"
			}
		}
		w := columnWidth(id)
		header.WriteString(fmt.Sprintf("%-*s ", w, truncateRunes(label, w)))
	}
	sb.WriteString(tableHeaderStyle.Render(padRight(header.String(), m.width)))
	sb.WriteString("\n")
	sb.WriteString(separatorStyle.Render(strings.Repeat("─", m.width)))
	sb.WriteString("\n")

	endRow := m.scrollOffset + m.pageRows
	if endRow > m.rowCount() {
		endRow = m.rowCount()
	}

	for i := m.scrollOffset; i < endRow; i++ {
		isCursor := i == m.cursor
		isChecked := m.selection.IDs[m.rowID(i)]

		var selIndicator string
		switch {
		case isCursor && isChecked:
			selIndicator = selectedIndicatorStyle.Render("▶✓ ")
		case isCursor:
			selIndicator = cursorRowStyle.Render("▶  ")
		case isChecked:
			selIndicator = selectedIndicatorStyle.Render(" ✓ ")
		default:
			selIndicator = "   "
		}

		var line strings.Builder
		for _, id := range cols {
			var cell string
			if m.state.Screen == query.ScreenActivities {
				cell = activityCell(m.activities[i], id)
			} else {
				cell = personCell(m.persons[i], id)
			}
			w := columnWidth(id)
			line.WriteString(fmt.Sprintf("%-*s ", w, truncateRunes(cell, w)))
		}

		var style lipgloss.Style
		switch {
		case isCursor:
			style = cursorRowStyle
		case isChecked:
			style = selectedRowStyle
		case i%2 == 0:
			style = normalRowStyle
		default:
			style = altRowStyle
		}

		sb.WriteString(selIndicator)
		sb.WriteString(style.Render(padRight(line.String(), m.width-3)))
		sb.WriteString("\n")
	}

	// Fill remaining body space so the footer stays pinned.
	for i := endRow - m.scrollOffset; i < m.pageRows; i++ {
		sb.WriteString(normalRowStyle.Render(strings.Repeat(" ", m.width)))
		sb.WriteString("\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// fillBody pads an error/empty body to the full table height (header and
// separator lines included).
func (m Model) fillBody(content string, usedLines int) string {
	if m.width <= 0 {
		return content
	}
	var sb strings.Builder
	sb.WriteString(content)
	for i := usedLines; i < m.pageRows+2; i++ {
		sb.WriteString("\n")
		sb.WriteString(normalRowStyle.Render(strings.Repeat(" ", m.width)))
	}
	return sb.String()
}

// footerView renders keybindings, flash message, selection count, and the
// page position.
func (m Model) footerView() string {
	if m.flashMessage != "" {
		return flashStyle.Render(padRight(" "+m.flashMessage, m.width))
	}

	keys := "j/k move  h/l page  tab window  f filter  F saved  c cols  space sel  d del  ? help"
	if m.state.Screen == query.ScreenActivities {
		keys += "  m done"
	}

	var right string
	if n := m.selection.Count(); n > 0 {
		right = fmt.Sprintf("[%d selected] ", n)
	}
	if m.totalPages > 0 {
		right += fmt.Sprintf("page %d/%d · %s rows", m.state.Page+1, m.totalPages, formatCount(m.totalElements))
	}
	if m.loading {
		right += " " + spinnerStyle.Render(m.spinnerIndicator())
	}

	gap := m.width - 2 - lipgloss.Width(keys) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return footerStyle.Render(padRight(keys+strings.Repeat(" ", gap)+right, m.width-2))
}

// spinnerIndicator returns the current spinner frame string.
func (m Model) spinnerIndicator() string {
	if m.spinnerFrame < len(spinnerFrames) {
		return spinnerFrames[m.spinnerFrame]
	}
	return spinnerFrames[0]
}

// overlayModal renders the active modal centered on a cleared screen.
func (m Model) overlayModal() string {
	var content string
	switch m.mode {
	case modeFilterField:
		content = m.renderFilterFieldModal()
	case modeFilterOp:
		content = m.renderFilterOpModal()
	case modeFilterValue:
		content = m.renderFilterValueModal()
	case modeTabPrompt:
		content = m.renderTabPromptModal()
	case modeSavedFilters:
		content = m.renderSavedFiltersModal()
	case modeSaveName:
		content = m.renderSaveNameModal()
	case modeColumns:
		content = m.renderColumnsModal()
	case modeConfirmDelete:
		content = m.renderConfirmDeleteModal()
	case modeDetail:
		content = m.renderDetailModal()
	case modeHelp:
		content = m.renderHelpModal()
	}
	if content == "" {
		return ""
	}
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		modalStyle.Render(content))
}

// modalList renders a cursor-driven option list.
func modalList(title string, items []string, cursor int) string {
	var sb strings.Builder
	sb.WriteString(modalTitleStyle.Render(title))
	sb.WriteString("\n\n")
	for i, item := range items {
		if i == cursor {
			sb.WriteString(modalCursorStyle.Render("▶ " + item))
		} else {
			sb.WriteString("  " + item)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (m Model) renderFilterFieldModal() string {
	items := make([]string, 0, len(m.reg.Fields))
	for _, f := range m.reg.Fields {
		label := f.Label
		for _, c := range m.state.Manual {
			if c.Field == f.ID {
				label += fmt.Sprintf("  (%s %s)", c.Operator, c.Value)
			}
		}
		items = append(items, label)
	}
	return modalList("Filter by field  (enter select, d remove, esc close)", items, m.fieldCursor)
}

func (m Model) renderFilterOpModal() string {
	f := m.reg.Field(m.editField)
	if f == nil {
		return ""
	}
	ops := query.OperatorsFor(f.Type)
	items := make([]string, 0, len(ops))
	for _, op := range ops {
		items = append(items, string(op))
	}
	return modalList(f.Label+": operator", items, m.opCursor)
}

func (m Model) renderFilterValueModal() string {
	f := m.reg.Field(m.editField)
	if f == nil {
		return ""
	}
	if len(f.Options) > 0 {
		return modalList(f.Label+": value", f.Options, m.optionCursor)
	}
	return modalTitleStyle.Render(f.Label+": value") + "\n\n" + m.valueInput.View()
}

func (m Model) renderTabPromptModal() string {
	title := "Select date"
	if m.pendingTab == query.TabSelectPeriod {
		title = "Select period"
	}
	return modalTitleStyle.Render(title) + "\n\n" + m.tabInput.View()
}

func (m Model) renderSavedFiltersModal() string {
	items := make([]string, 0, len(m.savedFilters)+1)
	none := "(none)"
	if m.state.Active == nil {
		none += "  ●"
	}
	items = append(items, none)
	for _, f := range m.savedFilters {
		label := f.Name
		if f.IsSystem {
			label += "  [built-in]"
		}
		if m.state.Active != nil && m.state.Active.Name == f.Name {
			label += "  ●"
		}
		items = append(items, label)
	}
	title := "Saved filters  (enter apply, d delete, esc close)"
	if m.filtersLoading {
		title += "  " + m.spinnerIndicator()
	}
	return modalList(title, items, m.pickerCursor)
}

func (m Model) renderSaveNameModal() string {
	return modalTitleStyle.Render("Save filter as") + "\n\n" + m.nameInput.View()
}

func (m Model) renderColumnsModal() string {
	order := m.state.View.ColumnOrder
	items := make([]string, 0, len(order))
	for _, id := range order {
		mark := "[x]"
		if m.state.View.Hidden[id] {
			mark = "[ ]"
		}
		label := fmt.Sprintf("%s %s", mark, m.reg.ColumnLabel(id))
		if s := m.state.View.Sort; s != nil && s.Field == id {
			if s.Direction == query.SortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		items = append(items, label)
	}
	return modalList("Columns  (space show/hide, J/K move, s sort, esc close)", items, m.colCursor)
}

func (m Model) renderConfirmDeleteModal() string {
	n := len(m.targetIDs())
	noun := "person"
	if m.state.Screen == query.ScreenActivities {
		noun = "activity"
	}
	if n != 1 {
		noun += "s"
		if m.state.Screen == query.ScreenActivities {
			noun = "activities"
		}
	}
	return modalTitleStyle.Render("Confirm delete") + "\n\n" +
		fmt.Sprintf("Delete %d %s? (y/n)", n, noun)
}

// renderDetailModal shows every column of the cursor row, the hidden
// ones included.
func (m Model) renderDetailModal() string {
	i := m.cursor
	if i < 0 || i >= m.rowCount() {
		return ""
	}

	title := "Person"
	if m.state.Screen == query.ScreenActivities {
		title = "Activity"
	}

	var sb strings.Builder
	sb.WriteString(modalTitleStyle.Render(title))
	sb.WriteString("\n\n")
	for _, id := range m.state.View.ColumnOrder {
		var cell string
		if m.state.Screen == query.ScreenActivities {
			cell = activityCell(m.activities[i], id)
		} else {
			cell = personCell(m.persons[i], id)
		}
		sb.WriteString(fmt.Sprintf("%-14s %s\n", m.reg.ColumnLabel(id), cell))
	}
	sb.WriteString("\n(any key to close)")
	return sb.String()
}

func (m Model) renderHelpModal() string {
	lines := []string{
		modalTitleStyle.Render("Keyboard Shortcuts"),
		"",
		"Navigation",
		"  ↑/k, ↓/j     Move cursor",
		"  g/G          First/last row",
		"  ←/h, →/l     Previous/next page",
		"  +/-          Grow/shrink page size",
		"  enter        Record detail",
		"  v            Switch persons/activities",
		"",
		"Filtering",
		"  tab/shift+tab  Cycle date window",
		"  D / P          Pick explicit date / period",
		"  f              Edit field filters",
		"  F              Saved filters",
		"  w              Save current filters",
		"  C              Cycle category (activities)",
		"  esc            Clear saved filter, then window",
		"",
		"View",
		"  c            Column order/visibility/sort",
		"  r            Reverse sort",
		"  R            Reload",
		"",
		"Actions",
		"  space/a/x    Select / select page / clear",
		"  d            Delete selected",
		"  m / M        Mark done / undone (activities)",
		"",
		"  q            Quit",
	}
	return strings.Join(lines, "\n")
}
