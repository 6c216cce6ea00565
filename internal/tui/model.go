// Package tui provides the terminal list-view client for crmdeck.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/crmdeck/crmdeck/internal/filters"
	"github.com/crmdeck/crmdeck/internal/query"
)

// Options configuration for the TUI.
type Options struct {
	Version string
	Now     func() time.Time // injected for deterministic tests
}

// uiMode is the active input mode. List mode is home; every other mode is
// a focused editor or modal layered over the list.
type uiMode int

const (
	modeList uiMode = iota
	modeFilterField
	modeFilterOp
	modeFilterValue
	modeTabPrompt
	modeSavedFilters
	modeSaveName
	modeColumns
	modeConfirmDelete
	modeDetail
	modeHelp
)

// Model is the main TUI model following the Elm architecture. All filter,
// tab, sort, and column changes reduce through query.Apply; the outgoing
// request is always derived fresh with query.Compose.
type Model struct {
	engine  query.Engine
	filters map[query.Screen]*filters.Store
	now     func() time.Time
	version string

	reg   *query.Registry
	state query.State

	// Current page of rows; only the slice matching state.Screen is live.
	persons       []query.Person
	activities    []query.Activity
	totalElements int64
	totalPages    int

	cursor       int
	scrollOffset int
	selection    query.Selection

	mode uiMode

	// Filter editor state
	fieldCursor  int
	opCursor     int
	optionCursor int
	editField    string
	valueInput   textinput.Model

	// Parametric tab prompt state
	pendingTab query.TabWindow
	tabInput   textinput.Model

	// Saved filter picker state
	savedFilters   []query.SavedFilter
	pickerCursor   int
	filtersLoading bool

	// Save-filter name prompt state
	nameInput textinput.Model

	// Column mode state
	colCursor int

	width    int
	height   int
	pageRows int

	loading       bool
	err           error
	spinnerFrame  int
	spinnerActive bool

	// fetchKey is the canonical encoding of the last issued query. Page
	// loads carrying any other key are stale and dropped.
	fetchKey string

	flashMessage   string
	flashExpiresAt time.Time

	quitting bool
}

// New creates a TUI model showing the persons screen.
func New(engine query.Engine, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	vi := textinput.New()
	vi.CharLimit = 120
	vi.Width = 40

	ti := textinput.New()
	ti.CharLimit = 40
	ti.Width = 30

	ni := textinput.New()
	ni.Placeholder = "filter name"
	ni.CharLimit = 60
	ni.Width = 30

	reg := query.PersonsRegistry()
	st := query.NewState(reg)
	return Model{
		engine: engine,
		filters: map[query.Screen]*filters.Store{
			query.ScreenPersons:    filters.New(engine, query.ScreenPersons, now),
			query.ScreenActivities: filters.New(engine, query.ScreenActivities, now),
		},
		now:           now,
		version:       opts.Version,
		reg:           reg,
		state:         st,
		fetchKey:      query.Compose(reg, st, now()).Encode(),
		selection:     query.NewSelection(),
		valueInput:    vi,
		tabInput:      ti,
		nameInput:     ni,
		pageRows:      query.DefaultPageSize,
		loading:       true,
		spinnerActive: true,
	}
}

// Init implements tea.Model. fetchKey was seeded in New for the same
// default state, so the first load is never treated as stale.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchPage(query.Compose(m.reg, m.state, m.now())), spinnerTick())
}

// pageLoadedMsg carries one loaded page. queryKey identifies the request
// that produced it.
type pageLoadedMsg struct {
	persons       []query.Person
	activities    []query.Activity
	totalElements int64
	totalPages    int
	queryKey      string
	err           error
}

// filtersLoadedMsg carries the saved filters of the current screen.
type filtersLoadedMsg struct {
	screen  query.Screen
	filters []query.SavedFilter
	err     error
}

// bulkAppliedMsg reports a completed bulk delete or bulk update.
type bulkAppliedMsg struct {
	verb    string
	applied int
	err     error
}

// filterMutatedMsg reports a completed saved-filter save or delete.
type filterMutatedMsg struct {
	name    string
	deleted bool
	err     error
}

// flashClearMsg clears the flash message after timeout.
type flashClearMsg struct{}

// spinnerTickMsg advances the loading spinner animation.
type spinnerTickMsg struct{}

// spinnerFrames are the Braille dot animation frames for the loading spinner.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerInterval is how fast the spinner animates.
const spinnerInterval = 80 * time.Millisecond

// flashDuration is how long flash messages are displayed.
const flashDuration = 4 * time.Second

// fetchPage fetches the page the composed query names.
func (m Model) fetchPage(q query.ComposedQuery) tea.Cmd {
	key := q.Encode()
	engine := m.engine
	return func() (msg tea.Msg) {
		// Recover from panics so the TUI never locks up on a bad fetch.
		defer func() {
			if r := recover(); r != nil {
				msg = pageLoadedMsg{err: fmt.Errorf("fetch panic: %v", r), queryKey: key}
			}
		}()

		ctx := context.Background()
		if q.Screen == query.ScreenActivities {
			page, err := engine.FetchActivities(ctx, q)
			if err != nil {
				return pageLoadedMsg{err: err, queryKey: key}
			}
			return pageLoadedMsg{
				activities:    page.Content,
				totalElements: page.TotalElements,
				totalPages:    page.TotalPages,
				queryKey:      key,
			}
		}
		page, err := engine.FetchPersons(ctx, q)
		if err != nil {
			return pageLoadedMsg{err: err, queryKey: key}
		}
		return pageLoadedMsg{
			persons:       page.Content,
			totalElements: page.TotalElements,
			totalPages:    page.TotalPages,
			queryKey:      key,
		}
	}
}

// loadSavedFilters fetches system plus custom filters for the screen.
func (m Model) loadSavedFilters() tea.Cmd {
	store := m.filters[m.state.Screen]
	screen := m.state.Screen
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = filtersLoadedMsg{screen: screen, err: fmt.Errorf("filters panic: %v", r)}
			}
		}()
		list, err := store.List(context.Background())
		return filtersLoadedMsg{screen: screen, filters: list, err: err}
	}
}

// apply reduces a transition and refetches when the composed query changed.
// Pure presentation transitions (column order, visibility) re-render only.
func (m Model) apply(tr query.Transition) (Model, tea.Cmd) {
	m.state = query.Apply(m.reg, m.state, tr)
	return m.refetchIfChanged()
}

// refetchIfChanged issues a fetch when the canonical encoding moved away
// from the in-flight/displayed one.
func (m Model) refetchIfChanged() (Model, tea.Cmd) {
	q := query.Compose(m.reg, m.state, m.now())
	key := q.Encode()
	if key == m.fetchKey {
		return m, nil
	}
	// Selections never survive a query change. Prune on load only covers
	// same-query reloads.
	m.selection.Clear()
	return m.refetch(q)
}

// refetch unconditionally issues a fetch for the current state.
func (m Model) refetch(q query.ComposedQuery) (Model, tea.Cmd) {
	m.fetchKey = q.Encode()
	m.loading = true
	m.err = nil
	spin := m.startSpinner()
	return m, tea.Batch(spin, m.fetchPage(q))
}

// reload refetches the current query even though its encoding is unchanged
// (after deletes and bulk updates the same query has new results).
func (m Model) reload() (Model, tea.Cmd) {
	return m.refetch(query.Compose(m.reg, m.state, m.now()))
}

// switchScreen flips between the persons and activities screens with a
// fresh default state.
func (m Model) switchScreen() (Model, tea.Cmd) {
	if m.state.Screen == query.ScreenPersons {
		m.reg = query.ActivitiesRegistry()
	} else {
		m.reg = query.PersonsRegistry()
	}
	m.state = query.NewState(m.reg)
	m.persons = nil
	m.activities = nil
	m.selection.Clear()
	m.cursor = 0
	m.scrollOffset = 0
	m.savedFilters = nil
	return m.reload()
}

// rowCount returns the number of rows on the current page.
func (m Model) rowCount() int {
	if m.state.Screen == query.ScreenActivities {
		return len(m.activities)
	}
	return len(m.persons)
}

// rowID returns the record id at row index i.
func (m Model) rowID(i int) int64 {
	if m.state.Screen == query.ScreenActivities {
		if i < 0 || i >= len(m.activities) {
			return 0
		}
		return m.activities[i].ID
	}
	if i < 0 || i >= len(m.persons) {
		return 0
	}
	return m.persons[i].ID
}

// visibleIDs returns every record id on the current page.
func (m Model) visibleIDs() []int64 {
	n := m.rowCount()
	out := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, m.rowID(i))
	}
	return out
}

// targetIDs returns the ids a bulk action applies to: the selection when
// one exists, otherwise the cursor row.
func (m Model) targetIDs() []int64 {
	if m.selection.Count() > 0 {
		return m.selection.Sorted()
	}
	if id := m.rowID(m.cursor); id != 0 {
		return []int64{id}
	}
	return nil
}

// clampCursor keeps cursor and scroll inside the loaded page.
func (m *Model) clampCursor() {
	n := m.rowCount()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.scrollOffset > m.cursor {
		m.scrollOffset = m.cursor
	}
	if m.pageRows > 0 && m.cursor >= m.scrollOffset+m.pageRows {
		m.scrollOffset = m.cursor - m.pageRows + 1
	}
}

// flash shows a transient message on the footer line.
func (m *Model) flash(text string) tea.Cmd {
	m.flashMessage = text
	m.flashExpiresAt = time.Now().Add(flashDuration)
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashClearMsg{} })
}

// spinnerTick returns a command that fires after the spinner interval.
func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg { return spinnerTickMsg{} })
}

// startSpinner starts the spinner tick unless it is already running.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinnerActive {
		return nil
	}
	m.spinnerActive = true
	m.spinnerFrame = 0
	return spinnerTick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width < 0 {
			m.width = 0
		}
		if m.height < 0 {
			m.height = 0
		}
		// Title (1) + tab bar (1) + chips (1) + header (1) + separator (1)
		// + footer (1) surround the table body.
		m.pageRows = m.height - 6
		if m.pageRows < 1 {
			m.pageRows = 1
		}
		m.clampCursor()
		return m, nil

	case pageLoadedMsg:
		if msg.queryKey != m.fetchKey {
			// Stale response from a superseded query.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.persons = msg.persons
		m.activities = msg.activities
		m.totalElements = msg.totalElements
		m.totalPages = msg.totalPages
		// The selection is scoped to the visible filtered set.
		m.selection.Prune(m.visibleIDs())
		m.clampCursor()
		return m, nil

	case filtersLoadedMsg:
		m.filtersLoading = false
		if msg.screen != m.state.Screen {
			return m, nil
		}
		m.savedFilters = msg.filters
		if m.pickerCursor > len(m.savedFilters) {
			m.pickerCursor = 0
		}
		if msg.err != nil {
			return m, m.flash("filters: " + msg.err.Error())
		}
		return m, nil

	case bulkAppliedMsg:
		m.selection.Clear()
		var cmds []tea.Cmd
		if msg.err != nil {
			cmds = append(cmds, m.flash(fmt.Sprintf("%s: %d done, error: %v", msg.verb, msg.applied, msg.err)))
		} else {
			cmds = append(cmds, m.flash(fmt.Sprintf("%s %d record(s)", msg.verb, msg.applied)))
		}
		var m2 Model
		var cmd tea.Cmd
		m2, cmd = m.reload()
		cmds = append(cmds, cmd)
		return m2, tea.Batch(cmds...)

	case filterMutatedMsg:
		if msg.err != nil {
			return m, m.flash("filter " + msg.name + ": " + msg.err.Error())
		}
		verb := "saved"
		if msg.deleted {
			verb = "deleted"
		}
		flashCmd := m.flash("filter " + msg.name + " " + verb)
		return m, tea.Batch(flashCmd, m.loadSavedFilters())

	case spinnerTickMsg:
		if !m.loading && !m.filtersLoading {
			m.spinnerActive = false
			return m, nil
		}
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		return m, spinnerTick()

	case flashClearMsg:
		if time.Now().After(m.flashExpiresAt) {
			m.flashMessage = ""
		}
		return m, nil
	}

	return m, nil
}
