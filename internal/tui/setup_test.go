package tui

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/crmdeck/crmdeck/internal/query"
	"github.com/crmdeck/crmdeck/internal/query/querytest"
)

// colorProfileMu serializes tests that mutate the global lipgloss color profile.
var colorProfileMu sync.Mutex

// forceColorProfile sets lipgloss to ANSI color output for tests that assert
// on styled output. It acquires colorProfileMu to prevent data races with
// parallel tests and restores the original profile via t.Cleanup.
func forceColorProfile(t *testing.T) {
	t.Helper()
	colorProfileMu.Lock()
	orig := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(orig)
		colorProfileMu.Unlock()
	})
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// testNow pins "now" to Saturday 2024-06-15 so window bounds are stable.
func testNow() time.Time {
	return time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)
}

// errFixture is the canned fetch failure used by render tests.
var errFixture = errors.New("backend unavailable")

// Common test data

var testPersons = []query.Person{
	{ID: 1, Name: "Amara Singh", Category: "Bride", WeddingVenue: "Rosewood Hall", WeddingDate: "2024-09-21", Phone: "555-0101"},
	{ID: 2, Name: "Ben Okafor", Category: "Groom", WeddingVenue: "Lakeside Barn", WeddingDate: "2024-07-06", Phone: "555-0102"},
	{ID: 3, Name: "Carmen Diaz", Category: "Planner", Phone: "555-0103"},
}

var testActivities = []query.Activity{
	{ID: 11, Subject: "Confirm catering", ScheduleDate: "2024-06-15", AssignedUser: "dana", Priority: "High"},
	{ID: 12, Subject: "Venue walkthrough", ScheduleDate: "2024-06-16", AssignedUser: "dana"},
	{ID: 13, Subject: "Send invoices", ScheduleDate: "2024-06-10", Done: true},
}

func personPage(persons []query.Person) *query.Page[query.Person] {
	return &query.Page[query.Person]{
		Content:       persons,
		TotalElements: int64(len(persons)),
		TotalPages:    1,
		Size:          query.DefaultPageSize,
	}
}

func activityPage(acts []query.Activity) *query.Page[query.Activity] {
	return &query.Page[query.Activity]{
		Content:       acts,
		TotalElements: int64(len(acts)),
		TotalPages:    1,
		Size:          query.DefaultPageSize,
	}
}

// newMockEngine returns an engine preloaded with the standard fixtures.
func newMockEngine() *querytest.MockEngine {
	return &querytest.MockEngine{
		Persons:    personPage(testPersons),
		Activities: activityPage(testActivities),
	}
}

// runCmd executes a command, flattening batches, and returns the messages it
// produced. Tick commands block for their interval, so callers should only
// run commands whose ticks are short.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(t, c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// drive executes a command and feeds each resulting message back through
// Update. Follow-up commands from those updates are dropped so tick loops
// and flash timers do not cascade.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range runCmd(t, cmd) {
		if _, ok := msg.(spinnerTickMsg); ok {
			continue
		}
		mm, _ := m.Update(msg)
		m = mm.(Model)
	}
	return m
}

// newLoadedModel builds a persons-screen model with the first page loaded.
func newLoadedModel(t *testing.T, eng *querytest.MockEngine) Model {
	t.Helper()
	m := New(eng, Options{Now: testNow, Version: "test"})
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = mm.(Model)
	return drive(t, m, m.Init())
}

// newActivitiesModel builds a loaded model switched to the activities screen.
func newActivitiesModel(t *testing.T, eng *querytest.MockEngine) Model {
	t.Helper()
	m := newLoadedModel(t, eng)
	mm, cmd := m.Update(key('v'))
	return drive(t, mm.(Model), cmd)
}

// sendKey sends a key message and returns the updated concrete Model.
func sendKey(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	mm, cmd := m.Update(k)
	return mm.(Model), cmd
}

// typeString feeds a string rune by rune through Update.
func typeString(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = sendKey(t, m, key(r))
	}
	return m
}

// expectedKey returns the canonical encoding the model should be fetching for.
func expectedKey(m Model) string {
	return query.Compose(m.reg, m.state, testNow()).Encode()
}

// Key event helpers

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func keyEnter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func keyEsc() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEscape}
}

func keyTab() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyTab}
}

func keyShiftTab() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyShiftTab}
}

func keySpace() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeySpace}
}
