// Package filters manages saved filters: immutable system filters generated
// in-process and custom filters persisted through the backend.
package filters

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/crmdeck/crmdeck/internal/query"
)

// ErrSystemFilter is returned when a caller tries to delete a system filter.
var ErrSystemFilter = errors.New("system filters cannot be deleted")

// Store combines the compile-time system filters of a screen with the
// custom filters persisted remotely. The local copy keeps serving the
// session when the remote round-trip fails; the failure is still returned
// so the caller can surface it.
type Store struct {
	engine query.Engine
	screen query.Screen
	now    func() time.Time

	mu     sync.Mutex
	custom map[string]query.SavedFilter
	loaded bool
}

// New creates a store for one screen. now is injected for deterministic
// system-filter bounds in tests.
func New(engine query.Engine, screen query.Screen, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		engine: engine,
		screen: screen,
		now:    now,
		custom: make(map[string]query.SavedFilter),
	}
}

// List returns system filters followed by custom filters sorted by name.
// On a remote failure the cached custom filters are returned together with
// the error; an absent remote collection is not an error.
func (s *Store) List(ctx context.Context) ([]query.SavedFilter, error) {
	remote, err := s.engine.ListFilters(ctx, s.screen)

	s.mu.Lock()
	if err == nil {
		s.custom = make(map[string]query.SavedFilter, len(remote))
		for _, f := range remote {
			f.IsSystem = false
			f.Screen = s.screen
			s.custom[f.Name] = f
		}
		s.loaded = true
	}
	out := systemFilters(s.screen, s.now())
	names := make([]string, 0, len(s.custom))
	for name := range s.custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, s.custom[name])
	}
	s.mu.Unlock()

	if err != nil {
		return out, fmt.Errorf("list filters: %w", err)
	}
	return out, nil
}

// Get returns a filter by name, system filters included.
func (s *Store) Get(name string) (query.SavedFilter, bool) {
	for _, f := range systemFilters(s.screen, s.now()) {
		if f.Name == name {
			return f, true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.custom[name]
	return f, ok
}

// Save upserts a custom filter by name; saving under an existing name
// overwrites silently, last write wins. The local copy is updated either
// way, but a failed remote save is never reported as success.
func (s *Store) Save(ctx context.Context, name string, conds []query.Condition) error {
	if name == "" {
		return errors.New("filter name is required")
	}
	if isSystemName(s.screen, name) {
		return fmt.Errorf("%q is a built-in filter name", name)
	}

	f := query.SavedFilter{
		Name:       name,
		Screen:     s.screen,
		Conditions: conds,
	}

	s.mu.Lock()
	s.custom[name] = f
	s.mu.Unlock()

	if err := s.engine.SaveFilter(ctx, f); err != nil {
		return fmt.Errorf("save filter %q: %w", name, err)
	}
	return nil
}

// Delete removes a custom filter. System filters are rejected.
func (s *Store) Delete(ctx context.Context, name string) error {
	if isSystemName(s.screen, name) {
		return ErrSystemFilter
	}

	s.mu.Lock()
	delete(s.custom, name)
	s.mu.Unlock()

	if err := s.engine.DeleteFilter(ctx, s.screen, name); err != nil {
		return fmt.Errorf("delete filter %q: %w", name, err)
	}
	return nil
}

// isSystemName reports whether a name collides with a system filter.
func isSystemName(screen query.Screen, name string) bool {
	for _, f := range systemFilters(screen, time.Time{}) {
		if f.Name == name {
			return true
		}
	}
	return false
}

// systemFilters generates the built-in filters for a screen. Their date
// conditions resolve against now at list time, so "today" always means the
// caller's today.
func systemFilters(screen query.Screen, now time.Time) []query.SavedFilter {
	if now.IsZero() {
		now = time.Now()
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today := day.Format(query.DateLayout)

	switch screen {
	case query.ScreenActivities:
		sunday := day.AddDate(0, 0, -int(day.Weekday()))
		return []query.SavedFilter{
			{
				Name: "today", Screen: screen, IsSystem: true,
				Conditions: []query.Condition{
					{Field: "dateFrom", Operator: string(query.OpEquals), Value: today},
					{Field: "dateTo", Operator: string(query.OpEquals), Value: today},
				},
			},
			{
				Name: "this week", Screen: screen, IsSystem: true,
				Conditions: []query.Condition{
					{Field: "dateFrom", Operator: string(query.OpEquals), Value: sunday.Format(query.DateLayout)},
					{Field: "dateTo", Operator: string(query.OpEquals), Value: sunday.AddDate(0, 0, 6).Format(query.DateLayout)},
				},
			},
			{
				Name: "overdue", Screen: screen, IsSystem: true,
				Conditions: []query.Condition{
					{Field: "dateTo", Operator: string(query.OpEquals), Value: day.AddDate(0, 0, -1).Format(query.DateLayout)},
					{Field: "done", Operator: string(query.OpEquals), Value: "false"},
				},
			},
		}
	case query.ScreenPersons:
		return []query.SavedFilter{
			{
				Name: "upcoming weddings", Screen: screen, IsSystem: true,
				Conditions: []query.Condition{
					{Field: "weddingDate", Operator: string(query.OpAfter), Value: today},
				},
			},
		}
	default:
		return nil
	}
}
