// Package querytest provides shared test doubles for the query.Engine interface.
package querytest

import (
	"context"
	"sync"

	"github.com/crmdeck/crmdeck/internal/query"
)

// MockEngine implements query.Engine for testing. Each method delegates to
// an optional function field; when the field is nil, the corresponding data
// field is returned as-is.
type MockEngine struct {
	mu sync.Mutex

	Persons    *query.Page[query.Person]
	Activities *query.Page[query.Activity]
	Filters    []query.SavedFilter

	// Recorded calls, for asserting what the engine was asked for.
	PersonQueries   []query.ComposedQuery
	ActivityQueries []query.ComposedQuery
	SavedFilters    []query.SavedFilter
	DeletedFilters  []string
	DeletedPersons  []int64
	DeletedActivity []int64
	UpdatedActivity []int64

	// Optional overrides — set these to customise behavior per-test.
	FetchPersonsFunc    func(context.Context, query.ComposedQuery) (*query.Page[query.Person], error)
	FetchActivitiesFunc func(context.Context, query.ComposedQuery) (*query.Page[query.Activity], error)
	ListFiltersFunc     func(context.Context, query.Screen) ([]query.SavedFilter, error)
	SaveFilterFunc      func(context.Context, query.SavedFilter) error
	DeleteFilterFunc    func(context.Context, query.Screen, string) error
	DeletePersonFunc    func(context.Context, int64) error
	DeleteActivityFunc  func(context.Context, int64) error
	UpdateActivityFunc  func(context.Context, int64, query.ActivityUpdate) error
}

// Compile-time check.
var _ query.Engine = (*MockEngine)(nil)

func (m *MockEngine) FetchPersons(ctx context.Context, q query.ComposedQuery) (*query.Page[query.Person], error) {
	m.mu.Lock()
	m.PersonQueries = append(m.PersonQueries, q)
	m.mu.Unlock()
	if m.FetchPersonsFunc != nil {
		return m.FetchPersonsFunc(ctx, q)
	}
	if m.Persons != nil {
		return m.Persons, nil
	}
	return &query.Page[query.Person]{Size: q.Size, Number: q.Page}, nil
}

func (m *MockEngine) FetchActivities(ctx context.Context, q query.ComposedQuery) (*query.Page[query.Activity], error) {
	m.mu.Lock()
	m.ActivityQueries = append(m.ActivityQueries, q)
	m.mu.Unlock()
	if m.FetchActivitiesFunc != nil {
		return m.FetchActivitiesFunc(ctx, q)
	}
	if m.Activities != nil {
		return m.Activities, nil
	}
	return &query.Page[query.Activity]{Size: q.Size, Number: q.Page}, nil
}

func (m *MockEngine) ListFilters(ctx context.Context, screen query.Screen) ([]query.SavedFilter, error) {
	if m.ListFiltersFunc != nil {
		return m.ListFiltersFunc(ctx, screen)
	}
	return m.Filters, nil
}

func (m *MockEngine) SaveFilter(ctx context.Context, f query.SavedFilter) error {
	m.mu.Lock()
	m.SavedFilters = append(m.SavedFilters, f)
	m.mu.Unlock()
	if m.SaveFilterFunc != nil {
		return m.SaveFilterFunc(ctx, f)
	}
	return nil
}

func (m *MockEngine) DeleteFilter(ctx context.Context, screen query.Screen, name string) error {
	m.mu.Lock()
	m.DeletedFilters = append(m.DeletedFilters, name)
	m.mu.Unlock()
	if m.DeleteFilterFunc != nil {
		return m.DeleteFilterFunc(ctx, screen, name)
	}
	return nil
}

func (m *MockEngine) DeletePerson(ctx context.Context, id int64) error {
	m.mu.Lock()
	m.DeletedPersons = append(m.DeletedPersons, id)
	m.mu.Unlock()
	if m.DeletePersonFunc != nil {
		return m.DeletePersonFunc(ctx, id)
	}
	return nil
}

func (m *MockEngine) DeleteActivity(ctx context.Context, id int64) error {
	m.mu.Lock()
	m.DeletedActivity = append(m.DeletedActivity, id)
	m.mu.Unlock()
	if m.DeleteActivityFunc != nil {
		return m.DeleteActivityFunc(ctx, id)
	}
	return nil
}

func (m *MockEngine) UpdateActivity(ctx context.Context, id int64, upd query.ActivityUpdate) error {
	m.mu.Lock()
	m.UpdatedActivity = append(m.UpdatedActivity, id)
	m.mu.Unlock()
	if m.UpdateActivityFunc != nil {
		return m.UpdateActivityFunc(ctx, id, upd)
	}
	return nil
}

func (m *MockEngine) Close() error { return nil }
