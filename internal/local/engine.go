// Package local adapts the SQLite store to the query engine interface, so
// the TUI can run directly against the local database when no remote
// backend is configured.
package local

import (
	"context"

	"github.com/crmdeck/crmdeck/internal/query"
	"github.com/crmdeck/crmdeck/internal/store"
)

// Engine serves composed queries from the local store.
type Engine struct {
	store *store.Store
}

// New wraps an open store. The engine owns the store; Close closes it.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Compile-time check.
var _ query.Engine = (*Engine)(nil)

func (e *Engine) FetchPersons(ctx context.Context, q query.ComposedQuery) (*query.Page[query.Person], error) {
	return e.store.ListPersons(ctx, q.Values())
}

func (e *Engine) FetchActivities(ctx context.Context, q query.ComposedQuery) (*query.Page[query.Activity], error) {
	return e.store.ListActivities(ctx, q.Values())
}

func (e *Engine) ListFilters(ctx context.Context, screen query.Screen) ([]query.SavedFilter, error) {
	return e.store.ListFilters(ctx, screen)
}

func (e *Engine) SaveFilter(ctx context.Context, f query.SavedFilter) error {
	return e.store.SaveFilter(ctx, f)
}

func (e *Engine) DeleteFilter(ctx context.Context, screen query.Screen, name string) error {
	return e.store.DeleteFilter(ctx, screen, name)
}

func (e *Engine) DeletePerson(ctx context.Context, id int64) error {
	return e.store.DeletePerson(ctx, id)
}

func (e *Engine) DeleteActivity(ctx context.Context, id int64) error {
	return e.store.DeleteActivity(ctx, id)
}

func (e *Engine) UpdateActivity(ctx context.Context, id int64, upd query.ActivityUpdate) error {
	return e.store.UpdateActivity(ctx, id, upd)
}

func (e *Engine) Close() error {
	return e.store.Close()
}
