package query

import "context"

// Engine is the data-access contract the list-view engine composes queries
// against. It is implemented by the remote HTTP client for normal use and
// by querytest.MockEngine in tests. Bulk actions are layered above: the
// caller fans out the per-record operations concurrently and aggregates
// partial failure itself.
type Engine interface {
	// Paginated collections. The composed query supplies page, size, sort,
	// and zero or more field parameters.
	FetchPersons(ctx context.Context, q ComposedQuery) (*Page[Person], error)
	FetchActivities(ctx context.Context, q ComposedQuery) (*Page[Activity], error)

	// Saved custom filters. ListFilters must tolerate an empty or absent
	// collection without error.
	ListFilters(ctx context.Context, screen Screen) ([]SavedFilter, error)
	SaveFilter(ctx context.Context, f SavedFilter) error
	DeleteFilter(ctx context.Context, screen Screen, name string) error

	// Per-record mutations used by bulk actions.
	DeletePerson(ctx context.Context, id int64) error
	DeleteActivity(ctx context.Context, id int64) error
	UpdateActivity(ctx context.Context, id int64, upd ActivityUpdate) error

	// Close releases any resources held by the engine.
	Close() error
}
