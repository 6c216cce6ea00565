package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crmdeck/crmdeck/internal/query"
)

// ListFilters returns the saved filters for a screen, ordered by name.
// Conditions are stored as a JSON array per row.
func (s *Store) ListFilters(ctx context.Context, screen query.Screen) ([]query.SavedFilter, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, conditions FROM saved_filters WHERE screen = ? ORDER BY name", screen.String())
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	var out []query.SavedFilter
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		var conds []query.Condition
		if err := json.Unmarshal([]byte(raw), &conds); err != nil {
			return nil, fmt.Errorf("decode filter %q: %w", name, err)
		}
		out = append(out, query.SavedFilter{Name: name, Screen: screen, Conditions: conds})
	}
	return out, rows.Err()
}

// SaveFilter upserts a filter by (screen, name). Saving an existing name
// overwrites it.
func (s *Store) SaveFilter(ctx context.Context, f query.SavedFilter) error {
	if f.Name == "" {
		return fmt.Errorf("filter name is required")
	}
	conds := f.Conditions
	if conds == nil {
		conds = []query.Condition{}
	}
	raw, err := json.Marshal(conds)
	if err != nil {
		return fmt.Errorf("encode filter %q: %w", f.Name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_filters (screen, name, conditions) VALUES (?, ?, ?)
		ON CONFLICT(screen, name) DO UPDATE SET conditions = excluded.conditions`,
		f.Screen.String(), f.Name, string(raw))
	if err != nil {
		return fmt.Errorf("save filter %q: %w", f.Name, err)
	}
	return nil
}

// DeleteFilter removes a filter by name.
func (s *Store) DeleteFilter(ctx context.Context, screen query.Screen, name string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM saved_filters WHERE screen = ? AND name = ?", screen.String(), name)
	if err != nil {
		return fmt.Errorf("delete filter %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
