package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/crmdeck/crmdeck/internal/query"
)

const personColumns = "id, name, category, organization, manager, wedding_venue, wedding_date, phone, instagram_id"

// personBindings maps person request parameters to columns. These are the
// keys the client-side registry composes; anything else is ignored.
var personBindings = concat(
	textBindings("name", "name"),
	selectBindings("category", "category"),
	textBindings("manager", "manager"),
	textBindings("weddingVenue", "wedding_venue"),
	dateBindings("weddingDate", "wedding_date"),
	textBindings("phone", "phone"),
	textBindings("instagramId", "instagram_id"),
)

// personSortColumns whitelists sortable person fields.
var personSortColumns = map[string]string{
	"name":         "name",
	"category":     "category",
	"organization": "organization",
	"manager":      "manager",
	"weddingVenue": "wedding_venue",
	"weddingDate":  "wedding_date",
}

func concat(groups ...[]binding) []binding {
	var out []binding
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func scanPerson(rows *sql.Rows) (query.Person, error) {
	var p query.Person
	err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Organization, &p.Manager,
		&p.WeddingVenue, &p.WeddingDate, &p.Phone, &p.InstagramID)
	return p, err
}

// ListPersons returns one page of persons matching the request parameters.
func (s *Store) ListPersons(ctx context.Context, params url.Values) (*query.Page[query.Person], error) {
	where, args := whereClause(personBindings, params)
	order := orderClause(params, personSortColumns, query.Sort{Field: "name", Direction: query.SortAsc})
	return listPage(s.db, "persons", personColumns, where, args, order, params, scanPerson)
}

// CreatePerson inserts a person and returns its id.
func (s *Store) CreatePerson(ctx context.Context, p query.Person) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (name, category, organization, manager, wedding_venue, wedding_date, phone, instagram_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Category, p.Organization, p.Manager, p.WeddingVenue, p.WeddingDate, p.Phone, p.InstagramID)
	if err != nil {
		return 0, fmt.Errorf("insert person: %w", err)
	}
	return res.LastInsertId()
}

// DeletePerson removes a person by id. Missing rows are reported so the
// handler can answer 404.
func (s *Store) DeletePerson(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM persons WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete person %d: %w", id, err)
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
