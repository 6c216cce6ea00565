package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/crmdeck/crmdeck/internal/query"
)

// bindKind selects the SQL comparison a request parameter translates to.
type bindKind int

const (
	bindEq bindKind = iota
	bindNotEq
	bindContains
	bindPrefix
	bindGTE
	bindLTE
)

// binding ties one request parameter to a column and comparison. Parameters
// with no binding are ignored, never an error: clients may be ahead of or
// behind the server's field set.
type binding struct {
	key    string
	column string
	kind   bindKind
}

// textBindings returns the equals/contains/prefix trio a text parameter
// expands to.
func textBindings(key, column string) []binding {
	return []binding{
		{key, column, bindEq},
		{key + "Contains", column, bindContains},
		{key + "Prefix", column, bindPrefix},
	}
}

// selectBindings returns the equals/not-equals pair for an enumerated
// parameter.
func selectBindings(key, column string) []binding {
	return []binding{
		{key, column, bindEq},
		{key + "Not", column, bindNotEq},
	}
}

// dateBindings returns the point/from/to triple for a date parameter.
func dateBindings(key, column string) []binding {
	return []binding{
		{key, column, bindEq},
		{key + "From", column, bindGTE},
		{key + "To", column, bindLTE},
	}
}

// whereClause builds the WHERE fragment and args for the bound parameters
// present in params. Multiple conditions AND together.
func whereClause(bindings []binding, params url.Values) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	for _, b := range bindings {
		if !params.Has(b.key) {
			continue
		}
		val := params.Get(b.key)
		switch b.kind {
		case bindEq:
			clauses = append(clauses, b.column+" = ?")
			args = append(args, val)
		case bindNotEq:
			clauses = append(clauses, b.column+" != ?")
			args = append(args, val)
		case bindContains:
			clauses = append(clauses, b.column+" LIKE ? ESCAPE '\\'")
			args = append(args, "%"+escapeLike(val)+"%")
		case bindPrefix:
			clauses = append(clauses, b.column+" LIKE ? ESCAPE '\\'")
			args = append(args, escapeLike(val)+"%")
		case bindGTE:
			clauses = append(clauses, b.column+" >= ?")
			args = append(args, val)
		case bindLTE:
			clauses = append(clauses, b.column+" <= ?")
			args = append(args, val)
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLike escapes LIKE metacharacters in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// pageWindow extracts page and size from the request, clamped to sane
// bounds.
func pageWindow(params url.Values) (page, size int) {
	page, _ = strconv.Atoi(params.Get("page"))
	if page < 0 {
		page = 0
	}
	size, _ = strconv.Atoi(params.Get("size"))
	if size <= 0 {
		size = 20
	}
	if size > 200 {
		size = 200
	}
	return page, size
}

// orderClause parses the "field,direction" sort parameter against a column
// whitelist. Unknown fields fall back to the default, never into SQL.
func orderClause(params url.Values, sortColumns map[string]string, def query.Sort) string {
	field, dir := def.Field, def.Direction
	if raw := params.Get("sort"); raw != "" {
		parts := strings.SplitN(raw, ",", 2)
		field = parts[0]
		if len(parts) == 2 && query.SortDirection(parts[1]) == query.SortDesc {
			dir = query.SortDesc
		} else {
			dir = query.SortAsc
		}
	}
	col, ok := sortColumns[field]
	if !ok {
		col = sortColumns[def.Field]
		dir = def.Direction
	}
	direction := "ASC"
	if dir == query.SortDesc {
		direction = "DESC"
	}
	return " ORDER BY " + col + " " + direction + ", id ASC"
}

// listPage runs the count plus windowed select for one collection and
// assembles the page envelope.
func listPage[T any](db *sql.DB, table, columns, where string, args []interface{},
	order string, params url.Values, scan func(*sql.Rows) (T, error)) (*query.Page[T], error) {

	page, size := pageWindow(params)

	var total int64
	if err := db.QueryRow("SELECT COUNT(*) FROM "+table+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}

	q := "SELECT " + columns + " FROM " + table + where + order + " LIMIT ? OFFSET ?"
	rows, err := db.Query(q, append(args, size, page*size)...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	content := make([]T, 0, size)
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		content = append(content, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &query.Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        page,
		Size:          size,
	}, nil
}
