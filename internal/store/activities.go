package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/crmdeck/crmdeck/internal/query"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

const activityColumns = "id, person_id, subject, deal, category, status, call_type, venue, organization, " +
	"instagram_id, phone, schedule_date, schedule_time, schedule_by, assigned_user, priority, notes, done"

// activityBindings maps activity request parameters to columns. The
// dateFrom/dateTo parameters both window the schedule date; they are bounds
// of one dimension, not two fields.
var activityBindings = concat(
	textBindings("personId", "person_id"),
	textBindings("assignedUser", "assigned_user"),
	selectBindings("category", "category"),
	selectBindings("status", "status"),
	selectBindings("callType", "call_type"),
	selectBindings("done", "done"),
	[]binding{
		{"dateFrom", "schedule_date", bindGTE},
		{"dateTo", "schedule_date", bindLTE},
	},
)

// activitySortColumns whitelists sortable activity fields.
var activitySortColumns = map[string]string{
	"subject":      "subject",
	"deal":         "deal",
	"status":       "status",
	"scheduleDate": "schedule_date",
	"scheduleTime": "schedule_time",
	"assignedUser": "assigned_user",
	"priority":     "priority",
	"done":         "done",
}

func scanActivity(rows *sql.Rows) (query.Activity, error) {
	var a query.Activity
	err := rows.Scan(&a.ID, &a.PersonID, &a.Subject, &a.Deal, &a.Category, &a.Status,
		&a.CallType, &a.Venue, &a.Organization, &a.InstagramID, &a.Phone,
		&a.ScheduleDate, &a.ScheduleTime, &a.ScheduleBy, &a.AssignedUser,
		&a.Priority, &a.Notes, &a.Done)
	return a, err
}

// normalizeDone rewrites boolean parameter values to the 0/1 the done
// column stores.
func normalizeDone(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for k, vs := range params {
		out[k] = vs
	}
	for _, key := range []string{"done", "doneNot"} {
		switch out.Get(key) {
		case "true":
			out.Set(key, "1")
		case "false":
			out.Set(key, "0")
		}
	}
	return out
}

// ListActivities returns one page of activities matching the request
// parameters.
func (s *Store) ListActivities(ctx context.Context, params url.Values) (*query.Page[query.Activity], error) {
	params = normalizeDone(params)
	where, args := whereClause(activityBindings, params)
	order := orderClause(params, activitySortColumns, query.Sort{Field: "scheduleDate", Direction: query.SortAsc})
	return listPage(s.db, "activities", activityColumns, where, args, order, params, scanActivity)
}

// CreateActivity inserts an activity and returns its id.
func (s *Store) CreateActivity(ctx context.Context, a query.Activity) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (person_id, subject, deal, category, status, call_type, venue, organization,
			instagram_id, phone, schedule_date, schedule_time, schedule_by, assigned_user, priority, notes, done)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PersonID, a.Subject, a.Deal, a.Category, a.Status, a.CallType, a.Venue, a.Organization,
		a.InstagramID, a.Phone, a.ScheduleDate, a.ScheduleTime, a.ScheduleBy, a.AssignedUser,
		a.Priority, a.Notes, a.Done)
	if err != nil {
		return 0, fmt.Errorf("insert activity: %w", err)
	}
	return res.LastInsertId()
}

// UpdateActivity applies the non-nil fields of upd to one activity.
func (s *Store) UpdateActivity(ctx context.Context, id int64, upd query.ActivityUpdate) error {
	var sets []string
	var args []interface{}

	if upd.Done != nil {
		sets = append(sets, "done = ?")
		args = append(args, *upd.Done)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.AssignedUser != nil {
		sets = append(sets, "assigned_user = ?")
		args = append(args, *upd.AssignedUser)
	}
	if upd.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *upd.Priority)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, "UPDATE activities SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update activity %d: %w", id, err)
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

// DeleteActivity removes an activity by id.
func (s *Store) DeleteActivity(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete activity %d: %w", id, err)
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

// DueActivities returns undone activities scheduled on or before the given
// date, ordered by schedule date. The reminder digest uses this.
func (s *Store) DueActivities(ctx context.Context, date string, limit int) ([]query.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+activityColumns+
		" FROM activities WHERE done = 0 AND schedule_date != '' AND schedule_date <= ?"+
		" ORDER BY schedule_date ASC, id ASC LIMIT ?", date, limit)
	if err != nil {
		return nil, fmt.Errorf("due activities: %w", err)
	}
	defer rows.Close()

	var out []query.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
