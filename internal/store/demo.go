package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/crmdeck/crmdeck/internal/query"
)

// SeedDemo loads a small wedding-season dataset so a fresh install has
// something to page through. Idempotent: it refuses to seed a non-empty
// database.
func (s *Store) SeedDemo(now time.Time) error {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM persons").Scan(&n); err != nil {
		return fmt.Errorf("check persons: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("database already has %d persons, refusing to seed", n)
	}

	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(query.DateLayout)
	}

	persons := []query.Person{
		{Name: "Amelia Hart", Category: "Bride", Organization: "Hart & Co", Manager: "dana",
			WeddingVenue: "Rosewood Barn", WeddingDate: day(30), Phone: "+1 555 0101", InstagramID: "amelia.h"},
		{Name: "Ben Okafor", Category: "Groom", Manager: "dana",
			WeddingVenue: "Rosewood Barn", WeddingDate: day(30), Phone: "+1 555 0102"},
		{Name: "Clara Lindqvist", Category: "Bride", Organization: "Lindqvist Events", Manager: "sam",
			WeddingVenue: "Harbor House", WeddingDate: day(75), Phone: "+1 555 0103", InstagramID: "clara.l"},
		{Name: "Petal & Stem", Category: "Vendor", Organization: "Petal & Stem Florists", Manager: "sam",
			Phone: "+1 555 0104", InstagramID: "petalandstem"},
		{Name: "Maya Reyes", Category: "Planner", Organization: "Reyes Weddings", Manager: "dana",
			Phone: "+1 555 0105", InstagramID: "maya.plans"},
	}

	return s.withTx(func(tx *sql.Tx) error {
		personIDs := make([]int64, 0, len(persons))
		for _, p := range persons {
			res, err := tx.Exec(`
				INSERT INTO persons (name, category, organization, manager, wedding_venue, wedding_date, phone, instagram_id)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				p.Name, p.Category, p.Organization, p.Manager, p.WeddingVenue, p.WeddingDate, p.Phone, p.InstagramID)
			if err != nil {
				return fmt.Errorf("seed person %q: %w", p.Name, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			personIDs = append(personIDs, id)
		}

		activities := []query.Activity{
			{PersonID: personIDs[0], Subject: "Confirm catering headcount", Category: "ACTIVITY",
				Status: "Planned", Organization: "Hart & Co", ScheduleDate: day(-2),
				AssignedUser: "dana", Priority: "High"},
			{PersonID: personIDs[0], Subject: "Venue walkthrough call", Category: "CALL",
				Status: "Planned", CallType: "Outgoing", Phone: "+1 555 0101",
				ScheduleDate: day(0), ScheduleTime: "10:00", AssignedUser: "dana"},
			{PersonID: personIDs[2], Subject: "Tasting at Harbor House", Category: "MEETING",
				Status: "Planned", Venue: "Harbor House", ScheduleDate: day(3),
				ScheduleTime: "14:30", AssignedUser: "sam", Priority: "Medium"},
			{PersonID: personIDs[3], Subject: "Florist deposit follow-up", Category: "CALL",
				Status: "Completed", CallType: "Incoming", ScheduleDate: day(-10),
				AssignedUser: "sam", Done: true},
			{PersonID: personIDs[4], Subject: "Timeline review", Category: "MEETING",
				Status: "In progress", ScheduleDate: day(7), ScheduleTime: "09:00",
				AssignedUser: "dana", Notes: "bring the seating chart"},
		}
		for _, a := range activities {
			if _, err := tx.Exec(`
				INSERT INTO activities (person_id, subject, deal, category, status, call_type, venue, organization,
					instagram_id, phone, schedule_date, schedule_time, schedule_by, assigned_user, priority, notes, done)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.PersonID, a.Subject, a.Deal, a.Category, a.Status, a.CallType, a.Venue, a.Organization,
				a.InstagramID, a.Phone, a.ScheduleDate, a.ScheduleTime, a.ScheduleBy, a.AssignedUser,
				a.Priority, a.Notes, a.Done); err != nil {
				return fmt.Errorf("seed activity %q: %w", a.Subject, err)
			}
		}
		return nil
	})
}
