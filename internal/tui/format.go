package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/crmdeck/crmdeck/internal/query"
)

// padRight pads a string with spaces to fill width terminal cells.
// Uses lipgloss.Width to correctly handle ANSI codes and full-width characters.
func padRight(s string, width int) string {
	sw := lipgloss.Width(s)
	if sw >= width {
		// Use ANSI-aware truncation
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-sw)
}

// truncateRunes truncates a string to fit within maxWidth terminal cells.
// Uses runewidth to correctly handle full-width characters (CJK, emoji, etc.)
// that occupy 2 terminal cells but count as 1 rune. Also strips newlines and
// tabs that would break the row layout.
func truncateRunes(s string, maxWidth int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// formatCount formats a count as a human-readable string (e.g., "1.5K").
func formatCount(n int64) string {
	if n < 1000 {
		return strconv.FormatInt(n, 10)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// columnWidth returns the display width for a column id.
func columnWidth(id string) int {
	switch id {
	case "done":
		return 4
	case "name", "subject", "weddingVenue", "venue", "organization", "notes":
		return 24
	case "scheduleDate", "weddingDate", "dateFrom", "dateTo":
		return 12
	case "scheduleTime":
		return 8
	case "category", "status", "priority", "callType":
		return 10
	case "phone":
		return 14
	default:
		return 16
	}
}

// personCell returns the display value of one persons-screen column.
func personCell(p query.Person, id string) string {
	switch id {
	case "name":
		return p.Name
	case "category":
		return p.Category
	case "organization":
		return p.Organization
	case "manager":
		return p.Manager
	case "weddingVenue":
		return p.WeddingVenue
	case "weddingDate":
		return p.WeddingDate
	case "phone":
		return p.Phone
	case "instagramId":
		return p.InstagramID
	default:
		return ""
	}
}

// activityCell returns the display value of one activities-screen column.
func activityCell(a query.Activity, id string) string {
	switch id {
	case "done":
		if a.Done {
			return "✓"
		}
		return "·"
	case "subject":
		return a.Subject
	case "deal":
		return a.Deal
	case "personId":
		if a.PersonID == 0 {
			return ""
		}
		return strconv.FormatInt(a.PersonID, 10)
	case "category":
		return a.Category
	case "status":
		return a.Status
	case "callType":
		return a.CallType
	case "venue":
		return a.Venue
	case "organization":
		return a.Organization
	case "instagramId":
		return a.InstagramID
	case "phone":
		return a.Phone
	case "scheduleDate", "dateFrom", "dateTo":
		return a.ScheduleDate
	case "scheduleTime":
		return a.ScheduleTime
	case "scheduleBy":
		return a.ScheduleBy
	case "assignedUser":
		return a.AssignedUser
	case "priority":
		return a.Priority
	case "notes":
		return a.Notes
	default:
		return ""
	}
}
