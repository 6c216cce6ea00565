package query

import "time"

// TabWindow is a symbolic temporal scope selectable from the tab bar.
type TabWindow int

const (
	TabAll TabWindow = iota
	TabToDo
	TabOverdue
	TabToday
	TabTomorrow
	TabThisWeek
	TabNextWeek
	TabSelectPeriod
	TabSelectDate
)

// String returns the tab label.
func (t TabWindow) String() string {
	switch t {
	case TabAll:
		return "All"
	case TabToDo:
		return "To-do"
	case TabOverdue:
		return "Overdue"
	case TabToday:
		return "Today"
	case TabTomorrow:
		return "Tomorrow"
	case TabThisWeek:
		return "This week"
	case TabNextWeek:
		return "Next week"
	case TabSelectPeriod:
		return "Period"
	case TabSelectDate:
		return "Date"
	default:
		return "All"
	}
}

// Tabs lists the tab bar entries in display order.
var Tabs = []TabWindow{
	TabAll, TabToDo, TabOverdue, TabToday, TabTomorrow,
	TabThisWeek, TabNextWeek, TabSelectPeriod, TabSelectDate,
}

// DateLayout is the wire format for date bounds.
const DateLayout = "2006-01-02"

// DateRange is an explicit user-chosen period for TabSelectPeriod.
type DateRange struct {
	Start string
	End   string
}

// Explicit carries the user-supplied parameters of the parametric tabs.
type Explicit struct {
	Date  string    // TabSelectDate
	Range DateRange // TabSelectPeriod
}

// TabBounds is the date contribution of a resolved tab window.
type TabBounds struct {
	DateFrom string
	DateTo   string
	Done     *bool
}

// midnight truncates t to local midnight.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ResolveTab maps a tab window to concrete date bounds anchored at local
// midnight of now. For every tab except the parametric ones the result is a
// pure function of now. The second return is false when a parametric tab
// has no explicit value yet; callers leave the previous tab active.
func ResolveTab(tab TabWindow, now time.Time, explicit Explicit) (TabBounds, bool) {
	day := midnight(now)
	f := func(b bool) *bool { return &b }

	switch tab {
	case TabAll:
		return TabBounds{}, true
	case TabToDo:
		return TabBounds{Done: f(false)}, true
	case TabOverdue:
		// Strictly before today and not completed. A record dated today is
		// never overdue regardless of completion.
		return TabBounds{
			DateTo: day.AddDate(0, 0, -1).Format(DateLayout),
			Done:   f(false),
		}, true
	case TabToday:
		d := day.Format(DateLayout)
		return TabBounds{DateFrom: d, DateTo: d}, true
	case TabTomorrow:
		d := day.AddDate(0, 0, 1).Format(DateLayout)
		return TabBounds{DateFrom: d, DateTo: d}, true
	case TabThisWeek:
		sunday := day.AddDate(0, 0, -int(day.Weekday()))
		return TabBounds{
			DateFrom: sunday.Format(DateLayout),
			DateTo:   sunday.AddDate(0, 0, 6).Format(DateLayout),
		}, true
	case TabNextWeek:
		nextSunday := day.AddDate(0, 0, 7-int(day.Weekday()))
		return TabBounds{
			DateFrom: nextSunday.Format(DateLayout),
			DateTo:   nextSunday.AddDate(0, 0, 6).Format(DateLayout),
		}, true
	case TabSelectPeriod:
		if explicit.Range.Start == "" || explicit.Range.End == "" {
			return TabBounds{}, false
		}
		return TabBounds{DateFrom: explicit.Range.Start, DateTo: explicit.Range.End}, true
	case TabSelectDate:
		if explicit.Date == "" {
			return TabBounds{}, false
		}
		return TabBounds{DateFrom: explicit.Date, DateTo: explicit.Date}, true
	default:
		return TabBounds{}, true
	}
}
