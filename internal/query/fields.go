// Package query implements the list-view state engine: field registries,
// filter conditions, temporal tab windows, column/sort view state, row
// selection, and the composer that reduces all of them into one request
// against the paginated backend.
package query

import (
	"encoding/json"
	"fmt"
)

// FieldType determines which operators a field offers and which value
// editor the UI renders for it.
type FieldType int

const (
	FieldText FieldType = iota
	FieldSelect
	FieldDate
)

// String returns a human-readable name for the field type.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldSelect:
		return "select"
	case FieldDate:
		return "date"
	default:
		return "unknown"
	}
}

// Operator identifies a filter comparison.
type Operator string

const (
	OpEquals     Operator = "equals"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpNotEquals  Operator = "notEquals"
	OpAfter      Operator = "after"
	OpBefore     Operator = "before"
	OpBetween    Operator = "between"
)

// operatorTable maps each field type to its valid operators, in the order
// they are offered. The first entry is the default after a field change.
var operatorTable = map[FieldType][]Operator{
	FieldText:   {OpEquals, OpContains, OpStartsWith},
	FieldSelect: {OpEquals, OpNotEquals},
	FieldDate:   {OpEquals, OpAfter, OpBefore, OpBetween},
}

// OperatorsFor returns the operators valid for a field type.
func OperatorsFor(t FieldType) []Operator {
	return operatorTable[t]
}

// DefaultOperator returns the first declared operator for a field type.
func DefaultOperator(t FieldType) Operator {
	return operatorTable[t][0]
}

// ValidOperator reports whether op is valid for the given field type.
func ValidOperator(t FieldType, op Operator) bool {
	for _, o := range operatorTable[t] {
		if o == op {
			return true
		}
	}
	return false
}

// FieldDescriptor describes one filterable field of a screen.
// QueryKey is the backend parameter name; fields the backend does not
// support leave it empty and are silently dropped from composition.
type FieldDescriptor struct {
	ID       string
	Label    string
	Type     FieldType
	Options  []string // select fields only
	QueryKey string
}

// Screen identifies which record collection a registry belongs to.
type Screen int

const (
	ScreenPersons Screen = iota
	ScreenActivities
)

// String returns the screen name used in API paths and logs.
func (s Screen) String() string {
	switch s {
	case ScreenPersons:
		return "persons"
	case ScreenActivities:
		return "activities"
	default:
		return "unknown"
	}
}

// ParseScreen maps a screen name back to its value.
func ParseScreen(name string) (Screen, bool) {
	switch name {
	case "persons":
		return ScreenPersons, true
	case "activities":
		return ScreenActivities, true
	default:
		return 0, false
	}
}

// MarshalJSON encodes the screen as its name so payloads stay readable.
func (s Screen) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a screen name.
func (s *Screen) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseScreen(name)
	if !ok {
		return fmt.Errorf("unknown screen %q", name)
	}
	*s = parsed
	return nil
}

// Category narrows the activities screen to one record kind. Each category
// exposes a structurally different default column set.
type Category string

const (
	CategoryNone     Category = ""
	CategoryActivity Category = "ACTIVITY"
	CategoryCall     Category = "CALL"
	CategoryMeeting  Category = "MEETING"
)

// Sort is the single active sort key of a view.
type Sort struct {
	Field     string
	Direction SortDirection
}

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Registry is the static field set of one screen plus its per-category
// column defaults and default sort.
type Registry struct {
	Screen      Screen
	Fields      []FieldDescriptor
	DefaultSort Sort

	// TabFromKey/TabToKey are the query keys the tab window's date bounds
	// bind to for this screen. HasDone marks screens whose records carry a
	// completion flag the To-do/Overdue tabs can filter on.
	TabFromKey string
	TabToKey   string
	HasDone    bool

	// defaultColumns maps category to its default column permutation.
	// CategoryNone holds the screen-wide default.
	defaultColumns map[Category][]string
}

// Field returns the descriptor for a field id, or nil if unknown.
func (r *Registry) Field(id string) *FieldDescriptor {
	for i := range r.Fields {
		if r.Fields[i].ID == id {
			return &r.Fields[i]
		}
	}
	return nil
}

// DefaultColumns returns the default column order for a category. Unknown
// categories fall back to the screen-wide default.
func (r *Registry) DefaultColumns(cat Category) []string {
	cols, ok := r.defaultColumns[cat]
	if !ok {
		cols = r.defaultColumns[CategoryNone]
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// personCategories are the select options for the persons category field.
var personCategories = []string{"Bride", "Groom", "Planner", "Vendor"}

// activityStatuses are the select options for the activity status field.
var activityStatuses = []string{"Planned", "In progress", "Completed", "Cancelled"}

// callTypes are the select options for the call type field.
var callTypes = []string{"Incoming", "Outgoing", "Missed"}

// PersonsRegistry returns the field registry for the persons screen.
func PersonsRegistry() *Registry {
	return &Registry{
		Screen: ScreenPersons,
		Fields: []FieldDescriptor{
			{ID: "name", Label: "Name", Type: FieldText, QueryKey: "name"},
			{ID: "category", Label: "Category", Type: FieldSelect, Options: personCategories, QueryKey: "category"},
			// organization is searchable in the UI but the persons endpoint
			// has no matching parameter, so the fragment is dropped.
			{ID: "organization", Label: "Organization", Type: FieldText},
			{ID: "manager", Label: "Manager", Type: FieldText, QueryKey: "manager"},
			{ID: "weddingVenue", Label: "Wedding venue", Type: FieldText, QueryKey: "weddingVenue"},
			{ID: "weddingDate", Label: "Wedding date", Type: FieldDate, QueryKey: "weddingDate"},
			{ID: "phone", Label: "Phone", Type: FieldText, QueryKey: "phone"},
			{ID: "instagramId", Label: "Instagram ID", Type: FieldText, QueryKey: "instagramId"},
		},
		DefaultSort: Sort{Field: "name", Direction: SortAsc},
		TabFromKey:  "weddingDateFrom",
		TabToKey:    "weddingDateTo",
		defaultColumns: map[Category][]string{
			CategoryNone: {
				"name", "category", "organization", "manager", "weddingVenue",
				"weddingDate", "phone", "instagramId",
			},
		},
	}
}

// ActivitiesRegistry returns the field registry for the activities screen.
func ActivitiesRegistry() *Registry {
	return &Registry{
		Screen: ScreenActivities,
		Fields: []FieldDescriptor{
			{ID: "personId", Label: "Person", Type: FieldText, QueryKey: "personId"},
			{ID: "assignedUser", Label: "Assigned user", Type: FieldText, QueryKey: "assignedUser"},
			{ID: "organization", Label: "Organization", Type: FieldText},
			{ID: "category", Label: "Category", Type: FieldSelect,
				Options: []string{string(CategoryActivity), string(CategoryCall), string(CategoryMeeting)}, QueryKey: "category"},
			{ID: "status", Label: "Status", Type: FieldSelect, Options: activityStatuses, QueryKey: "status"},
			{ID: "callType", Label: "Call type", Type: FieldSelect, Options: callTypes, QueryKey: "callType"},
			{ID: "done", Label: "Done", Type: FieldSelect, Options: []string{"true", "false"}, QueryKey: "done"},
			{ID: "dateFrom", Label: "Date from", Type: FieldDate, QueryKey: "dateFrom"},
			{ID: "dateTo", Label: "Date to", Type: FieldDate, QueryKey: "dateTo"},
		},
		DefaultSort: Sort{Field: "scheduleDate", Direction: SortAsc},
		TabFromKey:  "dateFrom",
		TabToKey:    "dateTo",
		HasDone:     true,
		defaultColumns: map[Category][]string{
			CategoryNone: {
				"done", "subject", "deal", "instagramId", "phone", "organization",
				"scheduleDate", "scheduleTime", "assignedUser", "priority", "notes",
			},
			CategoryActivity: {
				"done", "subject", "deal", "instagramId", "phone", "organization",
				"scheduleDate", "scheduleTime", "assignedUser", "priority", "notes",
			},
			CategoryCall: {
				"done", "subject", "deal", "instagramId", "phone", "organization",
				"callType", "scheduleDate", "scheduleTime", "assignedUser",
				"scheduleBy", "priority", "notes",
			},
			CategoryMeeting: {
				"done", "subject", "deal", "venue", "scheduleDate", "scheduleTime",
				"assignedUser", "priority", "notes",
			},
		},
	}
}

// RegistryFor returns the registry for a screen.
func RegistryFor(s Screen) *Registry {
	if s == ScreenActivities {
		return ActivitiesRegistry()
	}
	return PersonsRegistry()
}

// columnLabels maps column ids that are not filter fields to header labels.
var columnLabels = map[string]string{
	"subject":      "Subject",
	"deal":         "Deal",
	"venue":        "Venue",
	"scheduleDate": "Schedule date",
	"scheduleTime": "Schedule time",
	"scheduleBy":   "Schedule by",
	"priority":     "Priority",
	"notes":        "Notes",
}

// ColumnLabel returns the header label for a column id.
func (r *Registry) ColumnLabel(id string) string {
	if f := r.Field(id); f != nil {
		return f.Label
	}
	if l, ok := columnLabels[id]; ok {
		return l
	}
	return id
}
