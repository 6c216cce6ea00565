package query

// Person is one row of the persons screen.
type Person struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Organization string `json:"organization"`
	Manager      string `json:"manager"`
	WeddingVenue string `json:"weddingVenue"`
	WeddingDate  string `json:"weddingDate"`
	Phone        string `json:"phone"`
	InstagramID  string `json:"instagramId"`
}

// Activity is one row of the activities screen.
type Activity struct {
	ID           int64  `json:"id"`
	PersonID     int64  `json:"personId"`
	Subject      string `json:"subject"`
	Deal         string `json:"deal"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	CallType     string `json:"callType"`
	Venue        string `json:"venue"`
	Organization string `json:"organization"`
	InstagramID  string `json:"instagramId"`
	Phone        string `json:"phone"`
	ScheduleDate string `json:"scheduleDate"`
	ScheduleTime string `json:"scheduleTime"`
	ScheduleBy   string `json:"scheduleBy"`
	AssignedUser string `json:"assignedUser"`
	Priority     string `json:"priority"`
	Notes        string `json:"notes"`
	Done         bool   `json:"done"`
}

// SavedFilter is a named, reusable condition set. System filters are
// generated in-process and never persisted or deleted; custom filters
// round-trip through the backend.
type SavedFilter struct {
	Name       string      `json:"name"`
	Screen     Screen      `json:"screen"`
	Conditions []Condition `json:"conditions"`
	IsSystem   bool        `json:"isSystem"`
}

// Page is one page of a remote collection, mirroring the backend envelope:
// {content, totalElements, totalPages, number, size}.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// ActivityUpdate carries the mutable fields of a bulk or single edit.
// Nil fields are left unchanged.
type ActivityUpdate struct {
	Done         *bool   `json:"done,omitempty"`
	Status       *string `json:"status,omitempty"`
	AssignedUser *string `json:"assignedUser,omitempty"`
	Priority     *string `json:"priority,omitempty"`
}
