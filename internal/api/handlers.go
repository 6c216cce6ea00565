package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crmdeck/crmdeck/internal/query"
	"github.com/crmdeck/crmdeck/internal/store"
)

// StatsResponse represents the database statistics.
type StatsResponse struct {
	TotalPersons    int64 `json:"total_persons"`
	TotalActivities int64 `json:"total_activities"`
	TotalFilters    int64 `json:"total_filters"`
	DatabaseSize    int64 `json:"database_size_bytes"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// screenParam parses the ?screen= query parameter.
func screenParam(r *http.Request) (query.Screen, bool) {
	return query.ParseScreen(r.URL.Query().Get("screen"))
}

// handleStats returns database statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats()
	if err != nil {
		s.logger.Error("failed to get stats", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve statistics")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalPersons:    stats.PersonCount,
		TotalActivities: stats.ActivityCount,
		TotalFilters:    stats.FilterCount,
		DatabaseSize:    stats.DatabaseSize,
	})
}

// handleListPersons returns one page of persons. Every query parameter the
// client composed — filters, tab window bounds, sort, page — passes through
// to the store, which ignores what it does not bind.
func (s *Server) handleListPersons(w http.ResponseWriter, r *http.Request) {
	page, err := s.store.ListPersons(r.Context(), r.URL.Query())
	if err != nil {
		s.logger.Error("failed to list persons", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve persons")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleCreatePerson inserts a person record.
func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var p query.Person
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Malformed person payload")
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "missing_name", "Person name is required")
		return
	}

	id, err := s.store.CreatePerson(r.Context(), p)
	if err != nil {
		s.logger.Error("failed to create person", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create person")
		return
	}
	p.ID = id
	writeJSON(w, http.StatusCreated, p)
}

// handleDeletePerson removes a person by id.
func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "Person ID must be a number")
		return
	}

	if err := s.store.DeletePerson(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Person not found")
			return
		}
		s.logger.Error("failed to delete person", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete person")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListActivities returns one page of activities.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	page, err := s.store.ListActivities(r.Context(), r.URL.Query())
	if err != nil {
		s.logger.Error("failed to list activities", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve activities")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleCreateActivity inserts an activity record.
func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var a query.Activity
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Malformed activity payload")
		return
	}
	if a.Subject == "" {
		writeError(w, http.StatusBadRequest, "missing_subject", "Activity subject is required")
		return
	}

	id, err := s.store.CreateActivity(r.Context(), a)
	if err != nil {
		s.logger.Error("failed to create activity", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create activity")
		return
	}
	a.ID = id
	writeJSON(w, http.StatusCreated, a)
}

// handleUpdateActivity patches the given fields of one activity.
func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "Activity ID must be a number")
		return
	}

	var upd query.ActivityUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Malformed update payload")
		return
	}

	if err := s.store.UpdateActivity(r.Context(), id, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Activity not found")
			return
		}
		s.logger.Error("failed to update activity", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to update activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteActivity removes an activity by id.
func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "Activity ID must be a number")
		return
	}

	if err := s.store.DeleteActivity(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Activity not found")
			return
		}
		s.logger.Error("failed to delete activity", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// filtersResponse wraps the saved-filter list.
type filtersResponse struct {
	Filters []query.SavedFilter `json:"filters"`
}

// handleListFilters returns the saved filters for a screen.
func (s *Server) handleListFilters(w http.ResponseWriter, r *http.Request) {
	screen, ok := screenParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_screen", "Query parameter 'screen' must be persons or activities")
		return
	}

	filters, err := s.store.ListFilters(r.Context(), screen)
	if err != nil {
		s.logger.Error("failed to list filters", "screen", screen, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve filters")
		return
	}
	if filters == nil {
		filters = []query.SavedFilter{}
	}
	writeJSON(w, http.StatusOK, filtersResponse{Filters: filters})
}

// handleSaveFilter upserts a saved filter by name.
func (s *Server) handleSaveFilter(w http.ResponseWriter, r *http.Request) {
	var f query.SavedFilter
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Malformed filter payload")
		return
	}
	if f.Name == "" {
		writeError(w, http.StatusBadRequest, "missing_name", "Filter name is required")
		return
	}

	// Reject conditions the screen's field set does not know; a filter
	// that silently matches nothing is worse than an error.
	reg := query.RegistryFor(f.Screen)
	for _, c := range f.Conditions {
		if _, ok := query.Normalize(reg, c); !ok {
			writeError(w, http.StatusBadRequest, "invalid_condition",
				"Unknown field or operator: "+c.Field+"/"+c.Operator)
			return
		}
	}

	if err := s.store.SaveFilter(r.Context(), f); err != nil {
		s.logger.Error("failed to save filter", "name", f.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to save filter")
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// handleDeleteFilter removes a saved filter by name.
func (s *Server) handleDeleteFilter(w http.ResponseWriter, r *http.Request) {
	screen, ok := screenParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_screen", "Query parameter 'screen' must be persons or activities")
		return
	}
	name := chi.URLParam(r, "name")

	if err := s.store.DeleteFilter(r.Context(), screen, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Filter not found")
			return
		}
		s.logger.Error("failed to delete filter", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete filter")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reminderStatusResponse represents reminder scheduler status.
type reminderStatusResponse struct {
	Running bool   `json:"running"`
	NextRun string `json:"next_run,omitempty"`
}

// handleReminderStatus returns the reminder scheduler status.
func (s *Server) handleReminderStatus(w http.ResponseWriter, r *http.Request) {
	resp := reminderStatusResponse{}
	if s.scheduler != nil {
		resp.Running = s.scheduler.IsRunning()
		if next := s.scheduler.NextRun(); !next.IsZero() {
			resp.NextRun = next.Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTriggerDigest runs the reminder digest immediately.
func (s *Server) handleTriggerDigest(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusConflict, "reminders_disabled", "Reminders are not enabled")
		return
	}
	if err := s.scheduler.TriggerDigest(); err != nil {
		s.logger.Error("failed to trigger digest", "error", err)
		writeError(w, http.StatusConflict, "digest_error", err.Error())
		return
	}
	s.logger.Info("reminder digest triggered via API")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
