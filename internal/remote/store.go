// Package remote provides the HTTP client for a crmdeck backend. It is the
// paginated data source and saved-filter store the list-view engine
// composes queries against.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crmdeck/crmdeck/internal/query"
)

// Store provides remote API access to a crmdeck server.
type Store struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds configuration for creating a remote store.
type Config struct {
	URL           string
	APIKey        string
	AllowInsecure bool
	Timeout       time.Duration
}

// New creates a new remote store.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote URL is required")
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Enforce HTTPS unless AllowInsecure is set
	if parsedURL.Scheme == "http" && !cfg.AllowInsecure {
		return nil, fmt.Errorf("HTTPS required for remote connections\n\n" +
			"Options:\n" +
			"  1. Use HTTPS: [remote] url = \"https://crm:8080\"\n" +
			"  2. For trusted networks: add 'allow_insecure = true' to [remote] in config.toml")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("URL scheme must be http or https, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return nil, fmt.Errorf("remote URL must include a host (e.g., http://crm:8080)")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Store{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Compile-time check.
var _ query.Engine = (*Store)(nil)

// Close is a no-op for HTTP client.
func (s *Store) Close() error {
	return nil
}

// doRequest performs an authenticated HTTP request.
func (s *Store) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	reqURL := s.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// apiError represents an error response from the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleErrorResponse reads an error response and returns an appropriate error.
func handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
	}

	return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
}

// fetchPage issues a composed query against a collection endpoint and
// decodes the page envelope.
func fetchPage[T any](ctx context.Context, s *Store, path string, q query.ComposedQuery) (*query.Page[T], error) {
	resp, err := s.doRequest(ctx, http.MethodGet, path+"?"+q.Values().Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp)
	}

	var page query.Page[T]
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return &page, nil
}

// FetchPersons fetches one page of the persons collection.
func (s *Store) FetchPersons(ctx context.Context, q query.ComposedQuery) (*query.Page[query.Person], error) {
	return fetchPage[query.Person](ctx, s, "/api/v1/persons", q)
}

// FetchActivities fetches one page of the activities collection.
func (s *Store) FetchActivities(ctx context.Context, q query.ComposedQuery) (*query.Page[query.Activity], error) {
	return fetchPage[query.Activity](ctx, s, "/api/v1/activities", q)
}

// filtersResponse matches the API saved-filters list response.
type filtersResponse struct {
	Filters []query.SavedFilter `json:"filters"`
}

// ListFilters fetches the custom saved filters for a screen. A missing
// collection decodes to an empty slice, not an error.
func (s *Store) ListFilters(ctx context.Context, screen query.Screen) ([]query.SavedFilter, error) {
	path := "/api/v1/filters?screen=" + url.QueryEscape(screen.String())
	resp, err := s.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp)
	}

	var fr filtersResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("decode filters response: %w", err)
	}
	return fr.Filters, nil
}

// SaveFilter upserts a custom filter by name.
func (s *Store) SaveFilter(ctx context.Context, f query.SavedFilter) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode filter: %w", err)
	}

	resp, err := s.doRequest(ctx, http.MethodPost, "/api/v1/filters", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return handleErrorResponse(resp)
	}
	return nil
}

// DeleteFilter removes a custom filter by name.
func (s *Store) DeleteFilter(ctx context.Context, screen query.Screen, name string) error {
	path := "/api/v1/filters/" + url.PathEscape(name) + "?screen=" + url.QueryEscape(screen.String())
	resp, err := s.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return handleErrorResponse(resp)
	}
	return nil
}

// deleteRecord removes one record from a collection.
func (s *Store) deleteRecord(ctx context.Context, collection string, id int64) error {
	path := "/api/v1/" + collection + "/" + strconv.FormatInt(id, 10)
	resp, err := s.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return handleErrorResponse(resp)
	}
	return nil
}

// DeletePerson removes one person record.
func (s *Store) DeletePerson(ctx context.Context, id int64) error {
	return s.deleteRecord(ctx, "persons", id)
}

// DeleteActivity removes one activity record.
func (s *Store) DeleteActivity(ctx context.Context, id int64) error {
	return s.deleteRecord(ctx, "activities", id)
}

// UpdateActivity patches one activity record.
func (s *Store) UpdateActivity(ctx context.Context, id int64, upd query.ActivityUpdate) error {
	payload, err := json.Marshal(upd)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	path := "/api/v1/activities/" + strconv.FormatInt(id, 10)
	resp, err := s.doRequest(ctx, http.MethodPatch, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return handleErrorResponse(resp)
	}
	return nil
}
