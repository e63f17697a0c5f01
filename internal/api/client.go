// Package api is the REST client for the companion backend.
//
// The backend is the source of truth for every resource; this client is a
// thin, typed boundary over it. It owns transport concerns only: bearer
// auth, request shaping, a self-imposed rate limit (the backend is shared
// with the phone apps), and mapping non-2xx responses to *Error so callers
// can tell a validation rejection from an outage.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "Companion/1.0 (https://github.com/abelbrown/companion)"

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// IsValidation reports whether the backend rejected the request itself
// (4xx) as opposed to failing to serve it. Validation messages are shown
// to the user verbatim; transport failures are summarized.
func (e *Error) IsValidation() bool {
	return e.Status >= 400 && e.Status < 500
}

// Client talks to the companion backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client for the backend at baseURL.
// The token is sent as a bearer credential on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		// 5 req/s with a small burst keeps a refresh cycle snappy
		// without hammering a shared backend.
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

// do performs one request and decodes the JSON response into out (which
// may be nil for fire-and-forget calls).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError reads the error payload the backend attaches to failures.
// Bodies are best-effort: a bare status still yields a usable *Error.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Message string `json:"message"`
		ErrMsg  string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = payload.ErrMsg
		}
	}
	return apiErr
}

// seniorQuery builds the optional caregiver scoping parameter.
func seniorQuery(seniorID string) url.Values {
	if seniorID == "" {
		return nil
	}
	return url.Values{"senior_id": {seniorID}}
}

// GetAppointments lists appointments, optionally scoped to a senior the
// caregiver manages. An empty seniorID means the authenticated user.
func (c *Client) GetAppointments(ctx context.Context, seniorID string) ([]Appointment, error) {
	var appts []Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments", seniorQuery(seniorID), nil, &appts); err != nil {
		return nil, fmt.Errorf("failed to fetch appointments: %w", err)
	}
	return appts, nil
}

// GetMedications lists medications, optionally scoped to a senior.
func (c *Client) GetMedications(ctx context.Context, seniorID string) ([]Medication, error) {
	var meds []Medication
	if err := c.do(ctx, http.MethodGet, "/medications", seniorQuery(seniorID), nil, &meds); err != nil {
		return nil, fmt.Errorf("failed to fetch medications: %w", err)
	}
	return meds, nil
}

// UpdateMedication applies a partial update and returns the canonical
// record as the backend now holds it.
func (c *Client) UpdateMedication(ctx context.Context, id, seniorID string, patch MedicationPatch) (Medication, error) {
	var med Medication
	path := "/medications/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, seniorQuery(seniorID), patch, &med); err != nil {
		return Medication{}, fmt.Errorf("failed to update medication: %w", err)
	}
	return med, nil
}

// GetEvents lists community events.
func (c *Client) GetEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodGet, "/events", nil, nil, &events); err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	return events, nil
}

// GetEvent fetches a single event.
func (c *Client) GetEvent(ctx context.Context, id string) (Event, error) {
	var event Event
	if err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, nil, &event); err != nil {
		return Event{}, fmt.Errorf("failed to fetch event: %w", err)
	}
	return event, nil
}

// JoinEvent signs the user up for an event.
func (c *Client) JoinEvent(ctx context.Context, id string) error {
	body := map[string]string{"event_id": id}
	if err := c.do(ctx, http.MethodPost, "/events/join", nil, body, nil); err != nil {
		return fmt.Errorf("failed to join event: %w", err)
	}
	return nil
}

// JoinedEventIDs lists the ids of events the user has joined.
func (c *Client) JoinedEventIDs(ctx context.Context) ([]string, error) {
	var payload struct {
		EventIDs []string `json:"event_ids"`
	}
	if err := c.do(ctx, http.MethodGet, "/events/joined", nil, nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch joined events: %w", err)
	}
	return payload.EventIDs, nil
}

// GetNewsCategories lists the categories the backend can serve.
func (c *Client) GetNewsCategories(ctx context.Context) ([]string, error) {
	var payload struct {
		Categories []string `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/news/categories", nil, nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch news categories: %w", err)
	}
	return payload.Categories, nil
}

// GetNews fetches articles for one category and/or free-text query.
func (c *Client) GetNews(ctx context.Context, q NewsQuery) ([]Article, error) {
	query := url.Values{}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Query != "" {
		query.Set("q", q.Query)
	}
	var payload struct {
		Articles []Article `json:"articles"`
	}
	if err := c.do(ctx, http.MethodGet, "/news/", query, nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	return payload.Articles, nil
}

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, nil, &profile); err != nil {
		return Profile{}, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return profile, nil
}
