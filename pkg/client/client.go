// Package client is a Go client for the EventPulse HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/eventpulse/eventpulse/internal/rest"
	"github.com/eventpulse/eventpulse/internal/utils"
	"github.com/eventpulse/eventpulse/pkg/event"
	"github.com/eventpulse/eventpulse/pkg/rsvp"
	"github.com/eventpulse/eventpulse/pkg/user"
	"github.com/hashicorp/go-cleanhttp"
	log "github.com/sirupsen/logrus"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Details    []rest.FieldError
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("eventpulse API returned %d: %s", e.StatusCode, e.Message)
	}
	fields := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		fields = append(fields, d.Field+" "+d.Message)
	}
	return fmt.Sprintf("eventpulse API returned %d: %s (%s)", e.StatusCode, e.Message, strings.Join(fields, "; "))
}

type Client interface {
	ListEvents(ctx context.Context) ([]event.Event, error)                                             // GET /api/events
	FindEvents(ctx context.Context, state event.FilterState) ([]event.Event, error)                    // GET /api/events?...
	Browse(ctx context.Context, state event.FilterState) ([]event.Event, error)                        // GET /api/events, filtered locally
	GetEvent(ctx context.Context, id int) (event.Event, error)                                         // GET /api/events/{id}
	CreateEvent(ctx context.Context, input event.InsertEventDTO) (event.Event, error)                  // POST /api/events
	SubmitRsvp(ctx context.Context, eventId int, userId string, status rsvp.Status) (rsvp.Rsvp, error) // POST /api/rsvp
	GetEventRsvps(ctx context.Context, eventId int) ([]rsvp.Rsvp, error)                               // GET /api/events/{id}/rsvps
	ListUsers(ctx context.Context) ([]user.User, error)                                                // GET /api/users
	CreateUser(ctx context.Context, name string, email string) (user.User, error)                      // POST /api/users
}

var _ Client = (*ClientImpl)(nil)

type ClientImpl struct {
	baseURL    string
	httpClient *http.Client
	clock      utils.Clock
}

// NewClient returns a client for the API served at baseURL, e.g. "http://localhost:8181".
// clock anchors the date buckets used by Browse.
func NewClient(baseURL string, clock utils.Clock) *ClientImpl {
	return &ClientImpl{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: cleanhttp.DefaultPooledClient(),
		clock:      clock,
	}
}

func (c *ClientImpl) ListEvents(ctx context.Context) ([]event.Event, error) {
	return c.getEvents(ctx, "/api/events")
}

// FindEvents lets the server apply state.
func (c *ClientImpl) FindEvents(ctx context.Context, state event.FilterState) ([]event.Event, error) {
	return c.getEvents(ctx, "/api/events?"+filterQuery(state).Encode())
}

// Browse fetches every event and applies state locally at the client clock's now.
func (c *ClientImpl) Browse(ctx context.Context, state event.FilterState) ([]event.Event, error) {
	events, err := c.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return event.Filter(events, state, c.clock.Now()), nil
}

func (c *ClientImpl) getEvents(ctx context.Context, path string) ([]event.Event, error) {
	var dtos []event.EventDTO
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &dtos); err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(dtos))
	for _, dto := range dtos {
		events = append(events, event.DTOToEvent(dto))
	}
	return events, nil
}

func (c *ClientImpl) GetEvent(ctx context.Context, id int) (event.Event, error) {
	var dto event.EventDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/events/%d", id), nil, http.StatusOK, &dto); err != nil {
		return event.Event{}, err
	}
	return event.DTOToEvent(dto), nil
}

func (c *ClientImpl) CreateEvent(ctx context.Context, input event.InsertEventDTO) (event.Event, error) {
	var response struct {
		Event event.EventDTO `json:"event"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/events", input, http.StatusCreated, &response); err != nil {
		return event.Event{}, err
	}
	return event.DTOToEvent(response.Event), nil
}

func (c *ClientImpl) SubmitRsvp(ctx context.Context, eventId int, userId string, status rsvp.Status) (rsvp.Rsvp, error) {
	input := rsvp.InsertRsvpDTO{EventId: eventId, UserId: userId, Status: string(status)}
	var response struct {
		Rsvp rsvp.RsvpDTO `json:"rsvp"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/rsvp", input, http.StatusOK, &response); err != nil {
		return rsvp.Rsvp{}, err
	}
	return rsvp.DTOToRsvp(response.Rsvp), nil
}

func (c *ClientImpl) GetEventRsvps(ctx context.Context, eventId int) ([]rsvp.Rsvp, error) {
	var dtos []rsvp.RsvpDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/events/%d/rsvps", eventId), nil, http.StatusOK, &dtos); err != nil {
		return nil, err
	}
	rsvps := make([]rsvp.Rsvp, 0, len(dtos))
	for _, dto := range dtos {
		rsvps = append(rsvps, rsvp.DTOToRsvp(dto))
	}
	return rsvps, nil
}

func (c *ClientImpl) ListUsers(ctx context.Context) ([]user.User, error) {
	var dtos []user.UserDTO
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, http.StatusOK, &dtos); err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(dtos))
	for _, dto := range dtos {
		users = append(users, user.DTOToUser(dto))
	}
	return users, nil
}

func (c *ClientImpl) CreateUser(ctx context.Context, name string, email string) (user.User, error) {
	input := user.InsertUserDTO{Name: name, Email: email}
	var response struct {
		User user.UserDTO `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users", input, http.StatusCreated, &response); err != nil {
		return user.User{}, err
	}
	return user.DTOToUser(response.User), nil
}

func (c *ClientImpl) do(ctx context.Context, method string, path string, body any, expected int, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("Failed to execute request: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody rest.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
			apiErr.Details = errBody.Details
		}
		log.Debug(apiErr)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Errorf("Failed to decode response: %v", err)
		return err
	}
	return nil
}

func filterQuery(state event.FilterState) url.Values {
	q := url.Values{}
	if state.Category != "" {
		q.Set("category", state.Category)
	}
	for _, term := range state.SearchTerms {
		q.Add("search", term)
	}
	if state.DateFilter != "" {
		q.Set("date", string(state.DateFilter))
	}
	q.Set("free", fmt.Sprint(state.PriceFilter.Free))
	q.Set("paid", fmt.Sprint(state.PriceFilter.Paid))
	if state.DistanceFilter != "" {
		q.Set("distance", state.DistanceFilter)
	}
	return q
}
