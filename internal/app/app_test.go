package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eventpulse/eventpulse/internal/config"
	"github.com/eventpulse/eventpulse/internal/rest"
	"github.com/eventpulse/eventpulse/internal/utils"
	"github.com/eventpulse/eventpulse/pkg/event"
	"github.com/eventpulse/eventpulse/pkg/rsvp"
	"github.com/eventpulse/eventpulse/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

func setupRouter(metricsEnabled bool) (*mux.Router, *utils.MockClock) {
	cfg := config.Application{Metrics: config.Metrics{Enabled: metricsEnabled}}
	clock := utils.NewMockClock(now)
	deps := BuildDependencies(NewMemoryStorage(), clock, cfg)
	return NewRouter(deps, cfg), clock
}

func serve(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	WithCORS(r).ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(false)

	rr := serve(t, r, http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	health := decode[HealthDTO](t, rr)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "2025-06-11T10:00:00Z", health.Timestamp)
}

func TestPreflight(t *testing.T) {
	r, _ := setupRouter(false)

	for _, path := range []string{"/api/events", "/api/rsvp", "/not/a/route"} {
		t.Run(path, func(t *testing.T) {
			rr := serve(t, r, http.MethodOptions, path, nil)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Empty(t, rr.Body.String())
			assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Origin, X-Requested-With, Content-Type, Accept", rr.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestCorsHeadersOnResponses(t *testing.T) {
	r, _ := setupRouter(false)

	rr := serve(t, r, http.MethodGet, "/api/events", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	r, _ := setupRouter(false)
	r.HandleFunc("/api/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}).Methods("GET")

	rr := serve(t, r, http.MethodGet, "/api/boom", nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}

type createdUser struct {
	Message string       `json:"message"`
	User    user.UserDTO `json:"user"`
}

type createdEvent struct {
	Message string         `json:"message"`
	Event   event.EventDTO `json:"event"`
}

type recordedRsvp struct {
	Message string       `json:"message"`
	Rsvp    rsvp.RsvpDTO `json:"rsvp"`
}

func TestRsvpFlow(t *testing.T) {
	r, clock := setupRouter(false)

	rr := serve(t, r, http.MethodPost, "/api/users", map[string]string{"name": "Ada", "email": "Ada@Example.com"})
	require.Equal(t, http.StatusCreated, rr.Code)
	u := decode[createdUser](t, rr)
	assert.Equal(t, "User created successfully", u.Message)
	assert.Equal(t, "ada@example.com", u.User.Email)

	rr = serve(t, r, http.MethodPost, "/api/events", map[string]any{
		"title":     "Go Meetup",
		"date":      "2025-06-14T18:00:00Z",
		"location":  "Berlin",
		"category":  "technology",
		"organizer": "Gophers",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	e := decode[createdEvent](t, rr)
	assert.Equal(t, "Event created successfully", e.Message)
	assert.Equal(t, "0", e.Event.Price)
	assert.Equal(t, 0, e.Event.Attendees)

	submit := func(status string) rsvp.RsvpDTO {
		rr := serve(t, r, http.MethodPost, "/api/rsvp", map[string]any{"eventId": e.Event.Id, "userId": u.User.Uid, "status": status})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		recorded := decode[recordedRsvp](t, rr)
		assert.Equal(t, "RSVP recorded successfully", recorded.Message)
		return recorded.Rsvp
	}
	attendees := func() int {
		rr := serve(t, r, http.MethodGet, fmt.Sprintf("/api/events/%d", e.Event.Id), nil)
		require.Equal(t, http.StatusOK, rr.Code)
		return decode[event.EventDTO](t, rr).Attendees
	}

	first := submit("going")
	assert.Equal(t, 1, attendees())

	clock.Advance(time.Hour)
	second := submit("maybe")
	assert.Equal(t, first.Id, second.Id)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.Equal(t, "maybe", second.Status)
	assert.Equal(t, 0, attendees())

	rr = serve(t, r, http.MethodGet, fmt.Sprintf("/api/events/%d/rsvps", e.Event.Id), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rsvps := decode[[]rsvp.RsvpDTO](t, rr)
	require.Len(t, rsvps, 1)
	assert.Equal(t, "maybe", rsvps[0].Status)

	rr = serve(t, r, http.MethodGet, fmt.Sprintf("/api/events/%d/rsvps/%s", e.Event.Id, u.User.Uid), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, second.Id, decode[rsvp.RsvpDTO](t, rr).Id)
}

func TestRsvpUnknownReferences(t *testing.T) {
	r, _ := setupRouter(false)

	rr := serve(t, r, http.MethodPost, "/api/rsvp", map[string]any{"eventId": 99, "userId": "nobody", "status": "going"})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[rest.ErrorResponse](t, rr)
	assert.Equal(t, "Invalid RSVP data", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "eventId", body.Details[0].Field)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		r, _ := setupRouter(true)
		serve(t, r, http.MethodGet, "/api/health", nil)

		rr := serve(t, r, http.MethodGet, "/metrics", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `eventpulse_http_requests_total{code="200",method="GET",route="/api/health"} 1`)
	})
	t.Run("disabled", func(t *testing.T) {
		r, _ := setupRouter(false)

		rr := serve(t, r, http.MethodGet, "/metrics", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
