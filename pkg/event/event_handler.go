package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/eventpulse/eventpulse/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	Id          int       `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	ImageUrl    *string   `json:"imageUrl"`
	Organizer   string    `json:"organizer"`
	Attendees   int       `json:"attendees"`
	CreatedAt   time.Time `json:"createdAt"`
}

type InsertEventDTO struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date" validate:"required"`
	Location    string     `json:"location" validate:"required,max=255"`
	Category    string     `json:"category" validate:"required,max=100"`
	Price       *string    `json:"price" validate:"omitempty,price"`
	ImageUrl    *string    `json:"imageUrl" validate:"omitempty,url"`
	Organizer   string     `json:"organizer" validate:"required,max=255"`
}

type EventHandler struct {
	eventService EventService
}

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// GetEvents godoc
// @Summary List events
// @Description All events ordered by date ascending, optionally narrowed by filter parameters
// @Tags Event
// @Produce json
// @Param category query string false "Category id or 'all'"
// @Param search query []string false "Free-text search terms"
// @Param date query string false "any, week, weekend or next-week"
// @Param free query bool false "Include free events (default true)"
// @Param paid query bool false "Include paid events (default true)"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/events [get]
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting events")

	state, details := filterStateFromQuery(r.URL.Query())
	if details != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event filter", details...)
		return
	}

	events, err := h.eventService.FindEvents(r.Context(), state)
	if err != nil {
		log.Errorf("Error fetching events: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}

	eventsDTO := make([]EventDTO, 0, len(events))
	for _, e := range events {
		eventsDTO = append(eventsDTO, EventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, eventsDTO)
}

// GetEvent godoc
// @Summary Get an event
// @Tags Event
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event ID"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id} [get]
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ParseId(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}
	log.Tracef("Getting event %d", id)

	e, err := h.eventService.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			rest.WriteError(w, http.StatusNotFound, "Event not found")
			return
		}
		log.Errorf("Error fetching event: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(e))
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Event
// @Accept json
// @Produce json
// @Param event body InsertEventDTO true "Event"
// @Success 201 {object} object{message=string,event=EventDTO}
// @Failure 400 {object} rest.ErrorResponse "Invalid event data"
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/events [post]
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new event")

	var input InsertEventDTO
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Debugf("invalid event body: %v", err)
		details := rest.BodyFieldErrors(err)
		var parseErr *time.ParseError
		if errors.As(err, &parseErr) {
			details = append(details, rest.FieldError{Field: "date", Message: "must be an RFC 3339 timestamp"})
		}
		if details != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid event data", details...)
			return
		}
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if details := rest.Validate(input); details != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event data", details...)
		return
	}

	created, err := h.eventService.CreateEvent(r.Context(), dtoToEvent(input))
	if err != nil {
		log.Errorf("Error creating event: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	rest.WriteMessage(w, http.StatusCreated, "Event created successfully", "event", EventToDTO(created))
}

func filterStateFromQuery(q url.Values) (FilterState, []rest.FieldError) {
	state := DefaultFilterState()
	var details []rest.FieldError

	if category := q.Get("category"); category != "" {
		state.Category = category
	}
	state.SearchTerms = q["search"]
	if distance := q.Get("distance"); distance != "" {
		state.DistanceFilter = distance
	}

	dateFilter, err := ParseDateFilter(q.Get("date"))
	if err != nil {
		details = append(details, rest.FieldError{Field: "date", Message: "must be one of: any, week, weekend, next-week"})
	}
	state.DateFilter = dateFilter

	for _, flag := range []struct {
		name  string
		value *bool
	}{
		{"free", &state.PriceFilter.Free},
		{"paid", &state.PriceFilter.Paid},
	} {
		raw := q.Get(flag.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			details = append(details, rest.FieldError{Field: flag.name, Message: "must be true or false"})
			continue
		}
		*flag.value = v
	}
	return state, details
}

func EventToDTO(e Event) EventDTO {
	return EventDTO{
		Id:          e.Id,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Category:    e.Category,
		Price:       e.Price,
		ImageUrl:    e.ImageUrl,
		Organizer:   e.Organizer,
		Attendees:   e.Attendees,
		CreatedAt:   e.CreatedAt,
	}
}

func DTOToEvent(dto EventDTO) Event {
	return Event{
		Id:          dto.Id,
		Title:       dto.Title,
		Description: dto.Description,
		Date:        dto.Date,
		Location:    dto.Location,
		Category:    dto.Category,
		Price:       dto.Price,
		ImageUrl:    dto.ImageUrl,
		Organizer:   dto.Organizer,
		Attendees:   dto.Attendees,
		CreatedAt:   dto.CreatedAt,
	}
}

func dtoToEvent(input InsertEventDTO) Event {
	e := Event{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Category:    input.Category,
		ImageUrl:    input.ImageUrl,
		Organizer:   input.Organizer,
	}
	if input.Date != nil {
		e.Date = *input.Date
	}
	if input.Price != nil {
		e.Price = *input.Price
	}
	return e
}
