package rsvp

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eventpulse/eventpulse/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type RsvpDTO struct {
	Id        int       `json:"id"`
	EventId   int       `json:"eventId"`
	UserId    string    `json:"userId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type InsertRsvpDTO struct {
	EventId int    `json:"eventId" validate:"required,gt=0,max=2147483647"`
	UserId  string `json:"userId" validate:"required,max=255"`
	Status  string `json:"status" validate:"required,oneof=going maybe not-going"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SubmitRsvp godoc
// @Summary Submit an RSVP
// @Description Creates the user's RSVP for the event, or replaces the status of the existing one
// @Tags Rsvp
// @Accept json
// @Produce json
// @Param rsvp body InsertRsvpDTO true "RSVP"
// @Success 200 {object} object{message=string,rsvp=RsvpDTO}
// @Failure 400 {object} rest.ErrorResponse "Invalid RSVP data"
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/rsvp [post]
func (h *Handler) SubmitRsvp(w http.ResponseWriter, r *http.Request) {
	log.Debug("Submitting RSVP")

	var input InsertRsvpDTO
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if details := rest.BodyFieldErrors(err); details != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid RSVP data", details...)
			return
		}
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if details := rest.Validate(input); details != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid RSVP data", details...)
		return
	}

	stored, err := h.service.SubmitRsvp(r.Context(), input.EventId, input.UserId, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownEvent):
			rest.WriteError(w, http.StatusBadRequest, "Invalid RSVP data",
				rest.FieldError{Field: "eventId", Message: "does not refer to an existing event"})
		case errors.Is(err, ErrUnknownUser):
			rest.WriteError(w, http.StatusBadRequest, "Invalid RSVP data",
				rest.FieldError{Field: "userId", Message: "does not refer to an existing user"})
		case errors.Is(err, ErrInvalidStatus):
			rest.WriteError(w, http.StatusBadRequest, "Invalid RSVP data",
				rest.FieldError{Field: "status", Message: "must be one of: going, maybe, not-going"})
		default:
			log.Errorf("Error creating RSVP: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, "Failed to record RSVP")
		}
		return
	}

	rest.WriteMessage(w, http.StatusOK, "RSVP recorded successfully", "rsvp", rsvpToDTO(stored))
}

// GetEventRsvps godoc
// @Summary List RSVPs of an event
// @Tags Rsvp
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {array} RsvpDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event ID"
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/events/{id}/rsvps [get]
func (h *Handler) GetEventRsvps(w http.ResponseWriter, r *http.Request) {
	eventId, err := rest.ParseId(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}
	log.Tracef("Getting RSVPs of event %d", eventId)

	rsvps, err := h.service.GetRsvpsByEvent(r.Context(), eventId)
	if err != nil {
		log.Errorf("Error fetching RSVPs: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch RSVPs")
		return
	}

	rsvpsDTO := make([]RsvpDTO, 0, len(rsvps))
	for _, rsvp := range rsvps {
		rsvpsDTO = append(rsvpsDTO, rsvpToDTO(rsvp))
	}
	rest.WriteJSON(w, http.StatusOK, rsvpsDTO)
}

// GetUserRsvp godoc
// @Summary Get a user's RSVP for an event
// @Tags Rsvp
// @Produce json
// @Param id path int true "Event ID"
// @Param userId path string true "User UID"
// @Success 200 {object} RsvpDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event ID"
// @Failure 404 {object} rest.ErrorResponse "RSVP not found"
// @Router /api/events/{id}/rsvps/{userId} [get]
func (h *Handler) GetUserRsvp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventId, err := rest.ParseId(vars["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	rsvp, err := h.service.GetRsvpByEventAndUser(r.Context(), eventId, vars["userId"])
	if err != nil {
		if errors.Is(err, ErrRsvpNotFound) {
			rest.WriteError(w, http.StatusNotFound, "RSVP not found")
			return
		}
		log.Errorf("Error fetching RSVP: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch RSVP")
		return
	}
	rest.WriteJSON(w, http.StatusOK, rsvpToDTO(rsvp))
}

func rsvpToDTO(rsvp Rsvp) RsvpDTO {
	return RsvpDTO{
		Id:        rsvp.Id,
		EventId:   rsvp.EventId,
		UserId:    rsvp.UserId,
		Status:    string(rsvp.Status),
		CreatedAt: rsvp.CreatedAt,
	}
}

func DTOToRsvp(dto RsvpDTO) Rsvp {
	return Rsvp{
		Id:        dto.Id,
		EventId:   dto.EventId,
		UserId:    dto.UserId,
		Status:    Status(dto.Status),
		CreatedAt: dto.CreatedAt,
	}
}
