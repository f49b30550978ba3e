package event_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-boleteria/internal/events"
	"ms-boleteria/internal/logger"
	"ms-boleteria/internal/utils"
)

type Handler struct {
	EventService *events.Service
	Logger       *logger.Logger
}

func NewHandler(service *events.Service, log *logger.Logger) *Handler {
	return &Handler{EventService: service, Logger: log}
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.EventService.Get(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEvent %s: %v", eventID, err))
		utils.WriteError(w, err, "event lookup failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("event found", event))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in events.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	event, err := h.EventService.Create(r.Context(), in)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteError(w, err, "event creation failed")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("event created", event))
}

// UpdateEvent replaces the editable fields of an event and triggers change
// notifications as a side effect. Venue and image fields in the request body
// are ignored.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var in events.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	event, err := h.EventService.Update(r.Context(), eventID, in)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent %s: %v", eventID, err))
		utils.WriteError(w, err, "event update failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("event updated", event))
}
