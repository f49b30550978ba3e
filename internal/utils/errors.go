package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"ms-boleteria/internal/models"
)

// StatusForError maps the domain error taxonomy to HTTP status codes so
// clients can tell "doesn't exist" from "exists but unavailable".
func StatusForError(err error) int {
	var insufficient *models.InsufficientTicketsError
	var basketErr *models.BasketError
	switch {
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrEmptyBasket),
		errors.Is(err, models.ErrBasketTooLarge),
		errors.Is(err, models.ErrInvalidTimeFormat),
		errors.Is(err, models.ErrInvalidDateFormat),
		errors.Is(err, models.ErrInvalidTicketType):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrTicketTypeNotFound),
		errors.Is(err, models.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.As(err, &insufficient),
		errors.As(err, &basketErr),
		errors.Is(err, models.ErrEventInactive),
		errors.Is(err, models.ErrTicketTypeInactive),
		errors.Is(err, models.ErrTicketNotActive),
		errors.Is(err, models.ErrInventoryUpdateFailed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func WriteError(w http.ResponseWriter, err error, message string) {
	WriteJSON(w, StatusForError(err), ErrorResponse(message, err.Error()))
}
