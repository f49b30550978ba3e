package ticket_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-boleteria/internal/logger"
	"ms-boleteria/internal/tickets"
	"ms-boleteria/internal/utils"
)

type Handler struct {
	TicketService *tickets.TicketService
	Logger        *logger.Logger
}

func NewHandler(service *tickets.TicketService, log *logger.Logger) *Handler {
	return &Handler{TicketService: service, Logger: log}
}

func (h *Handler) GetTicketsByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	ticketList, err := h.TicketService.GetTicketsByUser(r.Context(), userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetTicketsByUser %s: %v", userID, err))
		utils.WriteError(w, err, "ticket lookup failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("tickets found", ticketList))
}

func (h *Handler) UseTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	if err := h.TicketService.UseTicket(r.Context(), ticketID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UseTicket %s: %v", ticketID, err))
		utils.WriteError(w, err, "ticket use failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket used", nil))
}

func (h *Handler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	if err := h.TicketService.CancelTicket(r.Context(), ticketID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelTicket %s: %v", ticketID, err))
		utils.WriteError(w, err, "ticket cancellation failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket cancelled", nil))
}

// CheckinTicket verifies a scanned QR payload and marks the ticket used.
// Expected POST body: {"qr_payload": "<base64 data>.<base64 signature>"}
func (h *Handler) CheckinTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QRPayload string `json:"qr_payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	if req.QRPayload == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("qr_payload is required", ""))
		return
	}

	ticket, err := h.TicketService.CheckinByQR(r.Context(), req.QRPayload)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckinTicket: %v", err))
		utils.WriteError(w, err, "checkin failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("checkin successful", ticket))
}
