package purchase_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-boleteria/internal/auth"
	"ms-boleteria/internal/logger"
	"ms-boleteria/internal/models"
	"ms-boleteria/internal/purchase"
	"ms-boleteria/internal/utils"
)

type Handler struct {
	PurchaseService *purchase.Service
	Logger          *logger.Logger
}

func NewHandler(service *purchase.Service, log *logger.Logger) *Handler {
	return &Handler{PurchaseService: service, Logger: log}
}

// Quantity is a pointer so an absent field (defaults to 1) can be told apart
// from an explicit 0, which must be rejected downstream.
type purchaseRequest struct {
	EventID    string `json:"event_id"`
	UserID     string `json:"user_id"`
	TicketType string `json:"ticket_type"`
	Quantity   *int   `json:"quantity"`
}

type basketLine struct {
	EventID    string `json:"event_id"`
	UserID     string `json:"user_id"`
	TicketType string `json:"ticket_type"`
	Quantity   *int   `json:"quantity"`
}

type basketRequest struct {
	Items []basketLine `json:"items"`
}

func quantityOrDefault(quantity *int) int {
	if quantity == nil {
		return 1
	}
	return *quantity
}

// Purchase handles a single-type purchase. Quantity defaults to 1. When a
// bearer token is present its subject overrides the body's user ID.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	qty := quantityOrDefault(req.Quantity)
	if userID := userFromToken(r); userID != "" {
		req.UserID = userID
	}

	if h.Logger != nil {
		h.Logger.LogAPI(r.Method, r.URL.Path, "received", fmt.Sprintf("event=%s type=%s qty=%d", req.EventID, req.TicketType, qty))
	}

	tickets, err := h.PurchaseService.Purchase(r.Context(), req.EventID, req.UserID, req.TicketType, qty)
	if err != nil {
		h.logError(fmt.Sprintf("purchase failed: %v", err))
		utils.WriteError(w, err, "purchase failed")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("purchase completed", map[string]interface{}{
		"tickets": tickets,
		"count":   len(tickets),
	}))
}

// PurchaseBasket handles a multi-line purchase. A partial failure is
// reported with the count of committed lines; committed tickets are never
// silently hidden.
func (h *Handler) PurchaseBasket(w http.ResponseWriter, r *http.Request) {
	var req basketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	tokenUserID := userFromToken(r)
	items := make([]models.PurchaseItem, 0, len(req.Items))
	for _, line := range req.Items {
		item := models.PurchaseItem{
			EventID:    line.EventID,
			UserID:     line.UserID,
			TicketType: line.TicketType,
			Quantity:   quantityOrDefault(line.Quantity),
		}
		if tokenUserID != "" {
			item.UserID = tokenUserID
		}
		items = append(items, item)
	}

	tickets, err := h.PurchaseService.PurchaseBasket(r.Context(), items)
	if err != nil {
		var basketErr *models.BasketError
		if errors.As(err, &basketErr) {
			h.logError(fmt.Sprintf("basket partially failed: %v", basketErr))
			resp := utils.ErrorResponse("basket purchase partially failed", basketErr.Error())
			resp.Data = map[string]interface{}{
				"committed_lines": basketErr.Committed,
				"failed_line":     basketErr.Line,
				"tickets":         basketErr.Tickets,
			}
			utils.WriteJSON(w, http.StatusConflict, resp)
			return
		}
		h.logError(fmt.Sprintf("basket purchase failed: %v", err))
		utils.WriteError(w, err, "basket purchase failed")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("basket purchase completed", map[string]interface{}{
		"tickets": tickets,
		"count":   len(tickets),
	}))
}

func (h *Handler) logError(message string) {
	if h.Logger != nil {
		h.Logger.Error("API", message)
	}
}

func userFromToken(r *http.Request) string {
	token, err := auth.ExtractTokenFromRequest(r)
	if err != nil {
		return ""
	}
	userID, err := auth.ExtractUserIDFromJWT(token)
	if err != nil {
		return ""
	}
	return userID
}
