package purchase_api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-boleteria/internal/models"
	"ms-boleteria/internal/purchase"
	"ms-boleteria/internal/purchase/purchase_api"
)

type stubStores struct {
	event   *models.Event
	tickets []models.Ticket
}

func (s *stubStores) WithTx(ctx context.Context, fn func(events purchase.EventStore, tickets purchase.TicketStore) error) error {
	return fn(s, s)
}

func (s *stubStores) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	if s.event == nil || s.event.ID != id {
		return nil, models.ErrEventNotFound
	}
	return s.event, nil
}

func (s *stubStores) IncrementSold(ctx context.Context, eventID, typeCode string, qty int) (bool, error) {
	tt := s.event.FindTicketType(typeCode)
	if tt == nil || !tt.IsActive || tt.SoldQuantity+qty > tt.InitialQuantity {
		return false, nil
	}
	tt.SoldQuantity += qty
	return true, nil
}

func (s *stubStores) CreateTicket(ctx context.Context, ticket models.Ticket) error {
	s.tickets = append(s.tickets, ticket)
	return nil
}

func newTestHandler(event *models.Event) *purchase_api.Handler {
	stores := &stubStores{event: event}
	service := purchase.NewService(stores, nil, nil, nil, nil)
	return &purchase_api.Handler{PurchaseService: service}
}

func stubEvent(capacity int) *models.Event {
	return &models.Event{
		ID:       "event-1",
		Name:     "Concierto de Jazz",
		IsActive: true,
		TicketTypes: []models.TicketType{
			{EventID: "event-1", TypeCode: "general", Price: 25.0, InitialQuantity: capacity, IsActive: true},
		},
	}
}

func postJSON(handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/purchase", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestPurchaseHandler(t *testing.T) {
	handler := newTestHandler(stubEvent(10))

	rec := postJSON(handler.Purchase, map[string]interface{}{
		"event_id":    "event-1",
		"user_id":     "user-1",
		"ticket_type": "general",
		"quantity":    2,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Data.Count)
}

func TestPurchaseHandlerDefaultsQuantity(t *testing.T) {
	handler := newTestHandler(stubEvent(10))

	rec := postJSON(handler.Purchase, map[string]interface{}{
		"event_id":    "event-1",
		"user_id":     "user-1",
		"ticket_type": "general",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Count)
}

// An explicit zero is not a missing field: it must be rejected, not coerced
// to the default of 1.
func TestPurchaseHandlerRejectsExplicitZeroQuantity(t *testing.T) {
	handler := newTestHandler(stubEvent(10))

	rec := postJSON(handler.Purchase, map[string]interface{}{
		"event_id":    "event-1",
		"user_id":     "user-1",
		"ticket_type": "general",
		"quantity":    0,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseBasketHandlerRejectsExplicitZeroQuantity(t *testing.T) {
	handler := newTestHandler(stubEvent(10))

	rec := postJSON(handler.PurchaseBasket, map[string]interface{}{
		"items": []map[string]interface{}{
			{"event_id": "event-1", "user_id": "user-1", "ticket_type": "general", "quantity": 0},
		},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseHandlerInvalidBody(t *testing.T) {
	handler := newTestHandler(stubEvent(10))

	req := httptest.NewRequest(http.MethodPost, "/api/purchase", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.Purchase(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseHandlerInsufficientTickets(t *testing.T) {
	handler := newTestHandler(stubEvent(1))

	rec := postJSON(handler.Purchase, map[string]interface{}{
		"event_id":    "event-1",
		"user_id":     "user-1",
		"ticket_type": "general",
		"quantity":    2,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPurchaseHandlerUnknownEvent(t *testing.T) {
	handler := newTestHandler(stubEvent(10))

	rec := postJSON(handler.Purchase, map[string]interface{}{
		"event_id":    "missing",
		"user_id":     "user-1",
		"ticket_type": "general",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// A partial basket failure answers 409 and reports the committed lines so the
// client knows what it actually bought.
func TestPurchaseBasketHandlerPartialFailure(t *testing.T) {
	event := stubEvent(100)
	event.TicketTypes = append(event.TicketTypes, models.TicketType{
		EventID: "event-1", TypeCode: "vip", Price: 80.0, InitialQuantity: 1, IsActive: true,
	})
	handler := newTestHandler(event)

	rec := postJSON(handler.PurchaseBasket, map[string]interface{}{
		"items": []map[string]interface{}{
			{"event_id": "event-1", "user_id": "user-1", "ticket_type": "general", "quantity": 2},
			{"event_id": "event-1", "user_id": "user-1", "ticket_type": "vip", "quantity": 3},
		},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			CommittedLines int             `json:"committed_lines"`
			FailedLine     int             `json:"failed_line"`
			Tickets        []models.Ticket `json:"tickets"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.Data.CommittedLines)
	assert.Equal(t, 1, resp.Data.FailedLine)
	assert.Len(t, resp.Data.Tickets, 2)
}

func TestPurchaseBasketHandlerTooLarge(t *testing.T) {
	handler := newTestHandler(stubEvent(100))

	rec := postJSON(handler.PurchaseBasket, map[string]interface{}{
		"items": []map[string]interface{}{
			{"event_id": "event-1", "user_id": "user-1", "ticket_type": "general", "quantity": 8},
			{"event_id": "event-1", "user_id": "user-1", "ticket_type": "general", "quantity": 5},
		},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
