package tickets_test

import (
	"context"
	"errors"
	"testing"

	"ms-boleteria/internal/models"
	"ms-boleteria/internal/tickets"
	"ms-boleteria/internal/tickets/qr"
)

type MockTicketDB struct {
	tickets      map[string]*models.Ticket
	shouldFailOn string
	errorMsg     string
}

func NewMockTicketDB(stored ...models.Ticket) *MockTicketDB {
	m := &MockTicketDB{tickets: make(map[string]*models.Ticket)}
	for i := range stored {
		m.tickets[stored[i].TicketID] = &stored[i]
	}
	return m
}

func (m *MockTicketDB) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	if m.shouldFailOn == "GetTicketByID" {
		return nil, errors.New(m.errorMsg)
	}
	ticket, exists := m.tickets[id]
	if !exists {
		return nil, models.ErrTicketNotFound
	}
	return ticket, nil
}

func (m *MockTicketDB) GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *MockTicketDB) GetTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.EventID == eventID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *MockTicketDB) MarkUsed(ctx context.Context, id string) error {
	ticket, exists := m.tickets[id]
	if !exists {
		return models.ErrTicketNotFound
	}
	if ticket.Status != models.TicketStatusActive {
		return models.ErrTicketNotActive
	}
	ticket.Status = models.TicketStatusUsed
	return nil
}

func (m *MockTicketDB) CancelTicket(ctx context.Context, id string) error {
	ticket, exists := m.tickets[id]
	if !exists {
		return models.ErrTicketNotFound
	}
	if ticket.Status != models.TicketStatusActive {
		return models.ErrTicketNotActive
	}
	ticket.Status = models.TicketStatusCancelled
	return nil
}

func TestUseAndCancelTicket(t *testing.T) {
	db := NewMockTicketDB(
		models.Ticket{TicketID: "ticket-1", UserID: "user-1", Status: models.TicketStatusActive},
		models.Ticket{TicketID: "ticket-2", UserID: "user-1", Status: models.TicketStatusActive},
	)
	service := tickets.NewTicketService(db, nil)
	ctx := context.Background()

	if err := service.UseTicket(ctx, "ticket-1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := service.UseTicket(ctx, "ticket-1"); !errors.Is(err, models.ErrTicketNotActive) {
		t.Errorf("Expected ErrTicketNotActive on second use, got %v", err)
	}

	if err := service.CancelTicket(ctx, "ticket-2"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := service.CancelTicket(ctx, "missing"); !errors.Is(err, models.ErrTicketNotFound) {
		t.Errorf("Expected ErrTicketNotFound, got %v", err)
	}
}

func TestCheckinByQRRejectsInvalidPayload(t *testing.T) {
	db := NewMockTicketDB()
	service := tickets.NewTicketService(db, qr.NewGenerator("test-secret"))

	if _, err := service.CheckinByQR(context.Background(), "garbage"); err == nil {
		t.Error("Expected invalid payload to be rejected")
	}

	unconfigured := tickets.NewTicketService(db, nil)
	if _, err := unconfigured.CheckinByQR(context.Background(), "anything"); err == nil {
		t.Error("Expected error when QR verification is not configured")
	}
}
