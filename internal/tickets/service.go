package tickets

import (
	"context"
	"fmt"

	"ms-boleteria/internal/models"
	"ms-boleteria/internal/tickets/qr"
)

type TicketDBLayer interface {
	GetTicketByID(ctx context.Context, id string) (*models.Ticket, error)
	GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error)
	GetTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error)
	MarkUsed(ctx context.Context, id string) error
	CancelTicket(ctx context.Context, id string) error
}

type TicketService struct {
	DB TicketDBLayer
	QR *qr.Generator
}

func NewTicketService(db TicketDBLayer, generator *qr.Generator) *TicketService {
	return &TicketService{DB: db, QR: generator}
}

func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	return s.DB.GetTicketByID(ctx, ticketID)
}

func (s *TicketService) GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	return s.DB.GetTicketsByUser(ctx, userID)
}

func (s *TicketService) GetTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	return s.DB.GetTicketsByEvent(ctx, eventID)
}

// UseTicket marks a ticket as used. Used is terminal; a used or cancelled
// ticket cannot transition again.
func (s *TicketService) UseTicket(ctx context.Context, ticketID string) error {
	return s.DB.MarkUsed(ctx, ticketID)
}

// CancelTicket cancels a single ticket unit. Cancelled is terminal.
func (s *TicketService) CancelTicket(ctx context.Context, ticketID string) error {
	return s.DB.CancelTicket(ctx, ticketID)
}

// CheckinByQR verifies a scanned QR payload and marks the ticket used.
func (s *TicketService) CheckinByQR(ctx context.Context, payload string) (*models.Ticket, error) {
	if s.QR == nil {
		return nil, fmt.Errorf("QR verification not configured")
	}
	claim, err := s.QR.Verify(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid QR code: %w", err)
	}
	ticket, err := s.DB.GetTicketByID(ctx, claim.TicketID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.MarkUsed(ctx, claim.TicketID); err != nil {
		return nil, err
	}
	ticket.Status = models.TicketStatusUsed
	return ticket, nil
}
