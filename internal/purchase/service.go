package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-boleteria/internal/database"
	eventsdb "ms-boleteria/internal/events/db"
	"ms-boleteria/internal/logger"
	"ms-boleteria/internal/models"
	ticketsdb "ms-boleteria/internal/tickets/db"
)

const (
	minQuantity       = 1
	maxQuantity       = 10
	maxBasketQuantity = 10
)

type EventStore interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	IncrementSold(ctx context.Context, eventID, typeCode string, qty int) (bool, error)
}

type TicketStore interface {
	CreateTicket(ctx context.Context, ticket models.Ticket) error
}

// TxStores runs a closure against tx-scoped stores. The increment and the
// ticket rows commit or roll back together.
type TxStores interface {
	WithTx(ctx context.Context, fn func(events EventStore, tickets TicketStore) error) error
}

type Publisher interface {
	PublishTicketsPurchased(tickets []models.Ticket) error
}

type Notifier interface {
	SendPurchaseConfirmation(ctx context.Context, userID string, tickets []models.Ticket) error
}

type QRGenerator interface {
	Generate(ticket models.Ticket) ([]byte, error)
}

type Service struct {
	Stores   TxStores
	Kafka    Publisher
	Notifier Notifier
	QR       QRGenerator
	Logger   *logger.Logger
}

func NewService(stores TxStores, kafka Publisher, notifier Notifier, qr QRGenerator, log *logger.Logger) *Service {
	return &Service{Stores: stores, Kafka: kafka, Notifier: notifier, QR: qr, Logger: log}
}

// Purchase buys qty units of one ticket type. On success the returned slice
// has length qty, all tickets sharing event, user, type and price.
func (s *Service) Purchase(ctx context.Context, eventID, userID, typeCode string, qty int) ([]models.Ticket, error) {
	created, err := s.purchaseLine(ctx, models.PurchaseItem{
		EventID:    eventID,
		UserID:     userID,
		TicketType: typeCode,
		Quantity:   qty,
	})
	if err != nil {
		return nil, err
	}

	s.publishPurchased(created)
	s.sendConfirmation(ctx, userID, created)
	return created, nil
}

// PurchaseBasket validates the whole basket before mutating anything, then
// processes lines sequentially. A failing line aborts the rest but does not
// roll back lines already committed; the returned BasketError reports how
// many lines went through.
func (s *Service) PurchaseBasket(ctx context.Context, items []models.PurchaseItem) ([]models.Ticket, error) {
	if len(items) == 0 {
		return nil, models.ErrEmptyBasket
	}
	total := 0
	for _, item := range items {
		if item.Quantity < minQuantity || item.Quantity > maxQuantity {
			return nil, models.ErrInvalidQuantity
		}
		total += item.Quantity
	}
	if total > maxBasketQuantity {
		return nil, models.ErrBasketTooLarge
	}

	var committed []models.Ticket
	for i, item := range items {
		lineTickets, err := s.purchaseLine(ctx, item)
		if err != nil {
			s.logf("BASKET", "line %d failed after %d committed lines: %v", i, i, err)
			if len(committed) > 0 {
				s.publishPurchased(committed)
				s.sendConfirmation(ctx, items[0].UserID, committed)
			}
			return committed, &models.BasketError{Line: i, Committed: i, Tickets: committed, Err: err}
		}
		committed = append(committed, lineTickets...)
	}

	s.publishPurchased(committed)
	s.sendConfirmation(ctx, items[0].UserID, committed)
	return committed, nil
}

// purchaseLine runs the transactional core of a purchase: event lookup,
// availability validation, the capacity-bounded increment and the ticket
// inserts, all in one transaction.
func (s *Service) purchaseLine(ctx context.Context, item models.PurchaseItem) ([]models.Ticket, error) {
	if item.Quantity < minQuantity || item.Quantity > maxQuantity {
		return nil, models.ErrInvalidQuantity
	}

	var created []models.Ticket
	err := s.Stores.WithTx(ctx, func(events EventStore, tickets TicketStore) error {
		event, err := events.GetEventByID(ctx, item.EventID)
		if err != nil {
			return err
		}
		if !event.IsActive {
			return models.ErrEventInactive
		}
		if err := CheckAvailability(event, item.TicketType, item.Quantity); err != nil {
			return err
		}

		// Price is fixed at the moment of purchase and never recalculated.
		unitPrice := event.FindTicketType(item.TicketType).Price

		ok, err := events.IncrementSold(ctx, item.EventID, item.TicketType, item.Quantity)
		if err != nil {
			return fmt.Errorf("increment sold count: %w", err)
		}
		if !ok {
			// Guard matched no row: the type went inactive or a concurrent
			// purchase took the remaining capacity between read and update.
			return models.ErrInventoryUpdateFailed
		}

		issuedAt := time.Now()
		for i := 0; i < item.Quantity; i++ {
			ticket := models.Ticket{
				TicketID:        uuid.NewString(),
				EventID:         item.EventID,
				UserID:          item.UserID,
				TicketType:      item.TicketType,
				PriceAtPurchase: unitPrice,
				Status:          models.TicketStatusActive,
				IssuedAt:        issuedAt,
			}
			if s.QR != nil {
				qrBytes, err := s.QR.Generate(ticket)
				if err != nil {
					return fmt.Errorf("generate ticket QR: %w", err)
				}
				ticket.QRCode = qrBytes
			}
			if err := tickets.CreateTicket(ctx, ticket); err != nil {
				return fmt.Errorf("create ticket: %w", err)
			}
			created = append(created, ticket)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logf("PURCHASE", "user %s bought %d x %s for event %s", item.UserID, item.Quantity, item.TicketType, item.EventID)
	return created, nil
}

// publishPurchased and sendConfirmation are best-effort: failures are logged
// and swallowed, they never fail a purchase that already committed.
func (s *Service) publishPurchased(tickets []models.Ticket) {
	if s.Kafka == nil || len(tickets) == 0 {
		return
	}
	if err := s.Kafka.PublishTicketsPurchased(tickets); err != nil {
		s.logErrorf("KAFKA", "publish tickets purchased: %v", err)
	}
}

func (s *Service) sendConfirmation(ctx context.Context, userID string, tickets []models.Ticket) {
	if s.Notifier == nil || len(tickets) == 0 {
		return
	}
	if err := s.Notifier.SendPurchaseConfirmation(ctx, userID, tickets); err != nil {
		s.logErrorf("NOTIFY", "purchase confirmation for user %s: %v", userID, err)
	}
}

func (s *Service) logf(category, format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Info(category, fmt.Sprintf(format, args...))
	}
}

func (s *Service) logErrorf(category, format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Error(category, fmt.Sprintf(format, args...))
	}
}

// BunStores adapts the concrete store bundle to the TxStores interface.
type BunStores struct {
	Stores *database.Stores
}

func NewBunStores(stores *database.Stores) BunStores {
	return BunStores{Stores: stores}
}

func (b BunStores) WithTx(ctx context.Context, fn func(events EventStore, tickets TicketStore) error) error {
	return b.Stores.WithTx(ctx, func(events *eventsdb.DB, tickets *ticketsdb.DB) error {
		return fn(events, tickets)
	})
}
