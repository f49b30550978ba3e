package purchase

import (
	"ms-boleteria/internal/models"
)

// CheckAvailability confirms the ticket type exists, is active, and still has
// qty units left. It has no side effects; under concurrency it is advisory
// only. The guarded increment in the event store is the authoritative check.
func CheckAvailability(event *models.Event, typeCode string, qty int) error {
	tt := event.FindTicketType(typeCode)
	if tt == nil {
		return models.ErrTicketTypeNotFound
	}
	if !tt.IsActive {
		return models.ErrTicketTypeInactive
	}
	if tt.InitialQuantity-tt.SoldQuantity < qty {
		return &models.InsufficientTicketsError{
			TypeCode:  typeCode,
			Requested: qty,
			Available: tt.Available(),
		}
	}
	return nil
}

// Remaining returns the sellable units left for a ticket type.
func Remaining(event *models.Event, typeCode string) (int, error) {
	tt := event.FindTicketType(typeCode)
	if tt == nil {
		return 0, models.ErrTicketTypeNotFound
	}
	if !tt.IsActive {
		return 0, models.ErrTicketTypeInactive
	}
	return tt.Available(), nil
}
