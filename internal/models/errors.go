package models

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrEventInactive         = errors.New("event is not active")
	ErrTicketTypeNotFound    = errors.New("ticket type not found")
	ErrTicketTypeInactive    = errors.New("ticket type is not active")
	ErrInvalidQuantity       = errors.New("quantity must be between 1 and 10")
	ErrEmptyBasket           = errors.New("basket is empty")
	ErrBasketTooLarge        = errors.New("basket exceeds 10 tickets in total")
	ErrInventoryUpdateFailed = errors.New("inventory update failed")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrTicketNotActive       = errors.New("ticket is not active")
	ErrInvalidTimeFormat     = errors.New("time must be in HH:MM format")
	ErrInvalidDateFormat     = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTicketType     = errors.New("invalid ticket type definition")
)

// InsufficientTicketsError reports a capacity miss with the exact numbers so
// handlers can build a precise client-facing message.
type InsufficientTicketsError struct {
	TypeCode  string
	Requested int
	Available int
}

func (e *InsufficientTicketsError) Error() string {
	return fmt.Sprintf("insufficient tickets for type %s: requested %d, available %d",
		e.TypeCode, e.Requested, e.Available)
}

// BasketError wraps a failure on one basket line. Lines already committed are
// not rolled back; Committed and Tickets report the partial success.
type BasketError struct {
	Line      int
	Committed int
	Tickets   []Ticket
	Err       error
}

func (e *BasketError) Error() string {
	return fmt.Sprintf("basket line %d failed after %d committed lines: %v",
		e.Line, e.Committed, e.Err)
}

func (e *BasketError) Unwrap() error {
	return e.Err
}
