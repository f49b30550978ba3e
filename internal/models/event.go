package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description"`
	Date        time.Time `bun:"date,notnull" json:"date"`
	Time        string    `bun:"time,notnull" json:"time"`
	IsActive    bool      `bun:"is_active" json:"is_active"`
	VenueID     string    `bun:"venue_id" json:"venue_id"`
	VenueName   string    `bun:"venue_name" json:"venue_name"`
	ImageURL    string    `bun:"image_url" json:"image_url"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`

	TicketTypes []TicketType `bun:"rel:has-many,join:id=event_id" json:"ticket_types"`
}

type TicketType struct {
	bun.BaseModel `bun:"table:event_ticket_types"`

	EventID         string  `bun:"event_id,pk" json:"event_id"`
	TypeCode        string  `bun:"type_code,pk" json:"type_code"`
	Price           float64 `bun:"price,notnull" json:"price"`
	InitialQuantity int     `bun:"initial_quantity,notnull" json:"initial_quantity"`
	SoldQuantity    int     `bun:"sold_quantity,notnull" json:"sold_quantity"`
	IsActive        bool    `bun:"is_active" json:"is_active"`
}

// Available reports the remaining sellable units, clamped at zero for display.
func (t TicketType) Available() int {
	remaining := t.InitialQuantity - t.SoldQuantity
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FindTicketType returns the entry matching typeCode, or nil when absent.
func (e *Event) FindTicketType(typeCode string) *TicketType {
	for i := range e.TicketTypes {
		if e.TicketTypes[i].TypeCode == typeCode {
			return &e.TicketTypes[i]
		}
	}
	return nil
}
