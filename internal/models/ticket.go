package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TicketStatusActive    = "active"
	TicketStatusUsed      = "used"
	TicketStatusCancelled = "cancelled"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketID        string    `bun:"ticket_id,pk" json:"ticket_id"`
	EventID         string    `bun:"event_id,notnull" json:"event_id"`
	UserID          string    `bun:"user_id,notnull" json:"user_id"`
	TicketType      string    `bun:"ticket_type,notnull" json:"ticket_type"`
	PriceAtPurchase float64   `bun:"price_at_purchase" json:"price_at_purchase"`
	Status          string    `bun:"status,notnull" json:"status"`
	QRCode          []byte    `bun:"qr_code" json:"-"`
	IssuedAt        time.Time `bun:"issued_at" json:"issued_at"`
}

// Holder groups one user's active tickets for a single event.
type Holder struct {
	UserID      string   `json:"user_id"`
	TicketCount int      `json:"ticket_count"`
	TicketTypes []string `json:"ticket_types"`
}

// PurchaseItem is one line of a basket purchase request.
type PurchaseItem struct {
	EventID    string `json:"event_id"`
	UserID     string `json:"user_id"`
	TicketType string `json:"ticket_type"`
	Quantity   int    `json:"quantity"`
}
