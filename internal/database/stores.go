package database

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	eventsdb "ms-boleteria/internal/events/db"
	ticketsdb "ms-boleteria/internal/tickets/db"
)

// Stores bundles the event and ticket stores over one bun handle so a
// purchase can run both in a single transaction.
type Stores struct {
	bun *bun.DB

	Events  *eventsdb.DB
	Tickets *ticketsdb.DB
}

func NewStores(bunDB *bun.DB) *Stores {
	return &Stores{
		bun:     bunDB,
		Events:  &eventsdb.DB{Bun: bunDB},
		Tickets: &ticketsdb.DB{Bun: bunDB},
	}
}

// WithTx runs fn with tx-scoped stores. A returned error rolls everything
// back, so ticket rows and the inventory increment commit or fail together.
func (s *Stores) WithTx(ctx context.Context, fn func(events *eventsdb.DB, tickets *ticketsdb.DB) error) error {
	return s.bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(&eventsdb.DB{Bun: tx}, &ticketsdb.DB{Bun: tx})
	})
}
