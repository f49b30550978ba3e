package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-boleteria/internal/models"
)

type DB struct {
	Bun bun.IDB
}

// GetEventByID fetches one event together with its ticket types.
func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Relation("TicketTypes").
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// withTx runs fn inside a transaction when the handle is the root *bun.DB.
// A handle that is already a transaction is used as-is.
func (d *DB) withTx(ctx context.Context, fn func(idb bun.IDB) error) error {
	db, ok := d.Bun.(*bun.DB)
	if !ok {
		return fn(d.Bun)
	}
	return db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(tx)
	})
}

// CreateEvent inserts the event row and its ticket type rows in one
// transaction.
func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	return d.withTx(ctx, func(idb bun.IDB) error {
		if _, err := idb.NewInsert().Model(&event).Exec(ctx); err != nil {
			return err
		}
		if len(event.TicketTypes) == 0 {
			return nil
		}
		_, err := idb.NewInsert().Model(&event.TicketTypes).Exec(ctx)
		return err
	})
}

// UpdateEvent replaces the editable event fields and reconciles the ticket
// type rows, all in one transaction. Venue and image columns are deliberately
// not in the column list; edits can never touch them through this path.
// Surviving type rows are upserted without their sold_quantity column, so a
// concurrent purchase's guarded increment can never be reverted by the edit's
// stale snapshot. Type codes missing from the edit are deleted.
func (d *DB) UpdateEvent(ctx context.Context, event models.Event) error {
	return d.withTx(ctx, func(idb bun.IDB) error {
		_, err := idb.NewUpdate().
			Model(&event).
			Column("name", "description", "date", "time", "is_active").
			Where("id = ?", event.ID).
			Exec(ctx)
		if err != nil {
			return err
		}

		del := idb.NewDelete().
			Model((*models.TicketType)(nil)).
			Where("event_id = ?", event.ID)
		if len(event.TicketTypes) > 0 {
			codes := make([]string, 0, len(event.TicketTypes))
			for _, tt := range event.TicketTypes {
				codes = append(codes, tt.TypeCode)
			}
			del = del.Where("type_code NOT IN (?)", bun.In(codes))
		}
		if _, err := del.Exec(ctx); err != nil {
			return err
		}

		if len(event.TicketTypes) == 0 {
			return nil
		}
		_, err = idb.NewInsert().
			Model(&event.TicketTypes).
			On("CONFLICT (event_id, type_code) DO UPDATE").
			Set("price = EXCLUDED.price").
			Set("initial_quantity = EXCLUDED.initial_quantity").
			Set("is_active = EXCLUDED.is_active").
			Exec(ctx)
		return err
	})
}

// IncrementSold bumps sold_quantity by qty in a single guarded UPDATE. The
// guard requires the type to be active and the resulting sum to stay within
// initial_quantity, so racing purchases can never push the counter past
// capacity. Returns false when the guard matched no row.
func (d *DB) IncrementSold(ctx context.Context, eventID, typeCode string, qty int) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("sold_quantity = sold_quantity + ?", qty).
		Where("event_id = ?", eventID).
		Where("type_code = ?", typeCode).
		Where("is_active = ?", true).
		Where("sold_quantity + ? <= initial_quantity", qty).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
