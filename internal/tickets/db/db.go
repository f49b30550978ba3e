package db

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/uptrace/bun"

	"ms-boleteria/internal/models"
)

type DB struct {
	Bun bun.IDB
}

func (d *DB) CreateTicket(ctx context.Context, ticket models.Ticket) error {
	_, err := d.Bun.NewInsert().Model(&ticket).Exec(ctx)
	return err
}

func (d *DB) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("ticket_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (d *DB) GetTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("event_id = ?", eventID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ActiveHoldersByEvent groups the users holding at least one active ticket
// for an event, with their ticket count and distinct type codes. Grouping is
// done in Go so the query stays portable between Postgres and SQLite.
func (d *DB) ActiveHoldersByEvent(ctx context.Context, eventID string) ([]models.Holder, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("event_id = ?", eventID).
		Where("status = ?", models.TicketStatusActive).
		Order("user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*models.Holder)
	var order []string
	for _, t := range tickets {
		holder, ok := byUser[t.UserID]
		if !ok {
			holder = &models.Holder{UserID: t.UserID}
			byUser[t.UserID] = holder
			order = append(order, t.UserID)
		}
		holder.TicketCount++
		if !contains(holder.TicketTypes, t.TicketType) {
			holder.TicketTypes = append(holder.TicketTypes, t.TicketType)
		}
	}

	holders := make([]models.Holder, 0, len(order))
	for _, userID := range order {
		h := byUser[userID]
		sort.Strings(h.TicketTypes)
		holders = append(holders, *h)
	}
	return holders, nil
}

// MarkUsed transitions a ticket from active to used. Used and cancelled are
// terminal states.
func (d *DB) MarkUsed(ctx context.Context, id string) error {
	return d.transition(ctx, id, models.TicketStatusUsed)
}

// CancelTicket transitions a ticket from active to cancelled.
func (d *DB) CancelTicket(ctx context.Context, id string) error {
	return d.transition(ctx, id, models.TicketStatusCancelled)
}

func (d *DB) transition(ctx context.Context, id, status string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", status).
		Where("ticket_id = ?", id).
		Where("status = ?", models.TicketStatusActive).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := d.GetTicketByID(ctx, id); err != nil {
			return err
		}
		return models.ErrTicketNotActive
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
