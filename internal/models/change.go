package models

import (
	"fmt"
	"time"
)

// ChangeKind classifies an administrative event edit. The set is closed;
// the formatter and the mailer switch over it exhaustively.
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangeLocation
	ChangeDate
	ChangeTime
	ChangeDateTime
	ChangeActivation
	ChangeCancellation
)

var changeKindNames = map[ChangeKind]string{
	ChangeNone:         "none",
	ChangeLocation:     "location_change",
	ChangeDate:         "date_change",
	ChangeTime:         "time_change",
	ChangeDateTime:     "date_time_change",
	ChangeActivation:   "activation",
	ChangeCancellation: "cancellation",
}

func (k ChangeKind) String() string {
	if name, ok := changeKindNames[k]; ok {
		return name
	}
	return "none"
}

func (k ChangeKind) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", k.String())), nil
}

func (k *ChangeKind) UnmarshalJSON(data []byte) error {
	raw := string(data)
	for kind, name := range changeKindNames {
		if raw == fmt.Sprintf("%q", name) {
			*k = kind
			return nil
		}
	}
	*k = ChangeNone
	return nil
}

// EventSnapshot carries the fields the change detector compares. Date and
// Time are kept as the raw strings the edit request carried so the formatter
// can surface malformed input instead of dropping it.
type EventSnapshot struct {
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	VenueID   string `json:"venue_id"`
	VenueName string `json:"venue_name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	IsActive  bool   `json:"is_active"`
}

// SnapshotOf captures the comparable view of a stored event.
func SnapshotOf(e *Event) EventSnapshot {
	return EventSnapshot{
		EventID:   e.ID,
		Name:      e.Name,
		VenueID:   e.VenueID,
		VenueName: e.VenueName,
		Date:      e.Date.Format("2006-01-02"),
		Time:      e.Time,
		IsActive:  e.IsActive,
	}
}

// ChangeJob is the payload carried through the notification queue.
// Delivery is at-least-once: a retried job re-sends to every holder.
type ChangeJob struct {
	JobID       string        `json:"job_id"`
	Event       EventSnapshot `json:"event"`
	ChangeType  ChangeKind    `json:"change_type"`
	OldValue    string        `json:"old_value"`
	NewValue    string        `json:"new_value"`
	Attempt     int           `json:"attempt"`
	MaxAttempts int           `json:"max_attempts"`
	EnqueuedAt  time.Time     `json:"enqueued_at"`
}
