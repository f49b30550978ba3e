package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-boleteria/internal/changes"
	"ms-boleteria/internal/logger"
	"ms-boleteria/internal/models"
)

type EventStore interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, event models.Event) error
	UpdateEvent(ctx context.Context, event models.Event) error
}

type JobQueue interface {
	Enqueue(ctx context.Context, job models.ChangeJob) error
}

type Publisher interface {
	PublishEventChanged(job models.ChangeJob) error
}

type Service struct {
	DB     EventStore
	Queue  JobQueue
	Kafka  Publisher
	Logger *logger.Logger
}

func NewService(db EventStore, queue JobQueue, kafka Publisher, log *logger.Logger) *Service {
	return &Service{DB: db, Queue: queue, Kafka: kafka, Logger: log}
}

// CreateInput describes an administrative event creation.
type CreateInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	VenueID     string            `json:"venue_id"`
	VenueName   string            `json:"venue_name"`
	ImageURL    string            `json:"image_url"`
	IsActive    bool              `json:"is_active"`
	TicketTypes []TicketTypeInput `json:"ticket_types"`
}

// UpdateInput is a full replacement of the editable fields. Venue and image
// are preserved from the stored document; they cannot be edited here.
type UpdateInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	IsActive    bool              `json:"is_active"`
	TicketTypes []TicketTypeInput `json:"ticket_types"`
}

type TicketTypeInput struct {
	TypeCode        string  `json:"type_code"`
	Price           float64 `json:"price"`
	InitialQuantity int     `json:"initial_quantity"`
	IsActive        bool    `json:"is_active"`
}

func (s *Service) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

// Create persists a new event. Every ticket type starts with zero sold.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Event, error) {
	date, err := parseInputDate(in.Date)
	if err != nil {
		return nil, err
	}
	if err := validateTime(in.Time); err != nil {
		return nil, err
	}
	if err := validateTicketTypes(in.TicketTypes); err != nil {
		return nil, err
	}

	event := models.Event{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Date:        date,
		Time:        in.Time,
		IsActive:    in.IsActive,
		VenueID:     in.VenueID,
		VenueName:   in.VenueName,
		ImageURL:    in.ImageURL,
		CreatedAt:   time.Now(),
	}
	for _, tt := range in.TicketTypes {
		event.TicketTypes = append(event.TicketTypes, models.TicketType{
			EventID:         event.ID,
			TypeCode:        tt.TypeCode,
			Price:           tt.Price,
			InitialQuantity: tt.InitialQuantity,
			SoldQuantity:    0,
			IsActive:        tt.IsActive,
		})
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logf("EVENT", "created event %s (%s)", event.ID, event.Name)
	return &event, nil
}

// Update replaces the editable fields, persists, then runs change detection.
// Each detected change kind is formatted and enqueued as its own
// notification job. Enqueue and publish failures are logged, never surfaced
// to the editor.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Event, error) {
	date, err := parseInputDate(in.Date)
	if err != nil {
		return nil, err
	}
	if err := validateTime(in.Time); err != nil {
		return nil, err
	}
	if err := validateTicketTypes(in.TicketTypes); err != nil {
		return nil, err
	}

	original, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	proposed := models.Event{
		ID:          original.ID,
		Name:        in.Name,
		Description: in.Description,
		Date:        date,
		Time:        in.Time,
		IsActive:    in.IsActive,
		VenueID:     original.VenueID,
		VenueName:   original.VenueName,
		ImageURL:    original.ImageURL,
		CreatedAt:   original.CreatedAt,
	}

	// Sold counts survive the edit for type codes that remain; new codes
	// start from zero. Shrinking capacity below what is already sold is a
	// caller error.
	soldByCode := make(map[string]int, len(original.TicketTypes))
	for _, tt := range original.TicketTypes {
		soldByCode[tt.TypeCode] = tt.SoldQuantity
	}
	for _, tt := range in.TicketTypes {
		sold := soldByCode[tt.TypeCode]
		if tt.InitialQuantity < sold {
			return nil, fmt.Errorf("%w: type %s has %d sold, cannot shrink capacity to %d",
				models.ErrInvalidTicketType, tt.TypeCode, sold, tt.InitialQuantity)
		}
		proposed.TicketTypes = append(proposed.TicketTypes, models.TicketType{
			EventID:         original.ID,
			TypeCode:        tt.TypeCode,
			Price:           tt.Price,
			InitialQuantity: tt.InitialQuantity,
			SoldQuantity:    sold,
			IsActive:        tt.IsActive,
		})
	}

	if err := s.DB.UpdateEvent(ctx, proposed); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	origSnap := models.SnapshotOf(original)
	propSnap := models.SnapshotOf(&proposed)
	// Carry the raw strings from the request so the formatter reports what
	// the caller actually sent.
	propSnap.Date = in.Date
	propSnap.Time = in.Time

	if kind := changes.DetectFieldChange(origSnap, propSnap); kind != models.ChangeNone {
		s.dispatchChange(ctx, origSnap, propSnap, kind)
	}
	if kind := changes.DetectStatusChange(origSnap, propSnap); kind != models.ChangeNone {
		s.dispatchChange(ctx, origSnap, propSnap, kind)
	}

	return &proposed, nil
}

func (s *Service) dispatchChange(ctx context.Context, original, proposed models.EventSnapshot, kind models.ChangeKind) {
	oldValue, newValue := changes.FormatValues(original, proposed, kind)
	job := models.ChangeJob{
		Event:      proposed,
		ChangeType: kind,
		OldValue:   oldValue,
		NewValue:   newValue,
	}

	if s.Queue != nil {
		if err := s.Queue.Enqueue(ctx, job); err != nil {
			s.logErrorf("QUEUE", "enqueue %s for event %s: %v", kind, proposed.EventID, err)
		}
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishEventChanged(job); err != nil {
			s.logErrorf("KAFKA", "publish %s for event %s: %v", kind, proposed.EventID, err)
		}
	}
	s.logf("EVENT", "detected %s on event %s (%q -> %q)", kind, proposed.EventID, oldValue, newValue)
}

func parseInputDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, models.ErrInvalidDateFormat
	}
	return date, nil
}

func validateTime(raw string) error {
	if _, err := time.Parse("15:04", raw); err != nil {
		return models.ErrInvalidTimeFormat
	}
	return nil
}

func validateTicketTypes(types []TicketTypeInput) error {
	seen := make(map[string]bool, len(types))
	for _, tt := range types {
		if tt.TypeCode == "" {
			return fmt.Errorf("%w: empty type code", models.ErrInvalidTicketType)
		}
		if seen[tt.TypeCode] {
			return fmt.Errorf("%w: duplicate type code %s", models.ErrInvalidTicketType, tt.TypeCode)
		}
		seen[tt.TypeCode] = true
		if tt.Price < 0 {
			return fmt.Errorf("%w: type %s has negative price", models.ErrInvalidTicketType, tt.TypeCode)
		}
		if tt.InitialQuantity < 1 {
			return fmt.Errorf("%w: type %s needs capacity of at least 1", models.ErrInvalidTicketType, tt.TypeCode)
		}
	}
	return nil
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
