package notify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ms-boleteria/internal/models"
	"ms-boleteria/internal/notify"
)

// Mock implementations for testing

type MockHolderStore struct {
	holders      []models.Holder
	shouldFailOn string
	errorMsg     string
}

func (m *MockHolderStore) ActiveHoldersByEvent(ctx context.Context, eventID string) ([]models.Holder, error) {
	if m.shouldFailOn == "ActiveHoldersByEvent" {
		return nil, errors.New(m.errorMsg)
	}
	return m.holders, nil
}

type MockDirectory struct {
	users       map[string]*models.User
	failForUser string
}

func (m *MockDirectory) GetUser(ctx context.Context, id string) (*models.User, error) {
	if id == m.failForUser {
		return nil, errors.New("directory unavailable")
	}
	user, exists := m.users[id]
	if !exists {
		return nil, errors.New("user not found")
	}
	return user, nil
}

type MockMailer struct {
	sent        []string // recipient addresses
	failForAddr string
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	if to == m.failForAddr {
		return errors.New("smtp rejected")
	}
	m.sent = append(m.sent, to)
	return nil
}

func changeJob(kind models.ChangeKind) models.ChangeJob {
	return models.ChangeJob{
		JobID: "job-1",
		Event: models.EventSnapshot{
			EventID:  "event-1",
			Name:     "Concierto de Jazz",
			Date:     "2026-07-02",
			Time:     "21:30",
			IsActive: true,
		},
		ChangeType:  kind,
		OldValue:    "10 de junio de 2026",
		NewValue:    "2 de julio de 2026",
		MaxAttempts: 3,
	}
}

func holder(userID string, count int, types ...string) models.Holder {
	return models.Holder{UserID: userID, TicketCount: count, TicketTypes: types}
}

func TestProcessFansOutToAllHolders(t *testing.T) {
	store := &MockHolderStore{holders: []models.Holder{
		holder("user-a", 2, "general"),
		holder("user-b", 1, "vip"),
	}}
	directory := &MockDirectory{users: map[string]*models.User{
		"user-a": {ID: "user-a", Name: "Ana", Email: "ana@example.com"},
		"user-b": {ID: "user-b", Name: "Bruno", Email: "bruno@example.com"},
	}}
	mailer := &MockMailer{}
	worker := notify.NewWorker(nil, store, directory, mailer, nil)

	if err := worker.Process(context.Background(), changeJob(models.ChangeDate)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("Expected 2 deliveries, got %d", len(mailer.sent))
	}
}

// Zero holders is a completed no-op, not an error; the job must not retry.
func TestProcessNoHolders(t *testing.T) {
	store := &MockHolderStore{}
	mailer := &MockMailer{}
	worker := notify.NewWorker(nil, store, &MockDirectory{}, mailer, nil)

	if err := worker.Process(context.Background(), changeJob(models.ChangeCancellation)); err != nil {
		t.Fatalf("Expected no error for zero holders, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("Expected no deliveries, got %d", len(mailer.sent))
	}
}

// One holder failing must not block the rest.
func TestProcessPerUserIsolation(t *testing.T) {
	store := &MockHolderStore{holders: []models.Holder{
		holder("user-a", 1, "general"),
		holder("user-b", 1, "general"),
		holder("user-c", 1, "general"),
	}}
	directory := &MockDirectory{
		users: map[string]*models.User{
			"user-a": {ID: "user-a", Name: "Ana", Email: "ana@example.com"},
			"user-b": {ID: "user-b", Name: "Bruno", Email: "bruno@example.com"},
			"user-c": {ID: "user-c", Name: "Clara", Email: "clara@example.com"},
		},
		failForUser: "user-b",
	}
	mailer := &MockMailer{failForAddr: "clara@example.com"}
	worker := notify.NewWorker(nil, store, directory, mailer, nil)

	if err := worker.Process(context.Background(), changeJob(models.ChangeDate)); err != nil {
		t.Fatalf("Expected job to complete despite per-user failures, got %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "ana@example.com" {
		t.Errorf("Expected only ana@example.com delivered, got %v", mailer.sent)
	}
}

// A store failure is a job-level error and must surface so the queue retries.
func TestProcessStoreFailure(t *testing.T) {
	store := &MockHolderStore{shouldFailOn: "ActiveHoldersByEvent", errorMsg: "db down"}
	worker := notify.NewWorker(nil, store, &MockDirectory{}, &MockMailer{}, nil)

	if err := worker.Process(context.Background(), changeJob(models.ChangeDate)); err == nil {
		t.Fatal("Expected error when holder lookup fails, got nil")
	}
}

func TestBuildChangeEmail(t *testing.T) {
	user := &models.User{ID: "user-a", Name: "Ana", Email: "ana@example.com"}
	h := holder("user-a", 2, "general", "vip")

	subject, body, err := notify.BuildChangeEmail(changeJob(models.ChangeDate), h, user)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if subject != "Cambio en el evento: Concierto de Jazz" {
		t.Errorf("Unexpected subject %q", subject)
	}
	for _, want := range []string{"Hola Ana", "Fecha", "10 de junio de 2026", "2 de julio de 2026", "2 entrada(s)", "general, vip"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q:\n%s", want, body)
		}
	}
}

func TestBuildChangeEmailVariants(t *testing.T) {
	user := &models.User{ID: "user-a", Email: "ana@example.com"}
	h := holder("user-a", 1, "general")

	subject, body, err := notify.BuildChangeEmail(changeJob(models.ChangeCancellation), h, user)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if subject != "Evento cancelado: Concierto de Jazz" {
		t.Errorf("Unexpected subject %q", subject)
	}
	// With no name the greeting falls back to the email address.
	if !strings.Contains(body, "Hola ana@example.com") {
		t.Errorf("Expected email fallback greeting:\n%s", body)
	}

	subject, _, err = notify.BuildChangeEmail(changeJob(models.ChangeActivation), h, user)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if subject != "Evento reactivado: Concierto de Jazz" {
		t.Errorf("Unexpected subject %q", subject)
	}

	if _, _, err := notify.BuildChangeEmail(changeJob(models.ChangeNone), h, user); err == nil {
		t.Error("Expected error for a kind with no email variant")
	}
}
