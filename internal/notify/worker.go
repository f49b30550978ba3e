package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-boleteria/internal/logger"
	"ms-boleteria/internal/models"
)

type HolderStore interface {
	ActiveHoldersByEvent(ctx context.Context, eventID string) ([]models.Holder, error)
}

type Directory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Worker consumes change jobs and fans one email out per affected holder.
// A per-user delivery failure is logged and skipped; only unexpected errors
// (store failures) fail the job and trigger the queue's retry.
type Worker struct {
	Queue     *Queue
	Tickets   HolderStore
	Directory Directory
	Mailer    Mailer
	Logger    *logger.Logger
}

func NewWorker(queue *Queue, tickets HolderStore, directory Directory, mailer Mailer, log *logger.Logger) *Worker {
	return &Worker{Queue: queue, Tickets: tickets, Directory: directory, Mailer: mailer, Logger: log}
}

// Run loops until ctx is cancelled, promoting due retries and processing
// pending jobs.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.Queue.PromoteDue(ctx); err != nil && ctx.Err() == nil {
			w.logError("QUEUE", fmt.Sprintf("promote due retries: %v", err))
		}

		job, err := w.Queue.Dequeue(ctx, time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logError("QUEUE", fmt.Sprintf("dequeue: %v", err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		if err := w.Process(ctx, *job); err != nil {
			w.logError("NOTIFY", fmt.Sprintf("job %s failed: %v", job.JobID, err))
			retryErr := w.Queue.ScheduleRetry(ctx, *job)
			if errors.Is(retryErr, ErrRetriesExhausted) {
				w.logError("NOTIFY", fmt.Sprintf("job %s dropped after %d attempts", job.JobID, job.MaxAttempts))
			} else if retryErr != nil {
				w.logError("QUEUE", fmt.Sprintf("schedule retry for job %s: %v", job.JobID, retryErr))
			}
		}
	}
}

// Process resolves the current holders of the affected event and dispatches
// one notification per holder. Zero holders completes the job as a no-op.
func (w *Worker) Process(ctx context.Context, job models.ChangeJob) error {
	holders, err := w.Tickets.ActiveHoldersByEvent(ctx, job.Event.EventID)
	if err != nil {
		return fmt.Errorf("resolve holders for event %s: %w", job.Event.EventID, err)
	}
	if len(holders) == 0 {
		if w.Logger != nil {
			w.Logger.LogNotify(job.ChangeType.String(), job.Event.EventID, "no active holders, nothing to send")
		}
		return nil
	}

	sent := 0
	for _, holder := range holders {
		user, err := w.Directory.GetUser(ctx, holder.UserID)
		if err != nil {
			w.logError("NOTIFY", fmt.Sprintf("resolve user %s: %v", holder.UserID, err))
			continue
		}

		subject, body, err := BuildChangeEmail(job, holder, user)
		if err != nil {
			w.logError("NOTIFY", fmt.Sprintf("render email for user %s: %v", holder.UserID, err))
			continue
		}

		if err := w.Mailer.Send(ctx, user.Email, subject, body); err != nil {
			w.logError("NOTIFY", fmt.Sprintf("send to %s: %v", user.Email, err))
			continue
		}
		sent++
	}

	if w.Logger != nil {
		w.Logger.LogNotify(job.ChangeType.String(), job.Event.EventID,
			fmt.Sprintf("delivered %d/%d notifications", sent, len(holders)))
	}
	return nil
}

func (w *Worker) logError(category, message string) {
	if w.Logger != nil {
		w.Logger.Error(category, message)
	}
}
