package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"ms-boleteria/internal/logger"
	"ms-boleteria/internal/models"
)

const (
	queueKey = "notify:jobs"
	retryKey = "notify:retry"

	// DefaultMaxAttempts retries with exponential backoff (2s, 4s, 8s)
	// before a job is dropped.
	DefaultMaxAttempts = 3
	defaultBackoffBase = 2000 * time.Millisecond
)

// ErrRetriesExhausted reports that a job has used up its retry budget.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Queue is a durable at-least-once job queue on Redis: pending jobs live in
// a list, delayed retries in a sorted set scored by due time.
type Queue struct {
	Client      *redis.Client
	Logger      *logger.Logger
	maxAttempts int
	backoffBase time.Duration
}

type QueueOption func(*Queue)

// WithRetryPolicy overrides the default retry budget and backoff base.
func WithRetryPolicy(maxAttempts int, base time.Duration) QueueOption {
	return func(q *Queue) {
		if maxAttempts > 0 {
			q.maxAttempts = maxAttempts
		}
		if base > 0 {
			q.backoffBase = base
		}
	}
}

func NewQueue(client *redis.Client, log *logger.Logger, opts ...QueueOption) *Queue {
	q := &Queue{
		Client:      client,
		Logger:      log,
		maxAttempts: DefaultMaxAttempts,
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue pushes a job onto the pending list, filling in the job ID, the
// retry budget and the enqueue timestamp.
func (q *Queue) Enqueue(ctx context.Context, job models.ChangeJob) error {
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = q.maxAttempts
	}
	job.EnqueuedAt = time.Now()

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.Client.LPush(ctx, queueKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	if q.Logger != nil {
		q.Logger.LogQueue("ENQUEUE", job.JobID, fmt.Sprintf("%s for event %s", job.ChangeType, job.Event.EventID))
	}
	return nil
}

// Dequeue blocks up to timeout for the next pending job. Returns (nil, nil)
// when the wait times out.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*models.ChangeJob, error) {
	res, err := q.Client.BRPop(ctx, timeout, queueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job models.ChangeJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

// ScheduleRetry counts a failed execution and parks the job in the retry set
// until its backoff delay elapses. Returns ErrRetriesExhausted once the
// budget is used up.
func (q *Queue) ScheduleRetry(ctx context.Context, job models.ChangeJob) error {
	job.Attempt++
	if job.Attempt > job.MaxAttempts {
		return ErrRetriesExhausted
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	due := time.Now().Add(Backoff(q.backoffBase, job.Attempt))
	err = q.Client.ZAdd(ctx, retryKey, &redis.Z{
		Score:  float64(due.UnixMilli()),
		Member: string(payload),
	}).Err()
	if err != nil {
		return fmt.Errorf("schedule retry: %w", err)
	}
	if q.Logger != nil {
		q.Logger.LogQueue("RETRY", job.JobID, fmt.Sprintf("attempt %d/%d due %s", job.Attempt, job.MaxAttempts, due.Format(time.RFC3339)))
	}
	return nil
}

// PromoteDue moves retry jobs whose delay has elapsed back onto the pending
// list.
func (q *Queue) PromoteDue(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	payloads, err := q.Client.ZRangeByScore(ctx, retryKey, &redis.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		return err
	}
	for _, payload := range payloads {
		pipe := q.Client.TxPipeline()
		pipe.ZRem(ctx, retryKey, payload)
		pipe.LPush(ctx, queueKey, payload)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Backoff returns the delay before retry number attempt: base, 2*base,
// 4*base and so on.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << uint(attempt-1)
}
