package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/perf-review-api/pkg/config"
	"github.com/noah-isme/perf-review-api/pkg/jobs"
)

// Dispatcher drains the notification outbox through a worker pool. Enqueue
// never blocks the request path: a full buffer drops the intent with a log
// line rather than stalling the caller.
type Dispatcher struct {
	queue   *jobs.Queue
	senders []Sender
	logger  *zap.Logger
}

// NewDispatcher wires senders behind a background queue.
func NewDispatcher(cfg config.NotificationsConfig, senders []Sender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{senders: senders, logger: logger}
	d.queue = jobs.NewQueue("notifications", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return d
}

// Start launches the worker pool.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains workers.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Enqueue implements Outbox.
func (d *Dispatcher) Enqueue(intent Intent) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(intent.Type),
		Payload: intent,
	}
	if err := d.queue.Enqueue(job); err != nil {
		d.logger.Warn("notification intent dropped",
			zap.String("type", string(intent.Type)),
			zap.String("organisation_id", intent.OrganisationID),
			zap.Error(err))
	}
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	intent, ok := job.Payload.(Intent)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	var failed int
	for _, sender := range d.senders {
		if err := sender.Send(ctx, intent); err != nil {
			failed++
			d.logger.Warn("notification delivery failed",
				zap.String("sender", sender.Name()),
				zap.String("type", string(intent.Type)),
				zap.Error(err))
		}
	}
	if failed == len(d.senders) && len(d.senders) > 0 {
		return fmt.Errorf("all senders failed for %s", intent.Type)
	}
	return nil
}
