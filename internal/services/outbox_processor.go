package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/internal/infrastructure/outbox"
	"github.com/fastygo/sijagad/repository"
)

var outboxJobs = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sijagad_outbox_jobs_total",
		Help: "Outbox jobs processed, by kind and result",
	},
	[]string{"kind", "result"},
)

// Messenger delivers chat messages.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// MailSender delivers HTML e-mail.
type MailSender interface {
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
}

// ProcessorConfig controls how frequently the outbox is drained.
type ProcessorConfig struct {
	Interval      time.Duration
	BatchSize     int
	MaxAttempts   int
	DefaultChatID string
}

// OutboxProcessor executes queued side effects on a cron schedule.
type OutboxProcessor struct {
	store     *outbox.Store
	activity  repository.ActivityRepository
	messenger Messenger
	mailer    MailSender
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       ProcessorConfig

	// drainMu serialises drains from the cron tick, Stop and one-shot flushes.
	drainMu sync.Mutex
}

// NewOutboxProcessor wires executors for each job kind. A nil messenger or
// mailer means the channel is not configured; its jobs are dropped with a warning.
func NewOutboxProcessor(
	store *outbox.Store,
	activity repository.ActivityRepository,
	messenger Messenger,
	mailer MailSender,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *OutboxProcessor {
	if cfg.Interval < time.Second {
		cfg.Interval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// a tick that finds the previous drain still running is skipped
	scheduler := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	op := &OutboxProcessor{
		store:     store,
		activity:  activity,
		messenger: messenger,
		mailer:    mailer,
		logger:    logger,
		cfg:       cfg,
		cron:      scheduler,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = op.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := op.Drain(ctx); err != nil {
			op.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return op
}

// Start launches the cron scheduler.
func (op *OutboxProcessor) Start() {
	if op == nil || op.cron == nil {
		return
	}
	op.cron.Start()
	op.logger.Info("outbox processor started", zap.Duration("interval", op.cfg.Interval))
}

// Stop waits for a running drain, then flushes whatever is still queued.
func (op *OutboxProcessor) Stop(ctx context.Context) {
	if op == nil || op.cron == nil {
		return
	}
	stopCtx := op.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	if err := op.Drain(ctx); err != nil {
		op.logger.Warn("final outbox drain failed", zap.Error(err))
	}
	op.logger.Info("outbox processor stopped")
}

// Enqueue persists a job for later execution.
func (op *OutboxProcessor) Enqueue(job outbox.Job) error {
	if op == nil || op.store == nil {
		return fmt.Errorf("outbox processor not configured")
	}
	return op.store.Enqueue(job)
}

// Drain takes up to one batch of jobs off the queue and executes them. Each job
// is delivered at most once per attempt; failures are logged, never returned.
func (op *OutboxProcessor) Drain(ctx context.Context) error {
	if op == nil || op.store == nil {
		return nil
	}
	op.drainMu.Lock()
	defer op.drainMu.Unlock()

	jobs, err := op.store.Take(op.cfg.BatchSize)
	if err != nil {
		return err
	}

	for i, job := range jobs {
		if ctx.Err() != nil {
			op.restore(jobs[i:])
			return ctx.Err()
		}
		if err := op.execute(ctx, job); err != nil {
			op.logger.Error("outbox job failed",
				zap.String("job_id", job.ID),
				zap.String("kind", job.Kind),
				zap.Int("attempt", job.Attempts+1),
				zap.Error(err))

			if job.Attempts+1 >= op.cfg.MaxAttempts {
				outboxJobs.WithLabelValues(job.Kind, "dropped").Inc()
				continue
			}

			outboxJobs.WithLabelValues(job.Kind, "retried").Inc()
			if err := op.store.Requeue(job); err != nil {
				op.logger.Error("failed to requeue outbox job", zap.Error(err))
			}
			continue
		}

		outboxJobs.WithLabelValues(job.Kind, "done").Inc()
	}
	return nil
}

// restore puts taken but unexecuted jobs back under their original keys.
func (op *OutboxProcessor) restore(jobs []outbox.Job) {
	for _, job := range jobs {
		if err := op.store.Enqueue(job); err != nil {
			op.logger.Error("failed to restore outbox job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// Size returns the number of queued jobs.
func (op *OutboxProcessor) Size() int {
	if op == nil || op.store == nil {
		return 0
	}
	size, err := op.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (op *OutboxProcessor) execute(ctx context.Context, job outbox.Job) error {
	switch job.Kind {
	case outbox.KindActivityLog:
		var entry domain.ActivityEntry
		if err := job.Decode(&entry); err != nil {
			return err
		}
		if op.activity == nil {
			return fmt.Errorf("activity repository not configured")
		}
		return op.activity.Append(ctx, &entry)

	case outbox.KindTelegramMessage:
		var msg outbox.TelegramPayload
		if err := job.Decode(&msg); err != nil {
			return err
		}
		chatID := msg.ChatID
		if chatID == "" {
			chatID = op.cfg.DefaultChatID
		}
		if op.messenger == nil || chatID == "" {
			op.logger.Warn("telegram not configured, message skipped")
			return nil
		}
		return op.messenger.SendMessage(ctx, chatID, msg.Text)

	case outbox.KindEmail:
		var mail outbox.EmailPayload
		if err := job.Decode(&mail); err != nil {
			return err
		}
		if op.mailer == nil {
			op.logger.Warn("smtp not configured, email skipped", zap.String("to", mail.To))
			return nil
		}
		return op.mailer.SendHTML(ctx, mail.To, mail.Subject, mail.HTML)

	default:
		return fmt.Errorf("unsupported job kind %s", job.Kind)
	}
}
