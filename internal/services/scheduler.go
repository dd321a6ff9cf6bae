package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/internal/infrastructure/outbox"
	"github.com/fastygo/sijagad/pkg/logger"
	notifyUC "github.com/fastygo/sijagad/usecase/notify"
	sweepUC "github.com/fastygo/sijagad/usecase/sweep"
)

// SweepRunner expires overdue letters.
type SweepRunner interface {
	Run(ctx context.Context, now time.Time) (sweepUC.Result, error)
}

// Broadcaster sends the scheduled notifications.
type Broadcaster interface {
	BroadcastReport(ctx context.Context, now time.Time) (string, bool, error)
	Digest(ctx context.Context, now time.Time) (notifyUC.DigestResult, error)
}

// SchedulerConfig holds cron specs evaluated in Location. An empty spec
// disables that job.
type SchedulerConfig struct {
	Location       *time.Location
	SweepSchedule  string
	DigestSchedule string
	// CleanupAfter is how long stale outbox jobs are kept.
	CleanupAfter time.Duration
	JobTimeout   time.Duration
}

// Scheduler runs the in-process timers: the optional sweep, the daily
// e-mail digest and outbox housekeeping.
type Scheduler struct {
	sweep  SweepRunner
	notify Broadcaster
	store  *outbox.Store
	cron   *cron.Cron
	cfg    SchedulerConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewScheduler(sweep SweepRunner, notify Broadcaster, store *outbox.Store, cfg SchedulerConfig, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CleanupAfter <= 0 {
		cfg.CleanupAfter = 7 * 24 * time.Hour
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}

	s := &Scheduler{
		sweep:  sweep,
		notify: notify,
		store:  store,
		cron:   cron.New(cron.WithLocation(cfg.Location)),
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}

	if cfg.SweepSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.SweepSchedule, s.job("sweep", s.RunSweep)); err != nil {
			return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
		}
	}
	if cfg.DigestSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.DigestSchedule, s.job("digest", s.RunDigest)); err != nil {
			return nil, fmt.Errorf("invalid digest schedule %q: %w", cfg.DigestSchedule, err)
		}
	}
	if store != nil {
		if _, err := s.cron.AddFunc("@daily", s.job("outbox_cleanup", s.cleanup)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) job(name string, fn func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
		defer cancel()
		ctx = logger.ContextWithActor(ctx, "scheduler:"+name)
		if err := fn(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		}
	}
}

// RunSweep expires overdue letters and broadcasts the daily report.
func (s *Scheduler) RunSweep(ctx context.Context) error {
	now := s.now()
	result, err := s.sweep.Run(ctx, now)
	if err != nil {
		return err
	}
	_, sent, err := s.notify.BroadcastReport(ctx, now)
	if err != nil {
		return err
	}
	logger.WithRequestID(ctx, s.logger).Info("scheduled sweep finished",
		zap.Int("updated", result.Updated),
		zap.Bool("report_sent", sent))
	return nil
}

// RunDigest e-mails the letters expiring soon.
func (s *Scheduler) RunDigest(ctx context.Context) error {
	result, err := s.notify.Digest(ctx, s.now())
	if err != nil {
		return err
	}
	logger.WithRequestID(ctx, s.logger).Info("scheduled digest finished",
		zap.Int("due", result.Count),
		zap.Bool("sent", result.Sent))
	return nil
}

func (s *Scheduler) cleanup(context.Context) error {
	return s.store.Cleanup(s.now().Add(-s.cfg.CleanupAfter))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("timezone", s.cfg.Location.String()),
		zap.String("sweep", s.cfg.SweepSchedule),
		zap.String("digest", s.cfg.DigestSchedule))
}

// Stop waits for running jobs or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}
