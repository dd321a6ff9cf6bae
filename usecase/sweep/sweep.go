package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/pkg/logger"
	"github.com/fastygo/sijagad/repository"
	"github.com/fastygo/sijagad/usecase"
)

const lockKey = "sijagad:sweep"

var (
	sweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sijagad_sweep_runs_total",
		Help: "Expiry sweep runs by outcome",
	}, []string{"outcome"})
	sweepExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sijagad_sweep_expired_total",
		Help: "Letters moved to Expired by the sweep",
	})
	sweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sijagad_sweep_record_failures_total",
		Help: "Letters the sweep could not evaluate or update",
	})
)

// Failure describes one letter the sweep had to skip.
type Failure struct {
	LetterID int64  `json:"letter_id"`
	Reason   string `json:"reason"`
}

// Result summarises a sweep run.
type Result struct {
	Scanned  int       `json:"scanned"`
	Updated  int       `json:"updated"`
	Failures []Failure `json:"failures"`
	// Skipped is set when another instance held the sweep lock.
	Skipped bool `json:"skipped"`
}

type Config struct {
	Location *time.Location
	LockTTL  time.Duration
}

type UseCase struct {
	letters repository.LetterRepository
	outbox  usecase.Outbox
	cache   usecase.ReportCache
	locker  *redislock.Client
	cfg     Config
	logger  *zap.Logger
}

// New builds the sweep. locker may be nil when Redis is not deployed.
func New(letters repository.LetterRepository, outbox usecase.Outbox, cache usecase.ReportCache, locker *redislock.Client, cfg Config, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	return &UseCase{
		letters: letters,
		outbox:  outbox,
		cache:   cache,
		locker:  locker,
		cfg:     cfg,
		logger:  log,
	}
}

// Run marks every open letter whose expiry date is before today as Expired.
// A letter that cannot be parsed or written is reported in the result and
// never aborts the batch. Running twice in a row writes nothing the second time.
func (uc *UseCase) Run(ctx context.Context, now time.Time) (Result, error) {
	log := logger.WithRequestID(ctx, uc.logger)

	if uc.locker != nil {
		lock, err := uc.locker.Obtain(ctx, lockKey, uc.cfg.LockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			log.Info("sweep already running elsewhere, skipping")
			sweepRuns.WithLabelValues("skipped").Inc()
			return Result{Skipped: true, Failures: []Failure{}}, nil
		}
		if err != nil {
			log.Warn("sweep lock unavailable, running unguarded", zap.Error(err))
		} else {
			defer func() {
				if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
					log.Warn("failed to release sweep lock", zap.Error(err))
				}
			}()
		}
	}

	letters, err := uc.letters.ListOpen(ctx)
	if err != nil {
		sweepRuns.WithLabelValues("error").Inc()
		return Result{}, err
	}

	result := Result{Scanned: len(letters), Failures: []Failure{}}
	for _, l := range letters {
		expiry, err := l.ExpiryDate()
		if err != nil {
			result.Failures = append(result.Failures, Failure{LetterID: l.ID, Reason: err.Error()})
			log.Warn("sweep skipped letter with unreadable expiry date",
				zap.Int64("letter_id", l.ID), zap.String("value", l.GuaranteeEnd))
			continue
		}
		if !domain.Classify(expiry, now, uc.cfg.Location, l.Status).DueForExpiry {
			continue
		}

		written, err := uc.letters.MarkExpired(ctx, l.ID)
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeUnavailable) {
				sweepRuns.WithLabelValues("error").Inc()
				return result, err
			}
			result.Failures = append(result.Failures, Failure{LetterID: l.ID, Reason: err.Error()})
			log.Error("sweep failed to expire letter", zap.Int64("letter_id", l.ID), zap.Error(err))
			continue
		}
		if written {
			result.Updated++
		}
	}

	sweepExpired.Add(float64(result.Updated))
	sweepFailures.Add(float64(len(result.Failures)))
	sweepRuns.WithLabelValues("completed").Inc()

	if result.Updated > 0 && uc.cache != nil {
		uc.cache.Invalidate()
	}

	if uc.outbox != nil {
		entry := domain.ActivityEntry{
			Actor:  domain.SystemActor,
			Action: domain.ActionAutoUpdate,
			Target: fmt.Sprintf("Check done. %d updated.", result.Updated),
		}
		if err := uc.outbox.LogActivity(ctx, entry); err != nil {
			log.Error("failed to queue sweep activity entry", zap.Error(err))
		}
	}

	log.Info("expiry sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("updated", result.Updated),
		zap.Int("failures", len(result.Failures)))
	return result, nil
}
