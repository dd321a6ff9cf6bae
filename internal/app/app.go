package app

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/internal/config"
	"github.com/fastygo/sijagad/internal/infrastructure/mailer"
	"github.com/fastygo/sijagad/internal/infrastructure/monitor"
	"github.com/fastygo/sijagad/internal/infrastructure/outbox"
	pgInfra "github.com/fastygo/sijagad/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/sijagad/internal/infrastructure/redis"
	"github.com/fastygo/sijagad/internal/infrastructure/telegram"
	"github.com/fastygo/sijagad/internal/services"
	"github.com/fastygo/sijagad/internal/services/lifecycle"
	"github.com/fastygo/sijagad/repository"
	"github.com/fastygo/sijagad/repository/postgres"
	redisRepo "github.com/fastygo/sijagad/repository/redis"
	activityUC "github.com/fastygo/sijagad/usecase/activity"
	assetUC "github.com/fastygo/sijagad/usecase/asset"
	exportUC "github.com/fastygo/sijagad/usecase/export"
	letterUC "github.com/fastygo/sijagad/usecase/letter"
	notifyUC "github.com/fastygo/sijagad/usecase/notify"
	reportUC "github.com/fastygo/sijagad/usecase/report"
	sweepUC "github.com/fastygo/sijagad/usecase/sweep"
)

const claimTTL = 36 * time.Hour

// App holds every wired component. Shutdown hooks are registered on Lifecycle
// in construction order and run in reverse.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Lifecycle *lifecycle.Manager
	Location  *time.Location

	Pool      *pgxpool.Pool
	Redis     *goRedis.Client
	Outbox    *outbox.Store
	Monitor   *monitor.Monitor
	Processor *services.OutboxProcessor
	Ledger    repository.DispatchLedger

	Letters  *letterUC.UseCase
	Assets   *assetUC.UseCase
	Reports  *reportUC.UseCase
	Sweep    *sweepUC.UseCase
	Notify   *notifyUC.UseCase
	Export   *exportUC.UseCase
	Activity *activityUC.UseCase
}

// New connects the stores and builds the use cases. A missing or unreachable
// database is logged, not returned: record operations then fail with
// UNAVAILABLE while health checks keep answering.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    log,
		Lifecycle: lifecycle.New(cfg.Context.ShutdownTimeout, log),
		Location:  loc,
	}

	if err := pgInfra.RunMigrations(cfg, log); err != nil {
		log.Error("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, log)
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Warn("database credentials not configured, record endpoints will answer 503")
	case err != nil:
		log.Error("postgres connection failed", zap.Error(err))
	default:
		a.Pool = pool
		a.Lifecycle.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
	}

	redisClient, err := redisInfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn("redis unavailable, falling back to local dispatch ledger", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		a.Redis = redisClient
		a.Lifecycle.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	store, err := outbox.Open(cfg.Outbox.Path)
	if err != nil {
		return nil, err
	}
	a.Outbox = store
	a.Lifecycle.Register("outbox", func(ctx context.Context) error {
		return store.Close()
	})

	a.Monitor = monitor.New(a.Pool, a.Redis, store, 10*time.Second, log)

	letterRepo := postgres.NewLetterRepository(a.Pool)
	assetRepo := postgres.NewAssetRepository(a.Pool)
	activityRepo := postgres.NewActivityRepository(a.Pool)

	a.Ledger = selectLedger(a.Redis, a.Pool, store)

	var (
		messenger services.Messenger
		chat      notifyUC.ChatActor
	)
	if cfg.Telegram.Enabled() {
		bot := telegram.NewClient(cfg.Telegram, log)
		messenger, chat = bot, bot
	} else {
		log.Warn("telegram bot token not configured, chat notifications disabled")
	}

	var mail services.MailSender
	if cfg.SMTP.Enabled() {
		mail = mailer.New(cfg.SMTP, log)
	} else {
		log.Warn("smtp credentials not configured, e-mail digest disabled")
	}

	a.Processor = services.NewOutboxProcessor(store, activityRepo, messenger, mail, log, services.ProcessorConfig{
		Interval:      cfg.Outbox.Interval,
		BatchSize:     cfg.Outbox.BatchSize,
		MaxAttempts:   cfg.Outbox.MaxAttempts,
		DefaultChatID: cfg.Telegram.ChatID,
	})
	bridge := services.NewOutboxBridge(a.Processor)

	cache := reportUC.NewCache(cfg.Report.CacheSize, cfg.Report.CacheTTL)
	a.Reports = reportUC.New(letterRepo, assetRepo, cache, reportUC.Config{
		Location:   loc,
		WindowDays: cfg.Report.WindowDays,
	}, log)
	a.Letters = letterUC.New(letterRepo, bridge, cache, log)
	a.Assets = assetUC.New(assetRepo, activityRepo, bridge, log)
	a.Sweep = sweepUC.New(letterRepo, bridge, cache, redisInfra.NewLocker(a.Redis), sweepUC.Config{
		Location: loc,
		LockTTL:  cfg.Schedule.LockTTL,
	}, log)
	a.Notify = notifyUC.New(a.Reports, letterRepo, bridge, a.Ledger, chat, notifyUC.Config{
		Location:         loc,
		DigestRecipient:  cfg.SMTP.Recipient,
		DigestWindowDays: cfg.Report.DigestWindowDays,
	}, log)
	a.Export = exportUC.New(letterRepo, a.Letters, exportUC.Config{
		TemplatePath: cfg.Export.TemplatePath,
		Location:     loc,
	}, log)
	a.Activity = activityUC.New(activityRepo)

	return a, nil
}

// selectLedger prefers a ledger every process can see: Redis, then the
// database. The local Bolt bucket only dedups within this process's queue file.
func selectLedger(redisClient *goRedis.Client, pool *pgxpool.Pool, store *outbox.Store) repository.DispatchLedger {
	switch {
	case redisClient != nil:
		return redisRepo.NewDispatchLedger(redisClient, claimTTL)
	case pool != nil:
		return postgres.NewDispatchLedger(pool, claimTTL)
	default:
		return store
	}
}

// StartBackground launches the monitor and the outbox processor and registers
// their shutdown hooks.
func (a *App) StartBackground() {
	a.Monitor.Start()
	a.Lifecycle.Register("monitor", func(ctx context.Context) error {
		a.Monitor.Stop()
		return nil
	})

	a.Processor.Start()
	a.Lifecycle.Register("outbox_processor", func(ctx context.Context) error {
		a.Processor.Stop(ctx)
		return nil
	})
}

// Flush drains the outbox once. One-shot commands call it before exiting so
// queued activity entries and messages are not left behind.
func (a *App) Flush(ctx context.Context) error {
	for i := 0; i < 10 && a.Processor.Size() > 0; i++ {
		if err := a.Processor.Drain(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close runs the registered shutdown hooks.
func (a *App) Close(ctx context.Context) error {
	return a.Lifecycle.Shutdown(ctx)
}
