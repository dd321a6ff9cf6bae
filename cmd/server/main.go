package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/sijagad/api/handler"
	"github.com/fastygo/sijagad/internal/app"
	"github.com/fastygo/sijagad/internal/config"
	"github.com/fastygo/sijagad/internal/middleware"
	"github.com/fastygo/sijagad/internal/router"
	"github.com/fastygo/sijagad/internal/services"
	"github.com/fastygo/sijagad/pkg/httpcontext"
	"github.com/fastygo/sijagad/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("bootstrap failed", zap.Error(err))
	}
	a.Lifecycle.Listen(cancel)
	a.StartBackground()

	scheduler, err := services.NewScheduler(a.Sweep, a.Notify, a.Outbox, services.SchedulerConfig{
		Location:       a.Location,
		SweepSchedule:  cfg.Schedule.SweepSchedule,
		DigestSchedule: cfg.Schedule.DigestSchedule,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("scheduler setup failed", zap.Error(err))
	}
	scheduler.Start()
	a.Lifecycle.Register("scheduler", func(ctx context.Context) error {
		scheduler.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Health: apiHandler.NewHealthHandler(a.Monitor, "SiJAGAD", ctxAdapter, zapLogger),
		Letter: apiHandler.NewLetterHandler(a.Letters, ctxAdapter, zapLogger),
		Asset:  apiHandler.NewAssetHandler(a.Assets, ctxAdapter, zapLogger),
		Report: apiHandler.NewReportHandler(apiHandler.ReportHandlerDeps{
			Reports:  a.Reports,
			Sweep:    a.Sweep,
			Notify:   a.Notify,
			Export:   a.Export,
			Activity: a.Activity,
		}, ctxAdapter, zapLogger),
		Webhook: apiHandler.NewWebhookHandler(a.Notify, cfg.Telegram.WebhookSecret, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	handler := router.New(handlers, authMiddleware, router.Options{EnableMetrics: cfg.HTTP.EnableMetrics})

	server := &fasthttp.Server{
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	a.Lifecycle.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := a.Close(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
