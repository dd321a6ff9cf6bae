package router

import (
	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	apiHandler "github.com/fastygo/sijagad/api/handler"
	"github.com/fastygo/sijagad/internal/middleware"
)

type Handlers struct {
	Health  *apiHandler.HealthHandler
	Letter  *apiHandler.LetterHandler
	Asset   *apiHandler.AssetHandler
	Report  *apiHandler.ReportHandler
	Webhook *apiHandler.WebhookHandler
}

type Options struct {
	EnableMetrics bool
}

// New registers every route. Mutating letter and asset routes go through
// authMiddleware; the returned handler carries the global middleware chain.
func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) fasthttp.RequestHandler {
	r := router.New()
	r.SaveMatchedRoutePath = true

	r.GET("/", handlers.Health.Root)
	r.GET("/health", handlers.Health.Check)
	if opts.EnableMetrics {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	}

	// Letters
	r.GET("/letters", handlers.Letter.List)
	r.GET("/letters/active", handlers.Letter.ListActive)
	r.GET("/letters/archive", handlers.Letter.ListArchive)
	r.GET("/letters/{id}", handlers.Letter.Get)
	r.POST("/letters", authMiddleware(handlers.Letter.Create))
	r.PUT("/letters/{id}", authMiddleware(handlers.Letter.Update))
	r.DELETE("/letters/{id}", authMiddleware(handlers.Letter.Delete))

	// Reports and scheduled triggers
	r.GET("/api/analytics", handlers.Report.Analytics)
	r.GET("/api/dashboard/stats", handlers.Report.DashboardStats)
	r.GET("/api/cron-update-status", handlers.Report.CronUpdateStatus)
	r.GET("/api/check-upcoming", handlers.Report.CheckUpcoming)
	r.GET("/export/excel", handlers.Report.ExportExcel)
	r.GET("/logs", handlers.Report.Logs)
	r.POST("/telegram-webhook", handlers.Webhook.Handle)

	// ATTB assets
	r.POST("/api/assets/input", authMiddleware(handlers.Asset.Create))
	r.GET("/api/assets/list", handlers.Asset.List)
	r.PATCH("/api/assets/{id}/update_status", authMiddleware(handlers.Asset.UpdateStatus))
	r.PATCH("/api/assets/{id}/update_details", authMiddleware(handlers.Asset.UpdateDetails))
	r.DELETE("/api/assets/{id}", authMiddleware(handlers.Asset.Delete))
	r.GET("/api/assets/{id}/logs", handlers.Asset.Logs)

	var h fasthttp.RequestHandler = r.Handler
	h = middleware.SecurityHeaders(h)
	h = middleware.CORS(h)
	if opts.EnableMetrics {
		h = middleware.Metrics(h)
	}
	return h
}
