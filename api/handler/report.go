package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/api/transport"
	"github.com/fastygo/sijagad/pkg/httpcontext"
	"github.com/fastygo/sijagad/pkg/logger"
	activityUC "github.com/fastygo/sijagad/usecase/activity"
	exportUC "github.com/fastygo/sijagad/usecase/export"
	notifyUC "github.com/fastygo/sijagad/usecase/notify"
	reportUC "github.com/fastygo/sijagad/usecase/report"
	sweepUC "github.com/fastygo/sijagad/usecase/sweep"
)

// ReportHandlerDeps groups the read-side and scheduled use cases.
type ReportHandlerDeps struct {
	Reports  *reportUC.UseCase
	Sweep    *sweepUC.UseCase
	Notify   *notifyUC.UseCase
	Export   *exportUC.UseCase
	Activity *activityUC.UseCase
}

type ReportHandler struct {
	baseHandler
	deps ReportHandlerDeps
	now  func() time.Time
}

func NewReportHandler(deps ReportHandlerDeps, adapter *httpcontext.Adapter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		baseHandler: newBaseHandler(adapter, logger),
		deps:        deps,
		now:         time.Now,
	}
}

// @Summary Letter analytics
// @Tags reports
// @Router /api/analytics [get]
func (h *ReportHandler) Analytics(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summary, err := h.deps.Reports.Summary(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, summary)
}

// @Summary Asset dashboard
// @Tags reports
// @Router /api/dashboard/stats [get]
func (h *ReportHandler) DashboardStats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.deps.Reports.AssetDashboard(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

// @Summary Preview and send the upcoming report
// @Tags reports
// @Router /api/check-upcoming [get]
func (h *ReportHandler) CheckUpcoming(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	text, err := h.deps.Notify.CheckUpcoming(stdCtx, h.now())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.CheckResult{Status: "Sent", Preview: text})
}

// @Summary Expire overdue letters and broadcast the daily report
// @Tags reports
// @Router /api/cron-update-status [get]
func (h *ReportHandler) CronUpdateStatus(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	now := h.now()
	result, err := h.deps.Sweep.Run(stdCtx, now)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	_, sent, err := h.deps.Notify.BroadcastReport(stdCtx, now)
	if err != nil {
		logger.WithRequestID(stdCtx, h.logger).Warn("report broadcast failed after sweep", zap.Error(err))
	}

	h.respondSuccess(ctx, http.StatusOK, transport.SweepResult{
		Scanned:  result.Scanned,
		Updated:  result.Updated,
		Failures: len(result.Failures),
		Skipped:  result.Skipped,
		Notified: sent,
	})
}

// @Summary Recent activity
// @Tags reports
// @Router /logs [get]
func (h *ReportHandler) Logs(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.deps.Activity.Recent(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}

// @Summary Download the letter workbook
// @Tags reports
// @Router /export/excel [get]
func (h *ReportHandler) ExportExcel(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	wb, err := h.deps.Export.Export(stdCtx, h.now())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Response.Header.SetContentType(exportUC.ContentType)
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, wb.Filename))
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(wb.Data)
}
