package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/api/transport"
	"github.com/fastygo/sijagad/internal/infrastructure/monitor"
	"github.com/fastygo/sijagad/pkg/httpcontext"
)

// StatusSource exposes the latest dependency snapshot.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
	system  string
}

func NewHealthHandler(mon StatusSource, system string, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		system:      system,
	}
}

// @Summary Service status
// @Tags health
// @Router / [get]
func (h *HealthHandler) Root(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	h.respondSuccess(ctx, http.StatusOK, transport.StatusInfo{
		Status:   "Ready",
		System:   h.system,
		Database: status.DatabaseState(),
	})
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	services := map[string]interface{}{
		"postgresql": status.Database,
		"outbox": map[string]interface{}{
			"online": status.Outbox,
			"size":   status.OutboxSize,
		},
	}
	if status.RedisUsed {
		services["redis"] = status.Redis
	}
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"services":   services,
	}

	if status.Database {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "Database Offline", payload))
}
