package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/api/transport"
	"github.com/fastygo/sijagad/pkg/httpcontext"
	"github.com/fastygo/sijagad/pkg/logger"
	notifyUC "github.com/fastygo/sijagad/usecase/notify"
)

const webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler answers Bot API updates. The platform retries anything that
// is not a 200, so every update is acknowledged.
type WebhookHandler struct {
	baseHandler
	notify *notifyUC.UseCase
	secret string
	now    func() time.Time
}

func NewWebhookHandler(notify *notifyUC.UseCase, secret string, adapter *httpcontext.Adapter, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		baseHandler: newBaseHandler(adapter, logger),
		notify:      notify,
		secret:      secret,
		now:         time.Now,
	}
}

// @Summary Telegram webhook
// @Tags telegram
// @Router /telegram-webhook [post]
func (h *WebhookHandler) Handle(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	log := logger.WithRequestID(stdCtx, h.logger)

	if h.secret != "" {
		got := ctx.Request.Header.Peek(webhookSecretHeader)
		if subtle.ConstantTimeCompare(got, []byte(h.secret)) != 1 {
			log.Warn("webhook call with wrong secret token")
			h.ack(ctx, "error")
			return
		}
	}

	var update transport.TelegramUpdate
	if err := transport.Decode(ctx.PostBody(), &update); err != nil {
		log.Warn("unreadable webhook update", zap.Error(err))
		h.ack(ctx, "error")
		return
	}
	if update.Message == nil || update.Message.ChatID() == "" {
		h.ack(ctx, "ok")
		return
	}

	_, err := h.notify.HandleCommand(stdCtx, notifyUC.Command{
		ChatID: update.Message.ChatID(),
		Text:   update.Message.Text,
		Sender: update.Message.From.FirstName,
		At:     h.now(),
	})
	if err != nil {
		log.Error("bot command failed", zap.Error(err))
		h.ack(ctx, "error")
		return
	}
	h.ack(ctx, "ok")
}

func (h *WebhookHandler) ack(ctx *fasthttp.RequestCtx, status string) {
	h.respondSuccess(ctx, http.StatusOK, transport.WebhookAck{Status: status})
}
