package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/api/transport"
	"github.com/fastygo/sijagad/pkg/httpcontext"
	"github.com/fastygo/sijagad/repository"
	letterUC "github.com/fastygo/sijagad/usecase/letter"
)

type LetterHandler struct {
	baseHandler
	uc *letterUC.UseCase
}

func NewLetterHandler(uc *letterUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *LetterHandler {
	return &LetterHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List letters
// @Tags letters
// @Router /letters [get]
func (h *LetterHandler) List(ctx *fasthttp.RequestCtx) {
	h.list(ctx, repository.ScopeAll)
}

// @Summary List open letters
// @Tags letters
// @Router /letters/active [get]
func (h *LetterHandler) ListActive(ctx *fasthttp.RequestCtx) {
	h.list(ctx, repository.ScopeActive)
}

// @Summary List expired and finished letters
// @Tags letters
// @Router /letters/archive [get]
func (h *LetterHandler) ListArchive(ctx *fasthttp.RequestCtx) {
	h.list(ctx, repository.ScopeArchive)
}

func (h *LetterHandler) list(ctx *fasthttp.RequestCtx, scope repository.LetterScope) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	letters, err := h.uc.List(stdCtx, scope)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, letters)
}

// @Summary Get letter
// @Tags letters
// @Router /letters/{id} [get]
func (h *LetterHandler) Get(ctx *fasthttp.RequestCtx) {
	id, err := transport.ParseID(pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	letter, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, letter)
}

// @Summary Create letter
// @Tags letters
// @Router /letters [post]
func (h *LetterHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.LetterRequest
	if err := transport.Decode(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, req.ToDomain(), actor(stdCtx, req.UserEmail))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, created)
}

// @Summary Replace letter
// @Tags letters
// @Router /letters/{id} [put]
func (h *LetterHandler) Update(ctx *fasthttp.RequestCtx) {
	id, err := transport.ParseID(pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.LetterRequest
	if err := transport.Decode(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, id, req.ToDomain(), actor(stdCtx, req.UserEmail))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Soft delete letter
// @Tags letters
// @Router /letters/{id} [delete]
func (h *LetterHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, err := transport.ParseID(pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	supplied := string(ctx.QueryArgs().Peek("user_email"))
	if err := h.uc.Delete(stdCtx, id, actor(stdCtx, supplied)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int64{"id": id})
}
