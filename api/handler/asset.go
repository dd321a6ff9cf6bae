package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/api/transport"
	"github.com/fastygo/sijagad/pkg/httpcontext"
	"github.com/fastygo/sijagad/pkg/logger"
	assetUC "github.com/fastygo/sijagad/usecase/asset"
)

type AssetHandler struct {
	baseHandler
	uc *assetUC.UseCase
}

func NewAssetHandler(uc *assetUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register an ATTB asset
// @Tags assets
// @Router /api/assets/input [post]
func (h *AssetHandler) Create(ctx *fasthttp.RequestCtx) {
	var in transport.AssetInput
	if err := transport.Decode(ctx.PostBody(), &in); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	asset := in.ToDomain()
	if asset.InputBy == "" {
		asset.InputBy = logger.ActorFromContext(stdCtx)
	}

	created, err := h.uc.Create(stdCtx, asset)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary List assets
// @Tags assets
// @Router /api/assets/list [get]
func (h *AssetHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	assets, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, assets)
}

// @Summary Move an asset to another workflow step
// @Tags assets
// @Router /api/assets/{id}/update_status [patch]
func (h *AssetHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	var req transport.AssetStatusUpdate
	if err := transport.Decode(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateStatus(stdCtx, pathParam(ctx, "id"), req.CurrentStep, req.StatusText, actor(stdCtx, req.UserEmail))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(updated, transport.Message{Message: "Status updated"}))
}

// @Summary Edit asset details
// @Tags assets
// @Router /api/assets/{id}/update_details [patch]
func (h *AssetHandler) UpdateDetails(ctx *fasthttp.RequestCtx) {
	var req transport.AssetDetailUpdate
	if err := transport.Decode(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, changed, err := h.uc.UpdateDetails(stdCtx, pathParam(ctx, "id"), req.AssetPatch, actor(stdCtx, req.UserEmail))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if !changed {
		h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(nil, transport.Message{Message: assetUC.NothingChanged}))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete asset
// @Tags assets
// @Router /api/assets/{id} [delete]
func (h *AssetHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	supplied := string(ctx.QueryArgs().Peek("user_email"))
	if err := h.uc.Delete(stdCtx, pathParam(ctx, "id"), actor(stdCtx, supplied)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(nil, transport.Message{Message: "Aset berhasil dihapus / sudah tidak ada"}))
}

// @Summary Asset history
// @Tags assets
// @Router /api/assets/{id}/logs [get]
func (h *AssetHandler) Logs(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.uc.Logs(stdCtx, pathParam(ctx, "id")))
}
