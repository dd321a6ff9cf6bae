package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/sijagad/api/handler"
	"github.com/fastygo/sijagad/internal/infrastructure/monitor"
)

type readyMonitor struct{}

func (readyMonitor) GetStatus() monitor.Status { return monitor.Status{Database: true} }

func serve(h fasthttp.RequestHandler, method, uri string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	h(ctx)
	return ctx
}

func newTestRouter(authCalls *int) fasthttp.RequestHandler {
	auth := func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			*authCalls++
			ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		}
	}
	return New(Handlers{
		Health: apiHandler.NewHealthHandler(readyMonitor{}, "SiJAGAD", nil, nil),
	}, auth, Options{EnableMetrics: true})
}

func TestRouter_RootAndMiddleware(t *testing.T) {
	var authCalls int
	h := newTestRouter(&authCalls)

	ctx := serve(h, fasthttp.MethodGet, "/")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"Ready"`)
	assert.Equal(t, "nosniff", string(ctx.Response.Header.Peek("X-Content-Type-Options")))
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
}

func TestRouter_MutationsRequireAuth(t *testing.T) {
	var authCalls int
	h := newTestRouter(&authCalls)

	for _, tc := range []struct{ method, uri string }{
		{fasthttp.MethodPost, "/letters"},
		{fasthttp.MethodPut, "/letters/1"},
		{fasthttp.MethodDelete, "/letters/1"},
		{fasthttp.MethodPost, "/api/assets/input"},
		{fasthttp.MethodPatch, "/api/assets/abc/update_status"},
		{fasthttp.MethodDelete, "/api/assets/abc"},
	} {
		ctx := serve(h, tc.method, tc.uri)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode(), tc.uri)
	}
	assert.Equal(t, 6, authCalls)
}

func TestRouter_MetricsAndUnknown(t *testing.T) {
	var authCalls int
	h := newTestRouter(&authCalls)

	serve(h, fasthttp.MethodGet, "/")
	metrics := serve(h, fasthttp.MethodGet, "/metrics")
	assert.Equal(t, fasthttp.StatusOK, metrics.Response.StatusCode())
	assert.True(t, strings.Contains(string(metrics.Response.Body()), "sijagad_http_requests_total"))

	missing := serve(h, fasthttp.MethodGet, "/nope")
	assert.Equal(t, fasthttp.StatusNotFound, missing.Response.StatusCode())
}
