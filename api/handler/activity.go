package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/httpcontext"
	"github.com/fastygo/storefront/usecase/activity"
)

// ActivityHandler receives interaction beacons from the browser.
type ActivityHandler struct {
	baseHandler
	pool *activity.Pool
}

func NewActivityHandler(pool *activity.Pool, adapter *httpcontext.Adapter, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{baseHandler: newBaseHandler(adapter, logger), pool: pool}
}

// @Summary Record a user interaction
// @Tags activity
// @Router /api/v1/activity [post]
func (h *ActivityHandler) Touch(ctx *fasthttp.RequestCtx) {
	profileID, ok := h.profile(ctx)
	if !ok {
		return
	}
	var req transport.ActivityRequest
	if !h.decode(ctx, &req) {
		return
	}
	ns := domain.Namespace(req.Namespace)
	event := activity.Event(req.Event)
	if !ns.Valid() || !event.Known() {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "unknown namespace or event", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tracked := h.pool.Touch(stdCtx, profileID, ns, event)
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"tracked": tracked})
}
