package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/pkg/httpcontext"
	shopUC "github.com/fastygo/storefront/usecase/shop"
)

// StorefrontHandler serves public catalogue browsing.
type StorefrontHandler struct {
	baseHandler
	uc *shopUC.UseCase
}

func NewStorefrontHandler(uc *shopUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{baseHandler: newBaseHandler(adapter, logger), uc: uc}
}

// @Summary Products of one shop
// @Tags shop
// @Router /api/v1/shop/{shopID}/products [get]
func (h *StorefrontHandler) Products(ctx *fasthttp.RequestCtx) {
	shopID, _ := ctx.UserValue("shopID").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	products, err := h.uc.StorefrontProducts(stdCtx, shopID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, products)
}
