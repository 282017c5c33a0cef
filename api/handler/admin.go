package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/infrastructure/shopapi"
	"github.com/fastygo/storefront/pkg/httpcontext"
	"github.com/fastygo/storefront/usecase/session"
	shopUC "github.com/fastygo/storefront/usecase/shop"
)

// maxImageBytes caps uploaded product and blog images.
const maxImageBytes = 5 << 20

// AdminHandler serves the shop owner dashboard. Every route sits behind the
// admin auth gate; the shop is taken from the admin session.
type AdminHandler struct {
	baseHandler
	uc       *shopUC.UseCase
	sessions *session.Factory
}

func NewAdminHandler(uc *shopUC.UseCase, sessions *session.Factory, adapter *httpcontext.Adapter, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{baseHandler: newBaseHandler(adapter, logger), uc: uc, sessions: sessions}
}

// shopScoped resolves the admin's shop and runs fn with it.
func (h *AdminHandler) shopScoped(ctx *fasthttp.RequestCtx, fn func(stdCtx context.Context, shopID string) (interface{}, string, error)) {
	profileID, ok := h.profile(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	admin := h.sessions.For(profileID, domain.NamespaceAdmin).GetCurrentUser(stdCtx)
	if admin == nil {
		h.respondError(ctx, stdCtx, domain.ErrUnauthorized)
		return
	}

	data, message, err := fn(stdCtx, admin.ShopID())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if message != "" {
		h.respondMessage(ctx, message, data)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, data)
}

// @Summary Dashboard counters
// @Tags admin
// @Router /api/v1/admin/dashboard [get]
func (h *AdminHandler) Dashboard(ctx *fasthttp.RequestCtx) {
	h.shopScoped(ctx, func(c context.Context, shopID string) (interface{}, string, error) {
		summary, err := h.uc.Dashboard(c, shopID)
		return summary, "", err
	})
}

// @Tags admin
// @Router /api/v1/admin/categories [get]
func (h *AdminHandler) Categories(ctx *fasthttp.RequestCtx) {
	h.shopScoped(ctx, func(c context.Context, shopID string) (interface{}, string, error) {
		categories, err := h.uc.Categories(c, shopID)
		return categories, "", err
	})
}

// @Tags admin
// @Router /api/v1/admin/categories [post]
func (h *AdminHandler) SaveCategory(ctx *fasthttp.RequestCtx) {
	in := shopapi.CategoryInput{
		ID:          formValue(ctx, "id"),
		Name:        formValue(ctx, "name"),
		Description: formValue(ctx, "description"),
	}
	h.shopScoped(ctx, func(c context.Context, shopID string) (interface{}, string, error) {
		msg, err := h.uc.SaveCategory(c, shopID, in)
		return nil, orMessage(msg, "Category saved successfully"), err
	})
}

// @Tags admin
// @Router /api/v1/admin/products [get]
func (h *AdminHandler) Products(ctx *fasthttp.RequestCtx) {
	h.shopScoped(ctx, func(c context.Context, shopID string) (interface{}, string, error) {
		products, err := h.uc.Products(c, shopID)
		return products, "", err
	})
}

// @Summary Add a product, or edit it when posted to /products/{id}
// @Tags admin
// @Router /api/v1/admin/products [post]
// @Router /api/v1/admin/products/{id} [post]
func (h *AdminHandler) SaveProduct(ctx *fasthttp.RequestCtx) {
	image, err := formImage(ctx)
	if err != nil {
		h.respondError(ctx, context.Background(), err)
		return
	}
	in := shopapi.ProductInput{
		ID:          pathOrForm(ctx, "id"),
		CategoryID:  formValue(ctx, "category_id"),
		Name:        formValue(ctx, "name"),
		Description: formValue(ctx, "description"),
		Price:       formValue(ctx, "price"),
		Stock:       formValue(ctx, "stock"),
		Image:       image,
	}
	h.shopScoped(ctx, func(c context.Context, shopID string) (interface{}, string, error) {
		msg, err := h.uc.SaveProduct(c, shopID, in)
		return nil, orMessage(msg, "Product saved successfully"), err
	})
}

// @Tags admin
// @Router /api/v1/admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(ctx *fasthttp.RequestCtx) {
	productID, _ := ctx.UserValue("id").(string)
	h.shopScoped(ctx, func(c context.Context, shopID string) (interface{}, string, error) {
		msg, err := h.uc.DeleteProduct(c, shopID, productID)
		return nil, orMessage(msg, "Product deleted successfully"), err
	})
}

// @Tags admin
// @Router /api/v1/admin/orders [get]
func (h *AdminHandler) Orders(ctx *fasthttp.RequestCtx) {
	h.shopScoped(ctx, func(c context.Context, shopID string) (interface{}, string, error) {
		orders, err := h.uc.Orders(c, shopID)
		return orders, "", err
	})
}

// @Tags admin
// @Router /api/v1/admin/blogs [get]
func (h *AdminHandler) Blogs(ctx *fasthttp.RequestCtx) {
	h.shopScoped(ctx, func(c context.Context, _ string) (interface{}, string, error) {
		blogs, err := h.uc.Blogs(c)
		return blogs, "", err
	})
}

// @Tags admin
// @Router /api/v1/admin/blogs [post]
func (h *AdminHandler) SaveBlog(ctx *fasthttp.RequestCtx) {
	image, err := formImage(ctx)
	if err != nil {
		h.respondError(ctx, context.Background(), err)
		return
	}
	in := shopapi.BlogInput{
		ID:      formValue(ctx, "id"),
		Title:   formValue(ctx, "title"),
		Content: formValue(ctx, "content"),
		Author:  formValue(ctx, "author"),
		Image:   image,
	}
	h.shopScoped(ctx, func(c context.Context, _ string) (interface{}, string, error) {
		msg, err := h.uc.SaveBlog(c, in)
		return nil, orMessage(msg, "Blog saved successfully"), err
	})
}

func formValue(ctx *fasthttp.RequestCtx, key string) string {
	return string(ctx.FormValue(key))
}

func pathOrForm(ctx *fasthttp.RequestCtx, key string) string {
	if v, ok := ctx.UserValue(key).(string); ok && v != "" {
		return v
	}
	return formValue(ctx, key)
}

func orMessage(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

// formImage reads the optional "image" upload of a multipart form.
func formImage(ctx *fasthttp.RequestCtx) (*shopapi.File, error) {
	if !ctx.IsPost() || len(ctx.Request.Header.MultipartFormBoundary()) == 0 {
		return nil, nil
	}
	header, err := ctx.FormFile("image")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) {
			return nil, nil
		}
		return nil, domain.WrapError(domain.ErrCodeInvalid, "Could not read the uploaded image", err)
	}
	if header.Size > maxImageBytes {
		return nil, domain.FieldError(domain.ErrCodeInvalid, "Image must be smaller than 5MB", map[string]string{"image": "Image must be smaller than 5MB"})
	}
	f, err := header.Open()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "Could not read the uploaded image", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "Could not read the uploaded image", err)
	}
	return &shopapi.File{Field: "image", Filename: header.Filename, Content: content}, nil
}
