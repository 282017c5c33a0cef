package handler

import (
	"context"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/internal/infrastructure/shopapi"
	"github.com/fastygo/storefront/pkg/httpcontext"
	accountUC "github.com/fastygo/storefront/usecase/account"
)

// AccountHandler serves signup and password recovery. None of these touch the session.
type AccountHandler struct {
	baseHandler
	uc *accountUC.UseCase
}

func NewAccountHandler(uc *accountUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{baseHandler: newBaseHandler(adapter, logger), uc: uc}
}

func (h *AccountHandler) run(ctx *fasthttp.RequestCtx, call func(context.Context) (string, error)) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	message, err := call(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondMessage(ctx, message, nil)
}

func signupFrom(req transport.SignupRequest) shopapi.Signup {
	return shopapi.Signup{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}
}

// @Summary Start storefront signup
// @Tags account
// @Router /api/v1/auth/register [post]
func (h *AccountHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.SignupRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.run(ctx, func(c context.Context) (string, error) {
		return h.uc.Register(c, signupFrom(req))
	})
}

// @Summary Confirm signup with the mailed code
// @Tags account
// @Router /api/v1/auth/verify-otp [post]
func (h *AccountHandler) VerifyOTP(ctx *fasthttp.RequestCtx) {
	var req transport.SignupRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.run(ctx, func(c context.Context) (string, error) {
		return h.uc.VerifySignupOTP(c, signupFrom(req), req.OTP)
	})
}

// @Summary Re-send a one-time code
// @Tags account
// @Router /api/v1/auth/resend-otp [post]
func (h *AccountHandler) ResendOTP(ctx *fasthttp.RequestCtx) {
	var req transport.ResendOTPRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.run(ctx, func(c context.Context) (string, error) {
		return h.uc.ResendOTP(c, req.Email, req.Name, req.Purpose)
	})
}

// @Summary Request a password reset code
// @Tags account
// @Router /api/v1/auth/forgot-password [post]
func (h *AccountHandler) ForgotPassword(ctx *fasthttp.RequestCtx) {
	var req transport.EmailRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.run(ctx, func(c context.Context) (string, error) {
		return h.uc.ForgotPassword(c, req.Email)
	})
}

// @Tags account
// @Router /api/v1/auth/verify-reset-otp [post]
func (h *AccountHandler) VerifyResetOTP(ctx *fasthttp.RequestCtx) {
	var req transport.OTPRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.run(ctx, func(c context.Context) (string, error) {
		return h.uc.VerifyResetOTP(c, req.Email, req.OTP)
	})
}

// @Tags account
// @Router /api/v1/auth/reset-password [post]
func (h *AccountHandler) ResetPassword(ctx *fasthttp.RequestCtx) {
	var req transport.ResetPasswordRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.run(ctx, func(c context.Context) (string, error) {
		return h.uc.ResetPassword(c, req.Email, req.Password, req.ConfirmPassword)
	})
}

// @Summary Register a shop owner
// @Tags admin
// @Router /api/v1/admin/register [post]
func (h *AccountHandler) RegisterAdmin(ctx *fasthttp.RequestCtx) {
	var req transport.AdminSignupRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.run(ctx, func(c context.Context) (string, error) {
		return h.uc.RegisterAdmin(c, shopapi.AdminSignup{
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: req.Password,
			ShopName: req.ShopName,
		})
	})
}
