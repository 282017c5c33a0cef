package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/httpcontext"
	"github.com/fastygo/storefront/usecase/activity"
	authUC "github.com/fastygo/storefront/usecase/auth"
	"github.com/fastygo/storefront/usecase/session"
)

// SessionHandler exposes login, logout and the current user for one surface.
type SessionHandler struct {
	baseHandler
	gate     *authUC.UseCase
	sessions *session.Factory
	pool     *activity.Pool
}

func NewSessionHandler(gate *authUC.UseCase, sessions *session.Factory, pool *activity.Pool, adapter *httpcontext.Adapter, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		gate:        gate,
		sessions:    sessions,
		pool:        pool,
	}
}

type loginResponse struct {
	User       domain.User           `json:"user"`
	Navigation *transport.Navigation `json:"navigation"`
}

type meResponse struct {
	LoggedIn   bool                  `json:"logged_in"`
	User       domain.User           `json:"user,omitempty"`
	Expired    bool                  `json:"expired,omitempty"`
	Navigation *transport.Navigation `json:"navigation,omitempty"`
}

func (h *SessionHandler) namespace() domain.Namespace {
	return h.gate.Surface().Namespace
}

// @Summary Log in and persist the session for this browser profile
// @Tags auth
// @Router /api/v1/auth/login [post]
// @Router /api/v1/admin/login [post]
func (h *SessionHandler) Login(ctx *fasthttp.RequestCtx) {
	profileID, ok := h.profile(ctx)
	if !ok {
		return
	}
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	nav := &transport.Navigation{}
	creds := authUC.Credentials{Email: req.Email, Password: req.Password}
	user, err := h.gate.Login(stdCtx, h.sessions.For(profileID, h.namespace()), nav, creds)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.gate.TakeExpiry(profileID)
	if h.pool != nil {
		h.pool.Track(stdCtx, profileID, h.namespace())
	}
	h.respondMessage(ctx, "Login successful! Redirecting...", loginResponse{User: user, Navigation: nav})
}

// @Summary Clear the session
// @Tags auth
// @Router /api/v1/auth/logout [post]
// @Router /api/v1/admin/logout [post]
func (h *SessionHandler) Logout(ctx *fasthttp.RequestCtx) {
	profileID, ok := h.profile(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if h.pool != nil {
		h.pool.Forget(profileID, h.namespace())
	}
	nav := &transport.Navigation{}
	h.gate.Logout(stdCtx, h.sessions.For(profileID, h.namespace()), nav)
	h.respondMessage(ctx, "Logged out successfully", nav)
}

// @Summary Current user, if any
// @Description Also reports, once, a session the inactivity sweep expired.
// @Tags auth
// @Router /api/v1/auth/me [get]
// @Router /api/v1/admin/me [get]
func (h *SessionHandler) Me(ctx *fasthttp.RequestCtx) {
	profileID, ok := h.profile(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user := h.gate.CurrentUser(stdCtx, h.sessions.For(profileID, h.namespace()))
	resp := meResponse{LoggedIn: user != nil, User: user}
	if target, expired := h.gate.TakeExpiry(profileID); expired && user == nil {
		resp.Expired = true
		if target != "" {
			resp.Navigation = &transport.Navigation{}
			resp.Navigation.Redirect(target)
		}
	}
	h.respondSuccess(ctx, http.StatusOK, resp)
}

func (h baseHandler) profile(ctx *fasthttp.RequestCtx) (string, bool) {
	profileID := httpcontext.ProfileID(ctx)
	if profileID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing browser profile", nil))
		return "", false
	}
	return profileID, true
}
