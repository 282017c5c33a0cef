package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/pkg/httpcontext"
)

const profileCookieTTL = 365 * 24 * time.Hour

// Profile identifies the browser profile whose storage a request reads and
// writes. A missing or malformed cookie starts a fresh profile.
func Profile(cookieName string, secure bool, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			profileID := string(ctx.Request.Header.Cookie(cookieName))
			if _, err := uuid.Parse(profileID); err != nil {
				if profileID != "" {
					logger.Debug("discarding malformed profile cookie")
				}
				profileID = uuid.NewString()
				setProfileCookie(ctx, cookieName, profileID, secure)
			}
			httpcontext.SetProfileID(ctx, profileID)
			next(ctx)
		}
	}
}

func setProfileCookie(ctx *fasthttp.RequestCtx, name, value string, secure bool) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(name)
	c.SetValue(value)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSecure(secure)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetMaxAge(int(profileCookieTTL / time.Second))
	ctx.Response.Header.SetCookie(c)
}
