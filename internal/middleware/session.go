package middleware

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/httpcontext"
	appLogger "github.com/fastygo/storefront/pkg/logger"
	"github.com/fastygo/storefront/usecase/activity"
	authUC "github.com/fastygo/storefront/usecase/auth"
	"github.com/fastygo/storefront/usecase/session"
)

// RequireSession runs the auth gate before protected handlers. Without a
// valid session the browser is sent to the surface's login page and the
// profile's tracker, if any, is dropped. pool may be nil.
func RequireSession(gate *authUC.UseCase, sessions *session.Factory, pool *activity.Pool, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ns := gate.Surface().Namespace
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			stdCtx, cancel := adapter.Attach(ctx)
			nav := &transport.Navigation{}
			allowed, expired := false, false
			if profileID := httpcontext.ProfileID(ctx); profileID != "" {
				allowed = gate.RequireAuth(stdCtx, sessions.For(profileID, ns), nav)
				if !allowed {
					if pool != nil {
						pool.Forget(profileID, ns)
					}
					_, expired = gate.TakeExpiry(profileID)
				}
			} else {
				nav.Redirect(gate.Surface().LoginPath)
			}
			if !allowed {
				appLogger.WithRequestID(stdCtx, logger).Info("unauthenticated request redirected",
					zap.String("path", string(ctx.Path())), zap.String("namespace", ns.String()),
					zap.Bool("expired", expired))
			}
			cancel()

			if !allowed {
				redirect(ctx, nav, expired)
				return
			}
			next(ctx)
		}
	}
}

// Activity counts every request to a surface as a navigation event.
func Activity(pool *activity.Pool, ns domain.Namespace, adapter *httpcontext.Adapter) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if profileID := httpcontext.ProfileID(ctx); profileID != "" {
				stdCtx, cancel := adapter.Attach(ctx)
				pool.Touch(stdCtx, profileID, ns, activity.EventNavigate)
				cancel()
			}
			next(ctx)
		}
	}
}

func redirect(ctx *fasthttp.RequestCtx, nav *transport.Navigation, expired bool) {
	message := "Please log in to continue."
	if expired {
		message = "Your session expired. Please log in again."
	}
	env := transport.NewError(string(domain.ErrCodeUnauthorized), message, nil)
	env.Data = nav
	body, _ := json.Marshal(env)

	ctx.Response.Header.Set("Location", nav.Target)
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusFound)
	ctx.SetBody(body)
}
