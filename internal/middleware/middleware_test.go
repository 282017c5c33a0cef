package middleware

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/httpcontext"
	"github.com/fastygo/storefront/repository/memory"
	"github.com/fastygo/storefront/usecase/activity"
	authUC "github.com/fastygo/storefront/usecase/auth"
	"github.com/fastygo/storefront/usecase/session"
)

func recordProfile(seen *string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		*seen = httpcontext.ProfileID(ctx)
	}
}

func TestProfileIssuesCookie(t *testing.T) {
	var seen string
	var ctx fasthttp.RequestCtx
	Profile("sf_profile", true, nil)(recordProfile(&seen))(&ctx)

	_, err := uuid.Parse(seen)
	require.NoError(t, err)

	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey("sf_profile")
	require.True(t, ctx.Response.Header.Cookie(cookie))
	assert.Equal(t, seen, string(cookie.Value()))
	assert.True(t, cookie.HTTPOnly())
	assert.True(t, cookie.Secure())
}

func TestProfileKeepsValidCookie(t *testing.T) {
	id := uuid.NewString()
	var seen string
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetCookie("sf_profile", id)
	Profile("sf_profile", false, nil)(recordProfile(&seen))(&ctx)

	assert.Equal(t, id, seen)
	assert.Empty(t, ctx.Response.Header.PeekCookie("sf_profile"))
}

func TestProfileReplacesMalformedCookie(t *testing.T) {
	var seen string
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetCookie("sf_profile", "../../etc")
	Profile("sf_profile", false, nil)(recordProfile(&seen))(&ctx)

	assert.NotEqual(t, "../../etc", seen)
	assert.NotEmpty(t, ctx.Response.Header.PeekCookie("sf_profile"))
}

func newGate(t *testing.T) (*authUC.UseCase, *session.Factory, *memory.Store) {
	t.Helper()
	kv := memory.NewStore()
	sessions := session.NewFactory(kv, session.Config{})
	login := func(context.Context, string, string) (domain.User, error) { return nil, nil }
	return authUC.New(authUC.AdminSurface, login, nil, nil), sessions, kv
}

func TestRequireSessionRedirects(t *testing.T) {
	gate, sessions, kv := newGate(t)
	called := false
	handler := RequireSession(gate, sessions, nil, httpcontext.NewAdapter(time.Second), nil)(func(*fasthttp.RequestCtx) { called = true })

	var ctx fasthttp.RequestCtx
	httpcontext.SetProfileID(&ctx, "p1")
	handler(&ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	assert.Equal(t, "/admin/login.html", string(ctx.Response.Header.Peek("Location")))
	var env struct {
		Code string `json:"code"`
		Data struct {
			Redirect string `json:"redirect"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	assert.Equal(t, "UNAUTHORIZED", env.Code)
	assert.Equal(t, "/admin/login.html", env.Data.Redirect)
	assert.Zero(t, kv.Len())

	var anonymous fasthttp.RequestCtx
	handler(&anonymous)
	assert.Equal(t, fasthttp.StatusFound, anonymous.Response.StatusCode())
}

func TestRequireSessionPassesValidSession(t *testing.T) {
	gate, sessions, _ := newGate(t)
	require.True(t, sessions.For("p1", domain.NamespaceAdmin).SaveSession(context.Background(), domain.User{"id": "7"}))

	called := false
	handler := RequireSession(gate, sessions, nil, httpcontext.NewAdapter(time.Second), nil)(func(*fasthttp.RequestCtx) { called = true })

	var ctx fasthttp.RequestCtx
	httpcontext.SetProfileID(&ctx, "p1")
	handler(&ctx)
	assert.True(t, called)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestRequireSessionDropsTrackerOfInvalidSession(t *testing.T) {
	ctx := context.Background()
	gate, sessions, kv := newGate(t)
	pool := activity.NewPool(sessions, activity.PoolConfig{SweepInterval: time.Hour})
	t.Cleanup(func() { _ = pool.Stop(context.Background()) })

	store := sessions.For("p1", domain.NamespaceAdmin)
	require.True(t, store.SaveSession(ctx, domain.User{"id": "7"}))
	require.NotNil(t, pool.Track(ctx, "p1", domain.NamespaceAdmin))
	require.NoError(t, kv.Set(ctx, "profile:p1:admin_session", "{broken"))
	gate.Expired("p1")

	handler := RequireSession(gate, sessions, pool, httpcontext.NewAdapter(time.Second), nil)(func(*fasthttp.RequestCtx) {
		t.Fatal("protected handler must not run")
	})
	var req fasthttp.RequestCtx
	httpcontext.SetProfileID(&req, "p1")
	handler(&req)

	assert.Equal(t, fasthttp.StatusFound, req.Response.StatusCode())
	assert.Zero(t, pool.Len())
	assert.Zero(t, pool.Scheduled())
	assert.Zero(t, kv.Len())

	var env struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(req.Response.Body(), &env))
	assert.Equal(t, "Your session expired. Please log in again.", env.Message)
	_, pending := gate.TakeExpiry("p1")
	assert.False(t, pending)
}

func TestActivityTracksLiveSessions(t *testing.T) {
	_, sessions, _ := newGate(t)
	pool := activity.NewPool(sessions, activity.PoolConfig{SweepInterval: time.Hour})
	t.Cleanup(func() { _ = pool.Stop(context.Background()) })
	require.True(t, sessions.For("p1", domain.NamespaceUser).SaveSession(context.Background(), domain.User{"id": "1"}))

	calls := 0
	handler := Activity(pool, domain.NamespaceUser, httpcontext.NewAdapter(time.Second))(func(*fasthttp.RequestCtx) { calls++ })

	var ctx fasthttp.RequestCtx
	httpcontext.SetProfileID(&ctx, "p1")
	handler(&ctx)
	var anonymous fasthttp.RequestCtx
	handler(&anonymous)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, pool.Len())
}
