package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/infrastructure/shopapi"
	"github.com/fastygo/storefront/pkg/httpcontext"
	"github.com/fastygo/storefront/repository/memory"
	accountUC "github.com/fastygo/storefront/usecase/account"
	"github.com/fastygo/storefront/usecase/activity"
	authUC "github.com/fastygo/storefront/usecase/auth"
	"github.com/fastygo/storefront/usecase/session"
	shopUC "github.com/fastygo/storefront/usecase/shop"
)

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    struct {
		Fields map[string]string `json:"fields"`
	} `json:"meta"`
}

func newRequest(method, uri, body, profileID string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	ctx.Request.SetBodyString(body)
	if profileID != "" {
		httpcontext.SetProfileID(ctx, profileID)
	}
	return ctx
}

func readEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env), string(ctx.Response.Body()))
	return env
}

func fakeLogin(_ context.Context, email, password string) (domain.User, error) {
	if password != "secret" {
		return nil, domain.FieldError(domain.ErrCodeRejected, "Invalid credentials",
			map[string]string{"email": "Invalid credentials", "password": "Invalid credentials"})
	}
	return domain.User{"id": float64(42), "name": "Asha", "email": email, "role": "user", "shop_id": "31"}, nil
}

type fixture struct {
	kv       *memory.Store
	sessions *session.Factory
	pool     *activity.Pool
	adapter  *httpcontext.Adapter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := memory.NewStore()
	sessions := session.NewFactory(kv, session.Config{})
	pool := activity.NewPool(sessions, activity.PoolConfig{SweepInterval: time.Hour})
	t.Cleanup(func() { _ = pool.Stop(context.Background()) })
	return &fixture{kv: kv, sessions: sessions, pool: pool, adapter: httpcontext.NewAdapter(time.Second)}
}

func (f *fixture) sessionHandler(surface authUC.Surface) *SessionHandler {
	return NewSessionHandler(authUC.New(surface, fakeLogin, nil, nil), f.sessions, f.pool, f.adapter, nil)
}

func TestUserLoginPersistsSessionAndNavigatesHome(t *testing.T) {
	f := newFixture(t)
	h := f.sessionHandler(authUC.UserSurface)

	ctx := newRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"asha@example.com","password":"secret"}`, "p1")
	h.Login(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	env := readEnvelope(t, ctx)
	assert.Equal(t, "success", env.Status)

	var data struct {
		User       domain.User `json:"user"`
		Navigation struct {
			Redirect string `json:"redirect"`
		} `json:"navigation"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Asha", data.User.Name())
	assert.Equal(t, "/index.html", data.Navigation.Redirect)

	assert.True(t, f.sessions.For("p1", domain.NamespaceUser).IsLoggedIn(context.Background()))
	assert.False(t, f.sessions.For("p2", domain.NamespaceUser).IsLoggedIn(context.Background()))
	assert.Equal(t, 1, f.pool.Len())
}

func TestLoginErrors(t *testing.T) {
	f := newFixture(t)
	h := f.sessionHandler(authUC.UserSurface)

	ctx := newRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"asha@example.com","password":"wrong"}`, "p1")
	h.Login(ctx)
	assert.Equal(t, http.StatusUnprocessableEntity, ctx.Response.StatusCode())
	env := readEnvelope(t, ctx)
	assert.Equal(t, "REJECTED", env.Code)
	assert.Equal(t, "Invalid credentials", env.Message)
	assert.Contains(t, env.Meta.Fields, "password")

	ctx = newRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"nope","password":""}`, "p1")
	h.Login(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	env = readEnvelope(t, ctx)
	assert.Equal(t, "INVALID", env.Code)
	assert.Contains(t, env.Meta.Fields, "email")
	assert.Contains(t, env.Meta.Fields, "password")

	ctx = newRequest(http.MethodPost, "/api/v1/auth/login", `{`, "p1")
	h.Login(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = newRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"asha@example.com","password":"secret"}`, "")
	h.Login(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	assert.Zero(t, f.kv.Len())
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	bg := context.Background()

	user := f.sessionHandler(authUC.UserSurface)
	user.Login(newRequest(http.MethodPost, "/", `{"email":"asha@example.com","password":"secret"}`, "p1"))
	ctx := newRequest(http.MethodPost, "/api/v1/auth/logout", "", "p1")
	user.Logout(ctx)

	env := readEnvelope(t, ctx)
	assert.JSONEq(t, `{"reload":true}`, string(env.Data))
	assert.False(t, f.sessions.For("p1", domain.NamespaceUser).IsLoggedIn(bg))
	assert.Zero(t, f.pool.Len())

	admin := f.sessionHandler(authUC.AdminSurface)
	ctx = newRequest(http.MethodPost, "/api/v1/admin/logout", "", "p1")
	admin.Logout(ctx)
	env = readEnvelope(t, ctx)
	assert.JSONEq(t, `{"redirect":"/admin/login.html"}`, string(env.Data))
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	h := f.sessionHandler(authUC.AdminSurface)

	ctx := newRequest(http.MethodGet, "/api/v1/admin/me", "", "p1")
	h.Me(ctx)
	assert.JSONEq(t, `{"logged_in":false}`, string(readEnvelope(t, ctx).Data))

	require.True(t, f.sessions.For("p1", domain.NamespaceAdmin).SaveSession(context.Background(), domain.User{"id": "7", "shop_id": "31"}))
	ctx = newRequest(http.MethodGet, "/api/v1/admin/me", "", "p1")
	h.Me(ctx)
	assert.JSONEq(t, `{"logged_in":true,"user":{"id":"7","shop_id":"31"}}`, string(readEnvelope(t, ctx).Data))
}

func TestMeReportsSweptSession(t *testing.T) {
	ctx := context.Background()
	var elapsed atomic.Int64
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sessions := session.NewFactory(memory.NewStore(), session.Config{
		Now: func() time.Time { return start.Add(time.Duration(elapsed.Load())) },
	})
	gate := authUC.New(authUC.AdminSurface, fakeLogin, nil, nil)
	pool := activity.NewPool(sessions, activity.PoolConfig{
		SweepInterval: time.Hour,
		OnExpired:     func(profileID string, _ domain.Namespace) { gate.Expired(profileID) },
	})
	t.Cleanup(func() { _ = pool.Stop(context.Background()) })
	h := NewSessionHandler(gate, sessions, pool, httpcontext.NewAdapter(time.Second), nil)

	require.True(t, sessions.For("p1", domain.NamespaceAdmin).SaveSession(ctx, domain.User{"id": "7"}))
	tracker := pool.Track(ctx, "p1", domain.NamespaceAdmin)
	require.NotNil(t, tracker)

	elapsed.Store(int64(8 * 24 * time.Hour))
	require.False(t, tracker.Sweep(ctx))
	assert.Zero(t, pool.Len())

	req := newRequest(http.MethodGet, "/api/v1/admin/me", "", "p1")
	h.Me(req)
	assert.JSONEq(t, `{"logged_in":false,"expired":true,"navigation":{"redirect":"/admin/login.html"}}`,
		string(readEnvelope(t, req).Data))

	req = newRequest(http.MethodGet, "/api/v1/admin/me", "", "p1")
	h.Me(req)
	assert.JSONEq(t, `{"logged_in":false}`, string(readEnvelope(t, req).Data), "the notice is shown once")

	gate.Expired("p1")
	req = newRequest(http.MethodPost, "/api/v1/admin/login", `{"email":"asha@example.com","password":"secret"}`, "p1")
	h.Login(req)
	require.Equal(t, http.StatusOK, req.Response.StatusCode())
	_, pending := gate.TakeExpiry("p1")
	assert.False(t, pending, "logging in again discards the notice")
}

func TestActivityTouch(t *testing.T) {
	f := newFixture(t)
	h := NewActivityHandler(f.pool, f.adapter, nil)

	ctx := newRequest(http.MethodPost, "/api/v1/activity", `{"namespace":"user","event":"click"}`, "p1")
	h.Touch(ctx)
	assert.JSONEq(t, `{"tracked":false}`, string(readEnvelope(t, ctx).Data))

	require.True(t, f.sessions.For("p1", domain.NamespaceUser).SaveSession(context.Background(), domain.User{"id": "1"}))
	ctx = newRequest(http.MethodPost, "/api/v1/activity", `{"namespace":"user","event":"click"}`, "p1")
	h.Touch(ctx)
	assert.JSONEq(t, `{"tracked":true}`, string(readEnvelope(t, ctx).Data))

	ctx = newRequest(http.MethodPost, "/api/v1/activity", `{"namespace":"guest","event":"click"}`, "p1")
	h.Touch(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

type stubRemote struct{}

func (stubRemote) Register(context.Context, shopapi.Signup) (string, error) {
	return "OTP sent to your email", nil
}
func (stubRemote) VerifySignupOTP(context.Context, shopapi.Signup, string) (string, error) {
	return "Account created", nil
}
func (stubRemote) ResendOTP(context.Context, string, string, string) (string, error) {
	return "OTP resent", nil
}
func (stubRemote) ForgotPassword(context.Context, string) (string, error) {
	return "", domain.NewError(domain.ErrCodeUnavailable, "Cannot connect to server. Please check your connection.")
}
func (stubRemote) VerifyResetOTP(context.Context, string, string) (string, error) { return "ok", nil }
func (stubRemote) ResetPassword(context.Context, string, string, string) (string, error) {
	return "Password updated", nil
}
func (stubRemote) RegisterAdmin(context.Context, shopapi.AdminSignup) (string, error) {
	return "Shop registered", nil
}

func TestAccountHandler(t *testing.T) {
	h := NewAccountHandler(accountUC.New(stubRemote{}, nil), nil, nil)

	ctx := newRequest(http.MethodPost, "/api/v1/auth/register", `{"name":"A","email":"bad"}`, "")
	h.Register(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	env := readEnvelope(t, ctx)
	assert.Equal(t, "Please fix the errors in the form before submitting.", env.Message)
	assert.Contains(t, env.Meta.Fields, "name")
	assert.Contains(t, env.Meta.Fields, "email")

	ctx = newRequest(http.MethodPost, "/api/v1/auth/resend-otp", `{"email":"asha@example.com"}`, "")
	h.ResendOTP(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "OTP resent", readEnvelope(t, ctx).Message)

	ctx = newRequest(http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"asha@example.com"}`, "")
	h.ForgotPassword(ctx)
	assert.Equal(t, http.StatusBadGateway, ctx.Response.StatusCode())
	assert.Equal(t, "UNAVAILABLE", readEnvelope(t, ctx).Code)
}

type stubCatalog struct {
	deleted string
}

func (s *stubCatalog) Products(context.Context, string) ([]domain.Product, error) {
	return []domain.Product{{ID: "1", Name: "Shawl"}}, nil
}
func (s *stubCatalog) Categories(context.Context, string) ([]domain.Category, error) {
	return []domain.Category{{ID: "1"}, {ID: "2"}}, nil
}
func (s *stubCatalog) Orders(context.Context, string) ([]domain.Order, error) { return nil, nil }
func (s *stubCatalog) Blogs(context.Context) ([]domain.Blog, error)        { return nil, nil }
func (s *stubCatalog) SaveCategory(context.Context, string, shopapi.CategoryInput) (string, error) {
	return "", nil
}
func (s *stubCatalog) SaveProduct(context.Context, string, shopapi.ProductInput) (string, error) {
	return "Product added", nil
}
func (s *stubCatalog) DeleteProduct(_ context.Context, id string) (string, error) {
	s.deleted = id
	return "", nil
}
func (s *stubCatalog) SaveBlog(context.Context, shopapi.BlogInput) (string, error) { return "", nil }

func TestAdminHandlerUsesSessionShop(t *testing.T) {
	f := newFixture(t)
	catalog := &stubCatalog{}
	h := NewAdminHandler(shopUC.New(catalog, nil), f.sessions, f.adapter, nil)

	ctx := newRequest(http.MethodGet, "/api/v1/admin/dashboard", "", "p1")
	h.Dashboard(ctx)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())

	require.True(t, f.sessions.For("p1", domain.NamespaceAdmin).SaveSession(context.Background(), domain.User{"id": "7", "shop_id": "31"}))

	ctx = newRequest(http.MethodGet, "/api/v1/admin/dashboard", "", "p1")
	h.Dashboard(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"shop_id":"31","products":1,"categories":2,"orders":0,"blogs":0}`, string(readEnvelope(t, ctx).Data))

	ctx = newRequest(http.MethodDelete, "/api/v1/admin/products/12", "", "p1")
	ctx.SetUserValue("id", "12")
	h.DeleteProduct(ctx)
	assert.Equal(t, "Product deleted successfully", readEnvelope(t, ctx).Message)
	assert.Equal(t, "12", catalog.deleted)

	ctx = newRequest(http.MethodPost, "/api/v1/admin/products", "", "p1")
	ctx.Request.Header.SetContentType("application/x-www-form-urlencoded")
	ctx.Request.SetBodyString("name=Shawl&price=499")
	h.SaveProduct(ctx)
	assert.Equal(t, "Product added", readEnvelope(t, ctx).Message)
}

func TestAdminWithoutShopID(t *testing.T) {
	f := newFixture(t)
	h := NewAdminHandler(shopUC.New(&stubCatalog{}, nil), f.sessions, f.adapter, nil)
	require.True(t, f.sessions.For("p1", domain.NamespaceAdmin).SaveSession(context.Background(), domain.User{"id": "7"}))

	ctx := newRequest(http.MethodGet, "/api/v1/admin/products", "", "p1")
	h.Products(ctx)
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, domain.ErrShopNotFound.Message, readEnvelope(t, ctx).Message)
}

func TestStorefrontProducts(t *testing.T) {
	h := NewStorefrontHandler(shopUC.New(&stubCatalog{}, nil), nil, nil)

	ctx := newRequest(http.MethodGet, "/api/v1/shop/31/products", "", "")
	ctx.SetUserValue("shopID", "31")
	h.Products(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `[{"id":"1","name":"Shawl","price":""}]`, string(readEnvelope(t, ctx).Data))
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrInvalidPayload, http.StatusBadRequest, "INVALID"},
		{domain.ErrShopNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.NewError(domain.ErrCodeRejected, "Email already exists"), http.StatusUnprocessableEntity, "REJECTED"},
		{domain.NewError(domain.ErrCodeUnavailable, "Request timeout"), http.StatusBadGateway, "UNAVAILABLE"},
		{domain.ErrSessionNotPersisted, http.StatusInternalServerError, "SESSION_NOT_PERSISTED"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := mapError(tc.err)
		assert.Equal(t, tc.status, status, tc.code)
		assert.Equal(t, tc.code, code)
	}
}
