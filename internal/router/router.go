package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/storefront/api/handler"
)

type Handlers struct {
	UserSession  *apiHandler.SessionHandler
	AdminSession *apiHandler.SessionHandler
	Account      *apiHandler.AccountHandler
	Admin        *apiHandler.AdminHandler
	Storefront   *apiHandler.StorefrontHandler
	Activity     *apiHandler.ActivityHandler
	Health       *apiHandler.HealthHandler
	// Metrics is optional.
	Metrics fasthttp.RequestHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

type Middlewares struct {
	UserActivity  Middleware
	AdminActivity Middleware
	AdminAuth     Middleware
}

func New(handlers Handlers, mw Middlewares) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}

	r.POST("/api/v1/activity", handlers.Activity.Touch)

	// Storefront customers
	user := mw.UserActivity
	r.POST("/api/v1/auth/login", handlers.UserSession.Login)
	r.POST("/api/v1/auth/logout", handlers.UserSession.Logout)
	r.GET("/api/v1/auth/me", user(handlers.UserSession.Me))
	r.POST("/api/v1/auth/register", handlers.Account.Register)
	r.POST("/api/v1/auth/verify-otp", handlers.Account.VerifyOTP)
	r.POST("/api/v1/auth/resend-otp", handlers.Account.ResendOTP)
	r.POST("/api/v1/auth/forgot-password", handlers.Account.ForgotPassword)
	r.POST("/api/v1/auth/verify-reset-otp", handlers.Account.VerifyResetOTP)
	r.POST("/api/v1/auth/reset-password", handlers.Account.ResetPassword)
	r.GET("/api/v1/shop/{shopID}/products", user(handlers.Storefront.Products))

	// Shop owners
	r.POST("/api/v1/admin/login", handlers.AdminSession.Login)
	r.POST("/api/v1/admin/logout", handlers.AdminSession.Logout)
	r.POST("/api/v1/admin/register", handlers.Account.RegisterAdmin)

	admin := func(h fasthttp.RequestHandler) fasthttp.RequestHandler { return mw.AdminAuth(mw.AdminActivity(h)) }
	r.GET("/api/v1/admin/me", admin(handlers.AdminSession.Me))
	r.GET("/api/v1/admin/dashboard", admin(handlers.Admin.Dashboard))
	r.GET("/api/v1/admin/categories", admin(handlers.Admin.Categories))
	r.POST("/api/v1/admin/categories", admin(handlers.Admin.SaveCategory))
	r.GET("/api/v1/admin/products", admin(handlers.Admin.Products))
	r.POST("/api/v1/admin/products", admin(handlers.Admin.SaveProduct))
	r.POST("/api/v1/admin/products/{id}", admin(handlers.Admin.SaveProduct))
	r.DELETE("/api/v1/admin/products/{id}", admin(handlers.Admin.DeleteProduct))
	r.GET("/api/v1/admin/orders", admin(handlers.Admin.Orders))
	r.GET("/api/v1/admin/blogs", admin(handlers.Admin.Blogs))
	r.POST("/api/v1/admin/blogs", admin(handlers.Admin.SaveBlog))

	return r
}
