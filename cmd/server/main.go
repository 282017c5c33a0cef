package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/storefront/api/handler"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/config"
	"github.com/fastygo/storefront/internal/infrastructure/monitor"
	"github.com/fastygo/storefront/internal/infrastructure/shopapi"
	"github.com/fastygo/storefront/internal/metrics"
	"github.com/fastygo/storefront/internal/middleware"
	"github.com/fastygo/storefront/internal/router"
	"github.com/fastygo/storefront/internal/services/lifecycle"
	"github.com/fastygo/storefront/pkg/httpcontext"
	"github.com/fastygo/storefront/pkg/logger"
	accountUC "github.com/fastygo/storefront/usecase/account"
	"github.com/fastygo/storefront/usecase/activity"
	authUC "github.com/fastygo/storefront/usecase/auth"
	"github.com/fastygo/storefront/usecase/session"
	shopUC "github.com/fastygo/storefront/usecase/shop"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	kv, err := openStorage(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("profile storage unavailable", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	recorder := metrics.New()

	shopClient := shopapi.New(shopapi.Config{
		AuthBaseURL:  cfg.ShopAPI.AuthBaseURL,
		AdminBaseURL: cfg.ShopAPI.AdminBaseURL,
		ShopBaseURL:  cfg.ShopAPI.ShopBaseURL,
		Timeout:      cfg.ShopAPI.Timeout,
		UserAgent:    cfg.AppName,
	}, zapLogger, recorder)

	mon := monitor.New(kv, cfg.Storage.Driver, shopClient, cfg.Context.MonitorInterval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	sessions := session.NewFactory(kv, session.Config{
		Duration: cfg.Session.Duration,
		Logger:   zapLogger,
		Observer: recorder,
	})

	userGate := authUC.New(authUC.UserSurface, shopClient.LoginUser, recorder, zapLogger)
	adminGate := authUC.New(authUC.AdminSurface, shopClient.LoginAdmin, recorder, zapLogger)
	gates := map[domain.Namespace]*authUC.UseCase{
		domain.NamespaceUser:  userGate,
		domain.NamespaceAdmin: adminGate,
	}

	pool := activity.NewPool(sessions, activity.PoolConfig{
		SweepInterval: cfg.Session.SweepInterval,
		Logger:        zapLogger,
		OnExpired: func(profileID string, ns domain.Namespace) {
			target := gates[ns].Expired(profileID)
			zapLogger.Debug("expiry notice recorded",
				zap.String("profile_id", profileID), zap.String("namespace", ns.String()),
				zap.String("target", target))
		},
	})
	manager.Register("activity", pool.Stop)

	accountUseCase := accountUC.New(shopClient, zapLogger)
	shopUseCase := shopUC.New(shopClient, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		UserSession:  apiHandler.NewSessionHandler(userGate, sessions, pool, ctxAdapter, zapLogger),
		AdminSession: apiHandler.NewSessionHandler(adminGate, sessions, pool, ctxAdapter, zapLogger),
		Account:      apiHandler.NewAccountHandler(accountUseCase, ctxAdapter, zapLogger),
		Admin:        apiHandler.NewAdminHandler(shopUseCase, sessions, ctxAdapter, zapLogger),
		Storefront:   apiHandler.NewStorefrontHandler(shopUseCase, ctxAdapter, zapLogger),
		Activity:     apiHandler.NewActivityHandler(pool, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = recorder.Handler()
	}

	r := router.New(handlers, router.Middlewares{
		UserActivity:  middleware.Activity(pool, domain.NamespaceUser, ctxAdapter),
		AdminActivity: middleware.Activity(pool, domain.NamespaceAdmin, ctxAdapter),
		AdminAuth:     middleware.RequireSession(adminGate, sessions, pool, ctxAdapter, zapLogger),
	})
	withProfile := middleware.Profile(cfg.Session.ProfileCookie, cfg.Session.CookieSecure, zapLogger)

	server := &fasthttp.Server{
		Handler:      withProfile(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.Duration("session_duration", cfg.Session.Duration),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
