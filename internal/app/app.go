package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sturmfeder/guild-portal/internal/battlenet"
	"github.com/sturmfeder/guild-portal/internal/config"
	"github.com/sturmfeder/guild-portal/internal/handler"
	"github.com/sturmfeder/guild-portal/internal/repository"
	"github.com/sturmfeder/guild-portal/internal/service"
	"github.com/sturmfeder/guild-portal/internal/utils"
	"github.com/sturmfeder/guild-portal/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	sessions := utils.NewSessionManager(cfg.Session.Secret, cfg.Session.Expiry.Duration)

	client := battlenet.NewClient(battlenet.Config{
		Region:       cfg.BattleNet.Region,
		ClientID:     cfg.BattleNet.ClientID,
		ClientSecret: cfg.BattleNet.ClientSecret,
		RedirectURL:  cfg.BattleNet.RedirectURI,
		Locale:       cfg.BattleNet.Locale,
	})

	states := service.NewOAuthStateStore(infra.Redis(), cfg.BattleNet.StateTTL.Duration)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	tokens := service.NewTokenLifecycle(repos.Account, client, infra.Logger())

	linkService := service.NewLinkService(
		repos.Account,
		repos.ActivityLog,
		client,
		states,
		sessions,
		cfg.BattleNet.Region,
		infra.Logger(),
	)
	characterService := service.NewCharacterService(
		repos.Account,
		repos.Character,
		repos.Equipment,
		client,
		tokens,
		infra.Logger(),
	)
	activityService := service.NewActivityService(
		repos.Account,
		repos.Character,
		repos.Activity,
		client,
		tokens,
		infra.Logger(),
	)

	authHandler := handler.NewAuthHandler(
		linkService,
		sessions,
		cfg.Session.Secure,
		cfg.BattleNet.LoginURL,
		cfg.BattleNet.DashboardURL,
	)
	characterHandler := handler.NewCharacterHandler(characterService)
	activityHandler := handler.NewActivityHandler(activityService)

	router := gin.Default()
	router.Use(otelgin.Middleware("guild-portal"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, sessions, authHandler, characterHandler, activityHandler, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	sessions *utils.SessionManager,
	authHandler *handler.AuthHandler,
	characterHandler *handler.CharacterHandler,
	activityHandler *handler.ActivityHandler,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	memberAuth := handler.MemberAuthMiddleware(sessions)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.GET("/battlenet",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				authHandler.Login,
			)
			auth.GET("/battlenet/callback",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				authHandler.Callback,
			)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", memberAuth, authHandler.GetMe)
		}

		member := api.Group("/member", memberAuth)
		{
			member.GET("/characters", characterHandler.List)
			member.POST("/characters/sync", characterHandler.Sync)
			member.POST("/characters/:id/refresh", characterHandler.Refresh)
			member.POST("/characters/:id/set-main", characterHandler.SetMain)
			member.GET("/characters/:id/equipment", characterHandler.Equipment)
			member.GET("/characters/:id/weekly-activity", activityHandler.Get)
			member.POST("/characters/:id/weekly-activity", activityHandler.Refresh)
			member.GET("/weekly-overview", activityHandler.Overview)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
