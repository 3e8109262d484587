package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ergosit/posture-auth/internal/config"
	"github.com/ergosit/posture-auth/internal/handler"
	"github.com/ergosit/posture-auth/internal/notification"
	"github.com/ergosit/posture-auth/internal/repository"
	"github.com/ergosit/posture-auth/internal/repository/memory"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/ergosit/posture-auth/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	repos  *repository.Repositories
	mailer *notification.SMTPMailer
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	logger := infra.Logger()

	var repos *repository.Repositories
	if infra.Postgres() != nil {
		repos = repository.NewRepositories(infra.Postgres())
	} else {
		repos = memory.NewRepositories()
	}

	var rateLimiter service.RateLimiter
	if infra.Redis() != nil {
		rateLimiter = service.NewRedisRateLimiter(infra.Redis())
	} else {
		rateLimiter = service.NewLocalRateLimiter()
	}

	var meter metric.Meter = noop.NewMeterProvider().Meter(serviceName)
	if mp := infra.MeterProvider(); mp != nil {
		meter = mp.Meter(serviceName)
	}
	metrics, err := service.NewMetrics(meter)
	if err != nil {
		return nil, err
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenExpiry.Duration)
	tokens := service.NewTokenService(repos.User, jwtManager)
	hasher := utils.NewPasswordHasher(cfg.Security.BCryptCost)
	otp := service.NewOTPService(repos.User, cfg.OTP.TTL.Duration, metrics)
	loginLogs := service.NewLoginLogService(repos.LoginLog, metrics)

	var mailer service.Mailer = notification.NewLogMailer(logger)
	var smtpMailer *notification.SMTPMailer
	if cfg.SMTP.MailEnabled() {
		smtpMailer = notification.NewSMTPMailer(cfg.SMTP, cfg.OTP.TTL.Duration, logger)
		mailer = smtpMailer
	}

	authService := service.NewAuthService(service.AuthServiceConfig{
		Users:         repos.User,
		Tokens:        tokens,
		Hasher:        hasher,
		OTP:           otp,
		LoginLogs:     loginLogs,
		Verifier:      utils.NewGoogleVerifier(cfg.Google.GoogleAudiences()),
		Mailer:        mailer,
		Logger:        logger,
		BaseURL:       cfg.Server.BaseURL,
		VerifyTimeout: cfg.Google.VerifyTimeout.Duration,
	})
	accountService := service.NewAccountService(repos.User, repos.Detection, hasher, logger)
	detectionService := service.NewDetectionService(repos.User, repos.Detection)

	cookieStore := handler.NewCookieStore(cfg.Session)
	sessions := handler.NewSessionManager(cookieStore, cfg.Session.Name)
	gate := service.NewGate(tokens, cfg.Security.APIKey, metrics)

	if cfg.Google.RedirectFlowEnabled() {
		gothic.Store = cookieStore
		goth.UseProviders(google.New(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL, "email", "profile"))
	}

	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	h := handlers{
		auth:      handler.NewAuthHandler(authService, accountService, logger),
		oauth:     handler.NewOAuthHandler(authService, logger),
		user:      handler.NewUserHandler(accountService, loginLogs, logger),
		detection: handler.NewDetectionHandler(detectionService, logger),
		admin:     handler.NewAdminHandler(authService, accountService, loginLogs, sessions, logger),
		authn:     handler.NewAuthenticator(gate, sessions, logger),
		health:    NewHealthChecker(infra),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	limit := handler.RateLimitMiddleware(
		rateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
		logger,
	)
	setupRoutes(router, h, limit, cfg.Google.RedirectFlowEnabled(), infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		repos:  repos,
		mailer: smtpMailer,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
			zap.String("storage", a.config.Storage.Driver),
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

	// no new mail once the server has stopped taking requests
	go func() {
		errs <- errors.Join(a.server.Shutdown(ctx), a.mailer.Close(ctx))
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
