// Package app wires configuration, storage and usecases into one container
// shared by the API server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"scholarship-backend/config"
	v1 "scholarship-backend/internal/delivery/http/v1"
	"scholarship-backend/internal/domain"
	"scholarship-backend/internal/repository/postgres"
	"scholarship-backend/internal/scheduler"
	"scholarship-backend/internal/usecase"
	"scholarship-backend/pkg/auth"
	"scholarship-backend/pkg/database"
	"scholarship-backend/pkg/email"
	pkgredis "scholarship-backend/pkg/redis"
	"scholarship-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *pgxpool.Pool
	// Redis is nil when REDIS_URL is not configured.
	Redis *goredis.Client

	Calls         domain.CallRepository
	CallUC        domain.CallUsecase
	ApplicationUC domain.ApplicationUsecase
	RankingUC     domain.RankingUsecase
	LifecycleUC   domain.LifecycleUsecase
	HealthUC      usecase.HealthUsecase
	Verifier      *auth.Verifier
}

// New connects to the database (and Redis when configured) and builds every usecase.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	opts := database.DefaultPoolOptions()
	opts.SimpleProtocol = cfg.DBSimple

	pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, opts)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, DB: pool}

	a.Redis, err = pkgredis.Connect(ctx, pkgredis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case errors.Is(err, pkgredis.ErrNotConfigured):
		logger.Warn("redis not configured, rate limiting uses in-memory counters")
	case err != nil:
		logger.Warn("redis unavailable, rate limiting uses in-memory counters", "error", err)
		a.Redis = nil
	}

	a.wire()
	return a, nil
}

func (a *App) wire() {
	clock := usecase.SystemClock(a.Config.Timezone)
	validate := validation.New()

	// Repositories
	txManager := postgres.NewTxManager(a.DB)
	a.Calls = postgres.NewCallRepository(a.DB)
	appRepo := postgres.NewApplicationRepository(a.DB)
	evalSource := postgres.NewEvaluationSource(a.DB)
	employeeRepo := postgres.NewEmployeeRepository(a.DB)
	studentRepo := postgres.NewStudentRepository(a.DB)
	courseRepo := postgres.NewCourseRepository(a.DB)
	failureRepo := postgres.NewSchedulerFailureRepository(a.DB)

	// Alerts
	var notifier domain.FailureNotifier
	mailer := email.NewEmailService(email.Config{
		Host:     a.Config.SMTPHost,
		Port:     a.Config.SMTPPort,
		Username: a.Config.SMTPUsername,
		Password: a.Config.SMTPPassword,
		From:     a.Config.SMTPFromEmail,
		To:       a.Config.AlertEmailTo,
	})
	if mailer.IsConfigured() {
		notifier = mailer
	} else {
		a.Logger.Warn("SMTP not configured, scheduler failures will not be emailed")
	}

	// UseCases
	a.CallUC = usecase.NewCallUsecase(a.Calls, employeeRepo, appRepo, txManager, validate, clock, a.Logger)
	a.ApplicationUC = usecase.NewApplicationUsecase(appRepo, a.Calls, studentRepo, courseRepo, validate, clock, a.Logger)
	a.RankingUC = usecase.NewRankingUsecase(a.Calls, appRepo, evalSource, txManager, clock, a.Logger)
	a.LifecycleUC = usecase.NewLifecycleUsecase(
		a.Calls,
		a.RankingUC,
		txManager,
		usecase.NewRecoveryHook(failureRepo, notifier, a.Logger),
		clock,
		usecase.RetrySettings{MaxAttempts: a.Config.TransitionMaxAttempt, Delay: a.Config.TransitionRetryDelay},
		a.Logger,
	)

	checks := map[string]usecase.HealthCheck{"database": a.DB.Ping}
	if a.Redis != nil {
		client := a.Redis
		checks["redis"] = func(ctx context.Context) error { return pkgredis.HealthCheck(ctx, client) }
	}
	a.HealthUC = usecase.NewHealthUsecase(checks)

	// Auth
	var jwks *auth.Provider
	if a.Config.JWKSURL != "" {
		jwks = auth.NewProvider(a.Config.JWKSURL)
	}
	a.Verifier = auth.NewVerifier(a.Config.JWTHSSecret, jwks, a.Config.JWTIssuer)
}

func (a *App) Router() *gin.Engine {
	return v1.NewRouter(v1.RouterDeps{
		CallUC:        a.CallUC,
		ApplicationUC: a.ApplicationUC,
		HealthUC:      a.HealthUC,
		Verifier:      a.Verifier,
		Redis:         a.Redis,
		Config:        a.Config,
	})
}

func (a *App) Scheduler() (*scheduler.Trigger, error) {
	return scheduler.NewTrigger(a.LifecycleUC, scheduler.Config{
		Spec:     a.Config.TransitionCron,
		Location: a.Config.Timezone,
	}, a.Logger)
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	a.DB.Close()
}
