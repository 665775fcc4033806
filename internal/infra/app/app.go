package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/infra/config"
	"github.com/JLCarveth/blog/internal/infra/database"
	kafkainfra "github.com/JLCarveth/blog/internal/infra/kafka"
	"github.com/JLCarveth/blog/internal/infra/logger"
	redisinfra "github.com/JLCarveth/blog/internal/infra/redis"
	"github.com/JLCarveth/blog/internal/infra/security"
	"github.com/JLCarveth/blog/internal/infra/telemetry"
	postgresrepo "github.com/JLCarveth/blog/internal/repository/postgres"
	redisrepo "github.com/JLCarveth/blog/internal/repository/redis"
	"github.com/JLCarveth/blog/internal/transport/http/middleware"
	"github.com/JLCarveth/blog/internal/transport/http/routes"
	"github.com/JLCarveth/blog/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	tokenTTL := cfg.JWT.AccessTokenTTL
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	tokens := security.NewTokenService(cfg.JWT.Secret, cfg.App.Name, tokenTTL)

	lockoutThreshold := cfg.Lockout.Threshold
	if lockoutThreshold <= 0 {
		lockoutThreshold = 5
	}
	lockoutDecay := cfg.Lockout.DecayWindow
	if lockoutDecay <= 0 {
		lockoutDecay = time.Hour
	}
	lockout := security.NewLockoutTracker(lockoutThreshold, lockoutDecay)

	permissionCache := usecase.NewPermissionCache(repos.Roles, log)
	blocklistCache := usecase.NewBlocklistCache(repos.Blocklist, eventPublisher, log)

	authService := usecase.NewAuthService(repos.Accounts, lockout, tokens, eventPublisher, log)
	registrationService := usecase.NewRegistrationService(repos.Accounts, eventPublisher, log)
	roleService := usecase.NewRoleService(repos.Roles, permissionCache, log)
	postService := usecase.NewPostService(repos.Posts, log)

	if err := roleService.SeedDefaults(ctx); err != nil {
		log.Warn("failed to seed default roles", zap.Error(err))
	}
	if err := permissionCache.Refresh(ctx); err != nil {
		log.Warn("failed to warm permission cache", zap.Error(err))
	}
	if err := blocklistCache.Refresh(ctx); err != nil {
		log.Warn("failed to warm blocklist cache", zap.Error(err))
	}

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitStore(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "blog:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Metrics:     metrics,
		RateLimiter: rateLimiter,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Roles:        roleService,
			Posts:        postService,
			Permissions:  permissionCache,
			Blocklist:    blocklistCache,
		},
		Accounts: repos.Accounts,
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.tracer.Shutdown(shutdownCtx)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting blog API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
