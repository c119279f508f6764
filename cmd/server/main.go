package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"splitdine-admin.backend/internal/config"
	"splitdine-admin.backend/internal/domain/entities"
	domainRepos "splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/internal/infrastructure/jobs"
	"splitdine-admin.backend/internal/infrastructure/kvstore"
	"splitdine-admin.backend/internal/infrastructure/messaging"
	"splitdine-admin.backend/internal/infrastructure/repositories"
	"splitdine-admin.backend/internal/interfaces/http/handlers"
	"splitdine-admin.backend/internal/interfaces/http/middleware"
	"splitdine-admin.backend/internal/usecases"
	"splitdine-admin.backend/pkg/jwt"
	"splitdine-admin.backend/pkg/logger"
	"splitdine-admin.backend/pkg/metrics"
	"splitdine-admin.backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(driver, dsn string) (*gorm.DB, error) {
		if driver == config.StoreDriverSQLite {
			return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		}
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newNATSPublisher = func(url, prefix string) (domainRepos.EventPublisher, error) {
		return messaging.NewNATSPublisher(url, prefix)
	}
	runServer  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownCh = func() <-chan os.Signal {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		return quit
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

// openBackend selects the durable store. The returned func releases it.
func openBackend(ctx context.Context, cfg *config.Config) (kvstore.Backend, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		logger.Info(ctx, "Redis initialized")
		return kvstore.NewRedisBackend(redis.GetClient(), cfg.Redis.KeyPrefix), func() { _ = redis.Close() }, nil

	case config.StoreDriverPostgres, config.StoreDriverSQLite:
		dsn := cfg.Database.URL()
		if cfg.Store.Driver == config.StoreDriverSQLite {
			dsn = cfg.SQLite.Path
		}
		db, err := openDB(cfg.Store.Driver, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get generic database object: %w", err)
		}
		backend := kvstore.NewSQLBackend(db)
		if cfg.Store.AutoMigrate {
			if err := backend.Migrate(ctx); err != nil {
				_ = sqlDB.Close()
				return nil, nil, fmt.Errorf("failed to migrate store: %w", err)
			}
		}
		logger.Info(ctx, "SQL store initialized", zap.String("driver", cfg.Store.Driver))
		return backend, func() { _ = sqlDB.Close() }, nil

	default:
		logger.Warn(ctx, "Using in-memory store; data is lost on restart")
		return kvstore.NewMemoryBackend(), func() {}, nil
	}
}

func newPublisher(ctx context.Context, cfg config.NATSConfig) domainRepos.EventPublisher {
	if cfg.URL == "" {
		return messaging.NewLogPublisher()
	}
	pub, err := newNATSPublisher(cfg.URL, cfg.SubjectPrefix)
	if err != nil {
		logger.Warn(ctx, "NATS unavailable, logging lifecycle events instead", zap.Error(err))
		return messaging.NewLogPublisher()
	}
	logger.Info(ctx, "Publishing lifecycle events to NATS", zap.String("url", cfg.URL))
	return pub
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Failed to open store", zap.Error(err))
		return err
	}
	defer closeBackend()
	store := kvstore.New(backend)

	publisher := newPublisher(ctx, cfg.NATS)
	defer publisher.Close()

	m := metrics.New()
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	restaurantRepo := repositories.NewRestaurantRepository(store)
	onboardingRepo := repositories.NewOnboardingRepository(store)
	userRepo := repositories.NewUserRepository(store)
	staffDirectory := repositories.NewStaffDirectory(userRepo, cfg.Security.BcryptCost)

	authUsecase := usecases.NewAuthUsecase(usecases.Operator{
		Email:        cfg.Admin.Email,
		PasswordHash: cfg.Admin.PasswordHash,
	}, jwtService)
	restaurantUsecase := usecases.NewRestaurantUsecase(restaurantRepo, onboardingRepo, store, publisher, m)
	onboardingUsecase := usecases.NewOnboardingUsecase(
		restaurantUsecase,
		onboardingRepo,
		userRepo,
		staffDirectory,
		store,
		publisher,
		m,
		usecases.OnboardingOptions{
			Policy:            entities.ParseCompletionPolicy(cfg.Onboarding.CompletionPolicy),
			MinPasswordLength: cfg.Onboarding.MinPasswordLength,
		},
	)
	logger.Info(ctx, "Onboarding engine ready", zap.String("completion_policy", string(onboardingUsecase.Policy())))

	poller := jobs.NewPOSStatusPoller(restaurantRepo, onboardingRepo, cfg.Onboarding.POSPollInterval)
	go poller.Start(ctx)
	defer poller.Stop()

	deps := routeDeps{
		authHandler:       handlers.NewAuthHandler(authUsecase),
		restaurantHandler: handlers.NewRestaurantHandler(restaurantUsecase, authUsecase),
		onboardingHandler: handlers.NewOnboardingHandler(onboardingUsecase, poller),
		authMiddleware:    middleware.AuthMiddleware(jwtService),
	}
	if cfg.Store.Driver == config.StoreDriverRedis {
		deps.idempotency = middleware.IdempotencyMiddleware(cfg.Redis.KeyPrefix)
	}
	r := newRouter(cfg, m, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		select {
		case <-shutdownCh():
		case <-ctx.Done():
			return
		}
		logger.Info(ctx, "Shutting down server")
		poller.Stop()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "SplitDine admin backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
	)
	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
