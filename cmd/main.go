package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
	"github.com/KasumiMercury/primind-expense-assistant/internal/config"
	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/export"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/handler"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/pendingstore"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/repository"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/logging"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/metrics"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/middleware"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	if err := cfg.PubSub.Validate(); err != nil {
		slog.Error("pubsub configuration error", "error", err)
		return 1
	}

	ctx := context.Background()

	obs, err := initObservability(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize observability", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shutdown observability", "error", err)
		}
	}()

	db, err := initDatabase(cfg.Database, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		return 1
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get underlying sql.DB", "error", err)
		return 1
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database connection", "error", err)
		}
	}()

	if err := repository.AutoMigrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		return 1
	}

	publisher, err := initPublisher(ctx, cfg)
	if err != nil {
		slog.Error("failed to create publisher", "error", err)
		return 1
	}

	var dispatcher app.NotificationDispatcher = pubsub.NewLogDispatcher()
	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				slog.Warn("failed to close publisher", "error", err)
			}
		}()

		dispatcher = pubsub.NewDispatcher(publisher)
	}

	store, closeStore, err := initPendingStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize pending action store", "error", err)
		return 1
	}
	defer closeStore()

	recorder, err := metrics.NewRecorder(obs.Meter("expense-assistant"))
	if err != nil {
		slog.Error("failed to create metrics recorder", "error", err)
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics(obs.Meter("expense-assistant/http"))
	if err != nil {
		slog.Error("failed to create http metrics", "error", err)
		return 1
	}

	clock := clockwork.NewRealClock()
	loc := cfg.App.Location

	expenseRepo := repository.NewExpenseRepository(db)
	scheduleRepo := repository.NewReminderScheduleRepository(db)

	csvExporter := export.NewCSVExporter(loc)

	expenseUseCase := app.NewExpenseUseCase(expenseRepo, csvExporter, clock, loc)
	resets := app.NewConfirmationStateMachine(
		store,
		expenseRepo,
		export.NewDeliveringExporter(csvExporter, dispatcher),
		clock,
		cfg.Confirmation.ProcessingTTL,
		recorder,
	)

	scheduler := app.NewReminderScheduler(scheduleRepo, expenseRepo, dispatcher, clock, loc, recorder)
	defer scheduler.Close()

	restored, err := scheduler.RestoreAll(ctx)
	if err != nil {
		slog.Error("failed to restore reminders", "error", err)
		return 1
	}
	slog.Info("reminders restored", "count", restored)

	if err := handler.RegisterValidators(); err != nil {
		slog.Error("failed to register validators", "error", err)
		return 1
	}

	chatHandler := handler.NewChatHandler(expenseUseCase, resets, scheduler, dispatcher)
	defer chatHandler.Wait()

	router := setupRouter(chatHandler, httpMetrics)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", cfg.Server.Address(), "version", Version)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", "error", err)
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", "error", err)
		return 1
	}
}

func initDatabase(cfg config.DatabaseConfig, level slog.Level) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logging.NewGormLogger(cfg.SlowQueryThreshold, level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// initPendingStore uses Redis when REDIS_URL is set, so several instances
// share one confirmation state per user.
func initPendingStore(ctx context.Context, cfg *config.Config) (domain.PendingActionStore, func(), error) {
	if cfg.Redis.URL == "" {
		slog.Warn("REDIS_URL not set, pending actions are kept in memory")

		return pendingstore.NewMemoryStore(clockwork.NewRealClock(), cfg.Confirmation.TTL), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, nil, err
	}

	slog.Info("redis pending action store initialized", "addr", opts.Addr)

	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}

	return pendingstore.NewRedisStore(client, cfg.Confirmation.TTL, cfg.Confirmation.ProcessingTTL), closeFn, nil
}

func setupRouter(chatHandler *handler.ChatHandler, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	router := gin.New()

	router.Use(middleware.PanicRecoveryGin())
	router.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/ping"},
		Module:      logging.Module("chat"),
		TracerName:  "expense-assistant/http",
		HTTPMetrics: httpMetrics,
	}))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	v1 := router.Group("/api/v1")
	chatHandler.RegisterRoutes(v1)

	return router
}
