package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/teolgogo/quote-engine/internal/config"
	"github.com/teolgogo/quote-engine/internal/events"
	"github.com/teolgogo/quote-engine/internal/notification"
	"github.com/teolgogo/quote-engine/internal/payment"
	"github.com/teolgogo/quote-engine/internal/platform/rabbitmq"
	"github.com/teolgogo/quote-engine/internal/platform/toss"
	"github.com/teolgogo/quote-engine/internal/service"
	"github.com/teolgogo/quote-engine/internal/service/auth"
	"github.com/teolgogo/quote-engine/internal/task"
)

// notificationMaxAttempts bounds delivery retries for one notification.
const notificationMaxAttempts = 3

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when running on the memory driver.
	db      *sql.DB
	storage storage
	redis   *redis.Client

	jwtService auth.JWTService
	gateway    payment.Gateway

	userService    service.UserService
	quoteService   service.QuoteService
	paymentService service.PaymentService
	reviewService  service.ReviewService
	statsService   service.StatsService

	eventEmitter *events.InMemoryEventEmitter
	taskQueue    *task.TaskQueue
	workerPool   *task.WorkerPool
	sink         notification.Sink
}

// newApplication creates a new application instance with all dependencies
// initialized. The notification worker pool is started before it returns.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.storage, app.db, err = setupStorage(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.gateway, err = newPaymentGateway(cfg.Payment, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize payment gateway: %w", err)
	}
	logger.Info("Payment gateway initialized", "provider", app.gateway.Name())

	if cfg.Redis.Enabled {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("Redis rate limiting enabled", "addr", cfg.Redis.Addr)
	}

	app.setupNotifications()

	stores := app.storage.Stores()
	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)

	app.userService = service.NewUserService(app.storage, stores.Users, hasher, logger)
	app.quoteService = service.NewQuoteService(app.storage, stores, app.eventEmitter, cfg.Geo.DefaultRadiusKm, logger)
	app.paymentService = service.NewPaymentService(
		app.storage,
		stores,
		app.gateway,
		app.eventEmitter,
		cfg.Payment.OrderIDPrefix,
		logger,
	)
	app.reviewService = service.NewReviewService(app.storage, stores, app.eventEmitter, logger)
	app.statsService = service.NewStatsService(stores, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupNotifications wires lifecycle events to the delivery worker pool.
func (app *application) setupNotifications() {
	cfg := app.config.Notification

	switch cfg.Sink {
	case "rabbitmq":
		app.sink = rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.QueueName, nil, app.logger)
	default:
		app.sink = notification.NewLogSink(app.logger)
	}

	app.taskQueue = task.NewTaskQueue(cfg.QueueSize, app.logger)

	poolCfg := task.DefaultWorkerPoolConfig()
	poolCfg.WorkerCount = cfg.WorkerCount
	poolCfg.MaxAttempts = notificationMaxAttempts
	app.workerPool = task.NewWorkerPool(app.taskQueue, poolCfg, app.logger)
	app.workerPool.SetErrorHandler(func(t task.Task, err error) {
		app.logger.Warn("notification delivery abandoned",
			"task_id", t.ID(),
			"error", err)
	})
	app.workerPool.Start()

	app.eventEmitter = events.NewInMemoryEventEmitter(app.logger)
	app.eventEmitter.RegisterHandler(notification.NewHandler(
		app.storage.Stores().Users,
		app.taskQueue,
		app.sink,
		app.config.Geo.NotificationRadiusKm,
		app.logger,
	))
}

// newPaymentGateway builds the configured payment provider.
func newPaymentGateway(cfg config.PaymentConfig, logger *slog.Logger) (payment.Gateway, error) {
	switch cfg.Provider {
	case payment.ProviderVirtual:
		return payment.NewVirtualGateway(cfg.Toss.SuccessURL, logger), nil
	case payment.ProviderToss:
		client, err := toss.NewClient(cfg.Toss, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %q", payment.ErrUnknownProvider, cfg.Provider)
	}
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. Queued
// notifications get the shutdown timeout to drain.
func (app *application) cleanup() {
	if app.taskQueue != nil {
		if pending := app.taskQueue.Pending(); pending > 0 {
			app.logger.Info("Draining queued notifications", "pending", pending)
		}
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		timeout := app.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		app.workerPool.Shutdown(ctx)
		cancel()
	}

	if closer, ok := app.sink.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			app.logger.Error("Error closing notification sink", "error", err)
		}
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis client", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
