// Package app assembles repositories, services, event handlers and HTTP
// handlers into a runnable API. cmd/server and the API tests share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	chatterapp "github.com/erp/procurement/internal/application/chatter"
	hrapp "github.com/erp/procurement/internal/application/hr"
	identityapp "github.com/erp/procurement/internal/application/identity"
	procurementapp "github.com/erp/procurement/internal/application/procurement"
	projectapp "github.com/erp/procurement/internal/application/project"
	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/erp/procurement/internal/infrastructure/auth"
	"github.com/erp/procurement/internal/infrastructure/cache"
	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/erp/procurement/internal/infrastructure/event"
	"github.com/erp/procurement/internal/infrastructure/persistence"
	"github.com/erp/procurement/internal/infrastructure/storage"
	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/erp/procurement/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	confirmKeyPrefix   = "purchase:confirm:"
	loginLimiterPrefix = "ratelimit:login:"
)

// Options carries what the application needs from the outside. Redis,
// Storage, Clock and Metrics are optional.
type Options struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   redis.UniversalClient
	Storage chatterapp.ObjectStorage
	Clock   shared.Clock
	Metrics procurementapp.OrderMetrics
	Version string
	Logger  *zap.Logger
}

// App is the assembled procurement API
type App struct {
	JWT       *auth.JWTService
	Blacklist auth.TokenBlacklist
	EventBus  *event.InMemoryEventBus
	Handlers  router.Handlers

	logger       *zap.Logger
	swagger      config.SwaggerConfig
	loginLimiter middleware.Limiter
	closers      []func()
}

// New wires the application. The event bus is started before returning.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil || opts.DB == nil {
		return nil, errors.New("app: config and database are required")
	}
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	currency, err := valueobject.ParseCurrency(cfg.Company.Currency)
	if err != nil {
		return nil, fmt.Errorf("app: company currency: %w", err)
	}
	clock := opts.Clock
	if clock == nil {
		clock = shared.SystemClock{Location: cfg.Company.Location()}
	}

	a := &App{logger: log, swagger: cfg.Swagger}

	// Repositories
	db := opts.DB
	departmentRepo := persistence.NewGormDepartmentRepository(db)
	employeeRepo := persistence.NewGormEmployeeRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	projectRepo := persistence.NewGormProjectRepository(db)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db, cfg.Purchase.OrderNumberPrefix)
	messageRepo := persistence.NewGormMessageRepository(db)
	activityRepo := persistence.NewGormActivityRepository(db)
	attachmentRepo := persistence.NewGormAttachmentRepository(db)
	txScope := persistence.NewGormTransactionScope(db, cfg.Purchase.OrderNumberPrefix)
	directory := hr.NewDirectory(departmentRepo, employeeRepo)

	// Stores shared across instances when Redis is configured
	eventStore := cache.NewIdempotencyStore(opts.Redis, cfg.Event.KeyPrefix, log)
	confirmStore := cache.NewIdempotencyStore(opts.Redis, confirmKeyPrefix, log)
	a.closeStore(eventStore)
	a.closeStore(confirmStore)

	if opts.Redis != nil {
		a.Blacklist = auth.NewRedisTokenBlacklist(opts.Redis)
	} else {
		a.Blacklist = auth.NewInMemoryTokenBlacklist()
	}

	if cfg.HTTP.LoginRateLimit > 0 {
		if opts.Redis != nil {
			a.loginLimiter = middleware.NewRedisRateLimiter(opts.Redis, loginLimiterPrefix, cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
		} else {
			limiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
			a.closers = append(a.closers, limiter.Stop)
			a.loginLimiter = limiter
		}
	}

	objects := opts.Storage
	if objects == nil {
		objects, err = newObjectStorage(ctx, &cfg.Storage, log)
		if err != nil {
			return nil, err
		}
	}

	// Application services
	a.JWT = auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, a.JWT, a.Blacklist, log)
	userService := identityapp.NewUserService(userRepo, a.Blacklist, cfg.JWT.AccessTokenExpiration, log)
	orgScope := persistence.NewGormOrganizationScope(db, cfg.Purchase.OrderNumberPrefix)
	departmentService := hrapp.NewDepartmentService(departmentRepo, employeeRepo, orgScope)
	employeeService := hrapp.NewEmployeeService(employeeRepo, departmentRepo, userRepo, orgScope)
	projectService := projectapp.NewProjectService(projectRepo, orderRepo, directory, clock, currency)

	settings := procurementapp.Settings{
		DefaultCurrency:      currency,
		ActivityDeadlineDays: cfg.Purchase.ActivityDeadlineDays,
		Approval: procurement.ApprovalPolicy{
			Enabled:   cfg.Purchase.DoubleValidation,
			Threshold: cfg.Purchase.ApprovalThreshold,
		},
		IdempotencyTTL: cfg.Purchase.IdempotencyKeyTTL,
	}
	orderService := procurementapp.NewPurchaseOrderService(orderRepo, projectRepo, userRepo, directory, txScope, settings, clock)
	confirmWizard := procurementapp.NewConfirmWizard(orderRepo, projectRepo, txScope, confirmStore, settings, clock)
	cancelWizard := procurementapp.NewCancelWizard(txScope, clock)

	chatterConfig := chatterapp.DefaultConfig()
	if cfg.Storage.PresignExpiration > 0 {
		chatterConfig.UploadURLExpiry = cfg.Storage.PresignExpiration
	}
	chatterService := chatterapp.NewChatterService(messageRepo, activityRepo, attachmentRepo, objects, clock, chatterConfig)

	// Event bus. Handlers run synchronously after commit; the idempotency
	// wrapper drops redeliveries of the same event.
	a.EventBus = event.NewInMemoryEventBus(log)
	handlers := []shared.EventHandler{
		chatterapp.NewOrderActivityHandler(chatterService, log),
	}
	if opts.Metrics != nil {
		handlers = append(handlers, procurementapp.NewMetricsHandler(opts.Metrics))
	}
	idempotencyConfig := shared.DefaultIdempotencyConfig()
	idempotencyConfig.TTL = cfg.Event.IdempotencyTTL
	for _, h := range event.WrapHandlersWithIdempotency(handlers, eventStore, log,
		event.WithIdempotencyConfig(idempotencyConfig),
	) {
		a.EventBus.Subscribe(h)
	}

	publishers := []interface {
		SetEventPublisher(shared.EventPublisher)
	}{userService, departmentService, employeeService, projectService, orderService, confirmWizard, cancelWizard}
	for _, p := range publishers {
		p.SetEventPublisher(a.EventBus)
	}

	if err := a.EventBus.Start(ctx); err != nil {
		return nil, fmt.Errorf("app: start event bus: %w", err)
	}

	system := handler.NewSystemHandler(opts.Version)
	system.AddCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if opts.Redis != nil {
		system.AddCheck("redis", func(ctx context.Context) error {
			return opts.Redis.Ping(ctx).Err()
		})
	}

	a.Handlers = router.Handlers{
		Auth:           handler.NewAuthHandler(authService, userService),
		Users:          handler.NewUserHandler(userService),
		Departments:    handler.NewDepartmentHandler(departmentService),
		Employees:      handler.NewEmployeeHandler(employeeService),
		Projects:       handler.NewProjectHandler(projectService),
		PurchaseOrders: handler.NewPurchaseOrderHandler(orderService, confirmWizard, cancelWizard),
		Chatter:        handler.NewChatterHandler(chatterService),
		System:         system,
	}

	log.Info("Application wired",
		zap.Int("event_handlers", len(handlers)),
		zap.Bool("redis", opts.Redis != nil),
		zap.Bool("login_rate_limit", a.loginLimiter != nil),
	)
	return a, nil
}

func newObjectStorage(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (chatterapp.ObjectStorage, error) {
	if !cfg.Enabled {
		log.Warn("Object storage disabled, attachments are kept in memory")
		return storage.NewMemoryObjectStorage(""), nil
	}
	s3, err := storage.NewS3ObjectStorage(ctx, cfg,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.PresignExpiration),
	)
	if err != nil {
		return nil, fmt.Errorf("app: object storage: %w", err)
	}
	return s3, nil
}

func (a *App) closeStore(store shared.IdempotencyStore) {
	if c, ok := store.(interface{ Close() error }); ok {
		a.closers = append(a.closers, func() { _ = c.Close() })
	}
}

// Mount registers the health checks, the API documentation and the
// authenticated API under /api/v1 on engine. middlewares run on the API group
// before authentication; the caller is added to the request span after it.
func (a *App) Mount(engine *gin.Engine, middlewares ...gin.HandlerFunc) {
	router.RegisterHealthChecks(engine, a.Handlers.System)
	router.RegisterDocs(engine, middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     a.swagger.Enabled,
		RequireAuth: a.swagger.RequireAuth,
		AllowedIPs:  a.swagger.AllowedIPs,
	}, middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     a.JWT,
		TokenBlacklist: a.Blacklist,
		Logger:         a.logger,
	})))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middlewares...)
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     a.JWT,
		TokenBlacklist: a.Blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/health",
		},
		Logger: a.logger,
	}))
	r.Use(middleware.TracingAttributeInjector())

	var loginLimiter gin.HandlerFunc
	if a.loginLimiter != nil {
		loginLimiter = middleware.RateLimitWithConfig(middleware.RateLimitConfig{
			Limiter: a.loginLimiter,
			Logger:  a.logger,
		})
	}
	router.RegisterAPI(r, a.Handlers, loginLimiter)
	r.Setup()
}

// Close stops the event bus, waiting at most timeout for in-flight
// events, and releases the background workers.
func (a *App) Close(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := a.EventBus.Stop(ctx)
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	return err
}
