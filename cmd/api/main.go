package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/creance-pos/internal/application/service"
	"github.com/sangkips/creance-pos/internal/config"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	domainRepo "github.com/sangkips/creance-pos/internal/domain/repository"
	"github.com/sangkips/creance-pos/internal/infrastructure/cache"
	"github.com/sangkips/creance-pos/internal/infrastructure/database"
	"github.com/sangkips/creance-pos/internal/infrastructure/ledger/memory"
	"github.com/sangkips/creance-pos/internal/infrastructure/ledger/postgres"
	"github.com/sangkips/creance-pos/internal/infrastructure/notify"
	"github.com/sangkips/creance-pos/internal/presentation/http/handler"
	"github.com/sangkips/creance-pos/internal/presentation/http/middleware"
	"github.com/sangkips/creance-pos/internal/presentation/http/routes"
	"github.com/sangkips/creance-pos/pkg/logger"
	"github.com/sangkips/creance-pos/pkg/utils"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	// Load configuration
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty && !cfg.App.IsProduction())

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis carries change notifications between instances and the idempotency keys
	var (
		rdb             *redis.Client
		notifier        ledger.Notifier = ledger.NewLocalNotifier()
		idempotencyRepo domainRepo.IdempotencyRepository
	)
	if cfg.Redis.Enabled {
		var err error
		rdb, err = cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		notifier = notify.NewRedisNotifier(rdb)
		idempotencyRepo = cache.NewIdempotencyStore(rdb)
	} else {
		log.Warn().Msg("redis disabled: change notifications stay in-process and retried writes are not deduplicated")
	}

	store, err := openLedger(cfg, notifier)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := service.SettlementOptionsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("settlement config: %w", err)
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize services
	settingsService := service.NewSettingsService(store, opts)
	productService := service.NewProductService(store, opts)
	categoryService := service.NewCategoryService(store, opts)
	customerService := service.NewCustomerService(store, opts)
	saleService := service.NewSaleService(store, settingsService, opts)
	paymentService := service.NewPaymentService(store, settingsService, opts)
	dashboardService := service.NewDashboardService(store, opts)

	rateLimiter := middleware.NewOperatorRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration))

	// Initialize handlers
	handlers := &routes.Handlers{
		Health:    handler.NewHealthHandler(cfg.App.Name, store),
		Product:   handler.NewProductHandler(productService),
		Category:  handler.NewCategoryHandler(categoryService),
		Customer:  handler.NewCustomerHandler(customerService),
		Sale:      handler.NewSaleHandler(saleService, paymentService, opts.Location),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Settings:  handler.NewSettingsHandler(settingsService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dashboardService.Run(gctx)
	})

	g.Go(func() error {
		rateLimiter.Run(gctx.Done())
		return nil
	})

	g.Go(func() error {
		log.Info().
			Str("service", cfg.App.Name).
			Str("env", cfg.App.Env).
			Str("port", port).
			Str("ledger", cfg.Ledger.Driver).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openLedger(cfg *config.Config, notifier ledger.Notifier) (ledger.Store, error) {
	switch cfg.Ledger.Driver {
	case "memory":
		log.Warn().Msg("using in-memory ledger; data is lost on restart")
		return memory.NewStore(memory.WithNotifier(notifier)), nil
	case "postgres", "":
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return postgres.NewStore(db, notifier), nil
	default:
		return nil, fmt.Errorf("unknown LEDGER_DRIVER %q", cfg.Ledger.Driver)
	}
}
