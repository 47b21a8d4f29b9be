package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/giftwell/backend/api/handler"
	"github.com/giftwell/backend/internal/config"
	"github.com/giftwell/backend/internal/infrastructure/buffer"
	"github.com/giftwell/backend/internal/infrastructure/monitor"
	pgInfra "github.com/giftwell/backend/internal/infrastructure/postgres"
	redisInfra "github.com/giftwell/backend/internal/infrastructure/redis"
	"github.com/giftwell/backend/internal/middleware"
	"github.com/giftwell/backend/internal/realtime"
	"github.com/giftwell/backend/internal/router"
	"github.com/giftwell/backend/internal/services"
	"github.com/giftwell/backend/internal/services/lifecycle"
	"github.com/giftwell/backend/pkg/httpcontext"
	"github.com/giftwell/backend/pkg/logger"
	"github.com/giftwell/backend/repository/postgres"
	redisRepo "github.com/giftwell/backend/repository/redis"
	authUC "github.com/giftwell/backend/usecase/auth"
	contributionUC "github.com/giftwell/backend/usecase/contribution"
	itemUC "github.com/giftwell/backend/usecase/item"
	reservationUC "github.com/giftwell/backend/usecase/reservation"
	wishlistUC "github.com/giftwell/backend/usecase/wishlist"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	hypeStore, err := buffer.Open(cfg.Buffer.Path, "hype")
	if err != nil {
		zapLogger.Fatal("failed to open hype buffer", zap.Error(err))
	}
	manager.Register("hype_buffer", func(ctx context.Context) error {
		return hypeStore.Close()
	})

	mon := monitor.New(pool, redisClient, hypeStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	wishlistRepo := postgres.NewWishlistRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	contributionRepo := postgres.NewContributionRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
	limiter := redisRepo.NewRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	bus := realtime.NewBus(cfg.Realtime.SubscriberBuffer, zapLogger)
	presence := realtime.NewPresence(bus)

	hypeProcessor := services.NewHypeProcessor(
		hypeStore,
		mon,
		itemRepo,
		bus,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	hypeProcessor.Start()
	manager.Register("hype_processor", func(ctx context.Context) error {
		hypeProcessor.Stop(ctx)
		return nil
	})

	hypeBridge := services.NewHypeBridge(hypeStore)

	authUseCase := authUC.New(userRepo, sessionRepo, zapLogger)
	wishlistUseCase := wishlistUC.New(wishlistRepo, itemRepo, contributionRepo, zapLogger)
	itemUseCase := itemUC.New(itemRepo, wishlistRepo, bus, hypeBridge, zapLogger)
	reservationUseCase := reservationUC.New(itemRepo, bus, zapLogger)
	contributionUseCase := contributionUC.New(itemRepo, contributionRepo, bus, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.SessionTTL),
		Wishlist: apiHandler.NewWishlistHandler(wishlistUseCase, ctxAdapter, zapLogger),
		Item:     apiHandler.NewItemHandler(itemUseCase, reservationUseCase, contributionUseCase, ctxAdapter, zapLogger),
		Live:     apiHandler.NewLiveHandler(bus, presence, cfg.Realtime.WriteTimeout, cfg.Realtime.PingInterval, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	requireAuth := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	optionalAuth := middleware.OptionalJWT(cfg.JWT.Secret, zapLogger)
	rateLimit := middleware.RateLimit(limiter, zapLogger)
	r := router.New(handlers, requireAuth, optionalAuth, rateLimit)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
