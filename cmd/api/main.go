package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/application/service"
	"github.com/sangkips/hospitality-pos/internal/config"
	domainRepo "github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/sangkips/hospitality-pos/internal/infrastructure/database"
	"github.com/sangkips/hospitality-pos/internal/infrastructure/events"
	"github.com/sangkips/hospitality-pos/internal/infrastructure/repository"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/handler"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/middleware"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/routes"
	"github.com/sangkips/hospitality-pos/pkg/hotel"
	"github.com/sangkips/hospitality-pos/pkg/logger"
	"github.com/sangkips/hospitality-pos/pkg/printer"
	"github.com/sangkips/hospitality-pos/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.AutoMigrate(db, zlog); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	if cfg.App.SeedDemo {
		if err := database.SeedDefaultData(db, zlog); err != nil {
			zlog.Warn("failed to seed demo data", zap.Error(err))
		}
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	tx := repository.NewTransactor(db)
	orderRepo := repository.NewOrderRepository(db)
	orderLineRepo := repository.NewOrderLineRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	voidLogRepo := repository.NewVoidLogRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	salesPointRepo := repository.NewSalesPointRepository(db)
	clientRepo := repository.NewClientAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Event broker
	publisher, err := events.NewPublisher(cfg.Events.Driver, cfg.Events.NATSURL, cfg.Events.AMQPURL, cfg.Events.AMQPExchange)
	if err != nil {
		zlog.Warn("event broker unavailable, events are dropped", zap.String("driver", cfg.Events.Driver), zap.Error(err))
		publisher = events.NewNoopPublisher()
	}
	defer func() { _ = publisher.Close() }()

	// Print service
	printClient, err := printer.NewClientFromConfig(cfg.Printer.Enabled, cfg.Printer.BaseURL, cfg.Printer.Timeout)
	if err != nil {
		zlog.Warn("print service misconfigured, printing disabled", zap.Error(err))
		printClient = printer.NewNullClient()
	}
	printerService := service.NewPrinterService(printClient, cfg.Printer.Enabled, cfg.Printer.Pacing, zlog)

	// Hotel transfers are only offered when a front-desk system is configured
	var hotelCharger service.HotelCharger
	if cfg.Hotel.BaseURL != "" {
		hotelCharger = hotel.NewClient(cfg.Hotel.BaseURL, cfg.Hotel.Token, cfg.Hotel.Timeout)
	}

	// Initialize services
	stockService := service.NewStockService(productRepo, stockRepo, salesPointRepo, zlog)
	voidService := service.NewVoidService(tx, orderRepo, orderLineRepo, voidLogRepo, salesPointRepo, stockService, printerService, publisher, zlog)
	orderService := service.NewOrderService(service.OrderDeps{
		Tx:             tx,
		OrderRepo:      orderRepo,
		OrderLineRepo:  orderLineRepo,
		PaymentRepo:    paymentRepo,
		ClientRepo:     clientRepo,
		SalesPointRepo: salesPointRepo,
		SessionRepo:    sessionRepo,
		Stock:          stockService,
		Voids:          voidService,
		Printer:        printerService,
		Hotel:          hotelCharger,
		Events:         publisher,
		Logger:         zlog,
	})
	ticketService := service.NewTicketService(productRepo, sessionRepo, salesPointRepo, clientRepo, orderService, voidService)
	sessionService := service.NewSessionService(tx, sessionRepo, orderRepo, paymentRepo, publisher, zlog,
		cfg.App.Location(), cfg.POS.VarianceThreshold)
	sessionService.OnClosed(func(sessionID uuid.UUID) {
		n := ticketService.DropSession(sessionID)
		zlog.Info("dropped tickets of closed session", zap.String("session_id", sessionID.String()), zap.Int("count", n))
	})

	// Initialize handlers
	handlers := &routes.Handlers{
		Session: handler.NewSessionHandler(sessionService, cfg.POS.DefaultOpeningBalance),
		Ticket:  handler.NewTicketHandler(ticketService),
		Printer: handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewEmployeeRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.RateLimit.Requests) / float64(cfg.RateLimit.Duration),
		BurstSize:         cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Logger:          zlog,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeIdempotencyKeys(ctx, idempotencyRepo, zlog)
	go sweepTickets(ctx, ticketService, cfg.POS.TicketIdleTTL, zlog)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		zlog.Info("starting server", zap.String("service", cfg.App.Name), zap.String("port", port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

// purgeIdempotencyKeys drops expired payment replays once an hour
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, zlog *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				zlog.Warn("failed to purge idempotency keys", zap.Error(err))
				continue
			}
			if n > 0 {
				zlog.Info("purged idempotency keys", zap.Int64("count", n))
			}
		}
	}
}

// sweepTickets forgets idle tickets whose work is safely in the database
func sweepTickets(ctx context.Context, tickets *service.TicketService, idle time.Duration, zlog *zap.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := tickets.Cleanup(now, idle); n > 0 {
				zlog.Info("swept idle tickets", zap.Int("count", n))
			}
		}
	}
}
