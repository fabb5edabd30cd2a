package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hospitality-pos/internal/config"
	domainRepo "github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/handler"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/middleware"
	"github.com/sangkips/hospitality-pos/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Session *handler.SessionHandler
	Ticket  *handler.TicketHandler
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.EmployeeRateLimiter
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewEmployeeRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
	}

	// API v1 routes, all authenticated
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTManager))
	v1.Use(rateLimiter.Middleware())
	{
		registerSessionRoutes(v1, h)
		registerTicketRoutes(v1, h, deps)
		registerPrinterRoutes(v1, h)
	}

	return router
}

func registerSessionRoutes(v1 *gin.RouterGroup, h *Handlers) {
	sessions := v1.Group("/sessions")
	{
		sessions.POST("", h.Session.Open)
		sessions.GET("/:id/report", h.Session.Report)
		sessions.POST("/:id/reconcile", h.Session.Reconcile)
		sessions.POST("/:id/x-report", h.Session.XReport)
		sessions.POST("/:id/z-report", h.Session.ZReport)
	}
}

func registerTicketRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	tickets := v1.Group("/tickets")
	{
		tickets.POST("", h.Ticket.Open)
		tickets.POST("/recall", h.Ticket.Recall)
		tickets.GET("/:id", h.Ticket.Get)
		tickets.DELETE("/:id", h.Ticket.Discard)

		// Cart
		tickets.POST("/:id/items", h.Ticket.AddItem)
		tickets.PUT("/:id/items/:line_id", h.Ticket.UpdateQuantity)
		tickets.DELETE("/:id/items/:line_id", h.Ticket.RemoveLine)
		tickets.POST("/:id/items/:line_id/cancel", h.Ticket.MarkForCancellation)
		tickets.DELETE("/:id/items/:line_id/cancel", h.Ticket.UndoCancellation)
		tickets.POST("/:id/assignment", h.Ticket.Assign)

		// Lifecycle
		tickets.POST("/:id/hold", h.Ticket.Hold)
		tickets.POST("/:id/print", h.Ticket.Print)
		// Payment uses idempotency middleware to prevent double charging
		tickets.POST("/:id/pay", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		}), h.Ticket.Pay)
		tickets.POST("/:id/cancel", h.Ticket.Cancel)

		// Split preview
		tickets.POST("/:id/split/amount", h.Ticket.SplitByAmount)
		tickets.POST("/:id/split/product", h.Ticket.SplitByProduct)
	}
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printerGroup := v1.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
	}
}
