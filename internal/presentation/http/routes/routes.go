package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/creance-pos/internal/config"
	domainRepo "github.com/sangkips/creance-pos/internal/domain/repository"
	"github.com/sangkips/creance-pos/internal/presentation/http/handler"
	"github.com/sangkips/creance-pos/internal/presentation/http/middleware"
	"github.com/sangkips/creance-pos/pkg/utils"
)

// Roles allowed to change shop-wide settings.
var settingsRoles = []string{"admin", "manager"}

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Health    *handler.HealthHandler
	Product   *handler.ProductHandler
	Category  *handler.CategoryHandler
	Customer  *handler.CustomerHandler
	Sale      *handler.SaleHandler
	Dashboard *handler.DashboardHandler
	Settings  *handler.SettingsHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
	// IdempotencyRepo is nil when Redis is disabled; retried writes are then not deduplicated.
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.OperatorRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Check)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Check)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		rateLimiter := deps.RateLimiter
		if rateLimiter == nil {
			rateLimiter = middleware.NewOperatorRateLimiter(middleware.RateLimiterConfigFor(deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration))
		}
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Dashboard
	protected.GET("/dashboard", h.Dashboard.GetStats)

	// Settings
	protected.GET("/settings/company", h.Settings.GetCompanyProfile)
	protected.PUT("/settings/company", middleware.RequireRole(settingsRoles...), h.Settings.UpdateCompanyProfile)

	registerProductRoutes(protected, h)
	registerCategoryRoutes(protected, h)
	registerCustomerRoutes(protected, h)
	registerSaleRoutes(protected, h, deps)

	protected.GET("/payments", h.Sale.Payments)
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/low-stock", h.Product.LowStock)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
}

func registerCategoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	categories := protected.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.POST("", h.Category.Create)
		categories.PUT("/:id", h.Category.Update)
		categories.DELETE("/:id", h.Category.Delete)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
		customers.POST("/:id/deposits", h.Customer.Deposit)
		customers.GET("/:id/sales", h.Customer.Sales)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	sales := protected.Group("/sales")

	// Sales and payments replay their first response when retried with the same Idempotency-Key
	writes := []gin.HandlerFunc{}
	if deps.IdempotencyRepo != nil {
		writes = append(writes, middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			TTL:  deps.Cfg.Redis.IdempotencyTTL,
		}))
	}

	{
		sales.POST("", append(writes, h.Sale.Create)...)
		sales.GET("", h.Sale.List)
		sales.GET("/outstanding", h.Sale.Outstanding)
		sales.GET("/:id", h.Sale.Get)
		sales.GET("/:id/receipt", h.Sale.Receipt)
		sales.POST("/:id/payments", append(writes, h.Sale.ApplyPayment)...)
	}
}
