package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/service"
	"warehouse-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports datastore health for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler wires the HTTP routes to the services.
type Handler struct {
	auth      *service.AuthService
	products  *service.ProductService
	orders    *service.OrderService
	employees *service.EmployeeService
	dashboard *service.DashboardService
	tokens    *auth.TokenManager
	db        Pinger
}

// NewHandler creates a new API handler.
func NewHandler(
	authSvc *service.AuthService,
	products *service.ProductService,
	orders *service.OrderService,
	employees *service.EmployeeService,
	dashboard *service.DashboardService,
	tokens *auth.TokenManager,
	db Pinger,
) *Handler {
	return &Handler{
		auth:      authSvc,
		products:  products,
		orders:    orders,
		employees: employees,
		dashboard: dashboard,
		tokens:    tokens,
		db:        db,
	}
}

// SetupRoutes registers all routes on the router.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(metricsMiddleware())

	router.GET("/health", h.health)
	router.GET("/ready", h.ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/public")
	{
		public.GET("/catalogue", h.publicCatalogue)
		public.GET("/categories", h.publicCategories)
	}

	api := router.Group("/api")
	api.POST("/auth/login", h.login)

	authed := api.Group("")
	authed.Use(auth.Middleware(h.tokens))
	{
		authed.GET("/auth/me", h.me)

		authed.GET("/products", h.listProducts)
		authed.GET("/products/categories", h.listCategories)
		authed.GET("/products/zones", h.listZones)
		authed.GET("/products/:id", h.getProduct)
		authed.POST("/products", h.createProduct)
		authed.PUT("/products/:id", h.updateProduct)
		authed.DELETE("/products/:id", h.deleteProduct)
		authed.PATCH("/products/:id/stock", h.adjustStock)

		authed.GET("/orders", h.listOrders)
		authed.GET("/orders/next-order-id", h.nextOrderNumber)
		authed.GET("/orders/:id", h.getOrder)
		authed.POST("/orders", h.createOrder)
		authed.DELETE("/orders/:id", h.deleteOrder)
		authed.PATCH("/orders/:id/items/:itemId/pick", h.pickItem)
		authed.PATCH("/orders/:id/customer", h.updateCustomer)
		authed.PATCH("/orders/:id/status", h.updateOrderStatus)
		authed.POST("/orders/:id/items", h.addOrderItem)
		authed.DELETE("/orders/:id/items/:itemId", h.removeOrderItem)
		authed.PATCH("/orders/:id/items/:itemId/quantity", h.updateItemQuantity)
		authed.GET("/orders/:id/modification-history", h.modificationHistory)

		authed.GET("/employees/presence", h.staffPresence)

		admin := authed.Group("/employees")
		admin.Use(auth.RequireAdmin())
		{
			admin.GET("", h.listEmployees)
			admin.POST("", h.createEmployee)
			admin.DELETE("/:id", h.deleteEmployee)
			admin.PATCH("/:id/toggle-status", h.toggleEmployeeStatus)
			admin.PATCH("/:id/presence", h.updatePresence)
			admin.GET("/presence-log", h.presenceLog)
		}

		authed.GET("/dashboard/stats", h.dashboardStats)
		authed.GET("/dashboard/zones", h.zoneDistribution)
		authed.GET("/dashboard/categories", h.categoryDistribution)
		authed.GET("/dashboard/recent-transactions", h.recentTransactions)
		authed.GET("/dashboard/low-stock", h.lowStock)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" || path == "/metrics" {
			return
		}
		status := strconv.Itoa(c.Writer.Status())
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
