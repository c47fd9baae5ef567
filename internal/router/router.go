package router

import (
	"time"

	"restopos/internal/config"
	"restopos/internal/handler"
	"restopos/internal/infra"
	"restopos/internal/middleware"
	"restopos/internal/repository"
	"restopos/internal/service"
	"restopos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, printBreaker *infra.Breaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	tableRepo := repository.NewTableRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	tableSvc := service.NewTableService(tableRepo)
	catalogSvc := service.NewCatalogService(productRepo)
	settingSvc := service.NewSettingService(settingRepo)
	shiftSvc := service.NewShiftService(shiftRepo, orderRepo, refundRepo, dispatcher)
	orderSvc := service.NewOrderService(orderRepo, productRepo, tableRepo, settingRepo, dispatcher)
	settlementSvc := service.NewSettlementService(orderRepo, shiftRepo, tableRepo, settingRepo)
	refundSvc := service.NewRefundService(refundRepo, orderRepo, shiftSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(printBreaker)
	authH := handler.NewAuthHandler(authSvc)
	tablesH := handler.NewTableHandler(tableSvc)
	productsH := handler.NewProductHandler(catalogSvc)
	ordersH := handler.NewOrderHandler(orderSvc, settlementSvc)
	shiftsH := handler.NewShiftHandler(shiftSvc)
	refundsH := handler.NewRefundHandler(refundSvc)
	settingsH := handler.NewSettingHandler(settingSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", healthH.Health)

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyStaff := middleware.RequireRole("cashier", "waiter", "admin")
	cashierUp := middleware.RequireRole("cashier", "admin")
	adminOnly := middleware.RequireRole("admin")

	v1 := r.Group("/v1", jwtMW)
	{
		// Orders — waiters take them, cashiers settle them
		orders := v1.Group("/orders")
		{
			orders.POST("", anyStaff, ordersH.Create)
			orders.GET("", anyStaff, ordersH.List)
			orders.GET("/:id", anyStaff, ordersH.Get)
			orders.PUT("/:id/items", anyStaff, ordersH.UpdateItems)
			orders.POST("/:id/send", anyStaff, ordersH.SendToKitchen)
			orders.POST("/:id/ready", anyStaff, ordersH.MarkReady)
			orders.POST("/:id/served", anyStaff, ordersH.MarkServed)

			orders.POST("/:id/settle", cashierUp, ordersH.Settle)
			orders.POST("/:id/cancel", cashierUp, ordersH.Cancel)
			orders.POST("/:id/discount", cashierUp, ordersH.ApplyDiscount)
			orders.POST("/:id/tip", cashierUp, ordersH.SetTip)
		}

		// Shifts — drawer custody belongs to cashiers
		shifts := v1.Group("/shifts")
		{
			shifts.POST("/open", cashierUp, shiftsH.Open)
			shifts.POST("/:id/close", cashierUp, shiftsH.Close)
			shifts.POST("/:id/arqueo", cashierUp, shiftsH.Arqueo)
			shifts.GET("/active", anyStaff, shiftsH.Active)
			shifts.GET("/:id/report", cashierUp, shiftsH.Report)
			shifts.GET("/history", adminOnly, shiftsH.History)
		}

		// Refunds — anyone at the counter may request, only admin resolves
		refunds := v1.Group("/refunds")
		{
			refunds.POST("", cashierUp, refundsH.Create)
			refunds.GET("", cashierUp, refundsH.List)
			refunds.POST("/:id/approve", adminOnly, refundsH.Approve)
			refunds.POST("/:id/reject", adminOnly, refundsH.Reject)
		}

		// Tables
		v1.GET("/tables", anyStaff, tablesH.List)
		tables := v1.Group("/tables", adminOnly)
		{
			tables.POST("", tablesH.Create)
			tables.DELETE("/:id", tablesH.Delete)
		}

		// Catalogue — all staff read, admin writes
		v1.GET("/products", anyStaff, productsH.List)
		v1.GET("/categories", anyStaff, productsH.ListCategories)
		products := v1.Group("/products", adminOnly)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
		}
		v1.POST("/categories", adminOnly, productsH.CreateCategory)

		// Users
		users := v1.Group("/users", adminOnly)
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PUT("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
			users.PATCH("/:id/reactivate", authH.ReactivateUser)
		}

		// Business configuration
		v1.GET("/settings", anyStaff, settingsH.Get)
		v1.PUT("/settings", adminOnly, settingsH.Update)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
