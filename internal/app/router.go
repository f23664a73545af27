package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"weddingbudget/internal/config"
	"weddingbudget/internal/middleware"
	"weddingbudget/internal/validator"
)

// NewRouter mounts every route on a new engine.
func NewRouter(cfg *config.Config, h Handlers) *gin.Engine {
	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("weddingbudget-api"))
	router.Use(middleware.RequestLogging())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", h.Health.Health)

	v1 := router.Group("/api/v1")
	v1.GET("/vendor-options", h.Catalog.ListVendorOptions)

	// Internal routes
	internal := v1.Group("/internal")
	internal.Use(middleware.InternalAPIKey(cfg.InternalAPIKey))
	internal.POST("/vendor-options", h.Catalog.ImportVendorOptions)

	// Identified routes
	identified := v1.Group("")
	identified.Use(middleware.Identity(middleware.IdentityConfig{
		JWTSecret: cfg.JWTSecret,
		AllowDev:  cfg.AllowDevIdentity,
		DevUserID: cfg.DevUserID,
	}))
	identified.Use(middleware.SessionID())

	plan := identified.Group("/plan")
	plan.GET("", h.Plan.GetPlan)
	plan.PUT("/redline", h.Plan.SetRedline)
	plan.PUT("/summary", h.Plan.UpdateSummary)
	plan.PUT("/rates", h.Plan.UpdateRates)
	plan.GET("/diff", h.Plan.GetDiff)
	plan.POST("/optimize", h.Optimizer.Optimize)
	plan.GET("/undo", h.Decision.PendingUndo)

	decisions := plan.Group("/decisions/:id")
	decisions.POST("/approve", h.Decision.Approve)
	decisions.POST("/swap", h.Decision.Swap)
	decisions.POST("/evaluate", h.Decision.Evaluate)
	decisions.POST("/undo", h.Decision.Undo)

	identified.POST("/quiz/submit", h.Quiz.Submit)

	return router
}
