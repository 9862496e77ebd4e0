package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tillpoint/internal/config"
	"tillpoint/internal/handler"
	"tillpoint/internal/middleware"
	"tillpoint/internal/service"
)

// New returns a configured Gin engine over an already-wired RegisterService.
// The service is built in the composition root (cmd/server) because the
// auto-close scheduler shares the same instance — the in-memory current
// register must have exactly one owner.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, registerSvc service.RegisterService) *gin.Engine {
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

	registerH := handler.NewRegisterHandler(registerSvc, cfg.PDFStoragePath)

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, supervisor, admin — declared per-endpoint
		reg := v1.Group("/register")
		{
			anyOperator := middleware.RequireRole("cashier", "supervisor", "admin")
			reg.POST("/open", anyOperator, registerH.Open)
			reg.POST("/movement", anyOperator, registerH.AddMovement)
			reg.POST("/close", anyOperator, registerH.Close)
			reg.GET("/current", anyOperator, registerH.Current)
			reg.GET("/:id/report", anyOperator, registerH.Report)
			reg.GET("/:id/report.pdf", anyOperator, registerH.ReportPDF)
			reg.GET("/:id/movements", anyOperator, registerH.Movements)
			reg.GET("/history", middleware.RequireRole("supervisor", "admin"), registerH.History)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
