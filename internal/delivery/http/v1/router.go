package v1

import (
	"net/http"

	"scholarship-backend/config"
	"scholarship-backend/internal/delivery/http/middleware"
	"scholarship-backend/internal/delivery/http/response"
	"scholarship-backend/internal/domain"
	"scholarship-backend/internal/usecase"
	"scholarship-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	CallUC        domain.CallUsecase
	ApplicationUC domain.ApplicationUsecase
	HealthUC      usecase.HealthUsecase
	Verifier      *auth.Verifier
	// Redis backs rate limiting; nil falls back to in-memory counters.
	Redis  *goredis.Client
	Config *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	globalLimit := middleware.DefaultRateLimitConfig()
	if deps.Config != nil {
		globalLimit.Limit = deps.Config.RateLimitGlobalThreshold
		globalLimit.Window = deps.Config.RateLimitWindow()
	}
	var origins []string
	if deps.Config != nil {
		origins = deps.Config.CORSAllowedOrigins
	}

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(origins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	v1.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Verifier))
	protected.Use(middleware.RateLimitMiddleware(deps.Redis, globalLimit))
	{
		NewCallHandler(protected, deps.CallUC)
		NewApplicationHandler(protected, deps.ApplicationUC, middleware.RateLimitMiddleware(deps.Redis, middleware.ApplyRateLimitConfig()))
	}

	return r
}
