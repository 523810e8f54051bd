package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/habitgrid/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habitgrid/internal/core/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDependencies struct {
	HabitHandler *HabitHandler
	StatsHandler *StatsHandler
	TokenService *services.TokenService
	Store        Pinger
	Redis        *redis.Client
	RateLimit    int
	Logger       *zap.Logger
	StartTime    time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Habit-Board")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		storeStatus := "connected"
		if deps.Store != nil {
			if err := deps.Store.Ping(c.Request.Context()); err != nil {
				storeStatus = "unreachable"
			}
		} else {
			storeStatus = "memory"
		}

		statusCode := http.StatusOK
		if storeStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status": "ok",
			"store":  storeStatus,
			"uptime": time.Since(deps.StartTime).String(),
		})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.AuthMiddleware(deps.TokenService))
	if deps.Redis != nil && deps.RateLimit > 0 {
		apiV1.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, 1*time.Minute, deps.Logger))
	}
	{
		deps.HabitHandler.RegisterRoutes(apiV1)
		if deps.StatsHandler != nil {
			deps.StatsHandler.RegisterRoutes(apiV1)
		}
	}

	return router
}
