// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/grantflow/controller"
	"github.com/dev-mohitbeniwal/grantflow/middleware"
)

type Options struct {
	JWTSecret         []byte
	Limiter           middleware.Limiter
	RateLimitRequests int
	RateLimitDuration time.Duration
}

func SetupRouter(controllers *controller.Controllers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(opts.JWTSecret))
	api.Use(middleware.RateLimiter(opts.Limiter, opts.RateLimitRequests, opts.RateLimitDuration))

	controllers.Access.RegisterRoutes(api)
	controllers.Admin.RegisterRoutes(api)
	controllers.Notification.RegisterRoutes(api)

	return router
}
