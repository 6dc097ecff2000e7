package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todo-api/internal/metrics"
	"todo-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	todoH *TodoHandler,
	healthH *HealthHandler,
	sessions *service.SessionService,
	signinLimiter service.RateLimiter,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, metricas y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), metricsMiddleware(), jsonContentTypeMiddleware())

	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", authH.SignUp)
	auth.POST("/verify", authH.Verify)
	auth.POST("/otp/resend", authH.ResendOTP)
	auth.POST("/signin", RateLimitMiddleware(signinLimiter, "signin"), authH.SignIn)
	auth.POST("/signout", authH.SignOut)
	auth.GET("/me", SessionAuthMiddleware(sessions), authH.Me)

	todos := api.Group("/todos")
	todos.Use(SessionAuthMiddleware(sessions))
	todos.GET("", todoH.List)
	todos.POST("", todoH.Create)
	todos.PUT("/:id", todoH.Update)
	todos.DELETE("/:id", todoH.Delete)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware usa la ruta registrada como label para no explotar la cardinalidad con ids.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
