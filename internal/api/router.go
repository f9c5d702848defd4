package api

import (
	"net/http" // HTTP status codes
	"time"     // Cache TTL

	"trade_journal/internal/middleware" // Authentication and logging

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics endpoint
	"github.com/redis/go-redis/v9"                            // Redis client
)

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	Users    UserStore
	Trades   TradeStore
	Hasher   PasswordVerifier
	Issuer   TokenIssuer
	Gate     *middleware.Gate
	Redis    *redis.Client // nil disables caching
	CacheTTL time.Duration
}

// NewRouter wires every route
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "API is running...") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes
	auth := r.Group("/api/auth")
	auth.POST("/register", RegisterHandler(d.Users, d.Issuer, d.Redis)) // Registration endpoint
	auth.POST("/login", LoginHandler(d.Users, d.Hasher, d.Issuer))      // Login endpoint

	// Trade routes (protected by JWT)
	trades := r.Group("/api/trades")
	trades.Use(middleware.JWTAuthMiddleware(d.Gate))
	trades.GET("", ListTradesHandler(d.Trades, d.Redis, d.CacheTTL)) // List endpoint, scoped by role
	trades.POST("", CreateTradeHandler(d.Trades, d.Redis))           // Create endpoint
	trades.GET("/:id", GetTradeHandler(d.Trades))                    // Read endpoint
	trades.PUT("/:id", UpdateTradeHandler(d.Trades, d.Redis))        // Update endpoint
	trades.DELETE("/:id", DeleteTradeHandler(d.Trades, d.Redis))     // Delete endpoint

	// Admin routes (protected, admin only)
	admin := r.Group("/api/admin")
	admin.Use(middleware.JWTAuthMiddleware(d.Gate), middleware.AdminOnlyMiddleware())
	admin.GET("/users", ListUsersHandler(d.Users, d.Redis, d.CacheTTL)) // List users endpoint

	return r
}
