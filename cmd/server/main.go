package main

import (
	"context" // context package is needed for Redis operations

	"trade_journal/internal/api"        // Custom package for API handlers
	"trade_journal/internal/config"     // Custom package for configuration
	"trade_journal/internal/db"         // Database connection
	"trade_journal/internal/middleware" // Custom package for middleware
	"trade_journal/internal/store"      // Persistence
	"trade_journal/internal/utils"      // Tokens and password hashing

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Connect to the database
	dialector, err := db.Dialector(cfg)
	if err != nil {
		logrus.Fatalf("failed to configure DB: %v", err)
	}
	gdb, err := db.Open(dialector, cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client; caching is optional
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set, listing cache disabled")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	hasher := utils.NewBcryptHasher(cfg.BcryptCost)              // Password hashing
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL) // Secret fixed for the process lifetime

	r := api.NewRouter(api.Deps{
		Users:    store.NewUsers(gdb, hasher),
		Trades:   store.NewTrades(gdb),
		Hasher:   hasher,
		Issuer:   tokens,
		Gate:     middleware.NewGate(tokens),
		Redis:    redisClient,
		CacheTTL: cfg.CacheTTL,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.Info("Server running on " + cfg.AppPort)  // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}

// setupLogger configures logrus format and level
func setupLogger(cfg *config.Config) {
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
