package main

import (
	"context" // Context for Redis and startup operations

	"money_transfer/internal/account" // Account manager
	"money_transfer/internal/api"     // Custom package for API handlers
	"money_transfer/internal/config"  // Custom package for configuration
	"money_transfer/internal/db"      // Database bootstrap
	"money_transfer/internal/engine"  // Transaction engine
	"money_transfer/internal/ledger"  // Ledger store

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	log := logrus.NewEntry(logrus.StandardLogger())

	// Connect to the database
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if cfg.DBDriver == "sqlite" {
		// Embedded databases are migrated in place
		if err := db.Migrate(gdb); err != nil {
			logrus.Fatalf("migration failed: %v", err)
		}
	}

	ctx := context.Background()
	store := ledger.New(gdb, cfg.LockTimeout)
	accounts := account.NewManager(store, log)

	// Platform and fee account are initialized once, before serving
	platform, err := db.Seed(ctx, accounts, cfg.PlatformName, cfg.PlatformFeeRate)
	if err != nil {
		logrus.Fatalf("failed to initialize platform: %v", err)
	}
	eng := engine.New(accounts, platform,
		engine.WithLogger(log),
		engine.WithMaxRetries(cfg.MaxRetries),
		engine.WithLimits(engine.Limits{
			MaxDeposit:      cfg.MaxDeposit,
			MinWithdrawal:   cfg.MinWithdrawal,
			MinTransfer:     cfg.MinTransfer,
			MaxTransfer:     cfg.MaxTransfer,
			MaxAdminDeposit: cfg.MaxAdminDeposit,
		}),
	)

	// Setup Redis client, optional
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default() // Gin router instance
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}
	api.RegisterRoutes(r, &api.Deps{
		Engine:   eng,
		Accounts: accounts,
		Redis:    redisClient,
		CacheTTL: cfg.CacheTTL,
	}, cfg.JWTSecret)

	logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
