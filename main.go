package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cncdesign/cncbackend/config"
	"github.com/cncdesign/cncbackend/database"
	"github.com/cncdesign/cncbackend/logging"
	"github.com/cncdesign/cncbackend/metrics"
	"github.com/cncdesign/cncbackend/middleware"
	"github.com/cncdesign/cncbackend/repository"
	"github.com/cncdesign/cncbackend/routes"
	"github.com/cncdesign/cncbackend/storage"
	"github.com/cncdesign/cncbackend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.Server.LogLevel)
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg.Database)
	if err != nil {
		logging.Fatal("database unavailable", "driver", cfg.Database.Driver, "error", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			slog.Error("close stores", "error", err)
		}
	}()

	//seeding admin user
	if err := utils.SeedAdminUser(ctx, stores.Users, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logging.Fatal("seed admin", "error", err)
	}
	if cfg.Database.SeedProjects {
		if _, err := utils.SeedSampleProjects(ctx, stores.Projects); err != nil {
			logging.Fatal("seed projects", "error", err)
		}
	}

	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logging.Fatal("object storage unavailable", "driver", cfg.Storage.Driver, "error", err)
	}
	if objects == nil {
		slog.Warn("STORAGE_DRIVER=none, /uploads is disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	newLimiter, closeLimiter := rateLimiter(ctx, cfg.RateLimit)
	defer closeLimiter()

	r := gin.New()
	r.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	routes.Register(r, routes.Dependencies{
		Config:     cfg,
		Stores:     stores,
		Objects:    objects,
		NewLimiter: newLimiter,
		Gatherer:   reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func openStores(ctx context.Context, cfg config.DatabaseConfig) (*repository.Stores, error) {
	switch cfg.Driver {
	case "mongo":
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.DatabaseName)
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return repository.NewMongoStores(client, db), nil
	case "postgres":
		db, err := database.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := repository.AutoMigrateGorm(db); err != nil {
			return nil, err
		}
		return repository.NewGormStores(db), nil
	case "memory":
		slog.Warn("DB_DRIVER=memory, data is lost on restart")
		return repository.NewMemoryStore().Stores(), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}
}

// rateLimiter prefers Redis so every replica shares one budget, and falls
// back to per-process token buckets when REDIS_ADDR is unset or unreachable.
func rateLimiter(ctx context.Context, cfg config.RateLimitConfig) (func() gin.HandlerFunc, func()) {
	memory := func() gin.HandlerFunc { return middleware.RateLimitMiddleware(cfg.RPS, cfg.Burst) }
	if cfg.RedisAddr == "" {
		return memory, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unreachable, using in-memory rate limiter", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return memory, func() {}
	}

	slog.Info("using redis rate limiter", "addr", cfg.RedisAddr)
	return func() gin.HandlerFunc {
			return middleware.RedisRateLimitMiddleware(client, cfg.RPS, cfg.Burst, cfg.Window)
		}, func() {
			_ = client.Close()
		}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowedOrigins := map[string]bool{}
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}
	slog.Info("allowed origins", "origins", origins)
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
