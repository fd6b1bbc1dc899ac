package main

import (
	"fmt"
	"log"
	"time"

	"github.com/fitgate/fitgate/api"
	"github.com/fitgate/fitgate/config"
	"github.com/fitgate/fitgate/core/flow"
	"github.com/fitgate/fitgate/core/logger"
	"github.com/fitgate/fitgate/core/session"
	"github.com/fitgate/fitgate/ggorm"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	defer logger.Log.Sync()

	logger.Log.Info("Starting FitGate Authentication Service",
		zap.Int("port", cfg.Port),
		zap.String("db_type", cfg.DBType),
	)

	storage, err := ggorm.NewStorage(cfg.DBType, cfg.DSN, nil)
	if err != nil {
		logger.Log.Fatal("failed to initialize storage", zap.Error(err))
	}

	sessions := session.NewManager(storage)
	sessions.SetExpiryCheck(cfg.CheckTokenExpiry)
	sessions.SetTTL(time.Duration(cfg.TokenTTLMinutes) * time.Minute)
	sessions.SetLogger(logger.Log)

	auth := flow.NewAuthenticator(storage, sessions)
	auth.SetLogger(logger.Log)
	auth.SetAuditStore(storage)

	if cfg.RateLimitEnabled {
		var limiter flow.RateLimiter = flow.NewMemoryRateLimiter()
		if cfg.RedisAddr != "" {
			client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			limiter = flow.NewRedisRateLimiter(client, "")
		}
		auth.SetRateLimiter(limiter, cfg.RateLimitPerMinute, time.Minute)
	}

	registrar := flow.NewRegistrar(storage, flow.NewBcryptHasher(0))

	h := api.NewHandler(auth, registrar)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	g := e.Group("/api/v1")
	h.RegisterRoutes(g)

	logger.Log.Info("Server is starting", zap.Int("port", cfg.Port))
	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Log.Fatal("server failed to start", zap.Error(err))
	}
}
