package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"casino-lobby/internal/config"
	"casino-lobby/internal/engine"
	"casino-lobby/internal/games"
	"casino-lobby/internal/handlers"
	"casino-lobby/internal/logger"
	"casino-lobby/internal/middleware"
	"casino-lobby/internal/monitor"
	"casino-lobby/internal/rng"
	"casino-lobby/internal/services"
	"casino-lobby/internal/timer"
)

const (
	cleanupInterval = 5 * time.Minute
	staleAfter      = 10 * time.Minute
	// With Redis an evicted player is restored on its next request.
	restorableIdle = 30 * time.Minute
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger.Init(cfg.Env)
	defer logger.Sync()
	if envErr != nil {
		logger.Log.Info("No .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(cfg)
		if err != nil {
			logger.Log.Fatalw("Failed to connect to Redis", "error", err)
		}
		defer redisService.Close()
	} else {
		logger.Log.Warn("REDIS_URL not set, players live in memory only")
	}

	var (
		src  rng.Source = rng.NewCrypto()
		fair *rng.Fair
	)
	if cfg.RNGMode == "hmac" {
		fair, err = rng.NewFair(cfg.ServerSeed, "")
		if err != nil {
			logger.Log.Fatalw("Failed to seed provably fair source", "error", err)
		}
		src = fair
		logger.Log.Infow("Provably fair mode enabled", "server_hash", fair.ServerHash())
	}

	mon := monitor.NewMonitor(cfg.MetricsNamespace)
	hub := handlers.NewWebSocketHub(mon)
	scheduler := timer.NewManager()

	opts := engine.Options{
		Limits:          cfg.BetLimits(),
		StartingCredits: cfg.StartingCredits,
		CrashTick:       cfg.CrashTick,
		RevealDelay:     cfg.RevealDelay,
		DealerDelay:     cfg.DealerDelay,
		Location:        cfg.Location(),
		Generator:       games.NewGenerator(src),
		Scheduler:       scheduler,
		Broadcaster:     hub,
		Metrics:         mon,
		Fair:            fair,
	}
	if redisService != nil {
		opts.Store = redisService
	}
	gameEngine, err := engine.New(opts)
	if err != nil {
		logger.Log.Fatalw("Failed to create engine", "error", err)
	}

	go scheduler.Run(ctx)
	go hub.Run(ctx)
	go gameEngine.Run(ctx)

	idleAfter := cfg.PlayerIdleTTL
	if redisService != nil {
		idleAfter = min(idleAfter, restorableIdle)
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := gameEngine.CleanupStale(staleAfter); n > 0 {
					logger.Log.Infow("Cleaned up stale sessions", "abandoned", n)
				}
				gameEngine.Lobby().EvictIdle(idleAfter)
			}
		}
	}()

	if fair != nil && cfg.SeedRotation > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SeedRotation)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := gameEngine.RotateSeed(); err != nil {
						logger.Log.Errorw("Failed to rotate server seed", "error", err)
					}
				}
			}
		}()
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)

	authHandler := handlers.NewAuthHandler(gameEngine, jwtService)
	userHandler := handlers.NewUserHandler(gameEngine)
	gameHandler := handlers.NewGameHandler(gameEngine)
	wsHandler := handlers.NewWebSocketHandler(gameEngine, hub)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), mon.GinMiddleware(), middleware.CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "players": gameEngine.Lobby().Len()}
		if redisService != nil {
			if err := redisService.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, status)
	})
	router.GET("/metrics", gin.WrapH(mon.Handler()))
	router.POST("/auth/guest", authHandler.Guest)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	if redisService != nil {
		protected.Use(middleware.RateLimitMiddleware(redisService))
	}
	handlers.RegisterRoutes(protected, gameHandler, userHandler, wsHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Infow("Server starting", "port", cfg.Port, "env", cfg.Env, "rng_mode", cfg.RNGMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalw("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("Server shutdown failed", "error", err)
	}
}
