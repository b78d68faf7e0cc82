package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/workforce-api/internal/auth"
	"github.com/yukikurage/workforce-api/internal/config"
	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/logger"
	"github.com/yukikurage/workforce-api/internal/ratelimit"
	"github.com/yukikurage/workforce-api/internal/router"
	"github.com/yukikurage/workforce-api/internal/services"
)

func main() {
	if err := run(); err != nil {
		logger.Get().Error().Err(err).Msg("server exited")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("close database failed")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.QueryTimeout)
	err = database.Ping(pingCtx, db)
	cancel()
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("close redis failed")
			}
		}()
	} else {
		log.Warn().Msg("REDIS_ADDR not set, auth rate limiting disabled")
	}

	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("init password hasher: %w", err)
	}

	aiService := services.NewAIService(cfg.OpenAI)
	if aiService == nil {
		log.Info().Msg("OPENAI_API_KEY not set, task generation disabled")
	}

	engine := router.New(router.Deps{
		Gateway:        database.NewGateway(db, cfg.Database.QueryTimeout),
		Redis:          rdb,
		Tokens:         auth.NewTokenManager(cfg.Auth),
		Hasher:         hasher,
		AI:             aiService,
		Limiter:        ratelimit.NewLimiter(rdb, "", cfg.RateLimit.AuthRate, cfg.RateLimit.AuthBurst),
		Logger:         log,
		Debug:          cfg.IsDevelopment(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
