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
	"go.uber.org/zap"

	"charity-events/config"
	"charity-events/internal/cache"
	"charity-events/internal/database"
	"charity-events/internal/handler"
	"charity-events/internal/repository"
	"charity-events/internal/service"
	"charity-events/pkg/logger"
)

func main() {
	defer logger.Sync()
	log := logger.WithComponent("server")

	cfg := config.LoadConfig()
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	checks := map[string]handler.Check{
		"postgres": pool.Ping,
	}

	// the listing cache is optional; without Redis every read hits Postgres
	var listingCache cache.ListingCache
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, running without listing cache", zap.Error(err))
	} else {
		defer rdb.Close()
		listingCache = cache.NewRedisListingCache(rdb, cfg.Server.CacheTTL)
		// listings cached by a previous run may predate the last data load
		if err := listingCache.Invalidate(ctx); err != nil {
			log.Warn("Failed to invalidate listing cache", zap.Error(err))
		}
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	eventRepo := repository.NewEventRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	eventService := service.NewEventService(eventRepo, categoryRepo, listingCache)

	router := handler.NewRouter(cfg.Server, handler.NewEventHandler(eventService), handler.NewHealthHandler(checks))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr), zap.String("static_dir", cfg.Server.StaticDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
