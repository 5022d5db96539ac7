package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mbolis/quick-forms/analytics"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/cache"
	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	if cfg.AdminUser != "" {
		if err := db.EnsureOwner(ctx, cfg.AdminUser, cfg.AdminPassword); err != nil {
			log.Fatal("main.db.ensure_owner:", err)
		}
	}

	reports, closeCache := reportCache(ctx, cfg)
	defer closeCache()

	app := app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
		Reports:      reports,
		Engine:       analytics.NewEngine(cfg.Location),
	}

	handler := routes.Wire(app)

	err = runServer(ctx, cfg, handler)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func reportCache(ctx context.Context, cfg config.Config) (cache.ReportCache, func()) {
	switch {
	case cfg.ReportCacheTTL <= 0:
		log.Info("Report cache disabled")
		return cache.None(), func() {}

	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warnf("main.redis.ping: %s", err)
		}
		log.Info("Caching reports in redis at " + cfg.RedisAddr)
		return cache.NewRedis(client, cfg.ReportCacheTTL), func() { client.Close() }

	default:
		return cache.NewMemory(ctx, cfg.ReportCacheTTL), func() {}
	}
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("main.server.shutdown: %s", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
