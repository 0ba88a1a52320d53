package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/genre"
	"bookshelf/internal/httpx"
	"bookshelf/internal/logging"
	"bookshelf/internal/platform/postgres"
	"bookshelf/internal/platform/redisclient"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, flush := logging.New(logging.Options{
		IsProduction: cfg.IsProduction,
		Level:        cfg.LogLevel,
		Service:      "bookshelf-api",
	})

	err = run(cfg, logger)
	if err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
	flush()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	logger.Info("database connection OK", zap.String("dsn", postgres.RedactDSN(cfg.DatabaseDSN)))

	genreRepository := genre.NewPostgresRepo(dbPool, cfg.QueryTimeout)
	var catalog genre.Catalog = genreRepository
	var blacklist httpx.BlacklistRepository

	if cfg.Redis.Addr != "" {
		client, err := redisclient.Open(ctx, redisclient.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		catalog = genre.NewCachedCatalog(genreRepository, client, cfg.Redis.GenreTTL, logger)
		blacklist = auth.NewRedisBlacklist(client)
		logger.Info("redis enabled", zap.String("addr", cfg.Redis.Addr))
	}

	bookRepository := book.NewPostgresRepo(dbPool, cfg.QueryTimeout)
	bookService := book.NewService(bookRepository, catalog)

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	handler := newRouter(routerDeps{
		Books:          book.NewHTTPHandler(bookService, logger),
		Genres:         genre.NewHTTPHandler(catalog, logger),
		JWTSecret:      cfg.JWTSecret,
		Blacklist:      blacklist,
		Ready:          dbPool.Ping,
		Logger:         logger,
		RateLimiter:    rateLimiter,
		AllowedOrigins: cfg.AllowedOrigins,
		EnableHSTS:     cfg.EnableHSTS,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-rateLimiter.Done()
	return nil
}
