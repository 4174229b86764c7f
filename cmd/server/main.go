package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/astroev/stores-api/internal/breach"
	"github.com/astroev/stores-api/internal/config"
	"github.com/astroev/stores-api/internal/es"
	"github.com/astroev/stores-api/internal/handlers"
	"github.com/astroev/stores-api/internal/jobs"
	"github.com/astroev/stores-api/internal/logging"
	authmw "github.com/astroev/stores-api/internal/middleware/auth"
	loggingmw "github.com/astroev/stores-api/internal/middleware/logging"
	"github.com/astroev/stores-api/internal/revocation"
	"github.com/astroev/stores-api/internal/service/search"
	"github.com/astroev/stores-api/internal/tokens"
	httpserver "github.com/astroev/stores-api/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	tokenService := tokens.NewService([]byte(configuration.JWT_SECRET))

	var registry revocation.Registry
	var redisRegistry *revocation.Redis
	if configuration.REDIS_ADDR != "" {
		redisRegistry = revocation.NewRedis(configuration.REDIS_ADDR, tokenService.RefreshTTL)
		registry = redisRegistry
	} else {
		logger.Warn("REDIS_ADDR not set, using in-memory revocation registry; revocations will not survive a restart")
		registry = revocation.NewMemory()
	}

	producer := jobs.NewProducer(configuration.KAFKA_ADDRESS)

	var searchHandler *handlers.SearchHandler
	var itemHandler *handlers.ItemHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: search.ItemIndex}
		itemHandler = &handlers.ItemHandler{DB: db, ES: esClient, Index: search.ItemIndex}
	} else {
		logger.Warn("ES_URL not set, item search disabled")
		itemHandler = &handlers.ItemHandler{DB: db}
	}

	gate := &authmw.Gate{Tokens: tokenService, Registry: registry}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Gate: gate,
		AuthHandler: &handlers.AuthHandler{
			DB:       db,
			Tokens:   tokenService,
			Registry: registry,
			Queue:    producer,
			Breach:   breach.NewPwnedClient(),
		},
		StoreHandler:  &handlers.StoreHandler{DB: db},
		ItemHandler:   itemHandler,
		TagHandler:    &handlers.TagHandler{DB: db},
		SearchHandler: searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.HTTP_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "port", configuration.HTTP_PORT)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if redisRegistry != nil {
		if err := redisRegistry.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
