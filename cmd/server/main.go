package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MitulMistry/paper-trader/internal/api"
	"github.com/MitulMistry/paper-trader/internal/common"
	"github.com/MitulMistry/paper-trader/internal/config"
	"github.com/MitulMistry/paper-trader/internal/database"
	"github.com/MitulMistry/paper-trader/internal/kafka"
	"github.com/MitulMistry/paper-trader/internal/ledger"
	"github.com/MitulMistry/paper-trader/internal/news"
	"github.com/MitulMistry/paper-trader/internal/quotes"
)

const migrationsPath = "db/migrations"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := common.NewLogger(cfg.LogLevel)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// The quote cache is best-effort: if Redis is down the quote client just
	// hits the provider on every lookup.
	var cache *redis.Client
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, quote caching disabled")
	} else {
		cache = rdb
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	quoteClient := quotes.NewClient(cfg.Quotes, cache, log)
	newsClient := news.NewClient(cfg.News)

	engine := ledger.New(db, quoteClient, producer, log)

	auth := api.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	handler := api.NewHandler(engine, quoteClient, newsClient, auth, log)
	router := api.SetupRoutes(handler, auth, log)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
