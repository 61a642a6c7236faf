package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/config"
	"github.com/pharmakart/pharmacy-backend/internal/database"
	"github.com/pharmakart/pharmacy-backend/internal/events"
	"github.com/pharmakart/pharmacy-backend/internal/migrations"
	"github.com/pharmakart/pharmacy-backend/internal/modules/account"
	"github.com/pharmakart/pharmacy-backend/internal/modules/auth"
	"github.com/pharmakart/pharmacy-backend/internal/modules/inventory"
	"github.com/pharmakart/pharmacy-backend/internal/modules/lifecycle"
	"github.com/pharmakart/pharmacy-backend/internal/modules/order"
	"github.com/pharmakart/pharmacy-backend/internal/modules/report"
	"github.com/pharmakart/pharmacy-backend/internal/modules/tenancy"
	"github.com/pharmakart/pharmacy-backend/internal/modules/token"
)

func main() {
	godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Msg("connected to database")

	migrations.Run(db, log)

	// Revocation is a no-op unless Redis is configured; tokens then stay
	// valid until expiry.
	revoked := token.NewNopList()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		revoked = token.NewRedisList(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("token revocation backed by redis")
	}
	tokens := token.NewService(cfg.Secret, cfg.TokenTTL, revoked)

	publisher := events.NewNop()
	if cfg.KafkaBroker != "" {
		publisher = events.NewKafka(cfg.KafkaBroker, cfg.KafkaTopic)
		defer publisher.Close()
		log.Info().Str("broker", cfg.KafkaBroker).Str("topic", cfg.KafkaTopic).Msg("sale events published to kafka")
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	accountRepo := account.NewPostgresRepository(db)
	resolver := tenancy.NewResolver(tokens, accountRepo, log)

	authService := auth.NewService(accountRepo, tokens, log)
	auth.NewHandler(authService, tokens, resolver, log).RegisterRoutes(router)

	lifecycleService := lifecycle.NewService(accountRepo, tokens, log)
	lifecycle.NewHandler(lifecycleService, resolver, log).RegisterRoutes(router)

	inventoryRepo := inventory.NewPostgresRepository(db)
	inventoryService := inventory.NewService(inventoryRepo, log)
	inventory.NewHandler(inventoryService, resolver, log).RegisterRoutes(router)

	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, order.NewNopAdjuster(), publisher, log)
	order.NewHandler(orderService, resolver, log).RegisterRoutes(router)

	reportRepo := report.NewPostgresRepository(db)
	reportService := report.NewService(reportRepo, log)
	report.NewHandler(reportService, resolver, log).RegisterRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Info().Str("port", cfg.HTTPPort).Msg("pharmacy api listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
