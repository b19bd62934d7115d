package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"grosave/internal/auth"
	authapi "grosave/internal/auth/api"
	authdb "grosave/internal/auth/db"
	"grosave/internal/catalog"
	catalogapi "grosave/internal/catalog/api"
	catalogdb "grosave/internal/catalog/db"
	"grosave/internal/config"
	"grosave/internal/database/migrations"
	"grosave/internal/earn"
	earnapi "grosave/internal/earn/api"
	"grosave/internal/impact"
	impactapi "grosave/internal/impact/api"
	"grosave/internal/kafka"
	"grosave/internal/logger"
	notifapi "grosave/internal/notification/api"
	notifdb "grosave/internal/notification/db"
	"grosave/internal/order"
	orderdb "grosave/internal/order/db"
	"grosave/internal/order/order_api"
	"grosave/internal/order/qr"
	"grosave/internal/pickup"
	pickupapi "grosave/internal/pickup/api"
	pickupdb "grosave/internal/pickup/db"
	pricingapi "grosave/internal/pricing/api"
	"grosave/internal/wallet"
	walletapi "grosave/internal/wallet/api"
	walletdb "grosave/internal/wallet/db"
)

func connectPostgres(cfg *config.Config, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL connection failed: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("PostgreSQL unreachable after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting GroSave API initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()
	bunDB := connectPostgres(cfg, log)
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, cfg.Database.MigrationsDir)
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		if version, _, err := runner.Version(); err == nil {
			log.Info("DATABASE", fmt.Sprintf("Schema at version %d", version))
		}
	}
	redisClient := connectRedis(ctx, cfg, log)
	defer redisClient.Close()

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.OrderEvents, cfg.Kafka.Topics.WalletEvents}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.OrderEvents)
		defer producer.Close()
		log.Info("KAFKA", "Kafka producer initialized")
	} else {
		log.Warn("KAFKA", "Kafka disabled, order events will not be streamed")
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	otpStore := auth.NewRedisOTPStore(redisClient, cfg.Auth.OTPTTL)
	authService := auth.NewService(&authdb.DB{Bun: bunDB}, otpStore, tokens, cfg.Wallet.MonthlyAllocation)

	walletService := wallet.NewWalletService(&walletdb.DB{Bun: bunDB})
	earnService := earn.NewEarnService(&walletdb.DB{Bun: bunDB}, cfg.Wallet.MaxBonusPerMonth)
	catalogService := catalog.NewCatalogService(&catalogdb.DB{Bun: bunDB})
	pickupService := pickup.NewService(&pickupdb.DB{Bun: bunDB})
	impactService := impact.NewService(impact.NewDB(bunDB))

	var publisher order.KafkaPublisher
	if producer != nil {
		publisher = producer
	}
	orderService := order.NewOrderService(&orderdb.DB{Bun: bunDB}, publisher, log, cfg.Pickup.DefaultSlotCapacity)

	authHandler := &authapi.Handler{Auth: authService, Logger: log}
	walletHandler := &walletapi.Handler{Wallet: walletService, Logger: log}
	earnHandler := &earnapi.Handler{Service: earnService, Logger: log}
	catalogHandler := &catalogapi.Handler{Catalog: catalogService, Logger: log}
	pickupHandler := &pickupapi.Handler{Pickup: pickupService, Logger: log}
	impactHandler := &impactapi.Handler{Service: impactService, Logger: log}
	notifHandler := &notifapi.Handler{DB: &notifdb.DB{Bun: bunDB}, Logger: log}
	pricingHandler := &pricingapi.Handler{Logger: log}
	orderHandler := order_api.NewHandler(orderService, qr.NewGenerator(), log)
	adminHandler := &order_api.AdminHandler{DB: &orderdb.DB{Bun: bunDB}, Token: cfg.Auth.DemoAdmin, Logger: log}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// --- Public routes ---
		r.Post("/auth/send-otp", authHandler.SendOTP)
		r.Post("/auth/verify-otp", authHandler.VerifyOTP)

		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/categories", catalogHandler.ListCategories)
		r.Get("/products/{productId}", catalogHandler.GetProduct)

		r.Get("/pickup-locations", pickupHandler.GetLocations)
		r.Get("/pickup-slots", pickupHandler.GetSlots)

		r.Post("/pricing/suggest", pricingHandler.SuggestPrice)

		r.Post("/demo-admin/orders/{orderId}/transition", adminHandler.ForceTransition)

		// --- Authenticated routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens))

			r.Post("/users/register", authHandler.Register)
			r.Get("/users/profile", authHandler.GetProfile)
			r.Put("/users/profile", authHandler.UpdateProfile)

			r.Get("/wallet/balance", walletHandler.Balance)
			r.Get("/wallet/transactions", walletHandler.Transactions)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/reserve", orderHandler.Reserve)
				r.Get("/active", orderHandler.ActiveOrders)
				r.Get("/past", orderHandler.PastOrders)
				r.Get("/{orderId}", orderHandler.GetOrder)
				r.Get("/{orderId}/qr", orderHandler.PickupQR)
				r.Post("/{orderId}/cancel", orderHandler.Cancel)
				r.Post("/{orderId}/ready", orderHandler.MarkReady)
				r.Post("/{orderId}/scanned", orderHandler.MarkScanned)
				r.Post("/{orderId}/complete", orderHandler.Complete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notifHandler.List)
				r.Post("/{notificationId}/read", notifHandler.MarkRead)
				r.Post("/read-all", notifHandler.MarkAllRead)
			})

			r.Get("/impact", impactHandler.GetImpact)
			r.Post("/earn/{action}", earnHandler.Earn)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("GroSave API running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
	log.Info("APP", "Shutdown complete")
}
