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

	"ms-boleteria/internal/config"
	"ms-boleteria/internal/database"
	"ms-boleteria/internal/database/migrations"
	"ms-boleteria/internal/directory"
	"ms-boleteria/internal/events"
	"ms-boleteria/internal/events/event_api"
	"ms-boleteria/internal/kafka"
	"ms-boleteria/internal/logger"
	"ms-boleteria/internal/notify"
	"ms-boleteria/internal/purchase"
	"ms-boleteria/internal/purchase/purchase_api"
	"ms-boleteria/internal/tickets"
	"ms-boleteria/internal/tickets/qr"
	"ms-boleteria/internal/tickets/ticket_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Database, cfg.Database.SSLMode)

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Boleteria Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	runner := migrations.NewRunner(bunDB, "./migrations")
	if err := runner.Up(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	logger.Info("DATABASE", "Schema migrations applied")

	// Typed nils would dodge the services' nil checks, so the interface vars
	// are only assigned when Kafka is actually on.
	var purchasePublisher purchase.Publisher
	var eventPublisher events.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		logger.Info("KAFKA", "Kafka producer initialized successfully")

		requiredTopics := []string{
			cfg.Kafka.Topics.TicketsPurchased,
			cfg.Kafka.Topics.EventsChanged,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}

		publisher := &kafka.Publisher{
			Producer:         producer,
			TicketsPurchased: cfg.Kafka.Topics.TicketsPurchased,
			EventsChanged:    cfg.Kafka.Topics.EventsChanged,
		}
		purchasePublisher = publisher
		eventPublisher = publisher
	} else {
		logger.Warn("KAFKA", "Kafka disabled, integration events will not be published")
	}

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.TicketsPurchased, cfg.Kafka.GroupID)
		defer consumer.Close()
		go consumer.Start(consumerCtx, func(key, value []byte) {
			logger.LogKafka("CONSUME", cfg.Kafka.Topics.TicketsPurchased,
				fmt.Sprintf("purchase event for %s (%d bytes)", key, len(value)))
		})
		logger.Info("KAFKA", "Purchase event audit consumer started")
	}

	stores := database.NewStores(bunDB)
	qrGenerator := qr.NewGenerator(cfg.QR.Secret)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	directoryClient := directory.NewClient(cfg.Directory.BaseURL, httpClient)
	mailer := notify.NewSMTPMailer(cfg.Email)
	confirmations := notify.NewConfirmationSender(stores.Events, directoryClient, mailer, logger)

	queue := notify.NewQueue(redisClient, logger,
		notify.WithRetryPolicy(cfg.Notify.MaxAttempts, cfg.Notify.BackoffBase))
	worker := notify.NewWorker(queue, stores.Tickets, directoryClient, mailer, logger)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go worker.Run(workerCtx)
	logger.Info("QUEUE", "Notification worker started")

	ticketService := tickets.NewTicketService(stores.Tickets, qrGenerator)
	purchaseService := purchase.NewService(purchase.NewBunStores(stores), purchasePublisher, confirmations, qrGenerator, logger)
	eventService := events.NewService(stores.Events, queue, eventPublisher, logger)

	purchaseHandler := purchase_api.NewHandler(purchaseService, logger)
	ticketHandler := ticket_api.NewHandler(ticketService, logger)
	eventHandler := event_api.NewHandler(eventService, logger)

	logger.Info("HTTP", "Setting up router")
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/purchase", func(r chi.Router) {
			r.Post("/", purchaseHandler.Purchase)
			r.Post("/basket", purchaseHandler.PurchaseBasket)
		})
		logger.Info("ROUTER", "Purchase routes registered under /api/purchase")

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/user/{userID}", ticketHandler.GetTicketsByUser)
			r.Post("/checkin", ticketHandler.CheckinTicket)
			r.Post("/{ticketID}/use", ticketHandler.UseTicket)
			r.Post("/{ticketID}/cancel", ticketHandler.CancelTicket)
		})
		logger.Info("ROUTER", "Ticket routes registered under /api/tickets")

		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.CreateEvent)
			r.Get("/{eventID}", eventHandler.GetEvent)
			r.Put("/{eventID}", eventHandler.UpdateEvent)
		})
		logger.Info("ROUTER", "Event routes registered under /api/events")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Boleteria Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	stopWorker()
	stopConsumer()
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Boleteria Service shutdown complete")
	}
}
