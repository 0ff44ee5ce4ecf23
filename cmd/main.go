package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/adapter/postgres"
	"github.com/YelzhanWeb/canteen/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/canteen/internal/adapter/redisx"
	"github.com/YelzhanWeb/canteen/internal/app/menu"
	"github.com/YelzhanWeb/canteen/internal/app/order"
	"github.com/YelzhanWeb/canteen/internal/app/sweeper"
	"github.com/YelzhanWeb/canteen/internal/app/user"
	"github.com/YelzhanWeb/canteen/internal/config"
	"github.com/YelzhanWeb/canteen/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/canteen/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/canteen/internal/adapter/http"
)

func main() {
	// Parse command-line flags
	mode := flag.String("mode", "api", "Service mode: api, notification-subscriber")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Initialize logger
	lgr := logger.New(*mode)

	// Connect to RabbitMQ
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	switch *mode {
	case "api":
		runAPIService(ctx, cfg, mqConn, lgr)

	case "notification-subscriber":
		runNotificationSubscriber(ctx, mqConn, lgr)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runAPIService(ctx context.Context, cfg *config.Config, mqConn rabbitmq.Connection, lgr logger.Logger) {
	// Connect to PostgreSQL
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	if err := postgres.CreateTables(ctx, db); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Connect to Redis
	rdb := redisx.New(cfg.Redis.Addr)
	defer rdb.Close()

	// Initialize repositories
	menuRepo := postgres.NewMenuRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Initialize messaging and cache
	publisher := rabbitmq.NewPublisher(mqConn)
	statusCache := redisx.NewStatusCache(rdb)

	// Initialize services
	orderService := order.NewService(db, orderRepo, menuRepo, userRepo, publisher, statusCache, lgr, cfg.PaymentWindow())
	menuService := menu.NewService(menuRepo, lgr)
	userService := user.NewService(userRepo, lgr)
	sweeperService := sweeper.NewService(orderRepo, orderService, lgr, cfg.SweepInterval())

	if cfg.Sweeper.AutoStart {
		if err := sweeperService.Start(ctx); err != nil {
			log.Fatalf("Failed to start sweeper: %v", err)
		}
	}

	// Setup HTTP server
	handler := httpAdapter.NewRouter(httpAdapter.Services{
		Orders:  orderService,
		Menu:    menuService,
		Users:   userService,
		Sweeper: sweeperService,
	}, lgr)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Canteen API started on port %d", cfg.HTTP.Port), "startup", map[string]interface{}{
		"port":           cfg.HTTP.Port,
		"sweeper_auto":   cfg.Sweeper.AutoStart,
		"sweep_interval": cfg.SweepInterval().String(),
	})

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down Canteen API", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// The sweeper stops first so no sweep runs against a draining server.
		if err := sweeperService.Stop(shutdownCtx); err != nil && err != sweeper.ErrNotRunning {
			lgr.Error("shutdown_error", "Error stopping sweeper", "shutdown", nil, err)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runNotificationSubscriber(ctx context.Context, mqConn rabbitmq.Connection, lgr logger.Logger) {
	consumer := rabbitmq.NewConsumer(mqConn)
	notificationHandler := amqpAdapter.NewNotificationHandler(lgr)

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	lgr.Info("service_started", "Notification Subscriber started", "startup", nil)

	// Start consuming notifications
	go func() {
		if err := consumer.ConsumeOrderStatus(consumeCtx, interfaces.OrderStatusHandler(notificationHandler.HandleNotification)); err != nil && err != context.Canceled {
			lgr.Error("consumer_error", "Error consuming order events", "runtime", nil, err)
		}
	}()

	// Wait for shutdown signal
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
}
