package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"boleia/internal/app"
	"boleia/internal/config"
	"boleia/internal/domain"
	"boleia/internal/handler"
	internalRedis "boleia/internal/redis"
	"boleia/internal/repository/postgres"
	"boleia/internal/service"
	"boleia/internal/stream"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Ride events fan out to the in-process hub (WebSocket observers)
	// and, when enabled, to RabbitMQ for fleet dashboards.
	hub := stream.NewHub()
	publisher := stream.Fanout{hub}

	if cfg.AMQP.Enabled {
		amqpConn, amqpCh, err := app.NewAMQPChannel(cfg.AMQP)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer amqpConn.Close()

		amqpPublisher, err := stream.NewAMQPPublisher(amqpCh)
		if err != nil {
			log.Fatalf("failed to declare ride events exchange: %v", err)
		}
		publisher = append(publisher, amqpPublisher)
		log.Println("Connected to RabbitMQ")
	}

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, hub, publisher, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	hub *stream.Hub,
	publisher stream.Publisher,
	cfg *config.Config,
) *http.Server {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)

	// Initialize repositories.
	txManager := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	chatRepo := postgres.NewChatRepository(db)

	// Initialize services.
	splitPolicy := domain.SplitPolicy{
		FeeRate:           cfg.Dispatch.PlatformFeeRate,
		PlatformAccountID: cfg.Dispatch.PlatformAccountID,
	}
	dispatchService := service.NewDispatchService(
		txManager, locationStore, lockStore,
		driverRepo, vehicleRepo, rideRepo,
		publisher, cfg.Dispatch.SearchRadiusKm,
	)
	settlementService := service.NewSettlementService(txManager, publisher, splitPolicy)
	lifecycleService := service.NewLifecycleService(txManager, rideRepo, driverRepo, settlementService, publisher)
	rideService := service.NewRideService(rideRepo, userRepo, dispatchService)
	driverService := service.NewDriverService(driverRepo, vehicleRepo, rideRepo, locationStore, publisher)
	chatService := service.NewChatService(chatRepo, rideRepo, publisher)
	userService := service.NewUserService(userRepo, walletRepo, ledgerRepo)

	// Initialize handlers.
	userHandler := handler.NewUserHandler(userService)
	rideHandler := handler.NewRideHandler(rideService, lifecycleService, settlementService, chatService)
	driverHandler := handler.NewDriverHandler(driverService)
	streamHandler := handler.NewStreamHandler(hub, rideService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		UserHandler:   userHandler,
		RideHandler:   rideHandler,
		DriverHandler: driverHandler,
		StreamHandler: streamHandler,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
	})

	// Create HTTP server. WriteTimeout stays unset: it would sever the
	// long-lived /stream WebSocket connections; handlers bound their own
	// writes via per-message deadlines.
	return &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
	}
}
