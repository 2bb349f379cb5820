package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/config"
	"github.com/truckledger/service-logistics/internal/domain/proximity"
	"github.com/truckledger/service-logistics/internal/domain/quote"
	fleetEvents "github.com/truckledger/service-logistics/internal/events"
	"github.com/truckledger/service-logistics/internal/geocode"
	"github.com/truckledger/service-logistics/internal/handler"
	"github.com/truckledger/service-logistics/internal/platform/cache"
	"github.com/truckledger/service-logistics/internal/platform/database"
	"github.com/truckledger/service-logistics/internal/platform/health"
	"github.com/truckledger/service-logistics/internal/platform/kafka"
	"github.com/truckledger/service-logistics/internal/platform/logger"
	"github.com/truckledger/service-logistics/internal/platform/middleware"
	"github.com/truckledger/service-logistics/internal/repository"
	"go.uber.org/zap"
)

const serviceName = "service-logistics"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.DriverModel{},
			&repository.VehicleModel{},
			&repository.TripModel{},
			&repository.LedgerEntryModel{},
			&repository.RoutePointModel{},
			&repository.StopModel{},
			&repository.ScheduleModel{},
			&repository.NoteModel{},
			&repository.KVModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb, err := cache.NewRedis(cfg.RedisConfig, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Repositories
	driverRepo := repository.NewGormDriverRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	tripRepo := repository.NewGormTripRepository(db)
	ledgerRepo := repository.NewGormLedgerRepository(db)
	routeRepo := repository.NewGormRouteRepository(db)
	stopRepo := repository.NewGormStopRepository(db)
	scheduleRepo := repository.NewGormScheduleRepository(db)
	noteRepo := repository.NewGormNoteRepository(db)
	kvRepo := repository.NewGormKVRepository(db)
	sessionStore := repository.NewRedisSessionStore(rdb)
	liveStore := repository.NewRedisLiveStore(rdb)

	nominatim := geocode.NewNominatimClient(geocode.Config{
		BaseURL:     cfg.GeocodeConfig.BaseURL,
		UserAgent:   cfg.GeocodeConfig.UserAgent,
		CountryCode: cfg.GeocodeConfig.CountryCode,
		Timeout:     cfg.GeocodeConfig.Timeout,
		MaxRetries:  3,
	}, log)
	geocoder := geocode.NewCachedGeocoder(nominatim, rdb, cfg.GeocodeConfig.CacheTTL, log)

	tracker := proximity.NewArrivalTracker(cfg.ProximityConfig.ThresholdMeters, cfg.ProximityConfig.HysteresisMeters)

	// Application services
	sessionService := application.NewSessionService(sessionStore, driverRepo, cfg.SessionConfig.TTL, log)
	driverService := application.NewDriverService(driverRepo)
	vehicleService := application.NewVehicleService(vehicleRepo)
	ledgerService := application.NewLedgerService(ledgerRepo)
	tripService := application.NewTripService(tripRepo, ledgerRepo, kafkaProducer, log)
	routeService := application.NewRouteService(routeRepo)
	stopService := application.NewStopService(stopRepo, kafkaProducer, log)
	trackingService := application.NewTrackingService(routeRepo, stopRepo, liveStore, tracker, kafkaProducer, log)
	scheduleService := application.NewScheduleService(scheduleRepo, application.LoadTimezone(application.DefaultTimezone))
	noteService := application.NewNoteService(noteRepo)
	quoteService := application.NewQuoteService(geocoder, quote.NewStandardPricingStrategy(), log)
	discoveryService := application.NewDiscoveryService(routeRepo, scheduleRepo, driverRepo, log)
	kvService := application.NewKVService(kvRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Position stream from gateways
	groupID := cfg.KafkaConfig.GroupPrefix + "logistics-positions"
	positionConsumer := fleetEvents.NewPositionEventConsumer(cfg.KafkaConfig.Brokers, groupID, trackingService, log)
	defer func() { _ = positionConsumer.Close() }()

	go func() {
		log.Info("starting position event consumer")
		if err := positionConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("position event consumer error", zap.Error(err))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(db, rdb, serviceName).RegisterRoutes(router)

	api := router.Group("/api")
	guards := handler.NewGuards(sessionService)
	handler.NewSessionHandler(sessionService).RegisterRoutes(api, guards)
	handler.NewFleetHandler(driverService, vehicleService).RegisterRoutes(api, guards)
	handler.NewLedgerHandler(ledgerService).RegisterRoutes(api, guards)
	handler.NewTripHandler(tripService).RegisterRoutes(api, guards)
	handler.NewRouteHandler(routeService).RegisterRoutes(api, guards)
	handler.NewTrackingHandler(stopService, trackingService).RegisterRoutes(api, guards)
	handler.NewScheduleHandler(scheduleService, noteService).RegisterRoutes(api, guards)
	handler.NewKVHandler(kvService).RegisterRoutes(api, guards)
	handler.NewQuoteHandler(quoteService, discoveryService).RegisterRoutes(api)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
