package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/wanderplan/trip-service/config"
	"github.com/wanderplan/trip-service/internal/auction"
	"github.com/wanderplan/trip-service/internal/catalog"
	"github.com/wanderplan/trip-service/internal/consumer"
	"github.com/wanderplan/trip-service/internal/handler"
	"github.com/wanderplan/trip-service/internal/middleware"
	"github.com/wanderplan/trip-service/internal/planner"
	"github.com/wanderplan/trip-service/internal/repository"
	"github.com/wanderplan/trip-service/internal/service"
	"github.com/wanderplan/trip-service/pkg/database"
	"github.com/wanderplan/trip-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// Catalog: gorm store, optionally fronted by redis
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	catalogStore := catalog.NewCachedStore(catalog.NewStore(db), rdb)
	picker := catalog.NewPicker(catalogStore)

	// Core engine
	synth := planner.NewSynthesizer(picker, cfg.CatalogLookupTimeout)
	var sim *auction.OfferSimulator
	if cfg.OfferSimulation {
		sim = auction.NewOfferSimulator(cfg.SimulationSeed)
		log.Printf("offer simulation enabled (seed %d)", cfg.SimulationSeed)
	}

	tripRepo := repository.NewTripRepository(db)
	tripSvc := service.NewTripService(tripRepo, synth, sim)

	// RabbitMQ consumer: price-search offers drive auction watches
	if cfg.RabbitURL != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewOfferConsumer(tripSvc).Start(msgs)
	} else {
		log.Println("RABBITMQ_URL not set, offer feed disabled")
	}

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "trip-service"})
	})

	handler.NewTripHandler(tripSvc).RegisterRoutes(e)

	log.Printf("Trip Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
