package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/MiniBodegas/Plataforma-sub000/internal/config"
	"github.com/MiniBodegas/Plataforma-sub000/internal/database"
	"github.com/MiniBodegas/Plataforma-sub000/internal/handler"
	"github.com/MiniBodegas/Plataforma-sub000/internal/middleware"
	"github.com/MiniBodegas/Plataforma-sub000/internal/queue"
	"github.com/MiniBodegas/Plataforma-sub000/internal/repository"
	"github.com/MiniBodegas/Plataforma-sub000/internal/router"
	"github.com/MiniBodegas/Plataforma-sub000/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the cache and rate limiter become
	// pass-throughs and the service still works.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	companies := repository.NewCompanyRepo(db)
	warehouses := repository.NewWarehouseRepo(db)
	reservations := repository.NewReservationRepo(db)
	notifications := repository.NewNotificationRepo(db)

	dispatcher := service.NewDispatcher(notifications, queue.AMQPPublisher{})
	resService := service.NewReservationService(warehouses, reservations, dispatcher)
	lifecycle := service.NewLifecycle(reservations, dispatcher)
	inbox := service.NewInbox(notifications, cfg.InboxReadDebounce)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	warehouseH := handler.NewWarehouseHandler(companies, warehouses, reservations, resService)
	renterH := handler.NewRenterReservationHandler(resService, lifecycle, reservations)
	providerH := handler.NewProviderReservationHandler(lifecycle, reservations)
	notifH := handler.NewNotificationHandler(inbox, cfg.InboxSeenDwell)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// The limiter is mounted per group rather than globally so JWTAuth
	// runs first and authenticated callers get their own bucket instead
	// of sharing the anonymous one per IP.
	limit := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	var cache echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, limit)
	router.RegisterPublic(e, warehouseH, cache, limit)
	router.RegisterProvider(e, warehouseH, providerH, cfg.JWTSecret, limit)
	router.RegisterRenter(e, renterH, cfg.JWTSecret, limit)
	router.RegisterNotifications(e, notifH, cfg.JWTSecret, limit)

	// Audit consumer for the reservation event stream.  It reconnects
	// on broker failures and never takes the API down with it.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reserva-consumer: stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
