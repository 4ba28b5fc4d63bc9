package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebox/internal/config"
	"github.com/iliyamo/cinebox/internal/database"
	"github.com/iliyamo/cinebox/internal/events"
	"github.com/iliyamo/cinebox/internal/handler"
	"github.com/iliyamo/cinebox/internal/middleware"
	"github.com/iliyamo/cinebox/internal/queue"
	"github.com/iliyamo/cinebox/internal/repository"
	"github.com/iliyamo/cinebox/internal/router"
)

func main() {
	// .env is a local convenience; real deployments set env vars.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the cache and limiter pass
	// through and the claim stream reports unavailable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache, rate limiting and claim stream disabled")
	}

	screens := repository.NewScreenRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	bookings := repository.NewBookingRepo(db)
	catalog := repository.NewCatalogRepo(db)
	promos := repository.NewPromoRepo(db)
	loyalty := repository.NewLoyaltyRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(screens, showtimes, bookings, catalog)
	checkoutH := handler.NewCheckoutHandler(screens, showtimes, bookings, catalog, promos, loyalty, events.NewPublisher(rdb))
	bookingH := handler.NewBookingHandler(bookings, showtimes, loyalty)
	gateH := handler.NewGateHandler(bookings, showtimes)
	var streamH *handler.StreamHandler
	if rdb != nil {
		streamH = handler.NewStreamHandler(bookings, showtimes, events.NewSubscriber(rdb))
	} else {
		streamH = handler.NewStreamHandler(bookings, showtimes, nil)
	}

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiterMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, streamH, cacheMW, limiterMW)
	router.RegisterBooking(e, checkoutH, bookingH, gateH, cfg.JWTSecret, limiterMW)

	go func() {
		if err := queue.StartConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
