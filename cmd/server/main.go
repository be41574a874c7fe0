package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Optional .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/moviekiosk/film-rental/internal/config"     // Internal config loader
	"github.com/moviekiosk/film-rental/internal/database"   // MySQL connection pool
	"github.com/moviekiosk/film-rental/internal/handler"    // HTTP handlers
	"github.com/moviekiosk/film-rental/internal/queue"      // RabbitMQ consumer for rental events
	"github.com/moviekiosk/film-rental/internal/repository" // Data access layer
	"github.com/moviekiosk/film-rental/internal/router"     // Route registration
	"github.com/moviekiosk/film-rental/internal/service"    // Business services
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: when unreachable the response cache and rate
	// limiter are disabled and the API keeps serving from MySQL alone.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	// Repositories share the single pool; every mutating operation opens its
	// own transaction scoped to the request.
	films := repository.NewFilmRepo(db)
	inventory := repository.NewInventoryRepo(db)
	rentals := repository.NewRentalRepo(db)
	locations := repository.NewLocationRepo(db)
	customers := repository.NewCustomerRepo(db)
	payments := repository.NewPaymentRepo(db)
	staff := repository.NewStaffRepo(db)
	tokens := repository.NewTokenRepo(db)
	reports := repository.NewReportRepo(db)

	rentalSvc := service.NewRentalService(db, films, inventory, rentals, customers)
	customerSvc := service.NewCustomerService(db, locations, customers, payments, rentals)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, staff, tokens), cfg.JWTSecret)
	router.RegisterRental(e, handler.NewRentalHandler(rentalSvc), cfg.JWTSecret, rdb)
	router.RegisterCustomer(e, handler.NewCustomerHandler(customerSvc, customers), cfg.JWTSecret)
	router.RegisterCatalog(e, handler.NewCatalogHandler(films, reports), rdb)

	// Consume rental events in the background; the consumer reconnects on
	// broker failures and never takes the API down with it.
	go func() {
		if err := queue.StartRentalConsumer(); err != nil {
			log.Printf("rental-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
