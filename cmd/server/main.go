package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/library-lending/internal/config"
	"github.com/iliyamo/library-lending/internal/database"
	"github.com/iliyamo/library-lending/internal/handler"
	"github.com/iliyamo/library-lending/internal/lending"
	appmw "github.com/iliyamo/library-lending/internal/middleware"
	"github.com/iliyamo/library-lending/internal/obs"
	"github.com/iliyamo/library-lending/internal/queue"
	"github.com/iliyamo/library-lending/internal/repository"
	"github.com/iliyamo/library-lending/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	obs.Init()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	catalog := repository.NewCatalogRepo(db)
	borrows := repository.NewBorrowRepo(db)
	rentals := repository.NewRentalRepo(db)

	alloc := lending.NewAllocator(db, catalog)
	borrowSvc := lending.NewBorrowService(db, catalog, borrows, alloc, lending.Config{
		MaxActiveBorrows:  cfg.MaxActiveBorrows,
		DefaultBorrowDays: cfg.DefaultBorrowDays,
		SweepInterval:     cfg.SweepInterval,
	})
	rentalSvc := lending.NewRentalService(catalog, rentals)
	verifier := lending.NewAccessVerifier(borrows, rentals)
	sweeper := lending.NewSweeper(borrowSvc, rentalSvc, cfg.SweepInterval)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(catalog, alloc)
	borrowH := handler.NewBorrowHandler(borrowSvc, catalog)
	rentalH := handler.NewRentalHandler(rentalSvc, catalog)
	accessH := handler.NewAccessHandler(verifier)
	sweepH := handler.NewSweepHandler(sweeper)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(obs.Instrument())
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCatalog(e, catalogH, appmw.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterLending(e, borrowH, rentalH, accessH, cfg.JWTSecret)
	router.RegisterAdmin(e, catalogH, borrowH, rentalH, sweepH, cfg.JWTSecret)
	e.GET("/metrics", obs.Handler())

	// Background workers: the overdue/expiry sweeper and the activity
	// log consumer both run for the life of the process.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)
	go func() {
		if err := queue.StartLendingConsumer(); err != nil {
			log.Printf("lending consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
