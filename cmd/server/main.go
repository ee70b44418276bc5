package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/filmlog/filmlog/internal/config"
	"github.com/filmlog/filmlog/internal/database"
	"github.com/filmlog/filmlog/internal/handler"
	"github.com/filmlog/filmlog/internal/middleware"
	"github.com/filmlog/filmlog/internal/queue"
	"github.com/filmlog/filmlog/internal/repository"
	"github.com/filmlog/filmlog/internal/router"
)

func main() {
	// .env is optional; real deployments pass everything via the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: with no client the cache and the rate limiter
	// degrade to pass-through middleware.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	genres := repository.NewGenreRepo(db)
	films := repository.NewFilmRepo(db, genres)
	reviews := repository.NewReviewRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	browseH := handler.NewBrowseHandler(films, genres, reviews)
	reviewH := handler.NewReviewHandler(films, reviews)
	adminFilmH := handler.NewAdminFilmHandler(films)
	adminGenreH := handler.NewAdminGenreHandler(genres)

	// Background consumer appending rating.changed events to logs/ratings.log.
	// It reconnects forever on broker failures.
	go func() {
		if err := queue.StartRatingConsumer(); err != nil {
			log.Printf("rating consumer stopped: %v", err)
		}
	}()

	e := echo.New()

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, browseH, reviewH, cacheMW, limitMW)
	router.RegisterReviews(e, reviewH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminFilmH, adminGenreH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
