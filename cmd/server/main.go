package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"famlink/internal/config"
	"famlink/internal/database"
	"famlink/internal/handler"
	"famlink/internal/middleware"
	"famlink/internal/queue"
	"famlink/internal/repository"
	"famlink/internal/router"
	"famlink/internal/service"
	"famlink/internal/summary"
)

func main() {
	cfg := config.Load()

	if cfg.MigrationsDir != "" {
		if err := database.Migrate(cfg.MigrationsDir, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	familiesRepo := repository.NewFamilyRepo(db)
	messagesRepo := repository.NewMessageRepo(db)
	postsRepo := repository.NewPostRepo(db)
	tokens := repository.NewTokenRepo(db)

	familySvc := service.NewFamilyService(familiesRepo)
	authSvc := service.NewAuthService(users, familiesRepo, tokens, familySvc,
		cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays, cfg.BcryptCost)
	messageSvc := service.NewMessageService(messagesRepo, users)
	postSvc := service.NewPostService(postsRepo, users)
	userSvc := service.NewUserService(users)
	summarySvc := service.NewSummaryService(postsRepo, users, messagesRepo, summary.NewClient())

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	rdb := config.NewRedisClient()
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Users:    handler.NewUserHandler(userSvc),
		Families: handler.NewFamilyHandler(familySvc, summarySvc),
		Messages: handler.NewMessageHandler(messageSvc),
		Posts:    handler.NewPostHandler(postSvc),
		Search:   handler.NewSearchHandler(postSvc),
	}, cfg.JWTSecret, familySvc, rl)

	// Consumer runs for the life of the process and survives broker
	// outages on its own.
	go func() {
		if err := queue.StartMessageConsumer(); err != nil {
			log.Printf("message-consumer: stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
