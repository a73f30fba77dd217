package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-management/internal/auth"
	"github.com/iliyamo/task-management/internal/config"
	"github.com/iliyamo/task-management/internal/database"
	"github.com/iliyamo/task-management/internal/handler"
	"github.com/iliyamo/task-management/internal/queue"
	"github.com/iliyamo/task-management/internal/repository"
	"github.com/iliyamo/task-management/internal/router"
	"github.com/iliyamo/task-management/internal/validation"
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

	// May be nil when Redis is unreachable; caching and rate limiting then
	// degrade to pass-through middleware.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable, cache and rate limit disabled")
	}

	users := repository.NewUserRepo(db)
	tasks := repository.NewTaskRepo(db)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTTLMin)
	authSvc := auth.NewService(users, hasher, tokens)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(users, tasks, hasher)
	taskHandler := handler.NewTaskHandler(tasks, users)

	e := echo.New()
	e.Validator = validation.New()

	router.RegisterRoutes(e, userHandler)
	router.RegisterAuth(e, authHandler, tokens, rdb)
	router.RegisterUsers(e, userHandler, tokens)
	router.RegisterTasks(e, taskHandler, tokens, rdb)

	// Background consumer writes assignment events to logs/assignments.log.
	go func() {
		if err := queue.StartAssignmentConsumer(); err != nil {
			log.Printf("assignment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
