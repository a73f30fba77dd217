// Package router registers the HTTP routes and the middleware that guards
// them.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/task-management/internal/auth"
	"github.com/iliyamo/task-management/internal/config"
	"github.com/iliyamo/task-management/internal/handler"
	"github.com/iliyamo/task-management/internal/middleware"
	"github.com/iliyamo/task-management/internal/model"
)

// RegisterRoutes registers routes that require no authentication. Currently
// that is the health check and user registration.
func RegisterRoutes(e *echo.Echo, users *handler.UserHandler) {
	e.GET("/healthz", handler.Health)
	// Registration is open; everything else on /v1/users is guarded below.
	e.POST("/v1/users", users.Create)
}

// RegisterAuth registers the login route (rate limited, since bcrypt makes
// it the most expensive endpoint) and the authenticated /v1/me probe.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens *auth.TokenIssuer, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	g.POST("/login", a.Login)

	me := e.Group("/v1")
	me.Use(middleware.JWTAuth(tokens))
	me.GET("/me", a.Me)
}

// RegisterUsers registers the guarded user management routes. Listing and
// deleting users is admin only; reading and updating a single user is open
// to any authenticated caller, matching the task-assignment flows that need
// to resolve other users.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, tokens *auth.TokenIssuer) {
	g := e.Group("/v1/users")
	g.Use(middleware.JWTAuth(tokens))

	g.GET("", u.List, middleware.RequireRole(model.RoleAdmin))
	g.GET("/:id", u.Get)
	g.PATCH("/:id", u.Update)
	g.DELETE("/:id", u.Delete, middleware.RequireRole(model.RoleAdmin))
	g.GET("/:id/tasks", u.ListTasks)
}

// RegisterTasks registers the guarded task routes. Task listings are cached
// in Redis; mutations bypass the cache middleware entirely because it only
// touches configured methods (GET by default).
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler, tokens *auth.TokenIssuer, rdb *redis.Client) {
	g := e.Group("/v1/tasks")
	g.Use(middleware.JWTAuth(tokens))
	g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	g.POST("", t.Create)
	g.GET("", t.List)
	g.GET("/:id", t.Get)
	g.PATCH("/:id", t.Update)
	g.DELETE("/:id", t.Delete)
	g.POST("/:id/assign", t.Assign)
}
