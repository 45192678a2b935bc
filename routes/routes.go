package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"murmur/handlers"
	"murmur/metrics"
	"murmur/middleware"
)

// Deps is everything the router needs to serve the API.
type Deps struct {
	DB       *gorm.DB
	Logger   *slog.Logger
	Resolver middleware.Resolver
	// AllowHeader enables X-User-Id as an alternative to a bearer token.
	AllowHeader bool

	Auth    *handlers.AuthHandler
	Murmurs *handlers.MurmurHandler
	Users   *handlers.UserHandler
}

// SetupRoutes builds the gin engine with all application routes.
func SetupRoutes(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(d.Logger), metrics.Instrument())

	r.GET("/healthz", handlers.Health(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(d.Resolver, d.AllowHeader)
	optionalAuth := middleware.OptionalAuth(d.Resolver, d.AllowHeader)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", d.Auth.Signup)
		authGroup.POST("/login", d.Auth.Login)
		authGroup.GET("/me", requireAuth, d.Auth.Me)
	}

	// GET /murmurs/:id is the only read that works anonymously.
	api.GET("/murmurs/:id", optionalAuth, d.Murmurs.Get)

	// gin requires one wildcard name per segment, so /users/:user carries a
	// username on the profile route and a numeric id on the follow routes.
	authed := api.Group("/")
	authed.Use(requireAuth)
	{
		authed.GET("/murmurs", d.Murmurs.Timeline)
		authed.POST("/murmurs/:id/like", d.Murmurs.Like)
		authed.DELETE("/murmurs/:id/like", d.Murmurs.Unlike)

		authed.GET("/me", d.Users.Me)
		authed.POST("/me/murmurs", d.Murmurs.Create)
		authed.PATCH("/me/murmurs/:id", d.Murmurs.Update)
		authed.DELETE("/me/murmurs/:id", d.Murmurs.Delete)

		authed.GET("/users", d.Users.List)
		authed.GET("/users/:user", d.Users.ByUsername)
		authed.POST("/users/:user/follow", d.Users.Follow)
		authed.DELETE("/users/:user/follow", d.Users.Unfollow)
	}

	return r
}
