package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing
    "github.com/redis/go-redis/v9"

    "github.com/moviekiosk/film-rental/internal/config"
    "github.com/moviekiosk/film-rental/internal/handler"    // import the handlers that implement business logic
    "github.com/moviekiosk/film-rental/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Load balancers and monitoring systems hit this to verify the service
    // is up and running.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while the protected /v1/me endpoint requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    // Operations that do not require an existing session: login, refresh
    // and logout all authenticate through the tokens they carry.
    g := e.Group("/v1/auth")
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(handler.RoleStaff))
    auth.GET("/me", a.Me)
    auth.PUT("/me/password", a.ChangePassword)
}

// RegisterRental registers the rental lifecycle endpoints.  Renting and
// returning are staff-only desk operations and sit behind the Redis token
// bucket so a misbehaving client cannot hammer the row-locking paths.  The
// availability check is public and read-only.
func RegisterRental(e *echo.Echo, h *handler.RentalHandler, jwtSecret string, rdb *redis.Client) {
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(handler.RoleStaff),
        limiter,
    )
    g.POST("/rentals", h.Rent)
    g.POST("/returns", h.Return)
    g.GET("/customers/:id/rentals", h.OpenRentals)

    e.GET("/v1/films/:id/availability", h.Availability)
}

// RegisterCustomer registers the customer directory endpoints under /v1.
// All of them require a valid JWT and the STAFF role: the directory is a
// back-office surface, not a self-service one.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(handler.RoleStaff),
    )
    g.POST("/customers", h.Add)
    g.PUT("/customers/:id", h.Update)
    g.DELETE("/customers/:id", h.Delete)
    g.GET("/customers", h.List)
}

// RegisterCatalog registers the unauthenticated browse endpoints: film
// search, film detail and the landing page reports.  All of them are
// read-only and go through the Redis response cache when available; the
// middleware degrades to a pass-through when rdb is nil.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, rdb *redis.Client) {
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    g := e.Group("/v1", cache)
    g.GET("/films", h.SearchFilms)
    g.GET("/films/:id", h.GetFilm)
    g.GET("/reports/top-films", h.TopFilms)
    g.GET("/reports/top-actors", h.TopActors)
}
