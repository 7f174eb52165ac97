package api

import (
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/jinlabs/users-management/docs"
	"github.com/jinlabs/users-management/internal/api/handler"
	"github.com/jinlabs/users-management/internal/api/middleware"
	"github.com/jinlabs/users-management/internal/core/ports"
)

// Dependencies groups everything the HTTP layer needs.
type Dependencies struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Tokens   ports.TokenCodec
	Resolver ports.IdentityResolver
	// Limiter throttles /auth; nil disables rate limiting.
	Limiter middleware.Limiter
	// TrustedProxies are the ranges allowed to set X-Forwarded-For. When
	// empty the client IP is the connection's remote address.
	TrustedProxies []*net.IPNet
	// Health lists the dependencies checked by the readiness probe.
	Health map[string]handler.Pinger
	Logger zerolog.Logger
	// Registerer and Gatherer default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.IPExtractor = ipExtractor(deps.TrustedProxies)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "users",
		Subsystem:  "http",
		Registerer: registerer,
	}))
	e.Use(middleware.Authenticate(deps.Tokens, deps.Resolver, deps.Logger))
	e.Use(middleware.Authorize(middleware.DefaultPolicy()))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := e.Group("/auth")
	if deps.Limiter != nil {
		auth.Use(middleware.RateLimit(deps.Limiter, deps.Logger))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// --- Directory routes (ADMIN) ---
	userHandler := handler.NewUserHandler(deps.Users)
	admin := e.Group("/admin")
	admin.GET("/get-all-users", userHandler.GetAllUsers)
	admin.GET("/get-users/:id", userHandler.GetUserByID)
	admin.PUT("/update/:id", userHandler.UpdateUser)
	admin.DELETE("/delete/:id", userHandler.DeleteUser)
	admin.GET("/get-profile", userHandler.GetProfile)

	// --- Shared routes (ADMIN, USER) ---
	e.GET("/adminuser/get-profile", userHandler.GetProfile)

	// --- Public: probes, metrics, docs ---
	healthHandler := handler.NewHealthHandler(deps.Health)
	public := e.Group("/public")
	public.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	public.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	public.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer,
	}))
	public.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, r := range trusted {
		opts = append(opts, echo.TrustIPRange(r))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
