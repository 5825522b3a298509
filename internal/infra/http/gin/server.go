package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"riide/internal/infra/config"
	"riide/internal/infra/obs"
)

type CatalogHTTP interface {
	Health(c *gin.Context)
	Vehicles(c *gin.Context)
	DemandPeriods(c *gin.Context)
	Estimate(c *gin.Context)
}

type BookingHTTP interface {
	PublicRanges(c *gin.Context)
	Checkout(c *gin.Context)
}

type TelemetryHTTP interface {
	Record(c *gin.Context)
}

type Handlers struct {
	Catalog        CatalogHTTP
	Booking        BookingHTTP
	Telemetry      TelemetryHTTP
	Auth           AuthHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter registers every route on a fresh engine; split from NewServer for tests.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	router.GET("/success", SuccessPage)
	router.GET("/cancel", CancelPage)

	api := router.Group("/api")
	if h.Catalog != nil {
		api.GET("/health", h.Catalog.Health)
		api.GET("/vehicles", h.Catalog.Vehicles)
		api.GET("/demand-periods", h.Catalog.DemandPeriods)
		api.GET("/pricing/estimate", h.Catalog.Estimate)
	}
	if h.Booking != nil {
		api.GET("/bookings-public", h.Booking.PublicRanges)
		api.POST("/checkout", h.Booking.Checkout)
	}
	if h.Telemetry != nil {
		api.POST("/pricing-metrics", h.Telemetry.Record)
	}
	if h.Auth != nil {
		api.POST("/admin/login", h.Auth.Login)
	}
	if h.Admin != nil {
		admin := api.Group("/admin")
		admin.GET("/bookings", h.Admin.Bookings)
		admin.GET("/pricing-metrics", h.Admin.Metrics)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
