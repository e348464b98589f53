package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bandobast/zone-monitor/docs"
	"github.com/bandobast/zone-monitor/internal/api/handler"
	"github.com/bandobast/zone-monitor/internal/api/metrics"
	"github.com/bandobast/zone-monitor/internal/api/middleware"
	"github.com/bandobast/zone-monitor/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Service    ports.TrackingService
	Zones      ports.ZoneCatalog
	Dispatcher handler.PositionDispatcher
	// Health lists the dependencies checked by /health/ready.
	Health map[string]handler.Pinger
	Log    zerolog.Logger

	// IngestRate and IngestBurst limit the position ingest routes per client.
	IngestRate  float64
	IngestBurst int
	// Swagger mounts the API docs UI under /swagger/.
	Swagger bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(metrics.Middleware())

	// --- Handlers ---
	positions := handler.NewPositionHandler(d.Dispatcher, d.Service)
	zones := handler.NewZoneHandler(d.Zones, d.Service, d.Log)
	violations := handler.NewViolationHandler(d.Service)
	health := handler.NewHealthHandler(d.Health)

	v1 := e.Group("/v1")

	ingest := middleware.RateLimit(d.IngestRate, d.IngestBurst)
	v1.POST("/positions", positions.Receive, ingest)
	v1.POST("/positions/batch", positions.ReceiveBatch, ingest)
	v1.GET("/positions", positions.List)
	v1.GET("/positions/:entity_id", positions.Get)
	v1.DELETE("/positions/:entity_id", positions.Delete)

	v1.GET("/zones", zones.List)
	v1.POST("/zones", zones.Create)
	v1.GET("/zones/contains", zones.Contains)
	v1.DELETE("/zones/:name", zones.Delete)

	v1.GET("/violations", violations.List)

	// --- Probes and operations ---
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", metrics.Handler())
	if d.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}
