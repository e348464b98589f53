package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bandobast/zone-monitor/internal/api/metrics"
	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/ports"
)

// ZoneHandler manages the zone set at runtime. Every change re-runs the
// monitor over the tracked positions so entities stranded by a removed zone
// (or rescued by a new one) alert immediately.
type ZoneHandler struct {
	zones   ports.ZoneCatalog
	service ports.TrackingService
	log     zerolog.Logger
}

func NewZoneHandler(zones ports.ZoneCatalog, service ports.TrackingService, log zerolog.Logger) *ZoneHandler {
	return &ZoneHandler{zones: zones, service: service, log: log}
}

// List handles GET /v1/zones.
//
// @Summary      List zones
// @Tags         zones
// @Produce      json
// @Success      200  {array}  zoneResponse
// @Router       /v1/zones [get]
func (h *ZoneHandler) List(c echo.Context) error {
	zones := h.zones.Zones()
	out := make([]zoneResponse, 0, len(zones))
	for _, z := range zones {
		out = append(out, toZoneResponse(z))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/zones.
//
// @Summary      Add a zone
// @Tags         zones
// @Accept       json
// @Produce      json
// @Param        body  body      zoneRequest  true  "Zone"
// @Success      201   {object}  zoneChangeResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/zones [post]
func (h *ZoneHandler) Create(c echo.Context) error {
	var req zoneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.zones.AddZone(req.Name, toPolygon(req.Polygon)); err != nil {
		return err
	}
	h.log.Info().Str("zone", req.Name).Int("vertices", len(req.Polygon)).Msg("zone added")

	events, err := h.afterChange(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, zoneChangeResponse{Zone: req.Name, Transitions: len(events)})
}

// Delete handles DELETE /v1/zones/:name.
//
// @Summary      Remove a zone
// @Tags         zones
// @Produce      json
// @Param        name  path      string  true  "Zone name"
// @Success      200   {object}  zoneChangeResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/zones/{name} [delete]
func (h *ZoneHandler) Delete(c echo.Context) error {
	name := c.Param("name")
	if err := h.zones.RemoveZone(name); err != nil {
		return err
	}
	h.log.Info().Str("zone", name).Msg("zone removed")

	events, err := h.afterChange(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, zoneChangeResponse{Zone: name, Transitions: len(events)})
}

func (h *ZoneHandler) afterChange(c echo.Context) ([]*domain.ViolationEvent, error) {
	metrics.ZonesConfigured.Set(float64(len(h.zones.Zones())))
	return h.service.Reevaluate(c.Request().Context())
}

// Contains handles GET /v1/zones/contains?lat=&lng=, a diagnostic view of
// how the registry classifies a point.
//
// @Summary      Classify a point
// @Tags         zones
// @Produce      json
// @Param        lat  query     number  true  "Latitude"
// @Param        lng  query     number  true  "Longitude"
// @Success      200  {object}  containsResponse
// @Failure      400  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/zones/contains [get]
func (h *ZoneHandler) Contains(c echo.Context) error {
	var q containsQuery
	if err := echo.QueryParamsBinder(c).
		MustFloat64("lat", &q.Lat).
		MustFloat64("lng", &q.Lng).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lat and lng query parameters are required numbers")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	p := domain.Point{Lat: q.Lat, Lng: q.Lng}
	zones := h.zones.ZonesContaining(p)
	if zones == nil {
		zones = []string{}
	}
	return c.JSON(http.StatusOK, containsResponse{
		Point:    toPointResponse(p),
		InBounds: h.zones.IsInBounds(p),
		Zones:    zones,
	})
}
