package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bandobast/zone-monitor/internal/core/ports"
)

// ViolationHandler serves the violation audit trail.
type ViolationHandler struct {
	service ports.TrackingService
}

func NewViolationHandler(service ports.TrackingService) *ViolationHandler {
	return &ViolationHandler{service: service}
}

// List handles GET /v1/violations?entity_id=&limit=, newest first.
//
// @Summary      List violation events
// @Tags         violations
// @Produce      json
// @Param        entity_id  query     string  false  "Filter by entity id"
// @Param        limit      query     int     false  "Max items (1-500, default 50)"
// @Success      200        {object}  violationListResponse
// @Failure      400        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Router       /v1/violations [get]
func (h *ViolationHandler) List(c echo.Context) error {
	var q violationQuery
	if err := echo.QueryParamsBinder(c).
		String("entity_id", &q.EntityID).
		Int("limit", &q.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	events, err := h.service.Violations(c.Request().Context(), ports.ViolationFilter{
		EntityID: q.EntityID,
		Limit:    q.Limit,
	})
	if err != nil {
		return err
	}

	items := make([]violationResponse, 0, len(events))
	for _, ev := range events {
		items = append(items, toViolationResponse(ev))
	}
	return c.JSON(http.StatusOK, violationListResponse{Items: items, Count: len(items)})
}
