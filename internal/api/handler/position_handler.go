package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bandobast/zone-monitor/internal/core/ports"
)

const apiSource = "api"

// PositionDispatcher is the interface the handler uses to enqueue work.
type PositionDispatcher interface {
	Enqueue(in ports.PositionInput)
	EnqueueBatch(ins []ports.PositionInput)
	EnqueueRemoval(entityID string)
}

// PositionHandler handles position ingestion and the tracked position views.
type PositionHandler struct {
	dispatcher PositionDispatcher
	service    ports.TrackingService
}

func NewPositionHandler(dispatcher PositionDispatcher, service ports.TrackingService) *PositionHandler {
	return &PositionHandler{dispatcher: dispatcher, service: service}
}

// Receive handles POST /v1/positions: enqueues a single position and returns 202.
//
// @Summary      Ingest a single position
// @Tags         positions
// @Accept       json
// @Produce      json
// @Param        body  body      positionRequest  true  "Position report"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/positions [post]
func (h *PositionHandler) Receive(c echo.Context) error {
	var req positionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in, err := toPositionInput(c, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.dispatcher.Enqueue(in)
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "position accepted"})
}

// ReceiveBatch handles POST /v1/positions/batch: enqueues positions in order and returns 202.
// The batch is rejected as a whole when any entry is invalid.
//
// @Summary      Ingest a batch of positions
// @Tags         positions
// @Accept       json
// @Produce      json
// @Param        body  body      []positionRequest  true  "Array of position reports"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/positions/batch [post]
func (h *PositionHandler) ReceiveBatch(c echo.Context) error {
	var reqs []positionRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	inputs := make([]ports.PositionInput, 0, len(reqs))
	for i, req := range reqs {
		in, err := toPositionInput(c, req)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("position[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, in)
	}

	h.dispatcher.EnqueueBatch(inputs)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "positions accepted",
		Count:   len(inputs),
	})
}

// List handles GET /v1/positions: every tracked entity ordered by id.
//
// @Summary      List tracked positions
// @Tags         positions
// @Produce      json
// @Success      200  {object}  positionListResponse
// @Router       /v1/positions [get]
func (h *PositionHandler) List(c echo.Context) error {
	views := h.service.Positions()
	items := make([]positionResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toPositionResponse(v))
	}
	return c.JSON(http.StatusOK, positionListResponse{
		Items: items,
		Count: len(items),
		Stats: toStatsResponse(h.service.Stats()),
	})
}

// Get handles GET /v1/positions/:entity_id.
//
// @Summary      Get one tracked position
// @Tags         positions
// @Produce      json
// @Param        entity_id  path      string  true  "Entity id"
// @Success      200        {object}  positionResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/positions/{entity_id} [get]
func (h *PositionHandler) Get(c echo.Context) error {
	view, err := h.service.Position(c.Param("entity_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPositionResponse(view))
}

// Delete handles DELETE /v1/positions/:entity_id. The removal is queued
// behind any pending positions of the same entity.
//
// @Summary      Stop tracking an entity
// @Tags         positions
// @Produce      json
// @Param        entity_id  path      string  true  "Entity id"
// @Success      202        {object}  acceptedResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/positions/{entity_id} [delete]
func (h *PositionHandler) Delete(c echo.Context) error {
	id := c.Param("entity_id")
	if _, err := h.service.Position(id); err != nil {
		return err
	}
	h.dispatcher.EnqueueRemoval(id)
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "removal accepted"})
}
