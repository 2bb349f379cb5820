package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/platform/middleware"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// TrackingHandler handles stops, live positions and arrivals.
type TrackingHandler struct {
	stops    *application.StopService
	tracking *application.TrackingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(stops *application.StopService, tracking *application.TrackingService) *TrackingHandler {
	return &TrackingHandler{stops: stops, tracking: tracking}
}

// RegisterRoutes registers stop and tracking routes on the given router group.
func (h *TrackingHandler) RegisterRoutes(r *gin.RouterGroup, g Guards) {
	owner := middleware.RequirePlate("plate")

	stops := r.Group("/stops")
	stops.Use(g.Auth)
	{
		stops.GET("", h.ListStops)
		stops.POST("", g.Driver, h.CreateStop)
		stops.POST("/:plate/:id/deliver", g.Driver, owner, h.DeliverStop)
	}

	tracking := r.Group("/tracking")
	tracking.Use(g.Auth)
	{
		tracking.GET("/nearby", h.Nearby)
		tracking.GET("/:plate/live", h.Live)
		tracking.POST("/:plate/positions", g.Driver, owner, h.ReportPosition)
		tracking.DELETE("/:plate/live", g.Driver, owner, h.StopTracking)
	}
}

// ListStops handles GET /api/stops?plate=.
func (h *TrackingHandler) ListStops(c *gin.Context) {
	result, err := h.stops.List(c.Request.Context(), queryPlate(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateStop handles POST /api/stops.
func (h *TrackingHandler) CreateStop(c *gin.Context) {
	var req application.CreateStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.stops.Create(c.Request.Context(), actorPlate(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// DeliverStop handles POST /api/stops/:plate/:id/deliver.
func (h *TrackingHandler) DeliverStop(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid stop id")
		return
	}
	result, err := h.stops.Deliver(c.Request.Context(), actorPlate(c), c.Param("plate"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ReportPosition handles POST /api/tracking/:plate/positions.
func (h *TrackingHandler) ReportPosition(c *gin.Context) {
	var req application.ReportPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.tracking.ReportPosition(c.Request.Context(), actorPlate(c), c.Param("plate"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Live handles GET /api/tracking/:plate/live.
func (h *TrackingHandler) Live(c *gin.Context) {
	result, err := h.tracking.Live(c.Request.Context(), c.Param("plate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// StopTracking handles DELETE /api/tracking/:plate/live.
func (h *TrackingHandler) StopTracking(c *gin.Context) {
	if err := h.tracking.StopTracking(c.Request.Context(), actorPlate(c), c.Param("plate")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Nearby handles GET /api/tracking/nearby?lat&lng&radiusKm.
func (h *TrackingHandler) Nearby(c *gin.Context) {
	center, radius, ok := parseCircle(c, true)
	if !ok {
		return
	}
	result, err := h.tracking.Nearby(c.Request.Context(), *center, radius)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// parseCircle reads lat, lng and radiusKm. When required is false and none is given,
// it returns a nil center.
func parseCircle(c *gin.Context, required bool) (*geo.Point, float64, bool) {
	lat, hasLat, errLat := queryFloat(c, "lat")
	lng, hasLng, errLng := queryFloat(c, "lng")
	radius, hasRadius, errRadius := queryFloat(c, "radiusKm")
	if errLat != nil || errLng != nil || errRadius != nil {
		response.BadRequest(c, "lat, lng and radiusKm must be numbers")
		return nil, 0, false
	}
	if !hasLat && !hasLng && !hasRadius && !required {
		return nil, 0, true
	}
	if !hasLat || !hasLng || !hasRadius {
		response.BadRequest(c, "lat, lng and radiusKm are required together")
		return nil, 0, false
	}
	return &geo.Point{Lat: lat, Lng: lng}, radius, true
}
