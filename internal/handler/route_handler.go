package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// RouteHandler handles GPS traces and service routes.
type RouteHandler struct {
	service *application.RouteService
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service *application.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// RegisterRoutes registers route endpoints on the given router group.
func (h *RouteHandler) RegisterRoutes(r *gin.RouterGroup, g Guards) {
	routes := r.Group("/routes")
	routes.Use(g.Auth)
	{
		routes.GET("", h.List)
		routes.POST("", g.Driver, h.Append)
		routes.POST("/batch", g.Driver, h.SaveBatch)
		routes.PUT("/:id", g.Driver, h.Move)
		routes.DELETE("/:id", g.Driver, h.DeletePoint)
		routes.DELETE("", g.Driver, h.DeleteRoute)
	}
}

// List handles GET /api/routes?plate=&type=.
func (h *RouteHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), queryPlate(c), c.Query("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Append handles POST /api/routes.
func (h *RouteHandler) Append(c *gin.Context) {
	var req application.AppendPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.Append(c.Request.Context(), actorPlate(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// SaveBatch handles POST /api/routes/batch.
func (h *RouteHandler) SaveBatch(c *gin.Context) {
	var req application.BatchRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.SaveBatch(c.Request.Context(), actorPlate(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Move handles PUT /api/routes/:id.
func (h *RouteHandler) Move(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req application.LatLng
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.Move(c.Request.Context(), actorPlate(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeletePoint handles DELETE /api/routes/:id.
func (h *RouteHandler) DeletePoint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePoint(c.Request.Context(), actorPlate(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteRoute handles DELETE /api/routes?plate=&type=.
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	if err := h.service.DeleteRoute(c.Request.Context(), actorPlate(c), queryPlate(c), c.Query("type")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
