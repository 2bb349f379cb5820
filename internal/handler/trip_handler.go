package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// TripHandler handles trips and their transactions.
type TripHandler struct {
	service *application.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(service *application.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// RegisterRoutes registers trip routes on the given router group.
func (h *TripHandler) RegisterRoutes(r *gin.RouterGroup, g Guards) {
	trips := r.Group("/trips")
	trips.Use(g.Auth)
	{
		trips.GET("", h.List)
		trips.POST("", g.Driver, h.Create)
		trips.DELETE("/:id", g.Driver, h.Delete)
		trips.POST("/:id/activate", g.Driver, h.Activate)
		trips.POST("/:id/close", g.Driver, h.Close)
		trips.GET("/:id/transactions", h.Transactions)
		trips.POST("/:id/transactions", g.Driver, h.AddTransaction)
		trips.PUT("/transactions/:txId", g.Driver, h.UpdateTransaction)
		trips.DELETE("/transactions/:txId", g.Driver, h.DeleteTransaction)
	}
}

// List handles GET /api/trips?plate=.
func (h *TripHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), queryPlate(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Create handles POST /api/trips.
func (h *TripHandler) Create(c *gin.Context) {
	var req application.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.Create(c.Request.Context(), actorPlate(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Delete handles DELETE /api/trips/:id.
func (h *TripHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actorPlate(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Activate handles POST /api/trips/:id/activate.
func (h *TripHandler) Activate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Activate(c.Request.Context(), actorPlate(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Close handles POST /api/trips/:id/close.
func (h *TripHandler) Close(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Close(c.Request.Context(), actorPlate(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Transactions handles GET /api/trips/:id/transactions.
func (h *TripHandler) Transactions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Transactions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddTransaction handles POST /api/trips/:id/transactions.
func (h *TripHandler) AddTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req application.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.AddTransaction(c.Request.Context(), actorPlate(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateTransaction handles PUT /api/trips/transactions/:txId.
func (h *TripHandler) UpdateTransaction(c *gin.Context) {
	id, ok := parseID(c, "txId")
	if !ok {
		return
	}
	var req application.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.UpdateTransaction(c.Request.Context(), actorPlate(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteTransaction handles DELETE /api/trips/transactions/:txId.
func (h *TripHandler) DeleteTransaction(c *gin.Context) {
	id, ok := parseID(c, "txId")
	if !ok {
		return
	}
	if err := h.service.DeleteTransaction(c.Request.Context(), actorPlate(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
