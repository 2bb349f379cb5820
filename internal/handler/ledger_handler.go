package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// LedgerHandler handles the per-vehicle ledger.
type LedgerHandler struct {
	service *application.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(service *application.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// RegisterRoutes registers ledger routes on the given router group.
func (h *LedgerHandler) RegisterRoutes(r *gin.RouterGroup, g Guards) {
	ledger := r.Group("/ledger")
	ledger.Use(g.Auth)
	{
		ledger.GET("", h.List)
		ledger.POST("", g.Driver, h.Add)
		ledger.PUT("/:id", g.Driver, h.Update)
		ledger.DELETE("/:id", g.Driver, h.Delete)
	}
}

// List handles GET /api/ledger?plate=.
func (h *LedgerHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), queryPlate(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Add handles POST /api/ledger.
func (h *LedgerHandler) Add(c *gin.Context) {
	var req application.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Plate == "" {
		req.Plate = actorPlate(c)
	}
	result, err := h.service.Add(c.Request.Context(), actorPlate(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update handles PUT /api/ledger/:id.
func (h *LedgerHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req application.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.Update(c.Request.Context(), actorPlate(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete handles DELETE /api/ledger/:id.
func (h *LedgerHandler) Delete(c *gin.Context) {
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
