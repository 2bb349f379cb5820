package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// QuoteHandler handles the client-facing surface: quotes, place search and discovery.
type QuoteHandler struct {
	quotes    *application.QuoteService
	discovery *application.DiscoveryService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quotes *application.QuoteService, discovery *application.DiscoveryService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, discovery: discovery}
}

// RegisterRoutes registers the public routes. They need no session.
func (h *QuoteHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/quotes", h.QuoteByAddress)
	r.POST("/quotes/points", h.QuoteByPoints)
	r.GET("/places", h.SearchPlaces)
	r.GET("/trucks/available", h.AvailableTrucks)
}

// QuoteByAddress handles POST /api/quotes.
func (h *QuoteHandler) QuoteByAddress(c *gin.Context) {
	var req application.QuoteByAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.quotes.QuoteByAddress(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// QuoteByPoints handles POST /api/quotes/points.
func (h *QuoteHandler) QuoteByPoints(c *gin.Context) {
	var req application.QuoteByPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.quotes.QuoteByPoints(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SearchPlaces handles GET /api/places?q=&limit=.
func (h *QuoteHandler) SearchPlaces(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	response.Success(c, h.quotes.SearchPlaces(c.Request.Context(), c.Query("q"), limit))
}

// AvailableTrucks handles GET /api/trucks/available?lat&lng&radiusKm&cell.
func (h *QuoteHandler) AvailableTrucks(c *gin.Context) {
	center, radius, ok := parseCircle(c, false)
	if !ok {
		return
	}
	result, err := h.discovery.Available(c.Request.Context(), application.AvailabilityQuery{
		Center:   center,
		RadiusKm: radius,
		Cell:     c.Query("cell"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
