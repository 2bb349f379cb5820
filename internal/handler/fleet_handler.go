package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// FleetHandler handles the drivers directory and the vehicle registry.
type FleetHandler struct {
	drivers  *application.DriverService
	vehicles *application.VehicleService
}

// NewFleetHandler creates a new FleetHandler.
func NewFleetHandler(drivers *application.DriverService, vehicles *application.VehicleService) *FleetHandler {
	return &FleetHandler{drivers: drivers, vehicles: vehicles}
}

// RegisterRoutes registers driver and car routes on the given router group.
func (h *FleetHandler) RegisterRoutes(r *gin.RouterGroup, g Guards) {
	drivers := r.Group("/drivers")
	drivers.Use(g.Auth)
	{
		drivers.GET("", h.ListDrivers)
		drivers.GET("/:id", h.GetDriver)
		drivers.PUT("/:id", g.Driver, h.UpdateDriver)
		drivers.DELETE("/:id", g.Driver, h.DeleteDriver)
	}

	cars := r.Group("/cars")
	cars.Use(g.Auth)
	{
		cars.GET("", h.ListCars)
		cars.POST("", g.Driver, h.CreateCar)
		cars.DELETE("/:id", g.Driver, h.DeleteCar)
	}
}

// ListDrivers handles GET /api/drivers.
func (h *FleetHandler) ListDrivers(c *gin.Context) {
	result, err := h.drivers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetDriver handles GET /api/drivers/:id.
func (h *FleetHandler) GetDriver(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.drivers.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateDriver handles PUT /api/drivers/:id.
func (h *FleetHandler) UpdateDriver(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req application.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.drivers.Update(c.Request.Context(), actorPlate(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteDriver handles DELETE /api/drivers/:id.
func (h *FleetHandler) DeleteDriver(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.drivers.Delete(c.Request.Context(), actorPlate(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListCars handles GET /api/cars.
func (h *FleetHandler) ListCars(c *gin.Context) {
	result, err := h.vehicles.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateCar handles POST /api/cars.
func (h *FleetHandler) CreateCar(c *gin.Context) {
	var req application.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.vehicles.Create(c.Request.Context(), actorPlate(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// DeleteCar handles DELETE /api/cars/:id.
func (h *FleetHandler) DeleteCar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.vehicles.Delete(c.Request.Context(), actorPlate(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
