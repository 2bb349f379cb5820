package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// ScheduleHandler handles weekly schedules, notes and reminders.
type ScheduleHandler struct {
	schedules *application.ScheduleService
	notes     *application.NoteService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedules *application.ScheduleService, notes *application.NoteService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, notes: notes}
}

// RegisterRoutes registers schedule and note routes on the given router group.
func (h *ScheduleHandler) RegisterRoutes(r *gin.RouterGroup, g Guards) {
	schedules := r.Group("/schedules")
	schedules.Use(g.Auth)
	{
		schedules.GET("", h.ListSchedules)
		schedules.GET("/due", h.Due)
		schedules.GET("/:plate", h.GetSchedule)
		schedules.POST("", g.Driver, h.UpsertSchedule)
	}

	notes := r.Group("/notes")
	notes.Use(g.Auth)
	{
		notes.GET("", h.ListNotes)
		notes.POST("", g.Driver, h.CreateNote)
		notes.PUT("/:id", g.Driver, h.UpdateNote)
		notes.DELETE("/:id", g.Driver, h.DeleteNote)
	}
}

// ListSchedules handles GET /api/schedules.
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	result, err := h.schedules.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetSchedule handles GET /api/schedules/:plate.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	result, err := h.schedules.Get(c.Request.Context(), c.Param("plate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpsertSchedule handles POST /api/schedules.
func (h *ScheduleHandler) UpsertSchedule(c *gin.Context) {
	var req application.UpsertScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.schedules.Upsert(c.Request.Context(), actorPlate(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Due handles GET /api/schedules/due?day=.
func (h *ScheduleHandler) Due(c *gin.Context) {
	result, err := h.schedules.Due(c.Request.Context(), c.Query("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListNotes handles GET /api/notes?plate=.
func (h *ScheduleHandler) ListNotes(c *gin.Context) {
	result, err := h.notes.List(c.Request.Context(), queryPlate(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateNote handles POST /api/notes.
func (h *ScheduleHandler) CreateNote(c *gin.Context) {
	var req application.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.notes.Create(c.Request.Context(), actorPlate(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateNote handles PUT /api/notes/:id.
func (h *ScheduleHandler) UpdateNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req application.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.notes.Update(c.Request.Context(), actorPlate(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteNote handles DELETE /api/notes/:id.
func (h *ScheduleHandler) DeleteNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.notes.Delete(c.Request.Context(), actorPlate(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
