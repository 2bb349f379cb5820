package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/platform/middleware"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// SessionHandler handles login and logout.
type SessionHandler struct {
	service *application.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service *application.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// RegisterRoutes registers the session routes on the given router group.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup, g Guards) {
	r.POST("/drivers/login", h.LoginDriver)
	r.POST("/clients/login", h.LoginClient)

	sessions := r.Group("/sessions")
	sessions.Use(g.Auth)
	{
		sessions.POST("/logout", h.Logout)
		sessions.GET("/me", h.Me)
	}
}

// LoginDriver handles POST /api/drivers/login.
func (h *SessionHandler) LoginDriver(c *gin.Context) {
	var req application.DriverLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess, err := h.service.LoginDriver(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sess)
}

// LoginClient handles POST /api/clients/login.
func (h *SessionHandler) LoginClient(c *gin.Context) {
	var req application.ClientLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess, err := h.service.LoginClient(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sess)
}

// Logout handles POST /api/sessions/logout.
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me handles GET /api/sessions/me.
func (h *SessionHandler) Me(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	response.Success(c, sess)
}
