// Package handler exposes the application services over HTTP with gin.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/session"
	"github.com/truckledger/service-logistics/internal/platform/middleware"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// Guards are the middlewares shared by every route group.
type Guards struct {
	// Auth requires a valid session.
	Auth gin.HandlerFunc
	// Driver requires a driver session.
	Driver gin.HandlerFunc
}

// NewGuards builds the session guards from a resolver.
func NewGuards(resolver middleware.SessionResolver) Guards {
	return Guards{
		Auth:   middleware.SessionMiddleware(resolver),
		Driver: middleware.RequireRole(session.RoleDriver),
	}
}

// actorPlate returns the plate the caller may write for. Handlers behind the Driver
// guard always get a non-empty plate.
func actorPlate(c *gin.Context) string {
	if s, ok := middleware.GetSession(c); ok && s.Role == session.RoleDriver {
		return s.Plate
	}
	return ""
}

// queryPlate reads the plate filter. placa is the name older clients send.
func queryPlate(c *gin.Context) string {
	if plate := c.Query("plate"); plate != "" {
		return plate
	}
	return c.Query("placa")
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

func queryFloat(c *gin.Context, name string) (float64, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	return v, true, err
}
