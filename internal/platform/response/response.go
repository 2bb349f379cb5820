// Package response writes the JSON envelope used by every HTTP handler.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Meta carries pagination details.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a page of items with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

func BadRequest(c *gin.Context, msg string) {
	abort(c, http.StatusBadRequest, string(apperror.KindValidation), msg)
}

func Unauthorized(c *gin.Context, msg string) {
	abort(c, http.StatusUnauthorized, string(apperror.KindUnauthorized), msg)
}

func Forbidden(c *gin.Context, msg string) {
	abort(c, http.StatusForbidden, string(apperror.KindForbidden), msg)
}

// Error maps err to a status code by its apperror kind. Unclassified errors become
// a 500 with a generic message.
func Error(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := StatusFor(kind)
	msg := err.Error()
	if kind == "" {
		kind = "internal"
		msg = "internal server error"
		_ = c.Error(err)
	}
	abort(c, status, string(kind), msg)
}

// StatusFor returns the HTTP status used for an error kind.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindInvalidState:
		return http.StatusUnprocessableEntity
	case apperror.KindNetwork, apperror.KindHTTP:
		return http.StatusBadGateway
	case apperror.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, status int, kind, msg string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Kind: kind, Message: msg},
	})
}
