package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

// StampHeader carries the logical timestamp of a KV write.
const StampHeader = "X-KV-Stamp"

// maxValueBytes bounds a single KV value.
const maxValueBytes = 1 << 20

// KVHandler exposes the mirrored key-value state.
type KVHandler struct {
	service *application.KVService
}

// NewKVHandler creates a new KVHandler.
func NewKVHandler(service *application.KVService) *KVHandler {
	return &KVHandler{service: service}
}

// RegisterRoutes registers KV routes on the given router group.
func (h *KVHandler) RegisterRoutes(r *gin.RouterGroup, g Guards) {
	kv := r.Group("/kv")
	kv.Use(g.Auth)
	{
		kv.GET("", h.List)
		kv.GET("/:key", h.Get)
		kv.PUT("/:key", h.Put)
		kv.DELETE("/:key", h.Delete)
	}
}

// List handles GET /api/kv.
func (h *KVHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get handles GET /api/kv/:key.
func (h *KVHandler) Get(c *gin.Context) {
	result, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Put handles PUT /api/kv/:key with a raw JSON body.
func (h *KVHandler) Put(c *gin.Context) {
	var stamp int64
	if raw := c.GetHeader(StampHeader); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid "+StampHeader+" header")
			return
		}
		stamp = v
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxValueBytes))
	if err != nil {
		response.BadRequest(c, "value too large or unreadable")
		return
	}

	result, err := h.service.Put(c.Request.Context(), c.Param("key"), body, stamp)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete handles DELETE /api/kv/:key.
func (h *KVHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("key")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
