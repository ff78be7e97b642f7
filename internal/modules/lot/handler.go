package lot

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parkly/internal/middleware"
	"parkly/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	lots := r.Group("/lots")
	{
		lots.GET("/nearby", h.Nearby)
		lots.GET("/:id", h.GetLot)
		lots.GET("/:id/spots", h.ListSpots)
	}
}

// RegisterProtectedRoutes mounts the caller's saved lots. The group must
// carry JWT auth.
func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	saved := protected.Group("/lots/saved")
	{
		saved.GET("", h.ListSaved)
		saved.POST("/:id", h.Save)
		saved.DELETE("/:id", h.Unsave)
	}
}

// Nearby handles GET /api/v1/lots/nearby?lat=&lng=&radius=
func (h *Handler) Nearby(c *gin.Context) {
	var q NearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lng are required, radius must be at most 50 km")
		return
	}

	lots, err := h.service.Nearby(c.Request.Context(), *q.Lat, *q.Lng, q.Radius)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lots": lots})
}

func (h *Handler) GetLot(c *gin.Context) {
	id, ok := lotID(c)
	if !ok {
		return
	}

	l, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lot": l})
}

func (h *Handler) ListSpots(c *gin.Context) {
	id, ok := lotID(c)
	if !ok {
		return
	}

	spots, err := h.service.Spots(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"spots": spots})
}

func (h *Handler) ListSaved(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}

	lots, err := h.service.Saved(c.Request.Context(), caller.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lots": lots, "total": len(lots)})
}

func (h *Handler) Save(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}
	id, ok := lotID(c)
	if !ok {
		return
	}

	l, err := h.service.Save(c.Request.Context(), caller.UserID, id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lot": l})
}

func (h *Handler) Unsave(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}
	id, ok := lotID(c)
	if !ok {
		return
	}

	l, err := h.service.Unsave(c.Request.Context(), caller.UserID, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if l == nil {
		response.Success(c, http.StatusOK, gin.H{"lot_id": id})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lot": l})
}

func lotID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lot ID")
		return 0, false
	}
	return id, true
}
