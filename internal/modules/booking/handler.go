package booking

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

func (h *Handler) CreateBooking(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}

	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": ToResponse(b)})
}

func (h *Handler) ListMyBookings(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}

	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	page, err := h.service.List(c.Request.Context(), caller, q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, page)
}

func (h *Handler) GetBooking(c *gin.Context) {
	caller, id, ok := callerAndID(c)
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": ToResponse(b)})
}

func (h *Handler) EditBooking(c *gin.Context) {
	caller, id, ok := callerAndID(c)
	if !ok {
		return
	}

	var req EditInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Edit(c.Request.Context(), caller, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": ToResponse(b)})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	caller, id, ok := callerAndID(c)
	if !ok {
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), caller, id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": ToResponse(b)})
}

func (h *Handler) ExtendBooking(c *gin.Context) {
	caller, id, ok := callerAndID(c)
	if !ok {
		return
	}

	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Extend(c.Request.Context(), caller, id, req.ExtraMinutes)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": ToResponse(b)})
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	caller, id, ok := callerAndID(c)
	if !ok {
		return
	}

	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Password is required")
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, id, req.Password); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ScanEntrance(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.ScanEntrance(c.Request.Context(), req.QRCode)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": ToResponse(b)})
}

func (h *Handler) ScanExit(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.ScanExit(c.Request.Context(), req.QRCode)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

func callerAndID(c *gin.Context) (middleware.Caller, int64, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return caller, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return caller, 0, false
	}
	return caller, id, true
}
