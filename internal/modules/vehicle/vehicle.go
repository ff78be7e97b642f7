// Package vehicle manages the cars a driver can book spots for.
package vehicle

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkly/internal/database"
	"parkly/internal/domain"
	"parkly/internal/middleware"
	"parkly/internal/pkg/errs"
	"parkly/internal/pkg/response"
	"parkly/internal/repository"
)

var ErrPlateExists = errs.Define(errs.ErrConflict, "PLATE_EXISTS", "this plate is already registered on your account")

type CreateRequest struct {
	PlateNumber string `json:"plate_number" binding:"required,min=2,max=32"`
	Make        string `json:"make" binding:"omitempty,max=64"`
	Model       string `json:"model" binding:"omitempty,max=64"`
	Color       string `json:"color" binding:"omitempty,max=32"`
}

type Service struct {
	vehicles *repository.VehicleRepository
}

func NewService(vehicles *repository.VehicleRepository) *Service {
	return &Service{vehicles: vehicles}
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Vehicle, error) {
	out, err := s.vehicles.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err, "list vehicles")
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*domain.Vehicle, error) {
	v := &domain.Vehicle{
		UserID:      userID,
		PlateNumber: req.PlateNumber,
		Make:        req.Make,
		Model:       req.Model,
		Color:       req.Color,
	}
	if repository.NormalizePlate(v.PlateNumber) == "" {
		return nil, errs.Validation("plate number is empty")
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrPlateExists
		}
		return nil, errs.Internal(err, "create vehicle")
	}
	return v, nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/vehicles", h.List)
	rg.POST("/vehicles", h.Create)
}

func (h *Handler) List(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}

	vehicles, err := h.service.List(c.Request.Context(), caller.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"vehicles": vehicles})
}

func (h *Handler) Create(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	v, err := h.service.Create(c.Request.Context(), caller.UserID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"vehicle": v})
}
