package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/response"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/service"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/validator"
)

// PromotionHandler handles cohort management (admin only).
type PromotionHandler struct {
	promotionService *service.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(promotionService *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotionService: promotionService}
}

// ListPromotions godoc
// GET /api/promotions
func (h *PromotionHandler) ListPromotions(c *gin.Context) {
	promotions, err := h.promotionService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"promotions": promotions})
}

// GetPromotion godoc
// GET /api/promotions/:id
func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	promotion, err := h.promotionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.failPromotion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"promotion":        promotion,
		"enrollment_count": promotion.EnrollmentCount(),
		"available_spots":  promotion.AvailableSpots(),
	})
}

// PromotionRequest is the payload for creating or updating a promotion.
type PromotionRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	Code          string `json:"code" binding:"required,min=2,max=20"`
	StartYear     int    `json:"start_year" binding:"required,min=2000,max=2100"`
	EndYear       int    `json:"end_year" binding:"required,min=2000,max=2100"`
	CoordinatorID int    `json:"coordinator_id" binding:"required,min=1"`
	Status        string `json:"status" binding:"omitempty,oneof=active completed suspended"`
	Capacity      int    `json:"capacity" binding:"required,min=1,max=100"`
}

// CreatePromotion godoc
// POST /api/promotions
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var req PromotionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	promotion := &model.Promotion{
		Name:          req.Name,
		Code:          req.Code,
		StartYear:     req.StartYear,
		EndYear:       req.EndYear,
		CoordinatorID: req.CoordinatorID,
		Status:        model.PromotionStatus(req.Status),
		Capacity:      req.Capacity,
	}

	if err := h.promotionService.Create(c.Request.Context(), promotion); err != nil {
		h.failPromotion(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"promotion": promotion})
}

// UpdatePromotion godoc
// PUT /api/promotions/:id
func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req PromotionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	promotion := &model.Promotion{
		ID:            id,
		Name:          req.Name,
		Code:          req.Code,
		StartYear:     req.StartYear,
		EndYear:       req.EndYear,
		CoordinatorID: req.CoordinatorID,
		Status:        model.PromotionStatus(req.Status),
		Capacity:      req.Capacity,
	}
	if promotion.Status == "" {
		promotion.Status = model.PromotionStatusActive
	}

	if err := h.promotionService.Update(c.Request.Context(), promotion); err != nil {
		h.failPromotion(c, err)
		return
	}

	updated, _ := h.promotionService.GetByID(c.Request.Context(), id)
	response.Success(c, http.StatusOK, gin.H{"promotion": updated})
}

// AddStudent godoc
// POST /api/promotions/:id/students/:studentId
func (h *PromotionHandler) AddStudent(c *gin.Context) {
	h.membershipOp(c, "studentId", h.promotionService.AddStudent)
}

// RemoveStudent godoc
// DELETE /api/promotions/:id/students/:studentId
func (h *PromotionHandler) RemoveStudent(c *gin.Context) {
	h.membershipOp(c, "studentId", h.promotionService.RemoveStudent)
}

// AddCourse godoc
// POST /api/promotions/:id/courses/:courseId
func (h *PromotionHandler) AddCourse(c *gin.Context) {
	h.membershipOp(c, "courseId", h.promotionService.AddCourse)
}

// RemoveCourse godoc
// DELETE /api/promotions/:id/courses/:courseId
func (h *PromotionHandler) RemoveCourse(c *gin.Context) {
	h.membershipOp(c, "courseId", h.promotionService.RemoveCourse)
}

func (h *PromotionHandler) membershipOp(c *gin.Context, param string, op func(ctx context.Context, promotionID, memberID int) (*model.Promotion, error)) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	memberID, err := strconv.Atoi(c.Param(param))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	promotion, err := op(c.Request.Context(), id, memberID)
	if err != nil {
		h.failPromotion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"promotion":        promotion,
		"enrollment_count": promotion.EnrollmentCount(),
		"available_spots":  promotion.AvailableSpots(),
	})
}

func (h *PromotionHandler) failPromotion(c *gin.Context, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, repository.ErrPromotionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrPromotionFull):
		response.Fail(c, http.StatusConflict, response.ErrPromotionFull)
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyEnrolled)
	case errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusConflict, response.ErrNotEnrolled)
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrInvalidYears):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"detail": err.Error()})
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		response.Fail(c, http.StatusConflict, response.ErrDuplicateCode)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
