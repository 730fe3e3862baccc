package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/response"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/schedule"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/service"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/validator"
)

// AvailabilityHandler handles free-slot queries and schedule definitions.
type AvailabilityHandler struct {
	availabilityService *service.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(availabilityService *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

// GetAvailability godoc
// GET /api/planning/availability?userId=&start=&end=&slotMinutes=
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	userID, err := strconv.Atoi(c.Query("userId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}
	slotMinutes := 30
	if raw := c.Query("slotMinutes"); raw != "" {
		slotMinutes, err = strconv.Atoi(raw)
		if err != nil || slotMinutes < 1 {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
	}

	slots, err := h.availabilityService.GetAvailability(c.Request.Context(), userID,
		schedule.Range{Start: start, End: end}, time.Duration(slotMinutes)*time.Minute)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidRange):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidDateRange)
		case errors.Is(err, service.ErrNoSchedule):
			response.Fail(c, http.StatusNotFound, response.ErrNoSchedule)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

// GetSchedule godoc
// GET /api/planning/schedules/:userId
func (h *AvailabilityHandler) GetSchedule(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	sched, err := h.availabilityService.GetSchedule(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoSchedule) {
			response.Fail(c, http.StatusNotFound, response.ErrNoSchedule)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"schedule": sched})
}

// WorkingBlockRequest is one weekly availability window.
type WorkingBlockRequest struct {
	Weekday     int `json:"weekday" binding:"min=0,max=6"`
	StartMinute int `json:"start_minute" binding:"min=0,max=1439"`
	EndMinute   int `json:"end_minute" binding:"required,min=1,max=1440"`
}

// BlockedPeriodRequest is one absolute unavailable range.
type BlockedPeriodRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
	Reason  string    `json:"reason" binding:"omitempty,max=200"`
}

// ScheduleRequest replaces a user's schedule definition.
type ScheduleRequest struct {
	WorkingBlocks  []WorkingBlockRequest  `json:"working_blocks" binding:"required,min=1,dive"`
	BlockedPeriods []BlockedPeriodRequest `json:"blocked_periods" binding:"omitempty,dive"`
}

// UpsertSchedule godoc
// PUT /api/planning/schedules/:userId
func (h *AvailabilityHandler) UpsertSchedule(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req ScheduleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sched := &model.UserSchedule{UserID: userID}
	for _, b := range req.WorkingBlocks {
		if b.EndMinute <= b.StartMinute {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidDateRange)
			return
		}
		sched.WorkingBlocks = append(sched.WorkingBlocks, model.WorkingBlock{
			Weekday:     time.Weekday(b.Weekday),
			StartMinute: b.StartMinute,
			EndMinute:   b.EndMinute,
		})
	}
	for _, p := range req.BlockedPeriods {
		if !p.EndAt.After(p.StartAt) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidDateRange)
			return
		}
		sched.BlockedPeriods = append(sched.BlockedPeriods, model.BlockedPeriod{
			StartAt: p.StartAt,
			EndAt:   p.EndAt,
			Reason:  p.Reason,
		})
	}

	if err := h.availabilityService.UpsertSchedule(c.Request.Context(), sched); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"schedule": sched})
}
