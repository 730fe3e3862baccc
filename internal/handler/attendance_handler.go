package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/middleware"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/response"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/service"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/validator"
)

// AttendanceHandler handles attendance marking and statistics routes.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// MarkRequest marks one student for one event.
type MarkRequest struct {
	StudentID   int    `json:"student_id" binding:"required,min=1"`
	PromotionID int    `json:"promotion_id" binding:"required,min=1"`
	Attended    bool   `json:"attended"`
	Notes       string `json:"notes" binding:"omitempty,max=500"`
}

// MarkAttendance godoc
// POST /api/attendance/events/:eventId/mark
// Idempotent upsert keyed by (event, student).
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req MarkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	rec := &model.AttendanceRecord{
		EventID:     eventID,
		StudentID:   req.StudentID,
		PromotionID: req.PromotionID,
		Attended:    req.Attended,
		MarkedBy:    &claims.UserID,
		Notes:       req.Notes,
	}

	if err := h.attendanceService.Mark(c.Request.Context(), rec); err != nil {
		h.failAttendance(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

// BulkMarkEntry is one row of a bulk-mark payload.
type BulkMarkEntry struct {
	StudentID int    `json:"student_id" binding:"required,min=1"`
	Attended  bool   `json:"attended"`
	Notes     string `json:"notes" binding:"omitempty,max=500"`
}

// BulkMarkRequest marks many students for one event in one statement.
type BulkMarkRequest struct {
	PromotionID int             `json:"promotion_id" binding:"required,min=1"`
	Records     []BulkMarkEntry `json:"records" binding:"required,min=1,max=500,dive"`
}

// BulkMarkAttendance godoc
// POST /api/attendance/events/:eventId/bulk
// Replaying an identical payload leaves exactly one record per
// (event, student) pair with the latest values.
func (h *AttendanceHandler) BulkMarkAttendance(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req BulkMarkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	records := make([]model.AttendanceRecord, 0, len(req.Records))
	for _, entry := range req.Records {
		records = append(records, model.AttendanceRecord{
			EventID:     eventID,
			StudentID:   entry.StudentID,
			PromotionID: req.PromotionID,
			Attended:    entry.Attended,
			MarkedBy:    &claims.UserID,
			Notes:       entry.Notes,
		})
	}

	if err := h.attendanceService.BulkMark(c.Request.Context(), eventID, records); err != nil {
		h.failAttendance(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, gin.H{"marked": len(records)}, "attendance recorded")
}

// ListEventAttendance godoc
// GET /api/attendance/events/:eventId
func (h *AttendanceHandler) ListEventAttendance(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	records, err := h.attendanceService.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.failAttendance(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"records": records})
}

// GetStudentRate godoc
// GET /api/attendance/students/:studentId/rate?promotionId=
func (h *AttendanceHandler) GetStudentRate(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("studentId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	promotionID, err := strconv.Atoi(c.Query("promotionId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rate, err := h.attendanceService.Rate(c.Request.Context(), promotionID, studentID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rate": rate})
}

func (h *AttendanceHandler) failAttendance(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrEventNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
