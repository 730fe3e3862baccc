package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/middleware"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/response"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/schedule"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/service"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/validator"
)

// EventHandler handles the planning/calendar routes.
type EventHandler struct {
	calendarService *service.CalendarService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(calendarService *service.CalendarService) *EventHandler {
	return &EventHandler{calendarService: calendarService}
}

// RecurrenceRequest describes how a new event repeats.
type RecurrenceRequest struct {
	Frequency string     `json:"frequency" binding:"required,oneof=daily weekly monthly"`
	Until     *time.Time `json:"until"`
}

// EventRequest is the payload for creating or updating an event.
type EventRequest struct {
	Title       string             `json:"title" binding:"required,min=1,max=300"`
	Description string             `json:"description" binding:"omitempty,max=2000"`
	StartAt     time.Time          `json:"start_at" binding:"required"`
	EndAt       time.Time          `json:"end_at" binding:"required"`
	Type        string             `json:"type" binding:"required,oneof=class exam meeting event"`
	Location    string             `json:"location" binding:"omitempty,max=200"`
	AttendeeIDs []int              `json:"attendee_ids"`
	Visibility  string             `json:"visibility" binding:"omitempty,oneof=public private"`
	Recurrence  *RecurrenceRequest `json:"recurrence"`
}

// CreateEvent godoc
// POST /api/planning/events
// Conflict-checked create; recurring events fan out immediately.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req EventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)

	event := &model.Event{
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Type:        model.EventType(req.Type),
		Location:    req.Location,
		OrganizerID: claims.UserID,
		AttendeeIDs: req.AttendeeIDs,
		Visibility:  model.Visibility(req.Visibility),
	}
	if req.Recurrence != nil {
		event.IsRecurring = true
		event.Recurrence = &model.RecurrenceRule{
			Frequency: model.Frequency(req.Recurrence.Frequency),
			Until:     req.Recurrence.Until,
		}
	}

	if err := h.calendarService.Create(c.Request.Context(), event); err != nil {
		h.failCalendar(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"event": event})
}

// ListEvents godoc
// GET /api/planning/events?startDate=&endDate=&type=&organizerId=&attendeeId=
func (h *EventHandler) ListEvents(c *gin.Context) {
	var f repository.EventFilter

	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		f.From = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		f.To = &t
	}
	if v := c.Query("type"); v != "" {
		et := model.EventType(v)
		f.Type = &et
	}
	if id, ok := intQuery(c, "organizerId"); ok {
		f.OrganizerID = &id
	}
	if id, ok := intQuery(c, "attendeeId"); ok {
		f.AttendeeID = &id
	}

	events, err := h.calendarService.List(c.Request.Context(), f)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidRange) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidDateRange)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"events": events})
}

// GetEvent godoc
// GET /api/planning/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	event, err := h.calendarService.Get(c.Request.Context(), id)
	if err != nil {
		h.failCalendar(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"event": event})
}

// UpdateEvent godoc
// PUT /api/planning/events/:id
// Reschedules are conflict-checked against the organizer's calendar.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req EventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if !h.requireOrganizerOrAdmin(c, id) {
		return
	}

	event := &model.Event{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Type:        model.EventType(req.Type),
		Location:    req.Location,
		AttendeeIDs: req.AttendeeIDs,
		Visibility:  model.Visibility(req.Visibility),
	}
	if event.Visibility == "" {
		event.Visibility = model.VisibilityPrivate
	}

	if err := h.calendarService.Update(c.Request.Context(), event); err != nil {
		h.failCalendar(c, err)
		return
	}

	updated, _ := h.calendarService.Get(c.Request.Context(), id)
	response.Success(c, http.StatusOK, gin.H{"event": updated})
}

// CompleteEvent godoc
// POST /api/planning/events/:id/complete
func (h *EventHandler) CompleteEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if !h.requireOrganizerOrAdmin(c, id) {
		return
	}

	if err := h.calendarService.Complete(c.Request.Context(), id); err != nil {
		h.failCalendar(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, nil, "event completed")
}

// DeleteEvent godoc
// DELETE /api/planning/events/:id
// Soft delete: the event is deactivated and cancelled, never removed.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if !h.requireOrganizerOrAdmin(c, id) {
		return
	}

	if err := h.calendarService.Delete(c.Request.Context(), id); err != nil {
		h.failCalendar(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, nil, "event cancelled")
}

// JoinEvent godoc
// POST /api/planning/events/:id/attendees
func (h *EventHandler) JoinEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.calendarService.Join(c.Request.Context(), id, claims.UserID); err != nil {
		h.failCalendar(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, nil, "joined event")
}

// LeaveEvent godoc
// DELETE /api/planning/events/:id/attendees
func (h *EventHandler) LeaveEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.calendarService.Leave(c.Request.Context(), id, claims.UserID); err != nil {
		h.failCalendar(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, nil, "left event")
}

// ConflictCheckRequest is the payload for a dry conflict check.
type ConflictCheckRequest struct {
	StartAt     time.Time `json:"start_at" binding:"required"`
	EndAt       time.Time `json:"end_at" binding:"required"`
	OrganizerID *int      `json:"organizer_id"`
	Location    *string   `json:"location"`
	AttendeeID  *int      `json:"attendee_id"`
}

// CheckConflicts godoc
// POST /api/planning/conflicts
// Read-only overlap check; nothing is created.
func (h *EventHandler) CheckConflicts(c *gin.Context) {
	var req ConflictCheckRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	conflicts, err := h.calendarService.FindConflicts(c.Request.Context(),
		schedule.Range{Start: req.StartAt, End: req.EndAt},
		repository.EventScope{OrganizerID: req.OrganizerID, Location: req.Location, AttendeeID: req.AttendeeID})
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidRange) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidDateRange)
			return
		}
		if errors.Is(err, service.ErrEmptyConflictScope) {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"has_conflicts": len(conflicts) > 0,
		"conflicts":     conflicts,
	})
}

// requireOrganizerOrAdmin loads the event and enforces that the caller is
// its organizer or an admin. Writes the error response itself on failure.
func (h *EventHandler) requireOrganizerOrAdmin(c *gin.Context, eventID uuid.UUID) bool {
	event, err := h.calendarService.Get(c.Request.Context(), eventID)
	if err != nil {
		h.failCalendar(c, err)
		return false
	}

	claims := middleware.GetClaims(c)
	if claims.Role != middleware.RoleAdmin && claims.UserID != event.OrganizerID {
		response.Fail(c, http.StatusForbidden, response.ErrNotOrganizer)
		return false
	}
	return true
}

// failCalendar maps calendar service errors to HTTP responses.
func (h *EventHandler) failCalendar(c *gin.Context, err error) {
	var conflictErr *service.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		response.FailWithDetails(c, http.StatusConflict, response.ErrScheduleConflict, gin.H{"conflicts": conflictErr.Conflicts})
	case errors.Is(err, schedule.ErrInvalidRange):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidDateRange)
	case errors.Is(err, schedule.ErrUnknownFrequency):
		response.Fail(c, http.StatusBadRequest, response.ErrBadRecurrence)
	case errors.Is(err, repository.ErrEventNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrEventNotEditable), errors.Is(err, service.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrEventNotEditable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
