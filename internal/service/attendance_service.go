package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
)

// AttendanceService handles attendance marking and per-student statistics.
type AttendanceService struct {
	attendanceRepo *repository.AttendanceRepository
	eventRepo      *repository.EventRepository
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(attendanceRepo *repository.AttendanceRepository, eventRepo *repository.EventRepository) *AttendanceService {
	return &AttendanceService{attendanceRepo: attendanceRepo, eventRepo: eventRepo}
}

// Mark upserts one student's attendance for an event. Repeated calls with
// the same (event, student) pair replace the previous record.
func (s *AttendanceService) Mark(ctx context.Context, rec *model.AttendanceRecord) error {
	if _, err := s.eventRepo.GetByID(ctx, rec.EventID); err != nil {
		return err
	}
	return s.attendanceRepo.Upsert(ctx, rec)
}

// BulkMark upserts a batch of records for one event in a single statement.
// The operation is idempotent: replaying the same payload leaves one record
// per (event, student) pair with the latest values.
func (s *AttendanceService) BulkMark(ctx context.Context, eventID uuid.UUID, records []model.AttendanceRecord) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return err
	}
	for i := range records {
		records[i].EventID = eventID
	}
	return s.attendanceRepo.BulkUpsert(ctx, records)
}

// ListByEvent returns all records for an event.
func (s *AttendanceService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.AttendanceRecord, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.attendanceRepo.ListByEvent(ctx, eventID)
}

// StudentRate is a student's attendance summary inside one promotion.
type StudentRate struct {
	PromotionID int     `json:"promotion_id"`
	StudentID   int     `json:"student_id"`
	Attended    int     `json:"attended"`
	Total       int     `json:"total"`
	Rate        float64 `json:"rate"`
}

// Rate computes a student's attendance rate (0–100) in a promotion. A student
// with zero records has a rate of 100: nothing recorded counts as nothing
// missed.
func (s *AttendanceService) Rate(ctx context.Context, promotionID, studentID int) (*StudentRate, error) {
	attended, total, err := s.attendanceRepo.CountByStudent(ctx, promotionID, studentID)
	if err != nil {
		return nil, err
	}
	rate := 100.0
	if total > 0 {
		rate = float64(attended) / float64(total) * 100
	}
	return &StudentRate{
		PromotionID: promotionID,
		StudentID:   studentID,
		Attended:    attended,
		Total:       total,
		Rate:        rate,
	}, nil
}
