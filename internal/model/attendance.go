package model

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord represents one student's presence or absence for one
// event. At most one record exists per (event, student) pair; marking is an
// upsert, never an append.
type AttendanceRecord struct {
	ID          int        `json:"id"`
	EventID     uuid.UUID  `json:"event_id"`
	StudentID   int        `json:"student_id"`
	PromotionID int        `json:"promotion_id"`
	Attended    bool       `json:"attended"`
	// AttendedAt is set only when Attended is true.
	AttendedAt *time.Time `json:"attended_at,omitempty"`
	MarkedBy   *int       `json:"marked_by,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
