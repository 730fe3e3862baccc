package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertType identifies which attendance rule fired.
type AlertType string

const (
	AlertLowAttendance       AlertType = "low_attendance"
	AlertConsecutiveAbsences AlertType = "consecutive_absences"
	AlertMissingAttendance   AlertType = "missing_attendance"
	AlertDecliningTrend      AlertType = "declining_trend"
)

// AlertSeverity grades an alert.
type AlertSeverity string

const (
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

// Alert is a derived finding of the attendance rule engine. Alerts are never
// persisted; each engine run recomputes them from attendance records and
// hands them to the notification dispatcher.
type Alert struct {
	Type        AlertType     `json:"type"`
	Severity    AlertSeverity `json:"severity"`
	PromotionID int           `json:"promotion_id"`
	StudentID   int           `json:"student_id,omitempty"`
	EventID     *uuid.UUID    `json:"event_id,omitempty"`
	// RecipientID is the user to notify; zero means the promotion
	// coordinator.
	RecipientID int       `json:"recipient_id,omitempty"`
	Message     string    `json:"message"`
	Value       float64   `json:"value"`
	DetectedAt  time.Time `json:"detected_at"`
}
