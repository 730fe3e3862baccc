package worker

import (
	"fmt"
	"time"

	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

// RuleConfig carries the attendance thresholds the engine evaluates against.
type RuleConfig struct {
	// LowAttendanceThreshold is the rate (0–100) below which a student is
	// flagged.
	LowAttendanceThreshold float64
	// ConsecutiveAbsenceLimit triggers an alert at this many unbroken
	// absences.
	ConsecutiveAbsenceLimit int
	// ConsecutiveLookback bounds the newest-first absence scan.
	ConsecutiveLookback int
	// MissingRecordGrace is how long after an event completes before a
	// missing attendance sheet is flagged.
	MissingRecordGrace time.Duration
	// TrendWindow is the lookback for the declining-trend comparison.
	TrendWindow time.Duration
}

// AttendanceRate computes attended/total as a 0–100 percentage. Zero records
// yield 100: a student with nothing recorded has missed nothing.
func AttendanceRate(attended, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(attended) / float64(total) * 100
}

// EvaluateLowAttendance flags a student whose rate is below the threshold.
// Severity is high under 50%, medium otherwise.
func EvaluateLowAttendance(cfg RuleConfig, promotionID, studentID, attended, total int, now time.Time) *model.Alert {
	rate := AttendanceRate(attended, total)
	if rate >= cfg.LowAttendanceThreshold {
		return nil
	}

	severity := model.SeverityMedium
	if rate < 50 {
		severity = model.SeverityHigh
	}
	return &model.Alert{
		Type:        model.AlertLowAttendance,
		Severity:    severity,
		PromotionID: promotionID,
		StudentID:   studentID,
		Message:     fmt.Sprintf("attendance rate %.1f%% is below the %.0f%% threshold", rate, cfg.LowAttendanceThreshold),
		Value:       rate,
		DetectedAt:  now,
	}
}

// ConsecutiveAbsences counts unattended records scanning newest-first,
// stopping at the first attended one. Records must already be ordered newest
// first; the scan never looks past the lookback bound.
func ConsecutiveAbsences(records []model.AttendanceRecord, lookback int) int {
	count := 0
	for i, rec := range records {
		if i >= lookback {
			break
		}
		if rec.Attended {
			break
		}
		count++
	}
	return count
}

// EvaluateConsecutiveAbsences flags a student with an unbroken run of recent
// absences. Severity is high at 5 or more.
func EvaluateConsecutiveAbsences(cfg RuleConfig, promotionID, studentID int, records []model.AttendanceRecord, now time.Time) *model.Alert {
	count := ConsecutiveAbsences(records, cfg.ConsecutiveLookback)
	if count < cfg.ConsecutiveAbsenceLimit {
		return nil
	}

	severity := model.SeverityMedium
	if count >= 5 {
		severity = model.SeverityHigh
	}
	return &model.Alert{
		Type:        model.AlertConsecutiveAbsences,
		Severity:    severity,
		PromotionID: promotionID,
		StudentID:   studentID,
		Message:     fmt.Sprintf("%d consecutive absences recorded", count),
		Value:       float64(count),
		DetectedAt:  now,
	}
}

// EvaluateMissingAttendance flags a completed event with no attendance
// records past the grace period. The organizer is the recipient.
func EvaluateMissingAttendance(cfg RuleConfig, event model.Event, now time.Time) *model.Alert {
	if event.Status != model.EventStatusCompleted || event.Visibility != model.VisibilityPrivate {
		return nil
	}
	if now.Sub(event.EndAt) < cfg.MissingRecordGrace {
		return nil
	}

	eventID := event.ID
	return &model.Alert{
		Type:        model.AlertMissingAttendance,
		Severity:    model.SeverityMedium,
		EventID:     &eventID,
		RecipientID: event.OrganizerID,
		Message:     fmt.Sprintf("no attendance recorded for %q within %s of completion", event.Title, cfg.MissingRecordGrace),
		Value:       now.Sub(event.EndAt).Hours(),
		DetectedAt:  now,
	}
}

// EvaluateDecliningTrend compares a promotion's attended ratio between the
// first and second half of the lookback window. A drop over 5 percentage
// points flags the promotion; over 20 points is high severity. Records are
// split by their event's position in the window via CreatedAt ordering
// supplied by the caller (oldest first).
func EvaluateDecliningTrend(cfg RuleConfig, promotionID int, records []model.AttendanceRecord, windowStart, now time.Time) *model.Alert {
	if len(records) == 0 {
		return nil
	}

	mid := windowStart.Add(now.Sub(windowStart) / 2)

	var firstAttended, firstTotal, secondAttended, secondTotal int
	for _, rec := range records {
		ts := rec.CreatedAt
		if rec.AttendedAt != nil {
			ts = *rec.AttendedAt
		}
		if ts.Before(mid) {
			firstTotal++
			if rec.Attended {
				firstAttended++
			}
		} else {
			secondTotal++
			if rec.Attended {
				secondAttended++
			}
		}
	}
	if firstTotal == 0 || secondTotal == 0 {
		return nil
	}

	firstRate := float64(firstAttended) / float64(firstTotal) * 100
	secondRate := float64(secondAttended) / float64(secondTotal) * 100
	drop := firstRate - secondRate
	if drop <= 5 {
		return nil
	}

	severity := model.SeverityMedium
	if drop > 20 {
		severity = model.SeverityHigh
	}
	return &model.Alert{
		Type:        model.AlertDecliningTrend,
		Severity:    severity,
		PromotionID: promotionID,
		Message:     fmt.Sprintf("attendance dropped %.1f points over the last %d days", drop, int(cfg.TrendWindow.Hours()/24)),
		Value:       drop,
		DetectedAt:  now,
	}
}
