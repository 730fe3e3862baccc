package worker

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

var testRules = RuleConfig{
	LowAttendanceThreshold:  75,
	ConsecutiveAbsenceLimit: 3,
	ConsecutiveLookback:     10,
	MissingRecordGrace:      24 * time.Hour,
	TrendWindow:             14 * 24 * time.Hour,
}

var testNow = time.Date(2026, 3, 16, 6, 0, 0, 0, time.UTC)

func TestAttendanceRate(t *testing.T) {
	tests := []struct {
		name            string
		attended, total int
		want            float64
	}{
		{"no records", 0, 0, 100},
		{"perfect", 10, 10, 100},
		{"half", 5, 10, 50},
		{"none attended", 0, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttendanceRate(tt.attended, tt.total); got != tt.want {
				t.Errorf("AttendanceRate(%d, %d) = %v, want %v", tt.attended, tt.total, got, tt.want)
			}
		})
	}
}

func TestEvaluateLowAttendance(t *testing.T) {
	tests := []struct {
		name            string
		attended, total int
		wantAlert       bool
		wantSeverity    model.AlertSeverity
	}{
		{"no records never flags", 0, 0, false, ""},
		{"at threshold", 3, 4, false, ""},
		{"just below threshold", 7, 10, true, model.SeverityMedium},
		{"under fifty is high", 4, 10, true, model.SeverityHigh},
		{"zero attended", 0, 5, true, model.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := EvaluateLowAttendance(testRules, 1, 7, tt.attended, tt.total, testNow)
			if (alert != nil) != tt.wantAlert {
				t.Fatalf("EvaluateLowAttendance() alert = %v, want alert %v", alert, tt.wantAlert)
			}
			if alert == nil {
				return
			}
			if alert.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", alert.Severity, tt.wantSeverity)
			}
			if alert.Type != model.AlertLowAttendance {
				t.Errorf("type = %s, want %s", alert.Type, model.AlertLowAttendance)
			}
			if alert.StudentID != 7 || alert.PromotionID != 1 {
				t.Errorf("alert addressed to student %d promotion %d", alert.StudentID, alert.PromotionID)
			}
		})
	}
}

// absences builds newest-first records from a pattern where false = absent.
func absences(pattern ...bool) []model.AttendanceRecord {
	records := make([]model.AttendanceRecord, len(pattern))
	for i, attended := range pattern {
		records[i] = model.AttendanceRecord{
			ID:        i + 1,
			EventID:   uuid.New(),
			StudentID: 7,
			Attended:  attended,
			CreatedAt: testNow.Add(-time.Duration(i) * 24 * time.Hour),
		}
	}
	return records
}

func TestConsecutiveAbsences(t *testing.T) {
	tests := []struct {
		name     string
		records  []model.AttendanceRecord
		lookback int
		want     int
	}{
		{"empty", nil, 10, 0},
		{"attended latest", absences(true, false, false), 10, 0},
		{"run of three", absences(false, false, false, true, false), 10, 3},
		{"run capped by lookback", absences(false, false, false, false, false), 3, 3},
		{"all absent within lookback", absences(false, false, false, false, false), 10, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConsecutiveAbsences(tt.records, tt.lookback); got != tt.want {
				t.Errorf("ConsecutiveAbsences() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvaluateConsecutiveAbsences(t *testing.T) {
	t.Run("below limit", func(t *testing.T) {
		alert := EvaluateConsecutiveAbsences(testRules, 1, 7, absences(false, false, true), testNow)
		if alert != nil {
			t.Errorf("EvaluateConsecutiveAbsences() = %v, want nil", alert)
		}
	})

	t.Run("at limit", func(t *testing.T) {
		alert := EvaluateConsecutiveAbsences(testRules, 1, 7, absences(false, false, false, true), testNow)
		if alert == nil {
			t.Fatal("EvaluateConsecutiveAbsences() = nil, want alert")
		}
		if alert.Severity != model.SeverityMedium {
			t.Errorf("severity = %s, want medium", alert.Severity)
		}
		if alert.Value != 3 {
			t.Errorf("value = %v, want 3", alert.Value)
		}
	})

	t.Run("five or more is high", func(t *testing.T) {
		alert := EvaluateConsecutiveAbsences(testRules, 1, 7, absences(false, false, false, false, false), testNow)
		if alert == nil {
			t.Fatal("EvaluateConsecutiveAbsences() = nil, want alert")
		}
		if alert.Severity != model.SeverityHigh {
			t.Errorf("severity = %s, want high", alert.Severity)
		}
	})
}

func completedEvent(endedAgo time.Duration) model.Event {
	end := testNow.Add(-endedAgo)
	return model.Event{
		ID:          uuid.New(),
		Title:       "Algorithms TD",
		StartAt:     end.Add(-time.Hour),
		EndAt:       end,
		OrganizerID: 12,
		Visibility:  model.VisibilityPrivate,
		Status:      model.EventStatusCompleted,
		IsActive:    true,
	}
}

func TestEvaluateMissingAttendance(t *testing.T) {
	t.Run("past grace period", func(t *testing.T) {
		ev := completedEvent(30 * time.Hour)
		alert := EvaluateMissingAttendance(testRules, ev, testNow)
		if alert == nil {
			t.Fatal("EvaluateMissingAttendance() = nil, want alert")
		}
		if alert.RecipientID != ev.OrganizerID {
			t.Errorf("recipient = %d, want organizer %d", alert.RecipientID, ev.OrganizerID)
		}
		if alert.EventID == nil || *alert.EventID != ev.ID {
			t.Error("alert not tied to the event")
		}
	})

	t.Run("within grace period", func(t *testing.T) {
		if alert := EvaluateMissingAttendance(testRules, completedEvent(2*time.Hour), testNow); alert != nil {
			t.Errorf("EvaluateMissingAttendance() = %v, want nil", alert)
		}
	})

	t.Run("public events exempt", func(t *testing.T) {
		ev := completedEvent(30 * time.Hour)
		ev.Visibility = model.VisibilityPublic
		if alert := EvaluateMissingAttendance(testRules, ev, testNow); alert != nil {
			t.Errorf("EvaluateMissingAttendance() = %v, want nil", alert)
		}
	})

	t.Run("scheduled events exempt", func(t *testing.T) {
		ev := completedEvent(30 * time.Hour)
		ev.Status = model.EventStatusScheduled
		if alert := EvaluateMissingAttendance(testRules, ev, testNow); alert != nil {
			t.Errorf("EvaluateMissingAttendance() = %v, want nil", alert)
		}
	})
}

// trendRecords places attended flags at the given offsets into the window.
func trendRecords(windowStart time.Time, entries map[time.Duration]bool) []model.AttendanceRecord {
	var records []model.AttendanceRecord
	for offset, attended := range entries {
		ts := windowStart.Add(offset)
		records = append(records, model.AttendanceRecord{
			EventID:   uuid.New(),
			Attended:  attended,
			CreatedAt: ts,
		})
	}
	return records
}

func TestEvaluateDecliningTrend(t *testing.T) {
	windowStart := testNow.Add(-testRules.TrendWindow)
	day := 24 * time.Hour

	t.Run("sharp drop is high", func(t *testing.T) {
		// First half 100%, second half 0%.
		records := trendRecords(windowStart, map[time.Duration]bool{
			1 * day:  true,
			2 * day:  true,
			9 * day:  false,
			10 * day: false,
		})
		alert := EvaluateDecliningTrend(testRules, 1, records, windowStart, testNow)
		if alert == nil {
			t.Fatal("EvaluateDecliningTrend() = nil, want alert")
		}
		if alert.Severity != model.SeverityHigh {
			t.Errorf("severity = %s, want high", alert.Severity)
		}
		if alert.Value != 100 {
			t.Errorf("drop = %v, want 100", alert.Value)
		}
	})

	t.Run("moderate drop is medium", func(t *testing.T) {
		// First half 100%, second half 90%.
		entries := map[time.Duration]bool{}
		for i := 0; i < 5; i++ {
			entries[time.Duration(i)*time.Hour+1*day] = true
		}
		for i := 0; i < 9; i++ {
			entries[time.Duration(i)*time.Hour+9*day] = true
		}
		entries[10*day] = false
		alert := EvaluateDecliningTrend(testRules, 1, trendRecords(windowStart, entries), windowStart, testNow)
		if alert == nil {
			t.Fatal("EvaluateDecliningTrend() = nil, want alert")
		}
		if alert.Severity != model.SeverityMedium {
			t.Errorf("severity = %s, want medium", alert.Severity)
		}
	})

	t.Run("stable attendance passes", func(t *testing.T) {
		records := trendRecords(windowStart, map[time.Duration]bool{
			1 * day:  true,
			2 * day:  true,
			9 * day:  true,
			10 * day: true,
		})
		if alert := EvaluateDecliningTrend(testRules, 1, records, windowStart, testNow); alert != nil {
			t.Errorf("EvaluateDecliningTrend() = %v, want nil", alert)
		}
	})

	t.Run("one-sided data passes", func(t *testing.T) {
		records := trendRecords(windowStart, map[time.Duration]bool{
			1 * day: false,
			2 * day: false,
		})
		if alert := EvaluateDecliningTrend(testRules, 1, records, windowStart, testNow); alert != nil {
			t.Errorf("EvaluateDecliningTrend() = %v, want nil", alert)
		}
	})

	t.Run("no records passes", func(t *testing.T) {
		if alert := EvaluateDecliningTrend(testRules, 1, nil, windowStart, testNow); alert != nil {
			t.Errorf("EvaluateDecliningTrend() = %v, want nil", alert)
		}
	})
}
