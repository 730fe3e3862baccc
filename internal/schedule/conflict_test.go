package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func TestRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		wantErr bool
	}{
		{"valid", Range{at(9, 0), at(10, 0)}, false},
		{"inverted", Range{at(10, 0), at(9, 0)}, true},
		{"zero duration", Range{at(9, 0), at(9, 0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{"identical", Range{at(9, 0), at(10, 0)}, Range{at(9, 0), at(10, 0)}, true},
		{"partial overlap", Range{at(9, 0), at(10, 0)}, Range{at(9, 30), at(10, 30)}, true},
		{"contained", Range{at(9, 0), at(12, 0)}, Range{at(10, 0), at(11, 0)}, true},
		{"touching end to start", Range{at(9, 0), at(10, 0)}, Range{at(10, 0), at(11, 0)}, false},
		{"touching start to end", Range{at(10, 0), at(11, 0)}, Range{at(9, 0), at(10, 0)}, false},
		{"disjoint", Range{at(9, 0), at(10, 0)}, Range{at(11, 0), at(12, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func testEvent(start, end time.Time, status model.EventStatus, active bool) model.Event {
	return model.Event{
		ID:       uuid.New(),
		Title:    "Lecture",
		StartAt:  start,
		EndAt:    end,
		Status:   status,
		IsActive: active,
	}
}

func TestFilterConflicts(t *testing.T) {
	candidate := Range{at(9, 0), at(10, 0)}

	overlapping := testEvent(at(9, 30), at(10, 30), model.EventStatusScheduled, true)
	touching := testEvent(at(10, 0), at(11, 0), model.EventStatusScheduled, true)
	cancelled := testEvent(at(9, 0), at(10, 0), model.EventStatusCancelled, true)
	deleted := testEvent(at(9, 0), at(10, 0), model.EventStatusScheduled, false)
	disjoint := testEvent(at(14, 0), at(15, 0), model.EventStatusScheduled, true)

	got := FilterConflicts(candidate, []model.Event{overlapping, touching, cancelled, deleted, disjoint})
	if len(got) != 1 {
		t.Fatalf("FilterConflicts() returned %d events, want 1", len(got))
	}
	if got[0].ID != overlapping.ID {
		t.Errorf("FilterConflicts() returned event %s, want %s", got[0].ID, overlapping.ID)
	}
}

func TestFilterConflictsEmpty(t *testing.T) {
	got := FilterConflicts(Range{at(9, 0), at(10, 0)}, nil)
	if len(got) != 0 {
		t.Errorf("FilterConflicts() with no events = %v, want empty", got)
	}
}
