package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

func recurringTemplate(start time.Time, d time.Duration) model.Event {
	return model.Event{
		ID:          uuid.New(),
		Title:       "Weekly seminar",
		StartAt:     start,
		EndAt:       start.Add(d),
		Status:      model.EventStatusScheduled,
		IsRecurring: true,
		IsActive:    true,
	}
}

func TestExpandDaily(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	until := start.AddDate(0, 0, 7)
	template := recurringTemplate(start, time.Hour)

	instances, err := Expand(template, model.RecurrenceRule{Frequency: model.FrequencyDaily, Until: &until})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(instances) != 7 {
		t.Fatalf("Expand() produced %d instances, want 7", len(instances))
	}

	// Occurrence zero is the template itself, rooted at its own ID.
	if instances[0].ID != template.ID {
		t.Errorf("first instance ID = %s, want template ID %s", instances[0].ID, template.ID)
	}
	for i, inst := range instances {
		if inst.RecurrenceRootID == nil || *inst.RecurrenceRootID != template.ID {
			t.Errorf("instance %d not rooted at template", i)
		}
		if !inst.StartAt.Before(until) {
			t.Errorf("instance %d starts at %v, not before until %v", i, inst.StartAt, until)
		}
		if got := inst.EndAt.Sub(inst.StartAt); got != time.Hour {
			t.Errorf("instance %d duration = %v, want 1h", i, got)
		}
		if i > 0 {
			if !instances[i-1].StartAt.Before(inst.StartAt) {
				t.Errorf("instance %d start %v not after previous %v", i, inst.StartAt, instances[i-1].StartAt)
			}
			if inst.ID == template.ID {
				t.Errorf("instance %d reuses the template ID", i)
			}
		}
	}
}

func TestExpandWeekly(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	until := start.AddDate(0, 0, 28)
	template := recurringTemplate(start, 2*time.Hour)

	instances, err := Expand(template, model.RecurrenceRule{Frequency: model.FrequencyWeekly, Until: &until})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(instances) != 4 {
		t.Fatalf("Expand() produced %d instances, want 4", len(instances))
	}
	for i := 1; i < len(instances); i++ {
		step := instances[i].StartAt.Sub(instances[i-1].StartAt)
		if step != 7*24*time.Hour {
			t.Errorf("instance %d step = %v, want 168h", i, step)
		}
	}
}

func TestExpandDefaultHorizon(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	template := recurringTemplate(start, time.Hour)

	instances, err := Expand(template, model.RecurrenceRule{Frequency: model.FrequencyMonthly})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	horizon := start.Add(DefaultRecurrenceHorizon)
	if len(instances) != 12 {
		t.Fatalf("Expand() produced %d instances, want 12", len(instances))
	}
	for i, inst := range instances {
		if !inst.StartAt.Before(horizon) {
			t.Errorf("instance %d starts at %v, past default horizon %v", i, inst.StartAt, horizon)
		}
	}
}

func TestExpandUntilExcluded(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	// Until lands exactly on the third occurrence: it must be excluded.
	until := start.AddDate(0, 0, 2)
	template := recurringTemplate(start, time.Hour)

	instances, err := Expand(template, model.RecurrenceRule{Frequency: model.FrequencyDaily, Until: &until})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("Expand() produced %d instances, want 2", len(instances))
	}
}

func TestExpandDeterministic(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	until := start.AddDate(0, 0, 10)
	template := recurringTemplate(start, time.Hour)
	rule := model.RecurrenceRule{Frequency: model.FrequencyDaily, Until: &until}

	first, err := Expand(template, rule)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	second, err := Expand(template, rule)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expansions differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].StartAt.Equal(second[i].StartAt) || !first[i].EndAt.Equal(second[i].EndAt) {
			t.Errorf("instance %d times differ between expansions", i)
		}
	}
}

func TestExpandErrors(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("unknown frequency", func(t *testing.T) {
		template := recurringTemplate(start, time.Hour)
		_, err := Expand(template, model.RecurrenceRule{Frequency: "yearly"})
		if !errors.Is(err, ErrUnknownFrequency) {
			t.Errorf("Expand() error = %v, want ErrUnknownFrequency", err)
		}
	})

	t.Run("inverted template range", func(t *testing.T) {
		template := recurringTemplate(start, time.Hour)
		template.EndAt = template.StartAt.Add(-time.Hour)
		_, err := Expand(template, model.RecurrenceRule{Frequency: model.FrequencyDaily})
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Expand() error = %v, want ErrInvalidRange", err)
		}
	})
}

func TestExpandUntilBeforeStart(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	until := start.AddDate(0, 0, -1)
	template := recurringTemplate(start, time.Hour)

	instances, err := Expand(template, model.RecurrenceRule{Frequency: model.FrequencyDaily, Until: &until})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	// The template survives as occurrence zero even when the rule window is
	// already closed.
	if len(instances) != 1 || instances[0].ID != template.ID {
		t.Fatalf("Expand() = %d instances, want just the template", len(instances))
	}
}
