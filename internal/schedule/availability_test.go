package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

// Monday 2026-03-02.
func monday(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func mondaySchedule() model.UserSchedule {
	return model.UserSchedule{
		UserID: 42,
		WorkingBlocks: []model.WorkingBlock{
			{Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 17 * 60},
		},
	}
}

func TestFreeSlotsTiling(t *testing.T) {
	window := Range{monday(9, 0), monday(12, 0)}

	slots, err := FreeSlots(mondaySchedule(), nil, window, time.Hour)
	if err != nil {
		t.Fatalf("FreeSlots() error = %v", err)
	}
	want := []Slot{
		{monday(9, 0), monday(10, 0)},
		{monday(10, 0), monday(11, 0)},
		{monday(11, 0), monday(12, 0)},
	}
	assertSlots(t, slots, want)
}

func TestFreeSlotsTruncatesAtWindowEnd(t *testing.T) {
	// A 1h slot starting 11:30 would end past the 12:00 window edge; it is
	// discarded, not clipped.
	window := Range{monday(10, 30), monday(12, 0)}

	slots, err := FreeSlots(mondaySchedule(), nil, window, time.Hour)
	if err != nil {
		t.Fatalf("FreeSlots() error = %v", err)
	}
	want := []Slot{{monday(10, 30), monday(11, 30)}}
	assertSlots(t, slots, want)
}

func TestFreeSlotsOutsideWorkingHours(t *testing.T) {
	window := Range{monday(7, 0), monday(10, 0)}

	slots, err := FreeSlots(mondaySchedule(), nil, window, time.Hour)
	if err != nil {
		t.Fatalf("FreeSlots() error = %v", err)
	}
	// 7:00 and 8:00 start before the 9:00 working block.
	want := []Slot{{monday(9, 0), monday(10, 0)}}
	assertSlots(t, slots, want)
}

func TestFreeSlotsSkipsBlockedPeriods(t *testing.T) {
	sched := mondaySchedule()
	sched.BlockedPeriods = []model.BlockedPeriod{
		{StartAt: monday(10, 0), EndAt: monday(11, 0), Reason: "staff meeting"},
	}
	window := Range{monday(9, 0), monday(12, 0)}

	slots, err := FreeSlots(sched, nil, window, time.Hour)
	if err != nil {
		t.Fatalf("FreeSlots() error = %v", err)
	}
	want := []Slot{
		{monday(9, 0), monday(10, 0)},
		{monday(11, 0), monday(12, 0)},
	}
	assertSlots(t, slots, want)
}

func TestFreeSlotsSkipsBusyEvents(t *testing.T) {
	busy := []model.Event{
		testEvent(monday(9, 30), monday(10, 30), model.EventStatusScheduled, true),
		// Cancelled events free the slot back up.
		testEvent(monday(11, 0), monday(12, 0), model.EventStatusCancelled, true),
	}
	window := Range{monday(9, 0), monday(12, 0)}

	slots, err := FreeSlots(mondaySchedule(), busy, window, time.Hour)
	if err != nil {
		t.Fatalf("FreeSlots() error = %v", err)
	}
	// 9:00 and 10:00 both overlap the 9:30-10:30 event.
	want := []Slot{{monday(11, 0), monday(12, 0)}}
	assertSlots(t, slots, want)
}

func TestFreeSlotsCombined(t *testing.T) {
	sched := mondaySchedule()
	sched.BlockedPeriods = []model.BlockedPeriod{
		{StartAt: monday(11, 30), EndAt: monday(13, 0)},
	}
	busy := []model.Event{
		testEvent(monday(10, 0), monday(11, 0), model.EventStatusScheduled, true),
	}
	window := Range{monday(9, 0), monday(12, 30)}

	slots, err := FreeSlots(sched, busy, window, time.Hour)
	if err != nil {
		t.Fatalf("FreeSlots() error = %v", err)
	}
	// 10:00 is busy, 11:00 hits the blocked period, 12:00 would end past
	// the window.
	want := []Slot{{monday(9, 0), monday(10, 0)}}
	assertSlots(t, slots, want)
}

func TestFreeSlotsInvalidInput(t *testing.T) {
	t.Run("inverted window", func(t *testing.T) {
		_, err := FreeSlots(mondaySchedule(), nil, Range{monday(12, 0), monday(9, 0)}, time.Hour)
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("FreeSlots() error = %v, want ErrInvalidRange", err)
		}
	})
	t.Run("non-positive slot duration", func(t *testing.T) {
		_, err := FreeSlots(mondaySchedule(), nil, Range{monday(9, 0), monday(12, 0)}, 0)
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("FreeSlots() error = %v, want ErrInvalidRange", err)
		}
	})
}

func assertSlots(t *testing.T, got, want []Slot) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].StartAt.Equal(want[i].StartAt) || !got[i].EndAt.Equal(want[i].EndAt) {
			t.Errorf("slot %d = [%v, %v), want [%v, %v)",
				i, got[i].StartAt, got[i].EndAt, want[i].StartAt, want[i].EndAt)
		}
	}
}
