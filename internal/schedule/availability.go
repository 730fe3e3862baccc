package schedule

import (
	"time"

	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

// Slot is a free candidate interval offered to the caller.
type Slot struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// FreeSlots tiles the window with fixed-duration candidate slots starting at
// windowStart and stepping by slotDuration, then discards every slot that
// would extend past windowEnd, falls outside the schedule's working blocks,
// intersects a blocked period, or overlaps one of the supplied busy events.
// Surviving slots come back in chronological order.
func FreeSlots(sched model.UserSchedule, busy []model.Event, window Range, slotDuration time.Duration) ([]Slot, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if slotDuration <= 0 {
		return nil, ErrInvalidRange
	}

	var slots []Slot
	for start := window.Start; ; start = start.Add(slotDuration) {
		end := start.Add(slotDuration)
		if end.After(window.End) {
			break // no slot extends past the window
		}

		candidate := Range{Start: start, End: end}
		if !withinWorkingHours(sched.WorkingBlocks, candidate) {
			continue
		}
		if intersectsBlocked(sched.BlockedPeriods, candidate) {
			continue
		}
		if len(FilterConflicts(candidate, busy)) > 0 {
			continue
		}
		slots = append(slots, Slot{StartAt: start, EndAt: end})
	}
	return slots, nil
}

// withinWorkingHours reports whether the candidate fits entirely inside a
// single working block of its weekday. Candidates spanning midnight never fit.
func withinWorkingHours(blocks []model.WorkingBlock, candidate Range) bool {
	startMin := minuteOfDay(candidate.Start)
	endMin := startMin + int(candidate.End.Sub(candidate.Start).Minutes())

	for _, b := range blocks {
		if b.Weekday != candidate.Start.Weekday() {
			continue
		}
		if startMin >= b.StartMinute && endMin <= b.EndMinute {
			return true
		}
	}
	return false
}

func intersectsBlocked(periods []model.BlockedPeriod, candidate Range) bool {
	for _, p := range periods {
		if Overlaps(candidate, Range{Start: p.StartAt, End: p.EndAt}) {
			return true
		}
	}
	return false
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
