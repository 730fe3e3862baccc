// Package schedule holds the pure calendar computations: interval overlap,
// recurrence expansion and availability slot generation. Everything here is
// deterministic over its inputs; persistence stays in the repositories.
package schedule

import (
	"errors"
	"time"

	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

// ErrInvalidRange rejects candidate ranges where end is not strictly after
// start. Zero-duration candidates are invalid too.
var ErrInvalidRange = errors.New("end date must be after start date")

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Validate rejects empty or inverted ranges.
func (r Range) Validate() error {
	if !r.End.After(r.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps applies the half-open interval overlap test. Ranges that merely
// touch (a.End == b.Start or b.End == a.Start) do not overlap.
func Overlaps(a, b Range) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// FilterConflicts returns the events whose stored range overlaps the
// candidate. Soft-deleted and cancelled events never conflict, regardless of
// what the caller fetched. Order of the result follows the input order.
func FilterConflicts(candidate Range, events []model.Event) []model.Event {
	var conflicts []model.Event
	for _, ev := range events {
		if !ev.IsActive || ev.Status == model.EventStatusCancelled {
			continue
		}
		if Overlaps(candidate, Range{Start: ev.StartAt, End: ev.EndAt}) {
			conflicts = append(conflicts, ev)
		}
	}
	return conflicts
}
