package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

const (
	// DefaultRecurrenceHorizon bounds open-ended rules to one year past the
	// template's start.
	DefaultRecurrenceHorizon = 365 * 24 * time.Hour

	// maxOccurrences is a safety cap against runaway expansions.
	maxOccurrences = 1000
)

// ErrUnknownFrequency is returned for frequencies outside daily/weekly/monthly.
// A malformed rule fails fast instead of silently producing zero or infinite
// instances.
var ErrUnknownFrequency = errors.New("unknown recurrence frequency")

func rruleFrequency(f model.Frequency) (rrule.Frequency, error) {
	switch f {
	case model.FrequencyDaily:
		return rrule.DAILY, nil
	case model.FrequencyWeekly:
		return rrule.WEEKLY, nil
	case model.FrequencyMonthly:
		return rrule.MONTHLY, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFrequency, f)
	}
}

// Expand produces the concrete instances of a recurring template event, the
// template itself included as occurrence zero. Instances after the first are
// copies of the template shifted by the rule's period, each with a fresh ID
// and RecurrenceRootID pointing at the template. Every instance starts
// strictly before until (defaulting to one year after the template start when
// the rule has no end), so the sequence is finite, strictly increasing in
// start time, and deterministic for fixed inputs.
func Expand(template model.Event, rule model.RecurrenceRule) ([]model.Event, error) {
	if err := (Range{Start: template.StartAt, End: template.EndAt}).Validate(); err != nil {
		return nil, err
	}

	freq, err := rruleFrequency(rule.Frequency)
	if err != nil {
		return nil, err
	}

	until := template.StartAt.Add(DefaultRecurrenceHorizon)
	if rule.Until != nil {
		until = *rule.Until
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    freq,
		Dtstart: template.StartAt,
		Until:   until,
		Count:   maxOccurrences,
	})
	if err != nil {
		return nil, fmt.Errorf("build recurrence rule: %w", err)
	}

	duration := template.Duration()
	rootID := template.ID

	first := template
	first.RecurrenceRootID = &rootID
	instances := []model.Event{first}

	for _, start := range r.All() {
		if !start.After(template.StartAt) {
			continue // occurrence zero is the template itself
		}
		// rrule treats Until as inclusive; the expansion contract is
		// strict.
		if !start.Before(until) {
			break
		}
		inst := template
		inst.ID = uuid.New()
		inst.StartAt = start
		inst.EndAt = start.Add(duration)
		inst.RecurrenceRootID = &rootID
		instances = append(instances, inst)
	}

	return instances, nil
}
