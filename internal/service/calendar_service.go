package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/schedule"
)

// Calendar service errors.
var (
	ErrInvalidDateRange   = schedule.ErrInvalidRange
	ErrEventNotEditable   = errors.New("completed or cancelled events cannot be modified")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrEmptyConflictScope = errors.New("conflict scope requires an organizer, location or attendee")
)

// ConflictError carries the overlapping events that caused a rejected
// create or reschedule.
type ConflictError struct {
	Conflicts []model.Event
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict detected: %d overlapping events", len(e.Conflicts))
}

// CalendarService implements conflict-checked event scheduling, recurrence
// fan-out and event lifecycle rules.
type CalendarService struct {
	eventRepo *repository.EventRepository
	log       zerolog.Logger
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(eventRepo *repository.EventRepository, log zerolog.Logger) *CalendarService {
	return &CalendarService{
		eventRepo: eventRepo,
		log:       log.With().Str("component", "calendar_service").Logger(),
	}
}

// FindConflicts returns the active, non-cancelled events in scope overlapping
// the candidate range. Read-only; the candidate range must be non-empty and
// the scope must name at least one dimension.
func (s *CalendarService) FindConflicts(ctx context.Context, candidate schedule.Range, scope repository.EventScope) ([]model.Event, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	if scope.Empty() {
		return nil, ErrEmptyConflictScope
	}
	return s.eventRepo.FindOverlapping(ctx, candidate.Start, candidate.End, scope)
}

// Create persists a new event after a conflict check against the organizer's
// calendar. A recurring event immediately fans out into its concrete
// instances; only the template is conflict-checked, matching how the
// organizer booked it.
//
// Note: two concurrent creates can both pass the conflict check and both
// persist. There is no transactional guard around check-then-act.
func (s *CalendarService) Create(ctx context.Context, e *model.Event) error {
	candidate := schedule.Range{Start: e.StartAt, End: e.EndAt}
	if err := candidate.Validate(); err != nil {
		return err
	}

	scope := repository.EventScope{OrganizerID: &e.OrganizerID}
	conflicts, err := s.eventRepo.FindOverlapping(ctx, candidate.Start, candidate.End, scope)
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}

	e.Status = model.EventStatusScheduled
	if e.Visibility == "" {
		e.Visibility = model.VisibilityPrivate
	}

	if !e.IsRecurring || e.Recurrence == nil {
		e.IsRecurring = false
		e.Recurrence = nil
		return s.eventRepo.Create(ctx, e)
	}

	// Validate the rule before persisting anything: a malformed frequency
	// must not leave a half-created series behind.
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	instances, err := schedule.Expand(*e, *e.Recurrence)
	if err != nil {
		return err
	}

	rootID := e.ID
	e.RecurrenceRootID = &rootID
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return err
	}
	if len(instances) > 1 {
		if err := s.eventRepo.CreateBatch(ctx, instances[1:]); err != nil {
			return fmt.Errorf("persist recurrence instances: %w", err)
		}
	}

	s.log.Info().
		Str("event_id", e.ID.String()).
		Int("instances", len(instances)).
		Msg("recurring event expanded")
	return nil
}

// Get retrieves one event by ID.
func (s *CalendarService) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// List retrieves active events matching the filter.
func (s *CalendarService) List(ctx context.Context, f repository.EventFilter) ([]model.Event, error) {
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		return nil, ErrInvalidDateRange
	}
	return s.eventRepo.List(ctx, f)
}

// Update reschedules or edits an event. A changed time range is re-checked
// for conflicts against the organizer, excluding the event itself.
func (s *CalendarService) Update(ctx context.Context, e *model.Event) error {
	current, err := s.eventRepo.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if current.Status != model.EventStatusScheduled {
		return ErrEventNotEditable
	}

	candidate := schedule.Range{Start: e.StartAt, End: e.EndAt}
	if err := candidate.Validate(); err != nil {
		return err
	}

	if !e.StartAt.Equal(current.StartAt) || !e.EndAt.Equal(current.EndAt) {
		scope := repository.EventScope{OrganizerID: &current.OrganizerID}
		overlapping, err := s.eventRepo.FindOverlapping(ctx, candidate.Start, candidate.End, scope)
		if err != nil {
			return fmt.Errorf("conflict check: %w", err)
		}
		var conflicts []model.Event
		for _, ev := range overlapping {
			if ev.ID != e.ID {
				conflicts = append(conflicts, ev)
			}
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}
	}

	e.OrganizerID = current.OrganizerID
	e.Status = current.Status
	return s.eventRepo.Update(ctx, e)
}

// Complete moves a scheduled event to completed. Cancelled and completed
// events stay where they are: there is no resurrection.
func (s *CalendarService) Complete(ctx context.Context, id uuid.UUID) error {
	current, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != model.EventStatusScheduled {
		return ErrInvalidTransition
	}
	return s.eventRepo.SetStatus(ctx, id, model.EventStatusCompleted)
}

// Delete soft-deletes an event: it flips is_active off and marks the event
// cancelled, removing it from every conflict and availability computation.
func (s *CalendarService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.eventRepo.SoftDelete(ctx, id)
}

// Join adds a student to an event's attendee set.
func (s *CalendarService) Join(ctx context.Context, eventID uuid.UUID, studentID int) error {
	current, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !current.IsActive || current.Status != model.EventStatusScheduled {
		return ErrEventNotEditable
	}
	return s.eventRepo.AddAttendee(ctx, eventID, studentID)
}

// Leave removes a student from an event's attendee set.
func (s *CalendarService) Leave(ctx context.Context, eventID uuid.UUID, studentID int) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return err
	}
	return s.eventRepo.RemoveAttendee(ctx, eventID, studentID)
}
