package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

// ErrEventNotFound is returned when an event ID matches no active row.
var ErrEventNotFound = errors.New("event not found")

// EventScope narrows a conflict query to events sharing an organizer,
// location and/or attendee. At least one field must be set.
type EventScope struct {
	OrganizerID *int
	Location    *string
	AttendeeID  *int
}

// Empty reports whether no scope dimension is set.
func (s EventScope) Empty() bool {
	return s.OrganizerID == nil && s.Location == nil && s.AttendeeID == nil
}

// EventFilter selects events for range listing.
type EventFilter struct {
	From       *time.Time
	To         *time.Time
	Type       *model.EventType
	OrganizerID *int
	AttendeeID  *int
}

// EventRepository handles calendar event data access.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `e.id, e.title, e.description, e.start_at, e.end_at, e.type, e.location,
	e.organizer_id, e.visibility, e.status, e.is_recurring, e.recurrence_frequency,
	e.recurrence_until, e.recurrence_root_id, e.is_active, e.created_at, e.updated_at,
	COALESCE((SELECT array_agg(a.student_id ORDER BY a.student_id)
	          FROM event_attendees a WHERE a.event_id = e.id), '{}')`

func scanEvent(row pgx.Row) (*model.Event, error) {
	e := &model.Event{}
	var freq *string
	var until *time.Time
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.StartAt, &e.EndAt, &e.Type, &e.Location,
		&e.OrganizerID, &e.Visibility, &e.Status, &e.IsRecurring, &freq,
		&until, &e.RecurrenceRootID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
		&e.AttendeeIDs)
	if err != nil {
		return nil, err
	}
	if freq != nil {
		e.Recurrence = &model.RecurrenceRule{Frequency: model.Frequency(*freq), Until: until}
	}
	return e, nil
}

// GetByID retrieves an event (active or not) by its ID.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return e, err
}

// FindOverlapping returns the active, non-cancelled events in scope whose
// stored range overlaps [start, end) under the half-open test:
// stored_start < end AND stored_end > start. Touching ranges do not match.
// Result order is unspecified; callers sort if needed.
func (r *EventRepository) FindOverlapping(ctx context.Context, start, end time.Time, scope EventScope) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events e
		WHERE e.is_active = TRUE
		  AND e.status <> 'cancelled'
		  AND e.start_at < $1
		  AND e.end_at > $2`
	args := []interface{}{end, start}

	if scope.OrganizerID != nil {
		args = append(args, *scope.OrganizerID)
		query += ` AND e.organizer_id = $` + strconv.Itoa(len(args))
	}
	if scope.Location != nil {
		args = append(args, *scope.Location)
		query += ` AND e.location = $` + strconv.Itoa(len(args))
	}
	if scope.AttendeeID != nil {
		args = append(args, *scope.AttendeeID)
		query += ` AND EXISTS (SELECT 1 FROM event_attendees a
			WHERE a.event_id = e.id AND a.student_id = $` + strconv.Itoa(len(args)) + `)`
	}

	return r.queryEvents(ctx, query, args...)
}

// FindBusy returns the active, non-cancelled events in the window where the
// user is either organizer or attendee. Used by availability computation.
func (r *EventRepository) FindBusy(ctx context.Context, userID int, start, end time.Time) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events e
		WHERE e.is_active = TRUE
		  AND e.status <> 'cancelled'
		  AND e.start_at < $1
		  AND e.end_at > $2
		  AND (e.organizer_id = $3 OR EXISTS (
			SELECT 1 FROM event_attendees a
			WHERE a.event_id = e.id AND a.student_id = $3))`
	return r.queryEvents(ctx, query, end, start, userID)
}

// List retrieves active events matching the filter, ordered by start time.
func (r *EventRepository) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.is_active = TRUE`
	var args []interface{}

	if f.From != nil {
		args = append(args, *f.From)
		query += ` AND e.end_at > $` + strconv.Itoa(len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += ` AND e.start_at < $` + strconv.Itoa(len(args))
	}
	if f.Type != nil {
		args = append(args, *f.Type)
		query += ` AND e.type = $` + strconv.Itoa(len(args))
	}
	if f.OrganizerID != nil {
		args = append(args, *f.OrganizerID)
		query += ` AND e.organizer_id = $` + strconv.Itoa(len(args))
	}
	if f.AttendeeID != nil {
		args = append(args, *f.AttendeeID)
		query += ` AND EXISTS (SELECT 1 FROM event_attendees a
			WHERE a.event_id = e.id AND a.student_id = $` + strconv.Itoa(len(args)) + `)`
	}

	query += ` ORDER BY e.start_at`
	return r.queryEvents(ctx, query, args...)
}

// FindUnrecorded returns completed, non-public, active events that ended
// before the cutoff and have no attendance records at all.
func (r *EventRepository) FindUnrecorded(ctx context.Context, cutoff time.Time) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events e
		WHERE e.is_active = TRUE
		  AND e.status = 'completed'
		  AND e.visibility = 'private'
		  AND e.end_at < $1
		  AND NOT EXISTS (SELECT 1 FROM attendance_records ar WHERE ar.event_id = e.id)`
	return r.queryEvents(ctx, query, cutoff)
}

// Create inserts a new event with its attendee set.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	var freq *string
	var until *time.Time
	if e.Recurrence != nil {
		f := string(e.Recurrence.Frequency)
		freq = &f
		until = e.Recurrence.Until
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO events (id, title, description, start_at, end_at, type, location,
		                     organizer_id, visibility, status, is_recurring,
		                     recurrence_frequency, recurrence_until, recurrence_root_id, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE)
		 RETURNING created_at, updated_at`,
		e.ID, e.Title, e.Description, e.StartAt, e.EndAt, e.Type, e.Location,
		e.OrganizerID, e.Visibility, e.Status, e.IsRecurring, freq, until, e.RecurrenceRootID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return err
	}
	e.IsActive = true

	return r.replaceAttendees(ctx, e.ID, e.AttendeeIDs)
}

// CreateBatch inserts recurrence instances in one UNNEST statement, then
// copies the attendee set to each instance.
func (r *EventRepository) CreateBatch(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}

	n := len(events)
	ids := make([]uuid.UUID, n)
	titles := make([]string, n)
	descriptions := make([]string, n)
	starts := make([]time.Time, n)
	ends := make([]time.Time, n)
	types := make([]string, n)
	locations := make([]string, n)
	organizers := make([]int, n)
	visibilities := make([]string, n)
	statuses := make([]string, n)
	roots := make([]uuid.UUID, n)

	for i, e := range events {
		ids[i] = e.ID
		titles[i] = e.Title
		descriptions[i] = e.Description
		starts[i] = e.StartAt
		ends[i] = e.EndAt
		types[i] = string(e.Type)
		locations[i] = e.Location
		organizers[i] = e.OrganizerID
		visibilities[i] = string(e.Visibility)
		statuses[i] = string(e.Status)
		if e.RecurrenceRootID != nil {
			roots[i] = *e.RecurrenceRootID
		}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (id, title, description, start_at, end_at, type, location,
		                     organizer_id, visibility, status, is_recurring,
		                     recurrence_root_id, is_active)
		 SELECT u.id, u.title, u.description, u.start_at, u.end_at, u.type, u.location,
		        u.organizer_id, u.visibility, u.status, TRUE, u.root_id, TRUE
		 FROM UNNEST($1::uuid[], $2::text[], $3::text[], $4::timestamptz[], $5::timestamptz[],
		             $6::text[], $7::text[], $8::int[], $9::text[], $10::text[], $11::uuid[])
		      AS u (id, title, description, start_at, end_at, type, location,
		            organizer_id, visibility, status, root_id)`,
		ids, titles, descriptions, starts, ends, types, locations,
		organizers, visibilities, statuses, roots)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		for _, sid := range e.AttendeeIDs {
			batch.Queue(`INSERT INTO event_attendees (event_id, student_id)
				VALUES ($1, $2) ON CONFLICT DO NOTHING`, e.ID, sid)
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

// Update rewrites an event's mutable fields and replaces its attendee set.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events
		 SET title = $1, description = $2, start_at = $3, end_at = $4, type = $5,
		     location = $6, visibility = $7, status = $8, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $9 AND is_active = TRUE`,
		e.Title, e.Description, e.StartAt, e.EndAt, e.Type,
		e.Location, e.Visibility, e.Status, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return r.replaceAttendees(ctx, e.ID, e.AttendeeIDs)
}

// SetStatus moves an event to a new lifecycle status.
func (r *EventRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET status = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND is_active = TRUE`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// SoftDelete deactivates an event and marks it cancelled. Rows are never
// physically removed.
func (r *EventRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET is_active = FALSE, status = 'cancelled', updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// AddAttendee enrolls a student in an event; duplicates are ignored.
func (r *EventRepository) AddAttendee(ctx context.Context, eventID uuid.UUID, studentID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_attendees (event_id, student_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`, eventID, studentID)
	return err
}

// RemoveAttendee removes a student from an event's attendee set.
func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID uuid.UUID, studentID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM event_attendees WHERE event_id = $1 AND student_id = $2`,
		eventID, studentID)
	return err
}

func (r *EventRepository) replaceAttendees(ctx context.Context, eventID uuid.UUID, studentIDs []int) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM event_attendees WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	if len(studentIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_attendees (event_id, student_id)
		 SELECT $1, s FROM UNNEST($2::int[]) AS s
		 ON CONFLICT DO NOTHING`, eventID, studentIDs)
	return err
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]model.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
