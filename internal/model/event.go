package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a calendar event.
type EventType string

const (
	EventTypeClass   EventType = "class"
	EventTypeExam    EventType = "exam"
	EventTypeMeeting EventType = "meeting"
	EventTypeEvent   EventType = "event"
)

// EventStatus is the lifecycle state of an event. The only legal transitions
// are scheduled→completed and scheduled→cancelled.
type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Visibility controls who can see an event.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Frequency is a recurrence period.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// RecurrenceRule describes how a template event repeats. Until is optional;
// when nil, expansion is bounded to one year from creation.
type RecurrenceRule struct {
	Frequency Frequency  `json:"frequency"`
	Until     *time.Time `json:"until,omitempty"`
}

// Event represents a scheduled occurrence: a class, exam, meeting or generic
// event. Deleting an event only flips IsActive off and marks it cancelled;
// rows are never removed.
type Event struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartAt     time.Time   `json:"start_at"`
	EndAt       time.Time   `json:"end_at"`
	Type        EventType   `json:"type"`
	Location    string      `json:"location"`
	OrganizerID int         `json:"organizer_id"`
	AttendeeIDs []int       `json:"attendee_ids"`
	Visibility  Visibility  `json:"visibility"`
	Status      EventStatus `json:"status"`
	IsRecurring bool        `json:"is_recurring"`
	Recurrence  *RecurrenceRule `json:"recurrence,omitempty"`
	// RecurrenceRootID links an expanded instance back to its template.
	// The template points at itself.
	RecurrenceRootID *uuid.UUID `json:"recurrence_root_id,omitempty"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Duration returns the event length.
func (e *Event) Duration() time.Duration {
	return e.EndAt.Sub(e.StartAt)
}
