package model

import "time"

// WorkingBlock is a recurring weekly availability window, expressed as
// minutes since midnight on a given weekday.
type WorkingBlock struct {
	Weekday     time.Weekday `json:"weekday"`
	StartMinute int          `json:"start_minute"`
	EndMinute   int          `json:"end_minute"`
}

// BlockedPeriod is an absolute time range during which the user is never
// available (holidays, leave).
type BlockedPeriod struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Reason  string    `json:"reason,omitempty"`
}

// UserSchedule is a user's availability definition. A user without one
// cannot be queried for free slots: availability computations require an
// explicit schedule rather than assuming the user is always free.
type UserSchedule struct {
	UserID         int             `json:"user_id"`
	WorkingBlocks  []WorkingBlock  `json:"working_blocks"`
	BlockedPeriods []BlockedPeriod `json:"blocked_periods"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
